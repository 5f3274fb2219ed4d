package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wadling/wadling/internal/lexicon"
	"github.com/wadling/wadling/internal/openapi"
	"github.com/wadling/wadling/internal/source"
	"github.com/wadling/wadling/internal/wadl"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string   `flag:"input" validate:"required"`
	Format      string   `flag:"format" validate:"oneof=auto lexicon atproto openapi"`
	Out         string   `flag:"out" validate:"excluded_with=SplitDir"`
	SplitDir    string   `flag:"split-dir"`
	Prefix      string   `flag:"prefix"`
	StyleSheet  string   `flag:"stylesheet"`
	IncludeTags []string `flag:"include-tags"`
	ExcludeTags []string `flag:"exclude-tags"`
	Escape      bool     `flag:"escape"`
	ConfigPath  string   `flag:"-"`
	DryRun      bool     `flag:"dry-run"`
	Verbose     bool     `flag:"verbose"`
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Format: string(source.Auto)}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate WADL from a resource lexicon, atproto Lexicons or an OpenAPI document",
		Long: "Generate a WADL document describing every resource of the input, or one " +
			".wadl file per resource with --split-dir. Options can be provided via flags, " +
			"config files, or defaults.",
		Example: strings.TrimSpace(`  wadling generate --input resources.yaml --out api.wadl
  wadling generate --input ./lexicons --split-dir ./wadl --prefix bsky
  wadling --config wadling.yaml generate --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Lexicon file, atproto Lexicon file or directory, or OpenAPI path/URL")
	flags.String("format", "", "Input format (auto|lexicon|atproto|openapi); defaults to auto")
	flags.String("out", "", "Write the WADL document to this file instead of stdout")
	flags.String("split-dir", "", "Write one <id>.wadl file per resource into this existing directory")
	flags.String("prefix", "", "Prefix applied to every method id")
	flags.String("stylesheet", "", "Style sheet referenced by the output (default "+wadl.DefaultStyleSheet+")")
	flags.StringSlice("include-tags", nil, "OpenAPI: only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "OpenAPI: exclude operations with these tags")
	flags.Bool("escape", false, "XML-escape interpolated values")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	stringFlags := map[string]*string{
		"input":      &cfg.Input,
		"format":     &cfg.Format,
		"out":        &cfg.Out,
		"split-dir":  &cfg.SplitDir,
		"prefix":     &cfg.Prefix,
		"stylesheet": &cfg.StyleSheet,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("include-tags") {
		value, err := flags.GetStringSlice("include-tags")
		if err != nil {
			return err
		}
		cfg.IncludeTags = sanitizeTags(value)
	}
	if flags.Changed("exclude-tags") {
		value, err := flags.GetStringSlice("exclude-tags")
		if err != nil {
			return err
		}
		cfg.ExcludeTags = sanitizeTags(value)
	}

	boolFlags := map[string]*bool{
		"escape":  &cfg.Escape,
		"dry-run": &cfg.DryRun,
		"verbose": &cfg.Verbose,
	}
	for name, dst := range boolFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = string(source.Auto)
	}
	c.Out = strings.TrimSpace(c.Out)
	c.SplitDir = strings.TrimSpace(c.SplitDir)
	c.StyleSheet = strings.TrimSpace(c.StyleSheet)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *GenerateConfig) validate() error {
	if err := validateStruct("generate", c); err != nil {
		return err
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func (c *GenerateConfig) translator() *wadl.Translator {
	var opts []wadl.Option
	if c.StyleSheet != "" {
		opts = append(opts, wadl.WithStyleSheet(c.StyleSheet))
	}
	if c.Escape {
		opts = append(opts, wadl.WithEscaper(wadl.XMLEscaper))
	}
	return wadl.New(opts...)
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger := newLogger(cfg.Verbose)

	raw, err := source.Load(ctx, cfg.Input, source.Options{
		Format:      source.Format(cfg.Format),
		IncludeTags: cfg.IncludeTags,
		ExcludeTags: cfg.ExcludeTags,
		Logger:      logger,
	})
	if err != nil {
		return wrapSourceError(err)
	}

	tr := cfg.translator()

	if cfg.SplitDir != "" {
		absDir := absPath(cfg.SplitDir)
		if cfg.DryRun {
			planned, err := wadl.PlanFiles(raw, absDir, cfg.Prefix)
			if err != nil {
				return wrapLexiconError(err)
			}
			for i, p := range planned {
				planned[i] = filepath.Base(p)
			}
			printPlan(absDir, planned)
			return nil
		}
		written, err := tr.RenderFiles(raw, cfg.SplitDir, cfg.Prefix)
		for _, p := range written {
			logger.Debug("wrote resource", "file", p)
		}
		if err != nil {
			if errors.Is(err, wadl.ErrIOFailure) {
				return wrapOutputError(err, absDir)
			}
			return wrapLexiconError(err)
		}
		logger.Info("generated wadl files", "dir", absDir, "count", len(written))
		return nil
	}

	doc, err := tr.Render(raw, cfg.Prefix)
	if err != nil {
		return wrapLexiconError(err)
	}
	if cfg.Out == "" {
		fmt.Fprint(os.Stdout, doc)
		return nil
	}

	absOut := absPath(cfg.Out)
	if cfg.DryRun {
		printPlan(filepath.Dir(absOut), []string{filepath.Base(absOut)})
		return nil
	}
	if err := wadl.WriteFile(absOut, doc); err != nil {
		return wrapOutputError(err, absOut)
	}
	logger.Info("generated wadl document", "file", absOut)
	return nil
}

func printPlan(outDir string, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func absPath(p string) string {
	if ap, err := filepath.Abs(p); err == nil {
		return ap
	}
	return p
}

func wrapSourceError(err error) error {
	var se *source.Error
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("input: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if pointer := sourcePointer(se); pointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, pointer)
	}
	return wrapUsageError(err, msg)
}

func sourcePointer(se *source.Error) string {
	var le *openapi.LoadError
	if errors.As(se.Cause, &le) {
		return le.JSONPointer
	}
	return ""
}

// wrapLexiconError keeps the bare validation message and adds where it was
// found on a second line.
func wrapLexiconError(err error) error {
	var ie *lexicon.InvalidArgumentError
	if !errors.As(err, &ie) {
		return err
	}
	msg := fmt.Sprintf("lexicon: %s", ie.Error())
	if detail := ie.Detail(); detail != ie.Error() {
		msg = fmt.Sprintf("%s\nAt: %s", msg, strings.TrimSpace(strings.TrimPrefix(detail, ie.Error())))
	}
	return wrapUsageError(err, msg)
}

func wrapOutputError(err error, outDir string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "no such file") || strings.Contains(lower, "rename") || strings.Contains(lower, "not a directory") {
		return wrapUsageError(err, fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or --split-dir.", outDir, msg))
	}
	return err
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	var result []string
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
