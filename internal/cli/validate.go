package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/wadling/wadling/internal/lexicon"
	"github.com/wadling/wadling/internal/source"
)

// ValidateConfig captures the options for the validate command. Input, format,
// tags and verbosity can come from the same config file generate reads.
type ValidateConfig struct {
	Input       string   `flag:"input" validate:"required"`
	Format      string   `flag:"format" validate:"oneof=auto lexicon atproto openapi"`
	IncludeTags []string `flag:"include-tags"`
	ExcludeTags []string `flag:"exclude-tags"`
	JSON        bool     `flag:"json"`
	Verbose     bool     `flag:"verbose"`
}

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that an input describes valid WADL resources",
		Long: "Load the input, apply the resource checks generate would apply, and print " +
			"the resources found. Nothing is written.",
		Example: strings.TrimSpace(`  wadling validate --input resources.yaml
  wadling --config wadling.yaml validate --json`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveValidateConfig(cmd)
			if err != nil {
				return err
			}
			return validateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Lexicon file, atproto Lexicon file or directory, or OpenAPI path/URL")
	flags.String("format", "", "Input format (auto|lexicon|atproto|openapi); defaults to auto")
	flags.StringSlice("include-tags", nil, "OpenAPI: only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "OpenAPI: exclude operations with these tags")
	flags.Bool("json", false, "Print the parsed resources as JSON")

	return cmd
}

// resolveValidateConfig reads the input settings of a --config file, then
// applies the flags that were set explicitly.
func resolveValidateConfig(cmd *cobra.Command) (*ValidateConfig, error) {
	flags := cmd.Flags()
	cfg := &ValidateConfig{}

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		fromFile := defaultGenerateConfig()
		if err := applyGenerateConfigFromFile(&fromFile, configPath); err != nil {
			return nil, err
		}
		cfg.Input = fromFile.Input
		cfg.Format = fromFile.Format
		cfg.IncludeTags = fromFile.IncludeTags
		cfg.ExcludeTags = fromFile.ExcludeTags
		cfg.Verbose = fromFile.Verbose
	}

	for name, dst := range map[string]*string{"input": &cfg.Input, "format": &cfg.Format} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}
	for name, dst := range map[string]*[]string{"include-tags": &cfg.IncludeTags, "exclude-tags": &cfg.ExcludeTags} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetStringSlice(name); err != nil {
			return nil, err
		}
	}
	for name, dst := range map[string]*bool{"json": &cfg.JSON, "verbose": &cfg.Verbose} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetBool(name); err != nil {
			return nil, err
		}
	}

	cfg.Input = strings.TrimSpace(cfg.Input)
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format == "" {
		cfg.Format = string(source.Auto)
	}
	cfg.IncludeTags = sanitizeTags(cfg.IncludeTags)
	cfg.ExcludeTags = sanitizeTags(cfg.ExcludeTags)

	if err := validateStruct("validate", cfg); err != nil {
		return nil, err
	}
	if overlap := intersect(cfg.IncludeTags, cfg.ExcludeTags); len(overlap) > 0 {
		return nil, newUsageError(fmt.Sprintf("validate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	return cfg, nil
}

type validateReport struct {
	Input     string            `json:"input"`
	Format    string            `json:"format"`
	Resources lexicon.Resources `json:"resources"`
}

func runValidate(ctx context.Context, cfg *ValidateConfig) error {
	raw, err := source.Load(ctx, cfg.Input, source.Options{
		Format:      source.Format(cfg.Format),
		IncludeTags: cfg.IncludeTags,
		ExcludeTags: cfg.ExcludeTags,
		Logger:      newLogger(cfg.Verbose),
	})
	if err != nil {
		return wrapSourceError(err)
	}
	res, err := lexicon.Parse(raw)
	if err != nil {
		return wrapLexiconError(err)
	}

	if cfg.JSON {
		if res == nil {
			res = lexicon.Resources{}
		}
		out, err := json.MarshalIndent(validateReport{Input: cfg.Input, Format: cfg.Format, Resources: res}, "", "  ")
		if err != nil {
			return fmt.Errorf("validate: encode report: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	}

	fmt.Fprintf(os.Stdout, "%s: %d valid resources\n", cfg.Input, len(res))
	for _, r := range res {
		fmt.Fprintf(os.Stdout, "- %s %s (%s, %d params)\n", r.Method, r.Path, r.ID, len(r.Params))
	}
	return nil
}
