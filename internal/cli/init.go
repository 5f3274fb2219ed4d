package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wadling/wadling/internal/wadl"
)

const defaultConfigName = "wadling.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string `flag:"out" validate:"required"`
	Force      bool   `flag:"force"`
	Verbose    bool   `flag:"verbose"`
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample wadling configuration file",
		Long: "Write a commented wadling configuration file that documents every " +
			"key generate and validate read from --config.",
		Example: strings.TrimSpace(`  wadling init
  wadling init --out ./config/wadling.yaml --force`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &InitConfig{}
			flags := cmd.Flags()
			var err error
			if cfg.OutputPath, err = flags.GetString("out"); err != nil {
				return err
			}
			if cfg.Force, err = flags.GetBool("force"); err != nil {
				return err
			}
			if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
				return err
			}
			cfg.OutputPath = strings.TrimSpace(cfg.OutputPath)
			if err := validateStruct("init", cfg); err != nil {
				return err
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(_ context.Context, cfg *InitConfig) error {
	target := absPath(cfg.OutputPath)
	if err := checkInitTarget(target, cfg.Force); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return wrapUsageError(err, fmt.Sprintf("init: cannot create parent directory of %s: %v", target, err))
	}
	if err := wadl.WriteFile(target, strings.TrimSpace(sampleConfigYAML)+"\n"); err != nil {
		return wrapUsageError(err, fmt.Sprintf("init: %v\nHint: choose a different --out or check directory permissions.", err))
	}

	newLogger(cfg.Verbose).Debug("wrote sample config", "file", target)
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", target)
	return nil
}

// checkInitTarget refuses to replace a directory, and an existing file unless
// force is set.
func checkInitTarget(path string, force bool) error {
	st, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return wrapUsageError(err, fmt.Sprintf("init: %v", err))
	case st.IsDir():
		return newUsageError(fmt.Sprintf("init: %s is a directory", path))
	case !force:
		return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", path))
	default:
		return nil
	}
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# wadling configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Resource lexicon (YAML/JSON), atproto Lexicon file or directory, or an
# OpenAPI/Swagger document (local file or http/https URL).
# input: ./resources.yaml

# Input format: auto, lexicon, atproto or openapi. Defaults to auto.
# format: auto

# Write the WADL document to this file. Prints to stdout when omitted.
# out: ./api.wadl

# Write one <id>.wadl file per resource into this existing directory instead.
# Cannot be combined with out.
# splitDir: ./wadl

# Prefix applied to every method id (an underscore is prepended).
# prefix: v1

# Style sheet referenced by the generated documents.
# styleSheet: /public/wadl

# OpenAPI only: keep or drop operations by tag (comma-separated or list).
# includeTags: [public]
# excludeTags: [internal]

# XML-escape interpolated values (paths, ids, docs, parameter values).
# escape: false

# Preview planned outputs without writing files.
# dryRun: false

# Enable verbose logging.
# verbose: false
`
