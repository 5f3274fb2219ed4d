package cli

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = newValidator()

// newValidator reports fields by their flag name; "-" skips a field.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})
	return v
}

func validateStruct(command string, cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	messages := make([]string, 0, len(ves))
	for _, ve := range ves {
		messages = append(messages, fmt.Sprintf("--%s %s", ve.Field(), formatValidationError(cfg, ve)))
	}
	return newUsageError(fmt.Sprintf("%s: %s", command, strings.Join(messages, "; ")))
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(cfg any, ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required (set via flag or config file)"
	case "oneof":
		return fmt.Sprintf("must be one of: %s (got %q)", strings.ReplaceAll(ve.Param(), " ", ", "), ve.Value())
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with --%s", flagName(cfg, ve.Param()))
	default:
		return fmt.Sprintf("failed %q validation", ve.Tag())
	}
}

func flagName(cfg any, field string) string {
	t := reflect.TypeOf(cfg)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(field); ok {
		if name := f.Tag.Get("flag"); name != "" && name != "-" {
			return name
		}
	}
	return field
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "input":
			cfg.Input, err = valueAsString(value)
		case "format":
			cfg.Format, err = valueAsString(value)
		case "out":
			cfg.Out, err = valueAsString(value)
		case "splitdir":
			cfg.SplitDir, err = valueAsString(value)
		case "prefix":
			cfg.Prefix, err = valueAsString(value)
		case "stylesheet":
			cfg.StyleSheet, err = valueAsString(value)
		case "includetags":
			var list []string
			list, err = valueAsStringSlice(value)
			cfg.IncludeTags = sanitizeTags(list)
		case "excludetags":
			var list []string
			list, err = valueAsStringSlice(value)
			cfg.ExcludeTags = sanitizeTags(list)
		case "escape":
			cfg.Escape, err = valueAsBool(value)
		case "dryrun":
			cfg.DryRun, err = valueAsBool(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
