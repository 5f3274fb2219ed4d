// Package source resolves a command line input into a resource lexicon,
// detecting whether it is a lexicon file, atproto Lexicon schemas or an
// OpenAPI document.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/wadling/wadling/internal/atproto"
	"github.com/wadling/wadling/internal/lexicon"
	"github.com/wadling/wadling/internal/openapi"
)

type Format string

const (
	Auto    Format = "auto"
	Lexicon Format = "lexicon"
	ATProto Format = "atproto"
	OpenAPI Format = "openapi"
)

// Formats lists the accepted values of --format.
var Formats = []Format{Auto, Lexicon, ATProto, OpenAPI}

// Error reports a failure to read or convert an input. OpenAPI loader
// failures keep their *openapi.LoadError as Cause.
type Error struct {
	Code     openapi.ErrorCode
	Format   Format
	Message  string
	Location string
	Cause    error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Cause }

// Options tunes Load.
type Options struct {
	Format      Format
	IncludeTags []string
	ExcludeTags []string
	Logger      *slog.Logger
}

// Load returns the resource lexicon described by input. For the lexicon
// format the decoded document is returned as is, so a document that is not
// a mapping reaches the translator and is rejected there. The other formats
// always yield a lexicon.Map.
func Load(ctx context.Context, input string, opts Options) (any, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &Error{Code: openapi.InputError, Message: "source: input is empty"}
	}
	format := opts.Format
	if format == "" {
		format = Auto
	}

	if openapi.IsURL(input) {
		if format != Auto && format != OpenAPI {
			return nil, &Error{Code: openapi.InputError, Format: format, Message: fmt.Sprintf("source: %s input must be a local path", format), Location: input}
		}
		doc, err := openapi.Load(ctx, input, openapi.WithLogger(logger))
		if err != nil {
			return nil, wrapOpenAPI(err, input)
		}
		return fromOpenAPI(doc, input, opts)
	}

	st, err := os.Stat(input)
	if err != nil {
		return nil, &Error{Code: openapi.InputError, Format: format, Message: fmt.Sprintf("source: %v", err), Location: input, Cause: err}
	}
	if st.IsDir() {
		if format != Auto && format != ATProto {
			return nil, &Error{Code: openapi.InputError, Format: format, Message: fmt.Sprintf("source: %s input must be a file", format), Location: input}
		}
		return loadATProto(input, logger)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, &Error{Code: openapi.InputError, Format: format, Message: fmt.Sprintf("source: %v", err), Location: input, Cause: err}
	}
	asJSON := strings.EqualFold(filepath.Ext(input), ".json")

	var decoded any
	if format == Auto {
		decoded, err = lexicon.Decode(data, asJSON)
		if err != nil {
			return nil, &Error{Code: openapi.ParseError, Format: format, Message: fmt.Sprintf("source: %v", err), Location: input, Cause: err}
		}
		format = Detect(decoded)
		logger.Debug("detected input format", "input", input, "format", format)
	}

	switch format {
	case ATProto:
		return loadATProto(input, logger)
	case OpenAPI:
		location := input
		if abs, err := filepath.Abs(input); err == nil {
			location = abs
		}
		doc, err := openapi.LoadData(ctx, data, location, logger)
		if err != nil {
			return nil, wrapOpenAPI(err, input)
		}
		return fromOpenAPI(doc, input, opts)
	case Lexicon:
		if decoded != nil {
			return decoded, nil
		}
		v, err := lexicon.Decode(data, asJSON)
		if err != nil {
			return nil, &Error{Code: openapi.ParseError, Format: format, Message: fmt.Sprintf("source: %v", err), Location: input, Cause: err}
		}
		return v, nil
	default:
		return nil, &Error{Code: openapi.InputError, Format: format, Message: fmt.Sprintf("source: unknown format %q", format), Location: input}
	}
}

// Detect guesses the format of a decoded document from its top-level keys.
func Detect(decoded any) Format {
	m, err := lexicon.AsMap(decoded)
	if err != nil {
		return Lexicon
	}
	if _, ok := m.Get("lexicon"); ok {
		if _, ok := m.Get("defs"); ok {
			return ATProto
		}
	}
	for _, key := range []string{"openapi", "swagger"} {
		if v, ok := m.Get(key); ok {
			if _, isMap := v.(lexicon.Map); !isMap {
				return OpenAPI
			}
		}
	}
	return Lexicon
}

func loadATProto(input string, logger *slog.Logger) (lexicon.Map, error) {
	m, err := atproto.Load(input, logger)
	if err != nil {
		code := openapi.ParseError
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			code = openapi.InputError
		}
		return nil, &Error{Code: code, Format: ATProto, Message: fmt.Sprintf("atproto: %v", err), Location: input, Cause: err}
	}
	return m, nil
}

func fromOpenAPI(doc *openapi3.T, input string, opts Options) (lexicon.Map, error) {
	m, err := openapi.ToLexicon(doc, openapi.WithIncludeTags(opts.IncludeTags), openapi.WithExcludeTags(opts.ExcludeTags))
	if err != nil {
		return nil, &Error{Code: openapi.ConversionError, Format: OpenAPI, Message: fmt.Sprintf("openapi: %v", err), Location: input, Cause: err}
	}
	return m, nil
}

func wrapOpenAPI(err error, input string) error {
	var le *openapi.LoadError
	if errors.As(err, &le) {
		return &Error{Code: le.Code, Format: OpenAPI, Message: le.Message, Location: le.Location, Cause: le}
	}
	return &Error{Code: openapi.ParseError, Format: OpenAPI, Message: err.Error(), Location: input, Cause: err}
}
