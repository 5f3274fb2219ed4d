// Package openapi loads OpenAPI v3 and Swagger v2 documents and describes
// their query interface as a resource lexicon.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	jsonyaml "github.com/invopop/yaml"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// LoadError is a structured error with optional location and JSON Pointer.
type LoadError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *LoadError) Error() string { return e.Message }
func (e *LoadError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries  int
	BackoffBase time.Duration
	Logger      *slog.Logger
}

func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithLogger(l *slog.Logger) Option { return func(s *Settings) { s.Logger = l } }

// Load reads and validates an OpenAPI v3 document from a file path or an
// http/https URL. Swagger 2.0 input is converted to v3 first. file:// URLs
// are rejected.
func Load(ctx context.Context, input string, opts ...Option) (*openapi3.T, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &LoadError{Code: InputError, Message: "openapi: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Logger == nil {
		settings.Logger = slog.Default()
	}

	location := input
	var raw []byte
	if IsURL(input) {
		u, _ := url.Parse(input)
		switch scheme := strings.ToLower(u.Scheme); scheme {
		case "http", "https":
		case "file":
			return nil, &LoadError{Code: InputError, Message: "openapi: file:// URLs are blocked", Location: input}
		default:
			return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("openapi: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		body, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &LoadError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		raw = body
	} else {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
		}
		location = abs
		body, err := os.ReadFile(abs)
		if err != nil {
			return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
		}
		raw = body
	}
	return LoadData(ctx, raw, location, settings.Logger)
}

// LoadData parses an already read document. location is only used in
// errors.
func LoadData(ctx context.Context, raw []byte, location string, logger *slog.Logger) (*openapi3.T, error) {
	if logger == nil {
		logger = slog.Default()
	}
	version, err := DetectVersion(raw)
	if err != nil {
		return nil, &LoadError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	var doc *openapi3.T
	switch version {
	case 3:
		loader := openapi3.NewLoader()
		base := &url.URL{Path: filepath.ToSlash(location)}
		if IsURL(location) {
			base, _ = url.Parse(location)
		} else {
			// Relative file refs of multi-file documents.
			loader.IsExternalRefsAllowed = true
		}
		doc, err = loader.LoadFromDataWithPath(raw, base)
		if err != nil {
			return nil, mapValidateOrParseErr(err, location)
		}
	case 2:
		logger.Debug("converting swagger 2.0 document", "location", location)
		doc, err = convertV2ToV3(raw)
		if err != nil {
			return nil, &LoadError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
		}
	}

	if err := doc.Validate(ctx); err != nil {
		if !canProceedDespiteValidation(err) {
			return nil, mapValidateOrParseErr(err, location)
		}
		logger.Warn("proceeding with unresolved references", "location", location, "err", err)
	}
	return doc, nil
}

// IsURL reports whether input names a remote document rather than a path.
func IsURL(input string) bool {
	u, err := url.Parse(input)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// DetectVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else error.
func DetectVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse spec: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return 3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return 2, nil
		}
	}
	return 0, fmt.Errorf("spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

// convertV2ToV3 decodes through JSON so the openapi2 json tags (basePath,
// operationId, ...) apply to YAML input too.
func convertV2ToV3(data []byte) (*openapi3.T, error) {
	var v2 openapi2.T
	if err := jsonyaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		settings.Logger.Debug("retrying fetch", "url", rawURL, "attempt", i+1, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs one GET. retry is set for network errors, 5xx and 429.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	return &LoadError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	if me, ok := err.(openapi3.MultiError); ok && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	return jsonPtrRe.FindString(err.Error())
}

// canProceedDespiteValidation lets documents with unresolved $ref entries
// through; only parameters are read from them.
func canProceedDespiteValidation(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
