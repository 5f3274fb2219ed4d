package openapi

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/wadling/wadling/internal/lexicon"
)

// BuildOption configures how a lexicon is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

func (c *buildConfig) keep(op *openapi3.Operation) bool {
	if len(c.includeTags) > 0 {
		found := false
		for _, t := range op.Tags {
			if _, ok := c.includeTags[t]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, t := range op.Tags {
		if _, ok := c.excludeTags[t]; ok {
			return false
		}
	}
	return true
}

// ToLexicon describes every GET, POST, PUT and DELETE operation of doc as
// one lexicon entry keyed by its path. Paths are visited in sorted order, so a
// path with several operations yields several consecutive entries. Only query
// parameters are described.
func ToLexicon(doc *openapi3.T, opts ...BuildOption) (lexicon.Map, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := lexicon.Map{}
	for _, path := range paths {
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		for _, mo := range []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", item.Get},
			{"POST", item.Post},
			{"PUT", item.Put},
			{"DELETE", item.Delete},
		} {
			if mo.op == nil || !cfg.keep(mo.op) {
				continue
			}
			out = append(out, lexicon.Entry{Key: path, Value: describeOperation(mo.method, path, item.Parameters, mo.op)})
		}
	}
	return out, nil
}

func describeOperation(method, path string, shared openapi3.Parameters, op *openapi3.Operation) lexicon.Map {
	id := strings.TrimSpace(op.OperationID)
	if id == "" {
		id = deriveOperationID(method, path)
	}
	doc := strings.TrimSpace(op.Summary)
	if doc == "" {
		doc = strings.TrimSpace(op.Description)
	}

	params := lexicon.Map{}
	for _, p := range queryParameters(shared, op.Parameters) {
		param := lexicon.Map{
			{Key: "type", Value: xsdType(p.Schema)},
			{Key: "required", Value: fmt.Sprint(p.Required)},
		}
		if p.Schema != nil && p.Schema.Value != nil && p.Schema.Value.Default != nil {
			param = append(param, lexicon.Entry{Key: "default", Value: p.Schema.Value.Default})
		}
		params = append(params, lexicon.Entry{Key: p.Name, Value: param})
	}

	return lexicon.Map{
		{Key: "doc", Value: doc},
		{Key: "method", Value: method},
		{Key: "id", Value: id},
		{Key: "params", Value: params},
	}
}

// queryParameters merges path-level and operation-level parameters; an
// operation parameter replaces a path-level one of the same name.
func queryParameters(shared, own openapi3.Parameters) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	index := map[string]int{}
	for _, list := range []openapi3.Parameters{shared, own} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInQuery {
				continue
			}
			p := ref.Value
			if i, ok := index[p.Name]; ok {
				out[i] = p
				continue
			}
			index[p.Name] = len(out)
			out = append(out, p)
		}
	}
	return out
}

// xsdType maps a parameter schema to a WADL parameter type; arrays use their
// item type and unknown schemas are strings.
func xsdType(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil {
		return "string"
	}
	s := ref.Value
	switch s.Type {
	case "integer":
		return "integer"
	case "number":
		if s.Format == "float" {
			return "float"
		}
		return "double"
	case "boolean":
		return "boolean"
	case "array":
		return xsdType(s.Items)
	case "string":
		switch s.Format {
		case "date":
			return "date"
		case "time":
			return "time"
		case "uri":
			return "anyuri"
		}
	}
	return "string"
}

// deriveOperationID builds an id such as getPetsPetId from GET /pets/{petId}.
func deriveOperationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	upper := true
	for _, r := range path {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
