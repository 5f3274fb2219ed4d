// Package atproto reads atproto Lexicon schema files and turns their XRPC
// endpoints (queries and procedures) into a resource lexicon.
package atproto

import (
	"fmt"
	"regexp"

	json "github.com/goccy/go-json"

	"github.com/wadling/wadling/internal/lexicon"
)

var nsidRegex = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+(\.[a-zA-Z]([a-zA-Z]{0,61}[a-zA-Z])?)$`)

// checkNSID applies the Namespace Identifier syntax rules.
func checkNSID(raw string) error {
	if raw == "" {
		return fmt.Errorf("expected NSID, got empty string")
	}
	if len(raw) > 317 {
		return fmt.Errorf("NSID is too long (317 chars max)")
	}
	if !nsidRegex.MatchString(raw) {
		return fmt.Errorf("invalid NSID syntax: %q", raw)
	}
	return nil
}

// Serialization helper for top-level Lexicon schema JSON objects (files).
type schemaFile struct {
	Lexicon     int                        `json:"lexicon"`
	ID          string                     `json:"id"`
	Description *string                    `json:"description,omitempty"`
	Defs        map[string]json.RawMessage `json:"defs"`
}

// endpointDef covers the fields shared by query, procedure and subscription
// defs. Other def types only need Type to be skipped.
type endpointDef struct {
	Type        string     `json:"type"`
	Description *string    `json:"description,omitempty"`
	Parameters  *paramsDef `json:"parameters,omitempty"`
}

type paramsDef struct {
	Type        string     `json:"type"`
	Description *string    `json:"description,omitempty"`
	Required    []string   `json:"required,omitempty"`
	Properties  properties `json:"properties"`
}

type propertyDef struct {
	Type        string       `json:"type"`
	Description *string      `json:"description,omitempty"`
	Format      *string      `json:"format,omitempty"`
	Default     any          `json:"default,omitempty"`
	Items       *propertyDef `json:"items,omitempty"`
}

type property struct {
	Name string
	Def  propertyDef
}

// properties keeps the declaration order of a params object, which a plain
// map would lose.
type properties []property

func (p *properties) UnmarshalJSON(b []byte) error {
	var defs map[string]propertyDef
	if err := json.Unmarshal(b, &defs); err != nil {
		return fmt.Errorf("params properties: %w", err)
	}
	if defs == nil {
		*p = nil
		return nil
	}
	raw, err := lexicon.DecodeJSON(b)
	if err != nil {
		return fmt.Errorf("params properties: %w", err)
	}
	order, _ := raw.(lexicon.Map)
	out := make(properties, 0, len(defs))
	for _, name := range order.Keys() {
		key := name.(string)
		out = append(out, property{Name: key, Def: defs[key]})
	}
	*p = out
	return nil
}

// xsdType maps a params field to the closest WADL parameter type. Arrays
// describe repeated query parameters and use their item type.
func xsdType(def propertyDef) string {
	switch def.Type {
	case "boolean", "bool":
		return "boolean"
	case "integer":
		return "integer"
	case "string":
		if def.Format != nil {
			switch *def.Format {
			case "uri", "at-uri":
				return "anyuri"
			}
		}
		return "string"
	case "array":
		if def.Items != nil {
			return xsdType(*def.Items)
		}
	}
	return "string"
}
