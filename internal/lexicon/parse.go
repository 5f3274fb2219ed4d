package lexicon

import (
	"strings"
)

// Parse validates an untyped resource lexicon and converts it into typed
// resources, in order. nil and empty mappings yield no resources and no
// error; anything that is not a mapping is rejected.
//
// Every resource is checked before any is returned, so callers never emit
// output for a lexicon that later turns out to be invalid.
func Parse(raw any) (Resources, error) {
	m, err := AsMap(raw)
	if err != nil {
		return nil, err
	}
	return ParseMap(m)
}

// AsMap returns raw as an ordered Map. nil becomes an empty Map.
func AsMap(raw any) (Map, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := toMap(raw)
	if !ok {
		return nil, NewInvalidArgument(ReasonNotDictionary)
	}
	return m, nil
}

// ParseMap is Parse for an input already known to be a mapping.
func ParseMap(m Map) (Resources, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(Resources, 0, len(m))
	for _, e := range m {
		r, err := parseResource(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseResource(key, value any) (Resource, error) {
	if key == nil {
		return Resource{}, NewInvalidArgument(ReasonResourcePath)
	}
	path := Text(key)
	fail := func(reason Reason) (Resource, error) {
		return Resource{}, &InvalidArgumentError{Reason: reason, Resource: path}
	}

	desc, ok := toMap(value)
	if !ok {
		return fail(ReasonResourceDefinition)
	}

	rawMethod, _ := desc.Get("method")
	method, ok := parseMethod(rawMethod)
	if !ok {
		return fail(ReasonMethod)
	}

	rawDoc, _ := desc.Get("doc")
	doc, ok := rawDoc.(string)
	if !ok {
		return fail(ReasonDoc)
	}

	rawID, _ := desc.Get("id")
	if rawID == nil {
		return fail(ReasonID)
	}

	rawRequired, _ := desc.Get("required")
	required, ok := parseRequired(rawRequired)
	if !ok {
		return fail(ReasonPresence)
	}
	mustNotDefault := required != nil && *required
	if rawDefault, _ := desc.Get("default"); mustNotDefault && rawDefault != nil {
		return fail(ReasonDefaultWhenRequired)
	}

	var params Map
	if rawParams, _ := desc.Get("params"); rawParams != nil {
		params, ok = toMap(rawParams)
		if !ok {
			return fail(ReasonResourceDefinition)
		}
	}

	r := Resource{
		Path:     path,
		Method:   method,
		Doc:      doc,
		ID:       Text(rawID),
		Required: required,
	}
	for _, pe := range params {
		name := Text(pe.Key)
		p, reason := parseParam(name, pe.Value, mustNotDefault)
		if reason != "" {
			return Resource{}, &InvalidArgumentError{Reason: reason, Resource: path, Param: name}
		}
		r.Params = append(r.Params, p)
	}
	return r, nil
}

// parseParam checks the declared type and, when the owning resource is
// required, the absence of a default. An entry that is not a mapping has no
// type.
func parseParam(name string, value any, mustNotDefault bool) (Param, Reason) {
	desc, _ := toMap(value)

	rawType, _ := desc.Get("type")
	typ, ok := parseType(rawType)
	if !ok {
		return Param{}, ReasonParamType
	}

	rawDefault, _ := desc.Get("default")
	if mustNotDefault && rawDefault != nil {
		return Param{}, ReasonDefaultWhenRequired
	}

	rawRequired, _ := desc.Get("required")
	p := Param{Name: name, Type: typ, Required: Text(rawRequired)}
	if rawDefault != nil {
		d := Text(rawDefault)
		p.Default = &d
	}
	return p, ""
}

func parseMethod(v any) (Method, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, m := range Methods {
		if strings.EqualFold(s, string(m)) {
			return m, true
		}
	}
	return "", false
}

func parseType(v any) (ParamType, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	t, ok := paramTypes[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// parseRequired accepts nil, a bool, or "true"/"false" in any case with
// surrounding whitespace.
func parseRequired(v any) (*bool, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case bool:
		return &val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true":
			b := true
			return &b, true
		case "false":
			b := false
			return &b, true
		}
	}
	return nil, false
}
