package lexicon

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Entry is a single key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is an insertion-ordered mapping of untyped values. It is the raw form
// of a resource lexicon before Parse turns it into typed resources.
//
// Values are nil, string, bool, int, int64, float64, Map or []any.
type Map []Entry

// Get returns the value of the first entry whose key is the string key.
func (m Map) Get(key string) (any, bool) {
	for _, e := range m {
		if k, ok := e.Key.(string); ok && k == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of key, or appends it when absent.
func (m *Map) Set(key string, value any) {
	for i, e := range *m {
		if k, ok := e.Key.(string); ok && k == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Entry{Key: key, Value: value})
}

// Keys lists the keys in order.
func (m Map) Keys() []any {
	keys := make([]any, 0, len(m))
	for _, e := range m {
		keys = append(keys, e.Key)
	}
	return keys
}

// toMap reports whether v is a mapping and returns it as a Map. Plain Go maps
// carry no order, so their keys are sorted by their text.
func toMap(v any) (Map, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case Map:
		return val, true
	case *yaml.Node:
		converted, err := FromYAML(val)
		if err != nil {
			return nil, false
		}
		if converted == nil {
			return nil, true
		}
		return toMap(converted)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	keys := rv.MapKeys()
	sort.SliceStable(keys, func(i, j int) bool {
		return Text(keys[i].Interface()) < Text(keys[j].Interface())
	})
	m := make(Map, 0, len(keys))
	for _, k := range keys {
		m = append(m, Entry{Key: k.Interface(), Value: rv.MapIndex(k).Interface()})
	}
	return m, true
}

// FromYAML converts a yaml.v3 node tree into untyped values, keeping mapping
// order. Aliases are expanded.
func FromYAML(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return FromYAML(n.Content[0])
	case yaml.MappingNode:
		m := make(Map, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := FromYAML(n.Content[i])
			if err != nil {
				return nil, err
			}
			v, err := FromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m = append(m, Entry{Key: k, Value: v})
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := FromYAML(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.AliasNode:
		return FromYAML(n.Alias)
	case yaml.ScalarNode:
		// Numbers and dates keep their written form. Numbers stay apart from
		// strings so a numeric doc is still rejected.
		switch n.ShortTag() {
		case "!!bool", "!!null":
			var v any
			if err := n.Decode(&v); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return v, nil
		case "!!int", "!!float":
			return json.Number(n.Value), nil
		default:
			return n.Value, nil
		}
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
	}
}

// DecodeYAML parses a YAML (or JSON) document into untyped values.
func DecodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return FromYAML(&doc)
}

// DecodeJSON parses a JSON document into untyped values, keeping object key
// order.
func DecodeJSON(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := Map{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", kt)
				}
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				m = append(m, Entry{Key: key, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			list := []any{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return f, nil
	default:
		// string, bool or nil
		return t, nil
	}
}

// Text renders a scalar the way it is interpolated into markup. nil is the
// empty string.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
