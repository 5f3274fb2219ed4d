package lexicon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads a resource lexicon from a YAML or JSON file. JSON files are
// decoded with an order-preserving JSON decoder, everything else as YAML.
func LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return Decode(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Decode parses lexicon bytes. When asJSON is false the data is treated as
// YAML, which also covers most JSON.
func Decode(data []byte, asJSON bool) (any, error) {
	var (
		v   any
		err error
	)
	if asJSON {
		v, err = DecodeJSON(data)
	} else {
		v, err = DecodeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	return v, nil
}
