package atproto

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/wadling/wadling/internal/lexicon"
)

// Load reads a Lexicon schema file, or every *.json file below a directory
// in lexical order, and returns one resource per query or procedure.
func Load(path string, logger *slog.Logger) (lexicon.Map, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	files := []string{path}
	if st.IsDir() {
		files = files[:0]
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".json") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}

	out := lexicon.Map{}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		entry, ok, err := Endpoint(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		if !ok {
			logger.Debug("skipping lexicon without query or procedure", "file", f)
			continue
		}
		logger.Debug("loaded lexicon endpoint", "file", f, "path", entry.Key)
		out = append(out, entry)
	}
	return out, nil
}

// Endpoint converts one Lexicon schema file. ok is false when its main def
// is not a query or procedure (records, subscriptions, shared defs).
func Endpoint(data []byte) (lexicon.Entry, bool, error) {
	var sf schemaFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return lexicon.Entry{}, false, fmt.Errorf("parse lexicon schema: %w", err)
	}
	if sf.Lexicon != 1 {
		return lexicon.Entry{}, false, fmt.Errorf("unsupported lexicon language version: %d", sf.Lexicon)
	}
	if err := checkNSID(sf.ID); err != nil {
		return lexicon.Entry{}, false, err
	}
	rawMain, ok := sf.Defs["main"]
	if !ok {
		return lexicon.Entry{}, false, nil
	}
	var def endpointDef
	if err := json.Unmarshal(rawMain, &def); err != nil {
		return lexicon.Entry{}, false, fmt.Errorf("parse %s#main: %w", sf.ID, err)
	}

	var method string
	switch def.Type {
	case "query":
		method = "GET"
	case "procedure":
		method = "POST"
	default:
		return lexicon.Entry{}, false, nil
	}

	doc := sf.ID
	switch {
	case def.Description != nil:
		doc = *def.Description
	case sf.Description != nil:
		doc = *sf.Description
	}

	params := lexicon.Map{}
	if def.Parameters != nil {
		for _, p := range def.Parameters.Properties {
			required := "false"
			if slices.Contains(def.Parameters.Required, p.Name) {
				required = "true"
			}
			param := lexicon.Map{
				{Key: "type", Value: xsdType(p.Def)},
				{Key: "required", Value: required},
			}
			if p.Def.Default != nil {
				param = append(param, lexicon.Entry{Key: "default", Value: p.Def.Default})
			}
			params = append(params, lexicon.Entry{Key: p.Name, Value: param})
		}
	}

	return lexicon.Entry{
		Key: "/xrpc/" + sf.ID,
		Value: lexicon.Map{
			{Key: "doc", Value: doc},
			{Key: "method", Value: method},
			{Key: "id", Value: sf.ID},
			{Key: "params", Value: params},
		},
	}, true, nil
}
