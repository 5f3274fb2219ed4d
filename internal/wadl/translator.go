// Package wadl renders resource lexicons as WADL documents.
//
// Output is assembled by plain concatenation and, by default, values are not
// escaped: consumers compare documents byte for byte. Use WithEscaper to opt
// into escaping.
package wadl

import (
	"strings"

	"github.com/wadling/wadling/internal/lexicon"
)

const DefaultStyleSheet = "/public/wadl"

// Translator turns resource lexicons into WADL. It is immutable once built and
// may be shared between goroutines.
type Translator struct {
	styleSheet string
	escape     Escaper
}

// Option configures a Translator.
type Option func(*Translator)

// WithStyleSheet sets the href of the xml-stylesheet instruction.
func WithStyleSheet(href string) Option { return func(t *Translator) { t.styleSheet = href } }

// WithEscaper sets the escaping policy for interpolated values.
func WithEscaper(e Escaper) Option { return func(t *Translator) { t.escape = e } }

func New(opts ...Option) *Translator {
	t := &Translator{styleSheet: DefaultStyleSheet, escape: Literal}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Translator) StyleSheet() string { return t.styleSheet }

// Render validates resources and returns one document describing all of them
// in lexicon order. nil or an empty mapping yields the empty document.
//
// resources is a lexicon.Map, a map[string]any (visited in key order) or a
// *yaml.Node; anything else fails with "A resource dictionary is expected".
func (t *Translator) Render(resources any, prefix string) (string, error) {
	res, err := lexicon.Parse(resources)
	if err != nil {
		return "", err
	}
	return t.Document(res, prefix), nil
}

// Document renders already validated resources.
func (t *Translator) Document(res lexicon.Resources, prefix string) string {
	m := newMarkup(t.escape)
	m.open(t.styleSheet)
	for _, r := range res {
		m.resource(r, ApplyPrefix(r.ID, prefix))
	}
	m.close()
	return m.String()
}

// ApplyPrefix namespaces an id: an empty or blank prefix leaves it unchanged,
// otherwise the result is "_" + trimmed prefix + id.
func ApplyPrefix(id, prefix string) string {
	p := strings.TrimSpace(prefix)
	if p == "" {
		return id
	}
	return "_" + p + id
}
