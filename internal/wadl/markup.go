package wadl

import (
	"encoding/xml"
	"strings"

	"github.com/wadling/wadling/internal/lexicon"
)

// Escaper transforms an interpolated value before it is written.
type Escaper func(string) string

// Literal writes values unchanged. It is the default.
func Literal(s string) string { return s }

// XMLEscaper escapes values for XML text and attribute content.
func XMLEscaper(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const (
	headerOpen  = `<?xml version="1.0" encoding="UTF-8"?><?xml-stylesheet type="text/xsl" href="`
	headerClose = `"?><wadl:application xmlns:wadl="http://wadl.dev.java.net/2009/02"` +
		`    xmlns:jr="http://jasperreports.sourceforge.net/xsd/jasperreport.xsd"` +
		`    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://wadl.dev.java.net/2009/02 wadl.xsd ">`
	resourcesOpen  = `<wadl:resources base="/">`
	resourcesClose = `</wadl:resources>`
	footer         = `</wadl:application>`
)

// markup assembles a document by concatenation. Static markup goes through
// raw; everything taken from the lexicon or configuration goes through value
// so the escaping policy applies in one place.
type markup struct {
	b   strings.Builder
	esc Escaper
}

func newMarkup(esc Escaper) *markup {
	if esc == nil {
		esc = Literal
	}
	return &markup{esc: esc}
}

func (m *markup) raw(parts ...string) {
	for _, p := range parts {
		m.b.WriteString(p)
	}
}

func (m *markup) value(s string) { m.b.WriteString(m.esc(s)) }

func (m *markup) String() string { return m.b.String() }

func (m *markup) open(styleSheet string) {
	m.raw(headerOpen)
	m.value(styleSheet)
	m.raw(headerClose, resourcesOpen)
}

func (m *markup) close() { m.raw(resourcesClose, footer) }

func (m *markup) resource(r lexicon.Resource, id string) {
	m.raw(`<wadl:resource path="`)
	m.value(r.Path)
	m.raw(`">`, `  <wadl:method name="`, string(r.Method), `" id="`)
	m.value(id)
	m.raw(`">`, `    <wadl:doc>`, `      `)
	m.value(r.Doc)
	m.raw(`    </wadl:doc>`, `    <wadl:request>`)
	for _, p := range r.Params {
		m.param(p)
	}
	m.raw(`    </wadl:request>`, `  </wadl:method>`, `</wadl:resource>`)
}

func (m *markup) param(p lexicon.Param) {
	m.raw(`      <wadl:param name="`)
	m.value(p.Name)
	m.raw(`" type="xsd:`, string(p.Type), `" required="`)
	m.value(p.Required)
	m.raw(`" style="query"`)
	if p.Default != nil {
		m.raw(` default="`)
		m.value(*p.Default)
		m.raw(`"`)
	}
	m.raw(`>      </wadl:param>`)
}
