package lexicon

// Typed resource model produced by Parse and consumed by the WADL emitter.

type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	DELETE Method = "DELETE"
)

// Methods lists the supported verbs in matching order.
var Methods = []Method{GET, POST, PUT, DELETE}

// ParamType is an XSD simple type name as it appears after the xsd: prefix.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeFloat   ParamType = "float"
	TypeDouble  ParamType = "double"
	TypeBoolean ParamType = "boolean"
	TypeDate    ParamType = "date"
	TypeTime    ParamType = "time"
	TypeAnyURI  ParamType = "anyURI"
)

// paramTypes maps normalized (trimmed, lower-cased) names to their XSD type.
var paramTypes = map[string]ParamType{
	"string":  TypeString,
	"integer": TypeInteger,
	"float":   TypeFloat,
	"double":  TypeDouble,
	"boolean": TypeBoolean,
	"date":    TypeDate,
	"time":    TypeTime,
	// Emitted as xsd:anyURI, the XSD spelling, not the lower-cased name.
	"anyuri":  TypeAnyURI,
}

type Resources []Resource

type Resource struct {
	Path   string    `json:"path"`
	Method Method    `json:"method"`
	Doc    string    `json:"doc"`
	ID     string    `json:"id"`
	// Required is nil when the lexicon does not say.
	Required *bool   `json:"required,omitempty"`
	Params   []Param `json:"params,omitempty"`
}

type Param struct {
	Name string    `json:"name"`
	Type ParamType `json:"type"`
	// Required is carried through as written in the lexicon.
	Required string  `json:"required"`
	Default  *string `json:"default,omitempty"`
}
