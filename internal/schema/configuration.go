package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loopwell/invitekit/pkg/apierrors"
)

// Declared prop value types. Scalars classify by JSON token kind on their
// own; the two structured types below exist only where a prop declares
// them, so an object prop can never be mistaken for a page or a theme.
const (
	ValueTypeString   = "string"
	ValueTypeInteger  = "integer"
	ValueTypeDouble   = "double"
	ValueTypeBoolean  = "boolean"
	ValueTypeArray    = "array"
	ValueTypeObject   = "object"
	ValueTypePageData = "page_data"
	ValueTypeTheme    = "theme"
	ValueTypeNull     = "null"
)

// Prop is one named configuration entry: a value plus its declared type.
type Prop struct {
	Value     Value
	ValueType string
}

// UnmarshalJSON decodes the {value, valueType} envelope, dispatching
// structured variants by the declared type.
func (p *Prop) UnmarshalJSON(raw []byte) error {
	var shadow struct {
		Value     json.RawMessage `json:"value"`
		ValueType string          `json:"valueType"`
	}
	if err := json.Unmarshal(raw, &shadow); err != nil {
		return apierrors.NewDecodingError("prop", err)
	}

	p.ValueType = shadow.ValueType
	if len(shadow.Value) == 0 {
		p.Value = Null()
		return nil
	}

	switch shadow.ValueType {
	case ValueTypePageData:
		var root Node
		if err := json.Unmarshal(shadow.Value, &root); err != nil {
			return apierrors.NewDecodingError("page_data prop", err)
		}
		p.Value = PageDataValue(&root)
		return nil
	case ValueTypeTheme:
		var theme Theme
		if err := json.Unmarshal(shadow.Value, &theme); err != nil {
			return apierrors.NewDecodingError("theme prop", err)
		}
		p.Value = ThemeValue(&theme)
		return nil
	default:
		return p.Value.UnmarshalJSON(shadow.Value)
	}
}

// MarshalJSON emits the {value, valueType} envelope, deriving the declared
// type from the value when unset.
func (p Prop) MarshalJSON() ([]byte, error) {
	valueType := p.ValueType
	if valueType == "" {
		valueType = p.Value.Kind().String()
	}
	return json.Marshal(struct {
		Value     Value  `json:"value"`
		ValueType string `json:"valueType"`
	}{Value: p.Value, ValueType: valueType})
}

// Configuration is a parsed widget configuration document.
type Configuration struct {
	ID               string            `json:"id"`
	Props            map[string]Prop   `json:"props"`
	LocalizedStrings map[string]string `json:"localizedStrings,omitempty"`
}

// Envelope is the widget-configuration fetch response: the document plus
// deployment metadata and the attestation token the client must echo.
type Envelope struct {
	Configuration      *Configuration `json:"widgetConfiguration"`
	DeploymentID       string         `json:"deploymentId,omitempty"`
	SessionAttestation string         `json:"sessionAttestation,omitempty"`
}

// Parse decodes a bare configuration document.
func Parse(raw []byte) (*Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, apierrors.NewDecodingError("widget configuration", err)
	}
	if cfg.ID == "" {
		return nil, apierrors.NewDecodingError("widget configuration", fmt.Errorf("missing id"))
	}
	return &cfg, nil
}

// ParseEnvelope decodes a widget-configuration fetch response.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apierrors.NewDecodingError("widget configuration response", err)
	}
	if env.Configuration == nil {
		return nil, apierrors.NewDecodingError("widget configuration response", fmt.Errorf("missing widgetConfiguration"))
	}
	if env.Configuration.ID == "" {
		return nil, apierrors.NewDecodingError("widget configuration response", fmt.Errorf("missing id"))
	}
	return &env, nil
}

// lookup resolves key against props, preferring a literal match before
// descending dot-separated segments through object values.
func (c *Configuration) lookup(key string) (Value, bool) {
	if c == nil {
		return Null(), false
	}
	if prop, ok := c.Props[key]; ok {
		return prop.Value, true
	}

	segments := strings.Split(key, ".")
	prop, ok := c.Props[segments[0]]
	if !ok {
		return Null(), false
	}
	current := prop.Value
	for _, segment := range segments[1:] {
		object, ok := current.AsObject()
		if !ok {
			return Null(), false
		}
		current, ok = object[segment]
		if !ok {
			return Null(), false
		}
	}
	return current, true
}

// GetString reads a string prop; dotted keys descend object values.
func (c *Configuration) GetString(key string) (string, bool) {
	value, ok := c.lookup(key)
	if !ok {
		return "", false
	}
	return value.AsString()
}

// GetBool reads a boolean prop.
func (c *Configuration) GetBool(key string) (bool, bool) {
	value, ok := c.lookup(key)
	if !ok {
		return false, false
	}
	return value.AsBool()
}

// GetInt reads an integer prop.
func (c *Configuration) GetInt(key string) (int64, bool) {
	value, ok := c.lookup(key)
	if !ok {
		return 0, false
	}
	return value.AsInt()
}

// GetDouble reads a double prop; integers promote.
func (c *Configuration) GetDouble(key string) (float64, bool) {
	value, ok := c.lookup(key)
	if !ok {
		return 0, false
	}
	return value.AsDouble()
}

// GetArray reads an array prop.
func (c *Configuration) GetArray(key string) ([]Value, bool) {
	value, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	return value.AsArray()
}

// GetObject reads an object prop.
func (c *Configuration) GetObject(key string) (map[string]Value, bool) {
	value, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	return value.AsObject()
}

// GetTheme reads a theme prop.
func (c *Configuration) GetTheme(key string) (*Theme, bool) {
	value, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	return value.AsTheme()
}

// PageData reads an embedded element tree root.
func (c *Configuration) PageData(key string) (*Node, bool) {
	value, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	return value.AsPageData()
}
