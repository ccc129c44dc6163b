package jsonschema

import "net/url"

// Schema is a typed JSON Schema document for declaring types in Go code.
// It marshals to the JSON a registry compiles; fields cover the keywords type
// documents commonly use and can be extended incrementally.
type Schema struct {
	SchemaURI   string `json:"$schema,omitempty"`
	ID          string `json:"$id,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Core
	Type    string `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Default any    `json:"default,omitempty"`
	Const   any    `json:"const,omitempty"`
	Enum    []any  `json:"enum,omitempty"`

	// Number
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Composition
	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`
}

// Object returns an object schema with the given properties.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: props, Required: required}
}

// String returns a string schema.
func String() *Schema { return &Schema{Type: "string"} }

// Number returns a number schema.
func Number() *Schema { return &Schema{Type: "number"} }

// Array returns an array schema with the given item schema.
func Array(items *Schema) *Schema { return &Schema{Type: "array", Items: items} }

// RefTo returns a schema referencing another registered type by name. The
// name is escaped, so names with spaces or '#' resolve to the type itself.
func RefTo(typeName string) *Schema { return &Schema{Ref: url.PathEscape(typeName) + ".json"} }

// Ptr returns a pointer to v, for the optional numeric bounds.
func Ptr[T any](v T) *T { return &v }
