package stripemodel

import "fmt"

// SchemaError reports a remote payload that violates the documented shape for
// its entity kind: a required field missing, a wrong primitive type, or an
// enum value outside the closed set. Optional/null fields never produce one.
type SchemaError struct {
	Entity string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("stripe %s payload: field %q: %s", e.Entity, e.Field, e.Reason)
}

func schemaErr(entity, field, reason string) *SchemaError {
	return &SchemaError{Entity: entity, Field: field, Reason: reason}
}

func missingField(entity, field string) *SchemaError {
	return schemaErr(entity, field, "required field missing or null")
}

func invalidEnum(entity, field, value string) *SchemaError {
	return schemaErr(entity, field, fmt.Sprintf("unrecognized value %q", value))
}
