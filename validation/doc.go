// Package validation validates configuration structs.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as a
// CONFIGURATION_ERROR whose details list the offending fields.
//
// # Struct Tag Validation
//
//	type Options struct {
//	    Format string `mapstructure:"format" validate:"oneof=json console"`
//	}
//	err := validation.Validate(opts)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.OneOf("unregistered_types", string(b), []string{"none", "scoped"})
//	err := v.Validate()
package validation
