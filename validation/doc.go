// Package validation provides input validation for streamkit
// configuration and stage parameters.
//
// It supports both struct tag validation (using the validator library)
// and programmatic validation with error collection. Struct tag
// validation is recommended for application config structs.
//
// # Struct Tag Validation
//
//	type ChainConfig struct {
//	    Steps    int     `validate:"required,min=1"`
//	    StepSize float64 `validate:"required,gt=0"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Positive("step_size", cfg.StepSize)
//	v.Range("thin", cfg.Thin, 1, 1000)
//	err := v.Validate()
//
// Both paths report failures as *fault.Fault with CodeInvalidConfig and
// a per-field breakdown in Details.
package validation
