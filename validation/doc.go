// Package validation checks launch requests and configuration before they
// reach the launcher.
//
// Struct tags cover HTTP request bodies:
//
//	type launchBody struct {
//	    Command string   `json:"command" validate:"required,max=4096"`
//	    Env     []string `json:"env" validate:"max=256,dive,envvar"`
//	}
//	err := validation.Validate(body)
//
// The collecting Validator covers programmatic checks:
//
//	err := validation.New().
//	    Required("command", cmd).
//	    EnvEntries("env", env).
//	    Err()
//
// Both report an INVALID_INPUT AppError with per-field details.
package validation
