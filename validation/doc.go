// Package validation checks configuration sections and compensation CSV
// rows, returning the shared INVALID_INPUT AppError.
//
// Struct tags go through go-playground/validator:
//
//	type Row struct {
//	    WorkerID string  `json:"worker_id" validate:"required,alphanum"`
//	    Bonus    float64 `json:"bonus" validate:"gte=0"`
//	}
//	err := validation.Validate(row)
//
// Rules that depend on other state are collected programmatically:
//
//	v := validation.New()
//	v.Range("server.port", cfg.Port, 1, 65535)
//	v.OneOf("store.mode", cfg.Mode, []string{"pooled", "single_use"})
//	return v.Validate()
package validation
