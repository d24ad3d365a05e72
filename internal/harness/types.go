package harness

import "github.com/abunai/impact/internal/engine"

// Result is what running one scenario produced. Pass is false as soon as
// any expectation recorded a failure in Errors.
type Result struct {
	Pass     bool           `json:"pass"`
	Errors   []string       `json:"errors,omitempty"`
	Analysis *engine.Result `json:"analysis"`
	Report   string         `json:"report"`
}

func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failed expectation.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}
