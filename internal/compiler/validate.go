package compiler

import (
	"fmt"
	"strings"

	"github.com/abunai/impact/internal/model"
)

// Validation error codes (E200-E299)
const (
	ErrMissingID        = "E200" // element without id
	ErrDuplicateID      = "E201" // id declared twice
	ErrDanglingRef      = "E202" // reference to a missing or mistyped element
	ErrUnknownKind      = "E203" // unknown action kind
	ErrCallNoSignature  = "E204" // call site without signature
	ErrNoContainer      = "E205" // assembly not allocated to a container
	ErrEmptyScenario    = "E206" // usage scenario without actions
	ErrBranchNoBranches = "E207" // branch without transitions
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a model file against the schema rules.
// Returns all errors found (does not fail-fast). References are checked by
// Compile, once every element is known.
func Validate(mf *ModelFile) []ValidationError {
	v := &validator{seen: make(map[string]string)}

	for i, c := range mf.Containers {
		v.id(fmt.Sprintf("containers[%d]", i), c.ID)
	}
	for i, a := range mf.Assemblies {
		field := fmt.Sprintf("assemblies[%d]", i)
		v.id(field, a.ID)
		if strings.TrimSpace(a.Container) == "" {
			v.add(field+".container", fmt.Sprintf("assembly %q must be allocated to a container", a.ID), ErrNoContainer)
		}
	}
	for i, in := range mf.Interfaces {
		field := fmt.Sprintf("interfaces[%d]", i)
		v.id(field, in.ID)
		for j, s := range in.Signatures {
			v.id(fmt.Sprintf("%s.signatures[%d]", field, j), s.ID)
		}
	}
	for i, c := range mf.Connectors {
		v.id(fmt.Sprintf("connectors[%d]", i), c.ID)
	}
	for i, s := range mf.Scenarios {
		field := fmt.Sprintf("scenarios[%d]", i)
		v.id(field, s.ID)
		if len(s.Actions) == 0 {
			v.add(field+".actions", fmt.Sprintf("scenario %q has no actions", s.ID), ErrEmptyScenario)
		}
		v.actions(field, s.Actions)
	}
	for i, b := range mf.Behaviors {
		v.actions(fmt.Sprintf("behaviors[%d]", i), b.Actions)
	}

	return v.errs
}

type validator struct {
	errs []ValidationError
	seen map[string]string // id → field that declared it
}

func (v *validator) add(field, message, code string) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: message, Code: code})
}

func (v *validator) id(field, id string) {
	if strings.TrimSpace(id) == "" {
		v.add(field+".id", "id is required", ErrMissingID)
		return
	}
	if first, dup := v.seen[id]; dup {
		v.add(field+".id", fmt.Sprintf("duplicate id %q (first declared at %s)", id, first), ErrDuplicateID)
		return
	}
	v.seen[id] = field
}

func (v *validator) actions(scope string, actions []ActionDecl) {
	for i, a := range actions {
		field := fmt.Sprintf("%s.actions[%d]", scope, i)
		v.id(field, a.ID)

		kind := model.Kind(a.Kind)
		if !kind.IsAction() {
			v.add(field+".kind", fmt.Sprintf("unknown action kind %q", a.Kind), ErrUnknownKind)
			continue
		}
		if kind.IsCallSite() && strings.TrimSpace(a.Signature) == "" {
			v.add(field+".signature", fmt.Sprintf("%s %q must name the called signature", a.Kind, a.ID), ErrCallNoSignature)
		}
		if kind == model.KindBranch && len(a.Next) == 0 {
			v.add(field+".next", fmt.Sprintf("branch %q has no transitions", a.ID), ErrBranchNoBranches)
		}
	}
}
