package compiler

import (
	"fmt"
	"strings"

	"github.com/abunai/impact/internal/model"
)

// ModelError reports the validation errors of a model that failed to
// compile.
type ModelError struct {
	Path   string
	Errors []ValidationError
}

func (e *ModelError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("model %s: %d validation error(s):\n%s", e.Path, len(e.Errors), strings.Join(msgs, "\n"))
}

// LoadModel loads and compiles the model at path.
// Returns *CompileError for unreadable sources and *ModelError when the
// model fails validation.
func LoadModel(path string) (*model.Store, error) {
	mf, err := Load(path)
	if err != nil {
		return nil, err
	}
	store, errs := Compile(mf)
	if len(errs) > 0 {
		return nil, &ModelError{Path: path, Errors: errs}
	}
	return store, nil
}
