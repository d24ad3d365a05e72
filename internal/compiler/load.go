package compiler

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// CompileError represents a fatal problem reading a model source.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a model from path. Directories and .cue files are loaded as
// CUE; .yaml, .yml and .json files as YAML.
func Load(path string) (*ModelFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("model not found: %w", err)
	}
	if info.IsDir() {
		return LoadCUE(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return LoadCUE(path)
	case ".yaml", ".yml", ".json":
		return LoadYAML(path)
	default:
		return nil, &CompileError{Field: "path", Message: fmt.Sprintf("unsupported model file extension %q", filepath.Ext(path))}
	}
}

// LoadYAML reads a YAML model file. Unknown fields are rejected.
// An empty name defaults to the file name without extension.
func LoadYAML(path string) (*ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	mf, err := ParseYAML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if mf.Name == "" {
		mf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return mf, nil
}

// ParseYAML decodes a YAML model from r.
func ParseYAML(r io.Reader) (*ModelFile, error) {
	var mf ModelFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&mf); err != nil {
		if err == io.EOF {
			return nil, &CompileError{Field: "model", Message: "empty model file"}
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &mf, nil
}

// LoadCUE loads a CUE model from a directory or a single .cue file.
func LoadCUE(path string) (*ModelFile, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving model path: %w", err)
	}
	args := []string{"."}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir, args = filepath.Dir(dir), []string{"./" + filepath.Base(dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &CompileError{Field: "cue", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	mf, err := DecodeCUE(value)
	if err != nil {
		return nil, err
	}
	if mf.Name == "" {
		mf.Name = filepath.Base(strings.TrimSuffix(path, filepath.Ext(path)))
	}
	return mf, nil
}

// DecodeCUE decodes a model from a CUE value. A top-level "model" field is
// used when present, so a CUE package may carry other definitions beside it.
func DecodeCUE(v cue.Value) (*ModelFile, error) {
	if m := v.LookupPath(cue.ParsePath("model")); m.Exists() {
		v = m
	}
	var mf ModelFile
	if err := v.Decode(&mf); err != nil {
		return nil, formatCUEError(err)
	}
	return &mf, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return &CompileError{Field: "cue", Message: first.Error()}
}
