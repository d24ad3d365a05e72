package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abunai/impact/internal/ir"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeAssumptions = "E003" // Assumption file unreadable or malformed
	ErrCodeModel       = "E004" // Model could not be loaded or compiled
	ErrCodeAnalysis    = "E005" // Analysis run failed
	ErrCodeDatabase    = "E006" // Run store error
	ErrCodeRunNotFound = "E007" // Unknown run id
	ErrCodeTestFailed  = "E008" // Scenario failures
	ErrCodeViolations  = "E009" // Analysis found confidentiality violations
)

// assumptionFile is the document form of an assumption file. A bare list of
// assumptions is accepted as well.
type assumptionFile struct {
	Assumptions []*ir.Assumption `yaml:"assumptions"`
}

// LoadAssumptions reads assumptions from a YAML file. Unknown
// fields are rejected. Every assumption needs an id and at least one
// affected entity.
func LoadAssumptions(path string) ([]*ir.Assumption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assumptions: %w", err)
	}

	assumptions, err := parseAssumptions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	seen := make(map[string]bool, len(assumptions))
	for i, a := range assumptions {
		if a == nil {
			return nil, fmt.Errorf("%s: assumptions[%d] is empty", path, i)
		}
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("%s: assumptions[%d].id is required", path, i)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("%s: duplicate assumption id %q", path, a.ID)
		}
		seen[a.ID] = true
		if len(a.AffectedEntities) == 0 {
			return nil, fmt.Errorf("%s: assumption %q has no affected_entities", path, a.ID)
		}
	}
	return assumptions, nil
}

func parseAssumptions(data []byte) ([]*ir.Assumption, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*ir.Assumption{}, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse assumptions: %w", err)
	}
	isList := len(root.Content) > 0 && root.Content[0].Kind == yaml.SequenceNode

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if isList {
		var list []*ir.Assumption
		if err := dec.Decode(&list); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse assumptions: %w", err)
		}
		if list == nil {
			list = []*ir.Assumption{}
		}
		return list, nil
	}

	var file assumptionFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse assumptions: %w", err)
	}
	if file.Assumptions == nil {
		file.Assumptions = []*ir.Assumption{}
	}
	return file.Assumptions, nil
}
