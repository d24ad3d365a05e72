package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/abunai/impact/internal/engine"
	"github.com/abunai/impact/internal/ir"
)

// Expectation names used in AssertionError.Type.
const (
	ExpectAffected    = "affected"
	ExpectNotAffected = "not_affected"
	ExpectImpacted    = "impacted"
	ExpectDistinct    = "distinct"
	ExpectViolations  = "violations"
	ExpectSkipped     = "skipped"
)

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Type     string // Expectation name
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// Check evaluates every expectation against an analysis result and returns
// the failures in expectation order.
func Check(res *engine.Result, exp Expectations) []error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if exp.Affected != nil {
		add(checkAffected(res, exp.Affected))
	}
	if exp.NotAffected != nil {
		add(checkNotAffected(res, exp.NotAffected))
	}
	if exp.Impacted != nil {
		add(checkIndices(ExpectImpacted, res.ImpactSet, exp.Impacted))
	}
	if exp.Distinct != nil {
		add(checkIndices(ExpectDistinct, res.DistinctImpactSet, exp.Distinct))
	}
	if exp.Violations != nil {
		add(checkViolations(res.Violations, exp.Violations))
	}
	if exp.Skipped != nil {
		add(checkSkipped(res.Skipped, exp.Skipped))
	}
	return errs
}

// checkAffected requires every listed element to be affected.
func checkAffected(res *engine.Result, want []string) error {
	affected := affectedSet(res)
	var missing []string
	for _, id := range want {
		if !affected[ir.ElementID(id)] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     ExpectAffected,
		Expected: fmt.Sprintf("affected elements include %v", want),
		Actual:   fmt.Sprintf("missing %v (affected: %v)", missing, res.AllAffected),
	}
}

// checkNotAffected requires none of the listed elements to be affected.
func checkNotAffected(res *engine.Result, unwanted []string) error {
	affected := affectedSet(res)
	var found []string
	for _, id := range unwanted {
		if affected[ir.ElementID(id)] {
			found = append(found, id)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     ExpectNotAffected,
		Expected: fmt.Sprintf("none of %v affected", unwanted),
		Actual:   fmt.Sprintf("affected: %v", found),
	}
}

// checkIndices compares the candidate indices of an impact set, in order.
func checkIndices(name string, set []engine.ImpactedSequence, want []int) error {
	got := make([]int, len(set))
	for i, s := range set {
		got[i] = s.Index
	}
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     name,
		Expected: fmt.Sprintf("sequence indices %v", want),
		Actual:   fmt.Sprintf("sequence indices %v", got),
	}
}

// checkViolations compares violating element ids per sequence index.
func checkViolations(got []engine.SequenceViolation, want map[int][]string) error {
	gotMap := make(map[int][]string, len(got))
	for _, v := range got {
		ids := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			ids[i] = string(e.ID)
		}
		gotMap[v.Index] = ids
	}

	equal := len(gotMap) == len(want)
	if equal {
		for idx, ids := range want {
			if !slices.Equal(gotMap[idx], ids) {
				equal = false
				break
			}
		}
	}
	if equal {
		return nil
	}
	return &AssertionError{
		Type:     ExpectViolations,
		Expected: formatViolations(want),
		Actual:   formatViolations(gotMap),
	}
}

// checkSkipped compares skipped entity ids, in order.
func checkSkipped(got []ir.ElementID, want []string) error {
	ids := make([]string, len(got))
	for i, id := range got {
		ids[i] = string(id)
	}
	if slices.Equal(ids, want) {
		return nil
	}
	return &AssertionError{
		Type:     ExpectSkipped,
		Expected: fmt.Sprintf("skipped %v", want),
		Actual:   fmt.Sprintf("skipped %v", ids),
	}
}

func affectedSet(res *engine.Result) map[ir.ElementID]bool {
	set := make(map[ir.ElementID]bool, len(res.AllAffected))
	for _, id := range res.AllAffected {
		set[id] = true
	}
	return set
}

// formatViolations renders a violation map with sorted indices.
func formatViolations(m map[int][]string) string {
	if len(m) == 0 {
		return "no violations"
	}
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = fmt.Sprintf("%d: %v", n, m[n])
	}
	return strings.Join(parts, "; ")
}
