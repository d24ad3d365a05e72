// Package report renders analysis results as text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/abunai/impact/internal/engine"
	"github.com/abunai/impact/internal/ir"
)

// Options controls which sections Render writes.
type Options struct {
	// Title is printed in the header. Defaults to the model name.
	Title string

	// NewLinePerElement puts each sequence element on its own line instead
	// of joining them with ", ".
	NewLinePerElement bool

	// Details lists every uncertainty source with the elements it affects.
	Details bool

	// Overview lists all affected elements and the raw impact set.
	Overview bool
}

// FormatSequence renders a sequence as "<index>: <elements>".
func FormatSequence(index int, seq ir.ActionSequence, newline bool) string {
	return FormatElements(index, seq.Elements, newline)
}

// FormatElements renders elements as "<index>: <elements>", joined by "\n"
// or ", ".
func FormatElements(index int, elements []ir.FlowElement, newline bool) string {
	sep := ", "
	if newline {
		sep = "\n"
	}
	parts := make([]string, len(elements))
	for i, e := range elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%d: %s", index, strings.Join(parts, sep))
}

// Render writes the text report of res to w.
func Render(w io.Writer, res *engine.Result, opts Options) error {
	p := &printer{w: w}
	names := elementNames(res)

	title := opts.Title
	if title == "" {
		title = res.Model
	}
	p.printf("Results of: %s\n", title)

	if opts.Details {
		p.printf("\nUncertainty sources (%d):\n", len(res.Sources))
		for _, src := range res.Sources {
			p.printf("%s\n", src)
			for _, imp := range res.Impacts {
				if imp.Source.ID == src.ID {
					p.printf("\t-> %s\n", names.of(imp.Affected))
				}
			}
		}
		if len(res.Skipped) > 0 {
			skipped := make([]string, len(res.Skipped))
			for i, id := range res.Skipped {
				skipped[i] = string(id)
			}
			p.printf("\nSkipped entities (%d): %s\n", len(skipped), strings.Join(skipped, ", "))
		}
	}

	if opts.Overview {
		p.printf("\nAll affected elements (%d):\n", len(res.AllAffected))
		for _, id := range res.AllAffected {
			p.printf("%s\n", names.of(id))
		}
		p.printf("\nImpacted data flow sections (%d):\n", len(res.ImpactSet))
		for _, s := range res.ImpactSet {
			p.printf("%s\n", FormatSequence(s.Index, s.Sequence, opts.NewLinePerElement))
		}
	}

	p.printf("\nDistinct Impact set (%d):\n", len(res.DistinctImpactSet))
	for _, s := range res.DistinctImpactSet {
		p.printf("%s\n", FormatSequence(s.Index, s.Sequence, opts.NewLinePerElement))
	}

	p.printf("\nConfidentiality Violations (%d):\n", len(res.Violations))
	for _, v := range res.Violations {
		p.printf("%s\n", FormatElements(v.Index, v.Elements, opts.NewLinePerElement))
	}

	return p.err
}

// String renders res with opts.
func String(res *engine.Result, opts Options) string {
	var b strings.Builder
	_ = Render(&b, res, opts)
	return b.String()
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// nameIndex maps element ids to their rendering in candidate sequences.
type nameIndex map[ir.ElementID]string

func elementNames(res *engine.Result) nameIndex {
	idx := make(nameIndex)
	for _, seq := range res.Candidates {
		for _, e := range seq.Elements {
			if _, ok := idx[e.ID]; !ok {
				idx[e.ID] = e.String()
			}
		}
	}
	return idx
}

func (n nameIndex) of(id ir.ElementID) string {
	if s, ok := n[id]; ok {
		return s
	}
	return string(id)
}
