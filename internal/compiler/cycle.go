package compiler

import (
	"fmt"
	"strings"

	"github.com/abunai/impact/internal/model"
)

// CycleWarning reports one cycle among actions. Loops and recursive calls
// are legal architecture; sequence finding and propagation both terminate
// on them, so they are surfaced as warnings only.
type CycleWarning struct {
	Path    []string `json:"path"` // first node repeated at the end
	Message string   `json:"message"`
	Level   string   `json:"level"`
}

// AnalyzeCycles returns one warning per strongly connected component of the
// action graph (Successor plus Calls edges) that contains a cycle. Results
// follow element declaration order.
func AnalyzeCycles(store *model.Store) []CycleWarning {
	g := newFlowGraph(store)

	warnings := []CycleWarning{}
	for _, comp := range g.components() {
		if g.cyclic(comp) {
			warnings = append(warnings, g.warning(comp))
		}
	}
	return warnings
}

type flowEdge struct {
	to   string
	call bool
}

type flowGraph struct {
	nodes []string
	out   map[string][]flowEdge
}

func newFlowGraph(store *model.Store) *flowGraph {
	g := &flowGraph{out: make(map[string][]flowEdge)}
	for _, e := range store.Elements() {
		if !e.Kind.IsAction() {
			continue
		}
		id := string(e.ID)
		g.nodes = append(g.nodes, id)
		for _, next := range store.Neighbors(e.ID, model.Successor) {
			g.out[id] = append(g.out[id], flowEdge{to: string(next)})
		}
		for _, callee := range store.Neighbors(e.ID, model.Calls) {
			g.out[id] = append(g.out[id], flowEdge{to: string(callee), call: true})
		}
	}
	return g
}

// cyclic reports whether comp has more than one node or a self edge.
func (g *flowGraph) cyclic(comp []string) bool {
	if len(comp) > 1 {
		return true
	}
	for _, e := range g.out[comp[0]] {
		if e.to == comp[0] {
			return true
		}
	}
	return false
}

func (g *flowGraph) isCall(from, to string) bool {
	for _, e := range g.out[from] {
		if e.to == to && e.call {
			return true
		}
	}
	return false
}

func (g *flowGraph) warning(comp []string) CycleWarning {
	path := g.cyclePath(comp)

	kind := "Loop"
	for i := 1; i < len(path); i++ {
		if g.isCall(path[i-1], path[i]) {
			kind = "Recursive call"
			break
		}
	}
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("%s detected: %s", kind, strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// cyclePath walks from the component's first node along edges that stay
// inside the component and have not been visited, stopping once it is back
// at the start or stuck.
func (g *flowGraph) cyclePath(comp []string) []string {
	start := comp[0]
	if len(comp) == 1 {
		return []string{start, start}
	}

	inside := make(map[string]bool, len(comp))
	for _, n := range comp {
		inside[n] = true
	}
	seen := map[string]bool{start: true}
	path := []string{start}

	for cur := start; ; {
		next, ok := "", false
		for _, e := range g.out[cur] {
			if inside[e.to] && (e.to == start || !seen[e.to]) {
				next, ok = e.to, true
				break
			}
		}
		if !ok {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		seen[next] = true
		cur = next
	}
}

// components returns the strongly connected components (Tarjan). Each
// component lists its nodes in discovery order, so its root comes first.
func (g *flowGraph) components() [][]string {
	t := &tarjan{
		g:     g,
		index: make(map[string]int, len(g.nodes)),
		low:   make(map[string]int, len(g.nodes)),
		onStk: make(map[string]bool, len(g.nodes)),
	}
	for _, n := range g.nodes {
		if _, done := t.index[n]; !done {
			t.visit(n)
		}
	}
	return t.out
}

type tarjan struct {
	g     *flowGraph
	next  int
	index map[string]int
	low   map[string]int
	onStk map[string]bool
	stack []string
	out   [][]string
}

func (t *tarjan) visit(v string) {
	t.index[v], t.low[v] = t.next, t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStk[v] = true

	for _, e := range t.g.out[v] {
		w := e.to
		if _, done := t.index[w]; !done {
			t.visit(w)
			t.low[v] = min(t.low[v], t.low[w])
		} else if t.onStk[w] {
			t.low[v] = min(t.low[v], t.index[w])
		}
	}

	if t.low[v] != t.index[v] {
		return
	}
	// v is a root: everything above it on the stack forms its component.
	i := len(t.stack) - 1
	for t.stack[i] != v {
		i--
	}
	comp := append([]string(nil), t.stack[i:]...)
	for _, w := range comp {
		t.onStk[w] = false
	}
	t.stack = t.stack[:i]
	t.out = append(t.out, comp)
}
