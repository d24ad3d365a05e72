package model

import "github.com/abunai/impact/internal/ir"

// Kind is the model-level type of an architecture element.
type Kind string

const (
	KindAssemblyContext   Kind = "assembly_context"
	KindResourceContainer Kind = "resource_container"
	KindUsageScenario     Kind = "usage_scenario"
	KindInterface         Kind = "interface"
	KindSignature         Kind = "signature"
	KindConnector         Kind = "connector"

	// Behaviour (action) kinds.
	KindStart          Kind = "start"
	KindStop           Kind = "stop"
	KindEntryLevelCall Kind = "entry_level_call"
	KindExternalCall   Kind = "external_call"
	KindSetVariable    Kind = "set_variable"
	KindBranch         Kind = "branch"
	KindInternalAction Kind = "internal_action"
)

// ActionKinds lists every behaviour kind.
var ActionKinds = []Kind{
	KindStart,
	KindStop,
	KindEntryLevelCall,
	KindExternalCall,
	KindSetVariable,
	KindBranch,
	KindInternalAction,
}

// IsAction reports whether elements of this kind appear in action sequences.
func (k Kind) IsAction() bool {
	for _, a := range ActionKinds {
		if a == k {
			return true
		}
	}
	return false
}

// IsCallSite reports whether elements of this kind call a signature.
func (k Kind) IsCallSite() bool {
	return k == KindEntryLevelCall || k == KindExternalCall
}

// Element is the descriptor of one architecture element.
//
// Which reference fields are meaningful depends on Kind:
//   - assembly_context: Container (allocation)
//   - signature: Interface
//   - connector: From, To (assembly contexts), Interface
//   - actions: Scope (owning assembly context or usage scenario), Successors
//   - call sites: Signature, Target (first action of the called behaviour)
//   - external_call: Connector
type Element struct {
	ID                  ir.ElementID
	Name                string
	Kind                Kind
	Scope               ir.ElementID
	Container           ir.ElementID
	Signature           ir.ElementID
	Interface           ir.ElementID
	Connector           ir.ElementID
	From                ir.ElementID
	To                  ir.ElementID
	Target              ir.ElementID
	Successors          []ir.ElementID
	Variables           []ir.Variable
	NodeCharacteristics []ir.Characteristic
}

// Reference is one outgoing reference of an element.
type Reference struct {
	Field string
	ID    ir.ElementID
}

// References returns every non-empty reference in a fixed field order.
func (e Element) References() []Reference {
	var refs []Reference
	add := func(field string, id ir.ElementID) {
		if id != "" {
			refs = append(refs, Reference{Field: field, ID: id})
		}
	}
	add("scope", e.Scope)
	add("container", e.Container)
	add("signature", e.Signature)
	add("interface", e.Interface)
	add("connector", e.Connector)
	add("from", e.From)
	add("to", e.To)
	add("target", e.Target)
	return refs
}

// Relation names a neighbor query over the model.
type Relation int

const (
	// Successor: action → its control-flow successors (branch → transition starts).
	Successor Relation = iota
	// Calls: call site → first action of the called behaviour.
	Calls
	// ExecutedIn: assembly context → actions of its behaviours.
	ExecutedIn
	// Hosts: resource container → assembly contexts allocated to it.
	Hosts
	// ScenarioActions: usage scenario → its actions.
	ScenarioActions
	// SignatureCallSites: signature → call sites calling it.
	SignatureCallSites
	// InterfaceSignatures: interface → its signatures.
	InterfaceSignatures
	// ConnectorCallSites: connector → external calls routed over it.
	ConnectorCallSites
	// BranchStarts: branch → first action of each transition.
	BranchStarts
)

var relationNames = [...]string{
	Successor:           "successor",
	Calls:               "calls",
	ExecutedIn:          "executed_in",
	Hosts:               "hosts",
	ScenarioActions:     "scenario_actions",
	SignatureCallSites:  "signature_call_sites",
	InterfaceSignatures: "interface_signatures",
	ConnectorCallSites:  "connector_call_sites",
	BranchStarts:        "branch_starts",
}

func (r Relation) String() string {
	if r < 0 || int(r) >= len(relationNames) {
		return "unknown"
	}
	return relationNames[r]
}
