package compiler

import (
	"errors"
	"fmt"

	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
)

// Compile validates a model file and builds the indexed model store.
//
// Call sites without an explicit target are bound to the behaviour that
// implements their signature: external calls follow the connector from their
// assembly (inferred when exactly one connector of the signature's interface
// leaves it), entry-level calls bind to the first behaviour implementing the
// signature. Call sites that cannot be bound stay unbound; the finder then
// treats them as plain actions.
//
// Returns the store or every validation error found.
func Compile(mf *ModelFile) (*model.Store, []ValidationError) {
	if errs := Validate(mf); len(errs) > 0 {
		return nil, errs
	}

	c := newCompilation(mf)
	b := model.NewBuilder(mf.Name)

	for _, cd := range mf.Containers {
		c.add(b, model.Element{
			ID:                  ir.ElementID(cd.ID),
			Name:                cd.Name,
			Kind:                model.KindResourceContainer,
			NodeCharacteristics: characteristics(cd.NodeCharacteristics),
		})
	}
	for _, ad := range mf.Assemblies {
		c.add(b, model.Element{
			ID:        ir.ElementID(ad.ID),
			Name:      ad.Name,
			Kind:      model.KindAssemblyContext,
			Container: ir.ElementID(ad.Container),
		})
	}
	for _, in := range mf.Interfaces {
		c.add(b, model.Element{ID: ir.ElementID(in.ID), Name: in.Name, Kind: model.KindInterface})
		for _, sd := range in.Signatures {
			c.add(b, model.Element{
				ID:        ir.ElementID(sd.ID),
				Name:      sd.Name,
				Kind:      model.KindSignature,
				Interface: ir.ElementID(in.ID),
			})
		}
	}
	for _, cd := range mf.Connectors {
		c.add(b, model.Element{
			ID:        ir.ElementID(cd.ID),
			Name:      cd.Name,
			Kind:      model.KindConnector,
			From:      ir.ElementID(cd.From),
			To:        ir.ElementID(cd.To),
			Interface: ir.ElementID(cd.Interface),
		})
	}
	for _, sd := range mf.Scenarios {
		c.add(b, model.Element{
			ID:                  ir.ElementID(sd.ID),
			Name:                sd.Name,
			Kind:                model.KindUsageScenario,
			NodeCharacteristics: characteristics(sd.NodeCharacteristics),
		})
		for _, a := range sd.Actions {
			c.add(b, c.action(sd.ID, a))
		}
	}
	for _, bd := range mf.Behaviors {
		for _, a := range bd.Actions {
			c.add(b, c.action(bd.Assembly, a))
		}
	}

	if len(c.errs) > 0 {
		return nil, c.errs
	}

	store, err := b.Build()
	if err != nil {
		var refErr *model.ReferenceError
		if errors.As(err, &refErr) {
			return nil, []ValidationError{{
				Field:   fmt.Sprintf("%s.%s", refErr.Element, refErr.Field),
				Message: refErr.Error(),
				Code:    ErrDanglingRef,
			}}
		}
		return nil, []ValidationError{{Field: "model", Message: err.Error(), Code: ErrDanglingRef}}
	}
	return store, nil
}

// compilation holds the lookup tables used to bind call sites.
type compilation struct {
	errs []ValidationError

	signatureInterface map[string]string
	// behaviours keyed by "assembly\x00signature" → entry action id
	provided map[string]string
	// signature → entry action of the first behaviour implementing it
	firstProvider map[string]string
	connectors    []ConnectorDecl
}

func newCompilation(mf *ModelFile) *compilation {
	c := &compilation{
		signatureInterface: make(map[string]string),
		provided:           make(map[string]string),
		firstProvider:      make(map[string]string),
		connectors:         mf.Connectors,
	}
	for _, in := range mf.Interfaces {
		for _, s := range in.Signatures {
			c.signatureInterface[s.ID] = in.ID
		}
	}
	for _, bd := range mf.Behaviors {
		if bd.Signature == "" {
			continue
		}
		entry := entryOf(bd.Actions)
		if entry == "" {
			continue
		}
		key := bd.Assembly + "\x00" + bd.Signature
		if _, ok := c.provided[key]; !ok {
			c.provided[key] = entry
		}
		if _, ok := c.firstProvider[bd.Signature]; !ok {
			c.firstProvider[bd.Signature] = entry
		}
	}
	return c
}

func (c *compilation) add(b *model.Builder, e model.Element) {
	if err := b.Add(e); err != nil {
		c.errs = append(c.errs, ValidationError{Field: string(e.ID), Message: err.Error(), Code: ErrDuplicateID})
	}
}

func (c *compilation) action(scope string, a ActionDecl) model.Element {
	e := model.Element{
		ID:        ir.ElementID(a.ID),
		Name:      a.Name,
		Kind:      model.Kind(a.Kind),
		Scope:     ir.ElementID(scope),
		Signature: ir.ElementID(a.Signature),
		Connector: ir.ElementID(a.Connector),
		Target:    ir.ElementID(a.Target),
	}
	for _, n := range a.Next {
		e.Successors = append(e.Successors, ir.ElementID(n))
	}
	for _, v := range a.Variables {
		e.Variables = append(e.Variables, ir.Variable{Name: v.Name, Characteristics: characteristics(v.Characteristics)})
	}

	switch e.Kind {
	case model.KindExternalCall:
		if e.Connector == "" {
			e.Connector = ir.ElementID(c.inferConnector(scope, a.Signature))
		}
		if e.Target == "" && e.Connector != "" {
			if to := c.connectorTarget(string(e.Connector)); to != "" {
				e.Target = ir.ElementID(c.provided[to+"\x00"+a.Signature])
			}
		}
	case model.KindEntryLevelCall:
		if e.Target == "" {
			e.Target = ir.ElementID(c.firstProvider[a.Signature])
		}
	}
	return e
}

// inferConnector returns the single connector leaving assembly whose
// interface declares signature, or "" when there is none or more than one.
func (c *compilation) inferConnector(assembly, signature string) string {
	iface := c.signatureInterface[signature]
	if iface == "" {
		return ""
	}
	var found string
	for _, cd := range c.connectors {
		if cd.From != assembly || cd.Interface != iface {
			continue
		}
		if found != "" {
			return ""
		}
		found = cd.ID
	}
	return found
}

func (c *compilation) connectorTarget(id string) string {
	for _, cd := range c.connectors {
		if cd.ID == id {
			return cd.To
		}
	}
	return ""
}

// entryOf returns the start action of a behaviour, or its first action.
func entryOf(actions []ActionDecl) string {
	for _, a := range actions {
		if model.Kind(a.Kind) == model.KindStart {
			return a.ID
		}
	}
	if len(actions) == 0 {
		return ""
	}
	return actions[0].ID
}

func characteristics(literals []string) []ir.Characteristic {
	if len(literals) == 0 {
		return nil
	}
	out := make([]ir.Characteristic, 0, len(literals))
	for _, l := range literals {
		out = append(out, ir.Characteristic{Literal: l})
	}
	return out
}
