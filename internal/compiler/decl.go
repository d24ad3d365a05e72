// Package compiler turns architecture descriptions (YAML or CUE) into an
// indexed model store, validating them and reporting control-flow cycles.
package compiler

// ModelFile is the on-disk architecture description.
//
// YAML and CUE sources share this schema; yaml tags drive the YAML decoder
// and json tags drive cue.Value.Decode.
type ModelFile struct {
	Name       string          `yaml:"name" json:"name"`
	Containers []ContainerDecl `yaml:"containers,omitempty" json:"containers,omitempty"`
	Assemblies []AssemblyDecl  `yaml:"assemblies,omitempty" json:"assemblies,omitempty"`
	Interfaces []InterfaceDecl `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	Connectors []ConnectorDecl `yaml:"connectors,omitempty" json:"connectors,omitempty"`
	Scenarios  []ScenarioDecl  `yaml:"scenarios,omitempty" json:"scenarios,omitempty"`
	Behaviors  []BehaviorDecl  `yaml:"behaviors,omitempty" json:"behaviors,omitempty"`
}

// ContainerDecl declares a resource container (deployment node).
type ContainerDecl struct {
	ID                  string   `yaml:"id" json:"id"`
	Name                string   `yaml:"name,omitempty" json:"name,omitempty"`
	NodeCharacteristics []string `yaml:"node_characteristics,omitempty" json:"node_characteristics,omitempty"`
}

// AssemblyDecl declares a component instance allocated to a container.
type AssemblyDecl struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	Container string `yaml:"container" json:"container"`
}

// InterfaceDecl declares an interface and its signatures.
type InterfaceDecl struct {
	ID         string          `yaml:"id" json:"id"`
	Name       string          `yaml:"name,omitempty" json:"name,omitempty"`
	Signatures []SignatureDecl `yaml:"signatures,omitempty" json:"signatures,omitempty"`
}

// SignatureDecl declares one operation of an interface.
type SignatureDecl struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// ConnectorDecl declares a binding from a requiring to a providing assembly.
type ConnectorDecl struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	From      string `yaml:"from" json:"from"`
	To        string `yaml:"to" json:"to"`
	Interface string `yaml:"interface" json:"interface"`
}

// ScenarioDecl declares a usage scenario and the actions of its actor.
type ScenarioDecl struct {
	ID                  string       `yaml:"id" json:"id"`
	Name                string       `yaml:"name,omitempty" json:"name,omitempty"`
	NodeCharacteristics []string     `yaml:"node_characteristics,omitempty" json:"node_characteristics,omitempty"`
	Actions             []ActionDecl `yaml:"actions" json:"actions"`
}

// BehaviorDecl declares the behaviour an assembly executes when one of its
// provided signatures is called.
type BehaviorDecl struct {
	Assembly  string       `yaml:"assembly" json:"assembly"`
	Signature string       `yaml:"signature,omitempty" json:"signature,omitempty"`
	Actions   []ActionDecl `yaml:"actions" json:"actions"`
}

// ActionDecl declares one behaviour step.
//
// Connector and Target are optional on call sites: when omitted they are
// inferred from the calling assembly and the called signature.
type ActionDecl struct {
	ID        string         `yaml:"id" json:"id"`
	Name      string         `yaml:"name,omitempty" json:"name,omitempty"`
	Kind      string         `yaml:"kind" json:"kind"`
	Next      []string       `yaml:"next,omitempty" json:"next,omitempty"`
	Signature string         `yaml:"signature,omitempty" json:"signature,omitempty"`
	Connector string         `yaml:"connector,omitempty" json:"connector,omitempty"`
	Target    string         `yaml:"target,omitempty" json:"target,omitempty"`
	Variables []VariableDecl `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// VariableDecl declares a data-flow variable and its characteristic literals.
type VariableDecl struct {
	Name            string   `yaml:"name" json:"name"`
	Characteristics []string `yaml:"characteristics,omitempty" json:"characteristics,omitempty"`
}
