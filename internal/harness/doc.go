// Package harness runs analysis scenarios as executable tests.
//
// A scenario names a model file, the assumptions to analyze and the
// expected outcome. The harness compiles the model, runs the analysis with a
// fixed run id and clock, and checks the expectations.
//
// # Scenario Format
//
//	name: warnapp_intercepted
//	description: "Intercepted database link leaks personal data"
//	model: ../models/warnapp.yaml
//	title: Scenario 1
//	assumptions:
//	  - id: a1
//	    description: "DataConstraints: Personal"
//	    entities: [con_store]
//	expect:
//	  affected: [s_save, d_start]
//	  not_affected: [m_check]
//	  impacted: [0]
//	  distinct: [0]
//	  violations:
//	    0: [a_token, d_write]
//
// The model path is resolved relative to the scenario file.
//
// # Expectations
//
// An omitted expectation is not checked. An empty list is checked and
// requires the corresponding set to be empty.
//
//   - affected: Elements that must be affected by some source
//   - not_affected: Elements that must not be affected
//   - impacted: Candidate indices of the raw impact set, in order
//   - distinct: Candidate indices of the distinct impact set, in order
//   - violations: Violating element ids per candidate index
//   - skipped: Entity ids that could not be classified
//
// # Golden Reports
//
// RunWithGolden compares the rendered text report against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
