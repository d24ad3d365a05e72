// Package confidentiality evaluates action sequences against confidentiality
// constraints: forbidden data and node characteristic literals.
//
// Constraints are usually written into assumption descriptions as lines of
// the form
//
//	DataConstraints: Personal, Health
//	NodeConstraints: EdgeNonEU
//
// An element violates the constraint when one of its data literals is a
// forbidden data literal or one of its node literals is a forbidden node
// literal. Any other line in a description is commentary.
package confidentiality
