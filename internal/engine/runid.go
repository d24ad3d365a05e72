package engine

import "github.com/google/uuid"

// RunIDGenerator produces the id stamped on each analysis run.
// Tests substitute testutil.FixedRunIDGenerator.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator is the default generator. UUIDv7 ids carry their creation
// time in the high bits, so the run store lists them in start order.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
