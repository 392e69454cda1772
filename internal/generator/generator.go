package generator

import "context"

// Generator is the contract every command-generation backend implements:
// the static matcher, the embedded inference engine and each remote
// variant. Generate must respect ctx's deadline; IsAvailable must be cheap
// and must never panic.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Command, error)
	IsAvailable(ctx context.Context) bool
	Info() Info
}
