package holdings

import "context"

// Resolver maps a security identifier and venue to a tradable ticker. The
// figi package implements it over the OpenFIGI mapping API. A resolver
// failure is never fatal to the ledger; callers fall back to the identifier
// unchanged.
type Resolver interface {
	Resolve(ctx context.Context, identifier, venue string) (string, error)
}

// PassthroughResolver returns every identifier unchanged.
type PassthroughResolver struct{}

func (PassthroughResolver) Resolve(_ context.Context, identifier, _ string) (string, error) {
	return identifier, nil
}
