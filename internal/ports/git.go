package ports

import "context"

// GitPort drives the git CLI for dependency acquisition.
type GitPort interface {
	// CloneShallow performs a depth-1 recursive clone of repository into
	// dir. dir must not already contain a clone.
	CloneShallow(ctx context.Context, repository string, dir string) error

	// Checkout fetches and checks out ref inside an existing clone.
	Checkout(ctx context.Context, dir string, ref string) error
}
