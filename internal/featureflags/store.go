package featureflags

import "context"

// Store persists flag overrides. A key the store has never seen keeps its
// default value.
type Store interface {
	// Load returns every stored override keyed by flag key.
	Load(ctx context.Context) (map[string]*Flag, error)

	// Save upserts flags in one transaction.
	Save(ctx context.Context, flags []*Flag) error
}
