package webapi

import (
	"context"

	"github.com/meshcast/meshcast/internal/store"
)

// RunStore provides read access to stored batch runs. *store.Store
// implements it.
type RunStore interface {
	// Runs lists the stored runs, most recent first.
	Runs(ctx context.Context) ([]store.RunInfo, error)
	// Summary aggregates one run. An unknown run has Total 0.
	Summary(ctx context.Context, runID string) (*store.RunSummary, error)
}

var _ RunStore = (*store.Store)(nil)
