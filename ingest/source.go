package ingest

import (
	"context"

	"github.com/kantor-lab/kantorfx/scrape"
)

// Source is a single bureau document source
type Source interface {
	// Name returns the bureau's display name, unique among
	// registered sources
	Name() string

	// Fetch downloads and extracts the bureau's current card and quotes
	Fetch(context.Context) (*scrape.Snapshot, error)
}
