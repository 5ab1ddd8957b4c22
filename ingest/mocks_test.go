package ingest

import (
	"context"

	"github.com/kantor-lab/kantorfx/geocode"
	"github.com/kantor-lab/kantorfx/scrape"
)

type (
	nameDelegate  func() string
	fetchDelegate func(context.Context) (*scrape.Snapshot, error)
)

type mockSource struct {
	nameFn  nameDelegate
	fetchFn fetchDelegate
}

func (m *mockSource) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockSource) Fetch(ctx context.Context) (*scrape.Snapshot, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}

	return nil, nil
}

type resolveDelegate func(context.Context, string) (*geocode.Location, error)

type mockGeocoder struct {
	resolveFn resolveDelegate
}

func (m *mockGeocoder) Resolve(ctx context.Context, address string) (*geocode.Location, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, address)
	}

	return nil, nil
}
