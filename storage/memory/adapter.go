package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kantor-lab/kantorfx/storage/types"
)

type key struct {
	bureau, currency string
}

type entry struct {
	row types.RateRow
	seq int64 // insert sequence, stable across replacement
}

type Storage struct {
	data    map[key]entry
	nextSeq int64

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[key]entry),
	}
}

func (s *Storage) UpsertRate(_ context.Context, row *types.RateRow) error {
	k := key{
		bureau:   row.Bureau,
		currency: row.Currency.String(),
	}

	elem := *row
	elem.RefreshedAt = time.Now().UTC()

	if elem.Location != nil {
		loc := *elem.Location
		elem.Location = &loc
	}

	s.mu.Lock()

	seq := s.nextSeq
	if prev, ok := s.data[k]; ok {
		seq = prev.seq // replacement keeps the original insert order
	} else {
		s.nextSeq++
	}

	s.data[k] = entry{
		row: elem,
		seq: seq,
	}

	s.mu.Unlock()

	return nil
}

func (s *Storage) BestBuy(_ context.Context, currency types.Currency) (*types.RateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *entry

	for _, e := range s.matching(currency) {
		if best == nil ||
			e.row.Buy.GreaterThan(best.row.Buy) ||
			(e.row.Buy.Equal(best.row.Buy) && e.seq < best.seq) {
			cp := e
			best = &cp
		}
	}

	if best == nil {
		return nil, nil //nolint:nilnil // valid case
	}

	row := best.row

	return &row, nil
}

func (s *Storage) BestSell(_ context.Context, currency types.Currency) (*types.RateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *entry

	for _, e := range s.matching(currency) {
		if best == nil ||
			e.row.Sell.LessThan(best.row.Sell) ||
			(e.row.Sell.Equal(best.row.Sell) && e.seq < best.seq) {
			cp := e
			best = &cp
		}
	}

	if best == nil {
		return nil, nil //nolint:nilnil // valid case
	}

	row := best.row

	return &row, nil
}

func (s *Storage) RatesForCurrency(_ context.Context, currency types.Currency) ([]*types.RateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.matching(currency)

	out := make([]*types.RateRow, 0, len(entries))

	for _, e := range entries {
		row := e.row
		out = append(out, &row)
	}

	return out, nil
}

func (s *Storage) RatesForBureau(_ context.Context, bureau string) ([]*types.RateRow, error) {
	s.mu.RLock()

	entries := make([]entry, 0, 8)

	for k, e := range s.data {
		if k.bureau == bureau {
			entries = append(entries, e)
		}
	}

	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	out := make([]*types.RateRow, 0, len(entries))

	for _, e := range entries {
		row := e.row
		out = append(out, &row)
	}

	return out, nil
}

func (s *Storage) ListCurrencies(_ context.Context) ([]types.Currency, error) {
	s.mu.RLock()

	seen := make(map[string]struct{})

	for k := range s.data {
		seen[k.currency] = struct{}{}
	}

	s.mu.RUnlock()

	out := make([]types.Currency, 0, len(seen))

	for v := range seen {
		out = append(out, types.Currency(v))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})

	return out, nil
}

func (s *Storage) ListCoordinates(_ context.Context) ([]*types.BureauPoint, error) {
	type located struct {
		point *types.BureauPoint
		seq   int64
	}

	s.mu.RLock()

	byBureau := make(map[string]located)

	for k, e := range s.data {
		if e.row.Location == nil {
			continue
		}

		cur, ok := byBureau[k.bureau]
		if ok && cur.seq <= e.seq {
			continue
		}

		byBureau[k.bureau] = located{
			point: &types.BureauPoint{
				Bureau:      k.bureau,
				Address:     e.row.Address,
				Coordinates: *e.row.Location,
			},
			seq: e.seq,
		}
	}

	s.mu.RUnlock()

	points := make([]located, 0, len(byBureau))
	for _, l := range byBureau {
		points = append(points, l)
	}

	// First-inserted bureau comes first, so proximity tie-breaks
	// stay deterministic
	sort.Slice(points, func(i, j int) bool {
		return points[i].seq < points[j].seq
	})

	out := make([]*types.BureauPoint, 0, len(points))
	for _, l := range points {
		out = append(out, l.point)
	}

	return out, nil
}

// matching collects the entries quoting the given currency,
// ordered by insert sequence
func (s *Storage) matching(currency types.Currency) []entry {
	entries := make([]entry, 0, 8)

	for k, e := range s.data {
		if k.currency == currency.String() {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	return entries
}
