package geocode

import "context"

// Location is a resolved latitude/longitude pair
type Location struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a free-text address to geographic coordinates.
// A nil location with a nil error means the address could not be
// resolved -- it is a valid empty result, not a failure
type Geocoder interface {
	Resolve(ctx context.Context, address string) (*Location, error)
}
