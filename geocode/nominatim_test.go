package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatim_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("resolved address", func(t *testing.T) {
		t.Parallel()

		var capturedQuery string

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedQuery = r.URL.Query().Get("q")

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"lat":"51.2465","lon":"22.5684"}]`))
			}),
		)
		defer srv.Close()

		g := NewNominatim(srv.URL, time.Second*5)

		location, err := g.Resolve(context.Background(), "ul. Przykladowa 1, Lublin")
		require.NoError(t, err)
		require.NotNil(t, location)

		assert.Equal(t, "ul. Przykladowa 1, Lublin", capturedQuery)
		assert.InDelta(t, 51.2465, location.Latitude, 0.0001)
		assert.InDelta(t, 22.5684, location.Longitude, 0.0001)
	})

	t.Run("no match is not an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			}),
		)
		defer srv.Close()

		g := NewNominatim(srv.URL, time.Second*5)

		location, err := g.Resolve(context.Background(), "nowhere at all")

		assert.NoError(t, err)
		assert.Nil(t, location)
	})

	t.Run("bad status code", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			}),
		)
		defer srv.Close()

		g := NewNominatim(srv.URL, time.Second*5)

		location, err := g.Resolve(context.Background(), "ul. Przykladowa 1")

		assert.Nil(t, location)
		assert.Error(t, err)
	})

	t.Run("malformed coordinates", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"lat":"not-a-number","lon":"22.5684"}]`))
			}),
		)
		defer srv.Close()

		g := NewNominatim(srv.URL, time.Second*5)

		location, err := g.Resolve(context.Background(), "ul. Przykladowa 1")

		assert.Nil(t, location)
		assert.Error(t, err)
	})
}
