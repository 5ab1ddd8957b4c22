package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kantor-lab/kantorfx/query"
	"github.com/kantor-lab/kantorfx/scrape"
	"github.com/kantor-lab/kantorfx/storage/types"
)

var (
	errUnableToFetchRates      = errors.New("unable to fetch rates")
	errUnableToFetchCurrencies = errors.New("unable to fetch currencies")
	errUnableToFetchNearest    = errors.New("unable to find nearest bureau")
	errUnableToRefresh         = errors.New("unable to refresh source, try again")

	errInvalidCoordinate = errors.New("invalid coordinate")
	errMissingBureauName = errors.New("missing bureau name")
)

func (s *Server) Currencies(w http.ResponseWriter, r *http.Request) {
	items, err := s.queries.Currencies(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch currencies",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchCurrencies,
		)

		return
	}

	resp := &CurrenciesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) RatesForCurrency(w http.ResponseWriter, r *http.Request) {
	currency, err := parseCurrencySymbol(chi.URLParam(r, "currency"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	items, err := s.queries.Rates(r.Context(), currency)
	if err != nil {
		s.logger.Debug(
			"unable to fetch rates",
			"currency", currency,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	resp := &RatesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) BestRates(w http.ResponseWriter, r *http.Request) {
	currency, err := parseCurrencySymbol(chi.URLParam(r, "currency"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	best, err := s.queries.BestRates(r.Context(), currency)
	if err != nil {
		if errors.Is(err, query.ErrNoRates) {
			writeError(w, http.StatusNotFound, query.ErrNoRates)

			return
		}

		s.logger.Debug(
			"unable to fetch best rates",
			"currency", currency,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	writeJSON(w, http.StatusOK, best)
}

func (s *Server) BureauRates(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, errMissingBureauName)

		return
	}

	items, err := s.queries.BureauRates(r.Context(), name)
	if err != nil {
		s.logger.Debug(
			"unable to fetch bureau rates",
			"bureau", name,
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	resp := &RatesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) Nearest(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoordinate(r.URL.Query().Get("lat"), 90)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	lon, err := parseCoordinate(r.URL.Query().Get("lon"), 180)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	nearest, err := s.queries.Nearest(r.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, query.ErrNoBureaus) {
			writeError(w, http.StatusNotFound, query.ErrNoBureaus)

			return
		}

		s.logger.Debug(
			"unable to find nearest bureau",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchNearest,
		)

		return
	}

	writeJSON(w, http.StatusOK, nearest)
}

func (s *Server) RefreshSource(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "source"))
	if name == "" {
		writeError(w, http.StatusBadRequest, errMissingBureauName)

		return
	}

	snapshot, err := s.refresher.RefreshOne(r.Context(), name)
	if err != nil {
		// The chat layer gets "try again" semantics,
		// never an internal crash
		s.logger.Error(
			"unable to refresh source",
			"source", name,
			"err", err,
		)

		writeError(w, http.StatusBadGateway, errUnableToRefresh)

		return
	}

	resp := &RefreshResponse{
		Card:    snapshot.Card,
		Quotes:  snapshot.Quotes,
		Summary: scrape.Summary(snapshot),
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseCurrencySymbol(v string) (types.Currency, error) {
	s := strings.ToUpper(strings.TrimSpace(v))
	if len(s) != 3 {
		return "", errors.New("invalid currency (must be 3 letters)")
	}

	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", errors.New("invalid currency (must be A-Z)")
		}
	}

	return types.Currency(s), nil
}

func parseCoordinate(raw string, limit float64) (float64, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, errInvalidCoordinate
	}

	c, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errInvalidCoordinate
	}

	if c < -limit || c > limit {
		return 0, errInvalidCoordinate
	}

	return c, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
