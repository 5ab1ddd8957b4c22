package scrape

import (
	"fmt"
	"net/url"
	"strings"
)

// Summary renders the human-readable bureau summary from already-extracted
// data. It performs no I/O, so every caller gets identical output for the
// same snapshot
func Summary(s *Snapshot) string {
	var b strings.Builder

	mapsLink := fmt.Sprintf(
		"https://www.google.com/maps/search/?api=1&query=%s",
		url.QueryEscape(s.Card.Address),
	)

	fmt.Fprintf(&b, "*%s*\n", s.Card.Label)
	fmt.Fprintf(&b, "*🏦 Nazwa:* %s\n", s.Card.Name)
	fmt.Fprintf(&b, "*📍 Adres:* [%s](%s)\n", s.Card.Address, mapsLink)
	fmt.Fprintf(&b, "*📞 Telefon:* %s\n", s.Card.Phone)
	fmt.Fprintf(&b, "*🕒 Godziny pracy:* %s\n", s.Card.Hours)
	fmt.Fprintf(&b, "*🗓 Ostatnia aktualizacja:* %s\n", s.Card.UpdatedAt)
	fmt.Fprintf(&b, "*💱 Kursy walut (Kupno/Sprzedaż):*\n")

	for _, q := range s.Quotes {
		fmt.Fprintf(&b, "*%s*: %s / %s\n", q.Currency, q.Buy, q.Sell)
	}

	comment := s.Card.Comment
	if comment == "" {
		comment = "Brak komentarza"
	}

	fmt.Fprintf(&b, "*📋 Komentarz:* %s", comment)

	return b.String()
}
