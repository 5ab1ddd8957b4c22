package scrape

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	t.Parallel()

	t.Run("full card", func(t *testing.T) {
		t.Parallel()

		snapshot := &Snapshot{
			Card: &Card{
				Label:     "Kantor Korab - Lublin",
				Name:      "Kantor Korab",
				Address:   "ul. Przykladowa 1, Lublin",
				Phone:     "+48 123 456 789",
				Hours:     "Pn-Pt 9:00-17:00",
				UpdatedAt: "28.08.2026 09:30",
				Comment:   "Wejscie od podworza",
			},
			Quotes: []Quote{
				{
					Currency: "USD",
					Buy:      decimal.RequireFromString("4.05"),
					Sell:     decimal.RequireFromString("4.15"),
				},
				{
					Currency: "EUR",
					Buy:      decimal.RequireFromString("4.6"),
					Sell:     decimal.RequireFromString("4.72"),
				},
			},
		}

		expected := "*Kantor Korab - Lublin*\n" +
			"*🏦 Nazwa:* Kantor Korab\n" +
			"*📍 Adres:* [ul. Przykladowa 1, Lublin](https://www.google.com/maps/search/?api=1&query=ul.+Przykladowa+1%2C+Lublin)\n" +
			"*📞 Telefon:* +48 123 456 789\n" +
			"*🕒 Godziny pracy:* Pn-Pt 9:00-17:00\n" +
			"*🗓 Ostatnia aktualizacja:* 28.08.2026 09:30\n" +
			"*💱 Kursy walut (Kupno/Sprzedaż):*\n" +
			"*USD*: 4.05 / 4.15\n" +
			"*EUR*: 4.6 / 4.72\n" +
			"*📋 Komentarz:* Wejscie od podworza"

		assert.Equal(t, expected, Summary(snapshot))
	})

	t.Run("empty comment placeholder", func(t *testing.T) {
		t.Parallel()

		snapshot := &Snapshot{
			Card: &Card{
				Name: "Kantor Korab",
			},
		}

		assert.Contains(t, Summary(snapshot), "*📋 Komentarz:* Brak komentarza")
	})

	t.Run("pure function", func(t *testing.T) {
		t.Parallel()

		snapshot := &Snapshot{
			Card: &Card{
				Name:    "Kantor Korab",
				Address: "ul. Przykladowa 1",
			},
			Quotes: []Quote{
				{
					Currency: "USD",
					Buy:      decimal.RequireFromString("4.05"),
					Sell:     decimal.RequireFromString("4.15"),
				},
			},
		}

		// Byte-identical output for the same snapshot
		assert.Equal(t, Summary(snapshot), Summary(snapshot))
	})
}
