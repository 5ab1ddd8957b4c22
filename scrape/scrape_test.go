package scrape

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantor-lab/kantorfx/storage/types"
)

const validPage = `<html><body>
<div class="msg">
  <p><strong>Kantor Korab - Lublin</strong></p>
  <p><strong>Kantor Korab</strong></p>
  <p><strong>ul. Przykladowa 1, Lublin</strong></p>
  <p><strong>+48 123 456 789</strong></p>
  <p><strong>Pn-Pt 9:00-17:00</strong></p>
  <p><strong>28.08.2026 09:30</strong></p>
  <p><strong>Wejscie od podworza</strong></p>
</div>
<table class="table">
  <tr><th>Waluta</th><th>Kupno</th><th>Sprzedaz</th></tr>
  <tr><td>USD
dolar amerykanski</td><td>4.05</td><td>4.15</td></tr>
  <tr><td>EUR</td><td>4.60</td><td>4.72</td></tr>
  <tr><td>GBP</td><td>5,20</td><td>5,35</td></tr>
</table>
</body></html>`

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("valid page", func(t *testing.T) {
		t.Parallel()

		p := NewParser()

		snapshot, err := p.Parse(strings.NewReader(validPage))
		require.NoError(t, err)
		require.NotNil(t, snapshot)

		card := snapshot.Card

		assert.Equal(t, "Kantor Korab - Lublin", card.Label)
		assert.Equal(t, "Kantor Korab", card.Name)
		assert.Equal(t, "ul. Przykladowa 1, Lublin", card.Address)
		assert.Equal(t, "+48 123 456 789", card.Phone)
		assert.Equal(t, "Pn-Pt 9:00-17:00", card.Hours)
		assert.Equal(t, "28.08.2026 09:30", card.UpdatedAt)
		assert.Equal(t, "Wejscie od podworza", card.Comment)

		require.Len(t, snapshot.Quotes, 3)

		// Quotes preserve the table's row order
		assert.Equal(t, types.Currency("USD"), snapshot.Quotes[0].Currency)
		assert.Equal(t, types.Currency("EUR"), snapshot.Quotes[1].Currency)
		assert.Equal(t, types.Currency("GBP"), snapshot.Quotes[2].Currency)

		assert.True(t, snapshot.Quotes[0].Buy.Equal(decimal.RequireFromString("4.05")))
		assert.True(t, snapshot.Quotes[0].Sell.Equal(decimal.RequireFromString("4.15")))

		// Comma decimal separators parse too
		assert.True(t, snapshot.Quotes[2].Buy.Equal(decimal.RequireFromString("5.20")))
		assert.True(t, snapshot.Quotes[2].Sell.Equal(decimal.RequireFromString("5.35")))
	})

	t.Run("missing info block", func(t *testing.T) {
		t.Parallel()

		page := `<html><body><p>nothing here</p></body></html>`

		p := NewParser()

		snapshot, err := p.Parse(strings.NewReader(page))

		assert.Nil(t, snapshot)
		assert.ErrorIs(t, err, ErrInfoBlockNotFound)
	})

	t.Run("malformed info block", func(t *testing.T) {
		t.Parallel()

		// Only five of the seven labeled fields
		page := `<html><body>
		<div class="msg">
		  <p><strong>Kantor Korab - Lublin</strong></p>
		  <p><strong>Kantor Korab</strong></p>
		  <p><strong>ul. Przykladowa 1, Lublin</strong></p>
		  <p><strong>+48 123 456 789</strong></p>
		  <p><strong>Pn-Pt 9:00-17:00</strong></p>
		</div>
		<table class="table"><tr><th>Waluta</th></tr></table>
		</body></html>`

		p := NewParser()

		snapshot, err := p.Parse(strings.NewReader(page))

		assert.Nil(t, snapshot)
		assert.ErrorIs(t, err, ErrMalformedInfoBlock)
	})

	t.Run("missing rate table", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
		<div class="msg">
		  <p><strong>a</strong></p><p><strong>b</strong></p><p><strong>c</strong></p>
		  <p><strong>d</strong></p><p><strong>e</strong></p><p><strong>f</strong></p>
		  <p><strong>g</strong></p>
		</div>
		</body></html>`

		p := NewParser()

		snapshot, err := p.Parse(strings.NewReader(page))

		assert.Nil(t, snapshot)
		assert.ErrorIs(t, err, ErrRateTableNotFound)
	})

	t.Run("malformed rows are skipped, not fatal", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
		<div class="msg">
		  <p><strong>a</strong></p><p><strong>Kantor Korab</strong></p><p><strong>c</strong></p>
		  <p><strong>d</strong></p><p><strong>e</strong></p><p><strong>f</strong></p>
		  <p><strong>g</strong></p>
		</div>
		<table class="table">
		  <tr><th>Waluta</th><th>Kupno</th><th>Sprzedaz</th></tr>
		  <tr><td>USD</td><td>4.05</td><td>4.15</td></tr>
		  <tr><td>EUR</td><td>brak</td><td>4.72</td></tr>
		  <tr><td>GBP</td><td>5.20</td><td>-</td></tr>
		  <tr><td>CHF</td><td>-4.40</td><td>4.60</td></tr>
		  <tr><td>CZK</td><td>0.17</td><td>0.19</td></tr>
		</table>
		</body></html>`

		p := NewParser()

		snapshot, err := p.Parse(strings.NewReader(page))
		require.NoError(t, err)

		// Only the parsable rows survive
		require.Len(t, snapshot.Quotes, 2)
		assert.Equal(t, types.Currency("USD"), snapshot.Quotes[0].Currency)
		assert.Equal(t, types.Currency("CZK"), snapshot.Quotes[1].Currency)
	})

	t.Run("duplicate currency yields two quotes", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
		<div class="msg">
		  <p><strong>a</strong></p><p><strong>Kantor Korab</strong></p><p><strong>c</strong></p>
		  <p><strong>d</strong></p><p><strong>e</strong></p><p><strong>f</strong></p>
		  <p><strong>g</strong></p>
		</div>
		<table class="table">
		  <tr><th>Waluta</th><th>Kupno</th><th>Sprzedaz</th></tr>
		  <tr><td>USD</td><td>4.05</td><td>4.15</td></tr>
		  <tr><td>USD</td><td>4.06</td><td>4.16</td></tr>
		</table>
		</body></html>`

		p := NewParser()

		snapshot, err := p.Parse(strings.NewReader(page))
		require.NoError(t, err)

		// No dedup within a single extraction
		require.Len(t, snapshot.Quotes, 2)
		assert.True(t, snapshot.Quotes[0].Buy.Equal(decimal.RequireFromString("4.05")))
		assert.True(t, snapshot.Quotes[1].Buy.Equal(decimal.RequireFromString("4.06")))
	})

	t.Run("unit correction applies per bureau", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
		<div class="msg">
		  <p><strong>a</strong></p><p><strong>Kantor Tarasy</strong></p><p><strong>c</strong></p>
		  <p><strong>d</strong></p><p><strong>e</strong></p><p><strong>f</strong></p>
		  <p><strong>g</strong></p>
		</div>
		<table class="table">
		  <tr><th>Waluta</th><th>Kupno</th><th>Sprzedaz</th></tr>
		  <tr><td>JPY</td><td>271</td><td>282</td></tr>
		</table>
		</body></html>`

		p := NewParser(WithUnitDivisors(map[string]int64{
			"Kantor Tarasy": 100,
		}))

		snapshot, err := p.Parse(strings.NewReader(page))
		require.NoError(t, err)

		require.Len(t, snapshot.Quotes, 1)
		assert.True(t, snapshot.Quotes[0].Buy.Equal(decimal.RequireFromString("2.71")))
		assert.True(t, snapshot.Quotes[0].Sell.Equal(decimal.RequireFromString("2.82")))
	})

	t.Run("unit correction skips other bureaus", func(t *testing.T) {
		t.Parallel()

		p := NewParser(WithUnitDivisors(map[string]int64{
			"Kantor Tarasy": 100,
		}))

		snapshot, err := p.Parse(strings.NewReader(validPage))
		require.NoError(t, err)

		// "Kantor Korab" is not in the divisor table
		assert.True(t, snapshot.Quotes[0].Buy.Equal(decimal.RequireFromString("4.05")))
	})
}

func TestNormalizeCurrency(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		label    string
		expected string
	}{
		{
			name:     "plain code",
			label:    "USD",
			expected: "USD",
		},
		{
			name:     "text after line break dropped",
			label:    "USD\ndolar amerykanski",
			expected: "USD",
		},
		{
			name:     "whitespace trimmed",
			label:    "  EUR  ",
			expected: "EUR",
		},
		{
			name:     "emphasis markup stripped",
			label:    "*GBP*",
			expected: "GBP",
		},
		{
			name:     "combined",
			label:    " *CHF* \nfrank szwajcarski",
			expected: "CHF",
		},
		{
			name:     "empty label",
			label:    "\n",
			expected: "",
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, NormalizeCurrency(testCase.label))
		})
	}
}
