package scrape

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/kantor-lab/kantorfx/storage/types"
)

var (
	// ErrInfoBlockNotFound indicates the bureau info block is missing
	// from the document entirely
	ErrInfoBlockNotFound = errors.New("bureau info block not found")

	// ErrMalformedInfoBlock indicates the bureau info block is present,
	// but doesn't carry all expected fields
	ErrMalformedInfoBlock = errors.New("bureau info block is malformed")

	// ErrRateTableNotFound indicates the currency rate table is missing
	// from the document
	ErrRateTableNotFound = errors.New("rate table not found")
)

// infoFieldCount is the number of labeled fields in a bureau info block:
// display label, canonical name, address, phone, working hours,
// source-reported update time, and comment, in that order
const infoFieldCount = 7

// Card is the bureau info block, extracted from a single document
type Card struct {
	Label     string `json:"label"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Hours     string `json:"hours"`
	UpdatedAt string `json:"updated_at"` // as published by the source
	Comment   string `json:"comment"`
}

// Quote is a single currency's buy/sell pair at extraction time
type Quote struct {
	Currency types.Currency  `json:"currency"`
	Buy      decimal.Decimal `json:"buy"`
	Sell     decimal.Decimal `json:"sell"`
}

// Snapshot is the full extraction result for one bureau document
type Snapshot struct {
	Card   *Card   `json:"card"`
	Quotes []Quote `json:"quotes"`
}

// Parser extracts bureau cards and currency quotes from
// zlata.ws-style kantor pages
type Parser struct {
	logger *slog.Logger

	// unit divisors keyed by canonical bureau name, for bureaux that
	// publish prices in the currency's smallest unit
	divisors map[string]int64
}

// NewParser creates a new page parser
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		divisors: make(map[string]int64),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse extracts the bureau card and its currency quotes from
// the given HTML document
func (p *Parser) Parse(r io.Reader) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to construct query doc: %w", err)
	}

	card, err := parseCard(doc)
	if err != nil {
		return nil, err
	}

	quotes, err := p.parseQuotes(doc, card.Name)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Card:   card,
		Quotes: quotes,
	}, nil
}

// parseCard extracts the seven labeled info fields from the
// designated info block
func parseCard(doc *goquery.Document) (*Card, error) {
	block := doc.Find("div.msg").First()
	if block.Length() == 0 {
		return nil, ErrInfoBlockNotFound
	}

	fields := block.Find("strong")
	if fields.Length() < infoFieldCount {
		return nil, fmt.Errorf(
			"%w: expected %d fields, found %d",
			ErrMalformedInfoBlock,
			infoFieldCount,
			fields.Length(),
		)
	}

	text := func(i int) string {
		return strings.TrimSpace(fields.Eq(i).Text())
	}

	return &Card{
		Label:     text(0),
		Name:      text(1),
		Address:   text(2),
		Phone:     text(3),
		Hours:     text(4),
		UpdatedAt: text(5),
		Comment:   text(6),
	}, nil
}

// parseQuotes iterates the data rows of the designated rate table.
// Rows that fail to parse are skipped, never fatal
func (p *Parser) parseQuotes(doc *goquery.Document, bureau string) ([]Quote, error) {
	table := doc.Find("table.table").First()
	if table.Length() == 0 {
		return nil, ErrRateTableNotFound
	}

	divisor := decimal.NewFromInt(1)
	if d, ok := p.divisors[bureau]; ok && d > 1 {
		divisor = decimal.NewFromInt(d)
	}

	quotes := make([]Quote, 0, 8)

	rows := table.Find("tr")
	if rows.Length() < 2 {
		return quotes, nil // header only, no data rows
	}

	// Skip the header row
	rows.Slice(1, goquery.ToEnd).Each(func(i int, tr *goquery.Selection) {
		cols := tr.Find("td")
		if cols.Length() < 3 {
			p.logger.Warn(
				"skipping short rate row",
				"bureau", bureau,
				"row", i,
			)

			return
		}

		currency := NormalizeCurrency(cols.Eq(0).Text())
		if currency == "" {
			p.logger.Warn(
				"skipping rate row with empty currency",
				"bureau", bureau,
				"row", i,
			)

			return
		}

		buy, err := parsePrice(cols.Eq(1).Text())
		if err != nil {
			p.logger.Warn(
				"skipping rate row with bad buy price",
				"bureau", bureau,
				"currency", currency,
				"err", err,
			)

			return
		}

		sell, err := parsePrice(cols.Eq(2).Text())
		if err != nil {
			p.logger.Warn(
				"skipping rate row with bad sell price",
				"bureau", bureau,
				"currency", currency,
				"err", err,
			)

			return
		}

		quotes = append(quotes, Quote{
			Currency: types.Currency(currency),
			Buy:      buy.Div(divisor),
			Sell:     sell.Div(divisor),
		})
	})

	return quotes, nil
}

// NormalizeCurrency canonicalizes a scraped currency label: the text
// before the first line break, trimmed, stripped of emphasis markup
func NormalizeCurrency(label string) string {
	s, _, _ := strings.Cut(label, "\n")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")

	return strings.TrimSpace(s)
}

// parsePrice parses a single buy/sell cell as a non-negative decimal
func parsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)

	// Some listings use a comma decimal separator
	s = strings.ReplaceAll(s, ",", ".")

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse price %q: %w", raw, err)
	}

	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %q", raw)
	}

	return v, nil
}
