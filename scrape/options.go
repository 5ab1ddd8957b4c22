package scrape

import "log/slog"

type ParserOption func(p *Parser)

// WithLogger specifies the logger for the parser
func WithLogger(l *slog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = l
	}
}

// WithUnitDivisors specifies the smallest-unit correction table,
// keyed by canonical bureau name. A bureau listed with divisor N has
// all its scraped prices divided by N
func WithUnitDivisors(divisors map[string]int64) ParserOption {
	return func(p *Parser) {
		if divisors == nil {
			return
		}

		p.divisors = divisors
	}
}
