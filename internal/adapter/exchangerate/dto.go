package exchangerate

import "subpage-service/internal/entity"

// LatestRates is the /latest/{base} payload; Rates is relative to Base.
type LatestRates struct {
	Provider        string             `json:"provider,omitempty"`
	Base            string             `json:"base"`
	Date            string             `json:"date"`
	TimeLastUpdated int64              `json:"time_last_updated"`
	Rates           map[string]float64 `json:"rates"`
}

// Rate returns the rate for code; missing and non-positive entries are not usable.
func (l *LatestRates) Rate(code entity.CurrencyCode) (float64, bool) {
	if l == nil {
		return 0, false
	}
	rate, ok := l.Rates[string(code)]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}
