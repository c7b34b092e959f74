package types

import (
	"fmt"
	"math"
)

// PaymentMethod is one channel offered by a provider (a bank VA, an e-wallet,
// QRIS, ...). Listings are fetched fresh per call; adapters may cache
// internally.
type PaymentMethod struct {
	Gateway    PaymentProvider `json:"gateway"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Group      string          `json:"group,omitempty"`
	IconURL    string          `json:"icon_url,omitempty"`
	Color      string          `json:"color,omitempty"`
	FeeFlat    int64           `json:"fee_flat"`
	FeePercent float64         `json:"fee_percent"`
	FeeDisplay string          `json:"fee_display"`
	FeeAmount  int64           `json:"fee_amount,omitempty"`
	MinAmount  int64           `json:"min_amount,omitempty"`
	MaxAmount  int64           `json:"max_amount,omitempty"`
	Active     bool            `json:"active"`
	// IsMock marks sandbox fallback entries that do not come from a live
	// provider listing.
	IsMock bool `json:"is_mock,omitempty"`
}

// FeeFor computes the customer-facing fee for the given amount:
// ceil(flat + amount * percent / 100).
func (m *PaymentMethod) FeeFor(amount int64) int64 {
	return int64(math.Ceil(float64(m.FeeFlat) + float64(amount)*m.FeePercent/100))
}

// FeeLabel renders a display string. With a known amount the computed fee is
// shown; otherwise the formula.
func (m *PaymentMethod) FeeLabel(amount int64) string {
	if amount > 0 {
		return fmt.Sprintf("Rp %d", m.FeeFor(amount))
	}
	if m.FeeFlat > 0 && m.FeePercent > 0 {
		return fmt.Sprintf("Rp %d + %.4g%%", m.FeeFlat, m.FeePercent)
	}
	if m.FeePercent > 0 {
		return fmt.Sprintf("%.4g%%", m.FeePercent)
	}
	return fmt.Sprintf("Rp %d", m.FeeFlat)
}

// InRange reports whether amount satisfies the channel's declared bounds.
// A zero bound means unbounded on that side; amount<=0 means "no filtering".
func (m *PaymentMethod) InRange(amount int64) bool {
	if amount <= 0 {
		return true
	}
	if m.MinAmount > 0 && amount < m.MinAmount {
		return false
	}
	if m.MaxAmount > 0 && amount > m.MaxAmount {
		return false
	}
	return true
}

// FilterMethods keeps active channels whose bounds admit amount, filling in
// FeeAmount and FeeDisplay for the amount when known.
func FilterMethods(methods []*PaymentMethod, amount int64) []*PaymentMethod {
	out := make([]*PaymentMethod, 0, len(methods))
	for _, m := range methods {
		if !m.Active || !m.InRange(amount) {
			continue
		}
		if amount > 0 {
			m.FeeAmount = m.FeeFor(amount)
		}
		m.FeeDisplay = m.FeeLabel(amount)
		out = append(out, m)
	}
	return out
}
