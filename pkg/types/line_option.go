package types

import "github.com/google/uuid"

// LineOption is the immutable snapshot of a product option chosen at checkout.
type LineOption struct {
	OptionID        uuid.UUID `json:"option_id"`
	Label           string    `json:"label"`
	PriceDeltaCents int       `json:"price_delta_cents"`
}

// LineOptions is stored as a jsonb column on order lines.
type LineOptions []LineOption

// TotalDeltaCents sums the per-unit price adjustments of all chosen options.
func (o LineOptions) TotalDeltaCents() int {
	total := 0
	for _, opt := range o {
		total += opt.PriceDeltaCents
	}
	return total
}
