package domain

import "time"

// MarketPrice is a mandi price quote for one crop on one day. Prices are in
// rupees per quintal. MSP, where known, is the government floor price.
type MarketPrice struct {
	ID         int64     `json:"id"`
	Crop       string    `json:"crop"`
	Market     string    `json:"market"`
	District   string    `json:"district"`
	PriceMin   int64     `json:"price_min"`
	PriceMax   int64     `json:"price_max"`
	PriceModal int64     `json:"price_modal"`
	MSP        int64     `json:"msp,omitempty"`
	QuotedOn   time.Time `json:"quoted_on"`
	CreatedAt  time.Time `json:"created_at"`
}

type PriceFilter struct {
	Crop     string
	District string
	Limit    int
}

type UpsertPriceRequest struct {
	Crop       string    `json:"crop"`
	Market     string    `json:"market"`
	District   string    `json:"district"`
	PriceMin   int64     `json:"price_min"`
	PriceMax   int64     `json:"price_max"`
	PriceModal int64     `json:"price_modal"`
	MSP        int64     `json:"msp"`
	QuotedOn   time.Time `json:"quoted_on"`
}

func (r *UpsertPriceRequest) Validate() error {
	if r.Crop == "" {
		return Invalid("crop", "crop is required")
	}
	if r.Market == "" {
		return Invalid("market", "market is required")
	}
	if r.PriceModal <= 0 {
		return Invalid("price_modal", "modal price must be positive")
	}
	return nil
}
