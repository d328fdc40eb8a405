package domain

import (
	"strings"
	"time"
)

// Entry types for the personal account book.
const (
	EntryExpense = "expense"
	EntryIncome  = "income"
)

type LedgerEntry struct {
	ID        int64     `json:"id"`
	FarmerID  int64     `json:"farmer_id"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Amount    int64     `json:"amount"`
	EntryDate time.Time `json:"entry_date"`
	Crop      string    `json:"crop"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateEntryRequest struct {
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Amount    int64     `json:"amount"`
	EntryDate time.Time `json:"entry_date"`
	Crop      string    `json:"crop"`
	Note      string    `json:"note"`
}

func (r *CreateEntryRequest) Normalize() {
	r.Category = strings.TrimSpace(strings.ToLower(r.Category))
	r.Crop = strings.TrimSpace(strings.ToLower(r.Crop))
	if r.EntryDate.IsZero() {
		r.EntryDate = time.Now()
	}
}

func (r *CreateEntryRequest) Validate() error {
	if r.Type != EntryExpense && r.Type != EntryIncome {
		return Invalid("type", "type must be expense or income")
	}
	if r.Category == "" {
		return Invalid("category", "category is required")
	}
	if r.Amount <= 0 {
		return Invalid("amount", "amount must be positive")
	}
	return nil
}

// EntryFilter narrows ledger listings. Zero values mean "no constraint".
type EntryFilter struct {
	Type     string
	Category string
	Crop     string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

type LedgerSummary struct {
	TotalIncome  int64            `json:"total_income"`
	TotalExpense int64            `json:"total_expense"`
	Net          int64            `json:"net"`
	ByCategory   map[string]int64 `json:"by_category"`
}

// Crop tracking record.
type CropRecord struct {
	ID         int64     `json:"id"`
	FarmerID   int64     `json:"farmer_id"`
	Crop       string    `json:"crop"`
	AreaAcres  float64   `json:"area_acres"`
	Season     string    `json:"season"`
	SowingDate time.Time `json:"sowing_date"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	CropSown      = "sown"
	CropGrowing   = "growing"
	CropHarvested = "harvested"
)

type CreateCropRequest struct {
	Crop       string    `json:"crop"`
	AreaAcres  float64   `json:"area_acres"`
	Season     string    `json:"season"`
	SowingDate time.Time `json:"sowing_date"`
}

func (r *CreateCropRequest) Validate() error {
	if strings.TrimSpace(r.Crop) == "" {
		return Invalid("crop", "crop is required")
	}
	if r.AreaAcres <= 0 {
		return Invalid("area_acres", "area must be positive")
	}
	return nil
}
