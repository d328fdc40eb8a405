package domain

import (
	"strings"
	"time"
)

// Learning content kinds.
const (
	ContentVideo   = "video"
	ContentPDF     = "pdf"
	ContentArticle = "article"
)

type Content struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	TitleHi   string    `json:"title_hi"`
	Kind      string    `json:"kind"`
	Language  string    `json:"language"`
	Category  string    `json:"category"`
	FilePath  string    `json:"-"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type ContentFilter struct {
	Kind     string
	Language string
	Category string
	Limit    int
	Offset   int
}

type Workshop struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	TitleHi     string    `json:"title_hi"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Registered  int       `json:"registered"`
	FeeRupees   int64     `json:"fee_rupees"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateWorkshopRequest struct {
	Title       string    `json:"title"`
	TitleHi     string    `json:"title_hi"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	FeeRupees   int64     `json:"fee_rupees"`
}

func (r *CreateWorkshopRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return Invalid("title", "title is required")
	}
	if r.ScheduledAt.Before(time.Now()) {
		return Invalid("scheduled_at", "workshop must be in the future")
	}
	if r.Capacity <= 0 {
		return Invalid("capacity", "capacity must be positive")
	}
	return nil
}

type WorkshopRegistration struct {
	ID         int64     `json:"id"`
	WorkshopID int64     `json:"workshop_id"`
	FarmerID   int64     `json:"farmer_id"`
	CreatedAt  time.Time `json:"created_at"`
}
