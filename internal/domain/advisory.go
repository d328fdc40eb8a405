package domain

import (
	"strings"
	"time"
)

// AdvisoryQuery is one question/answer exchange with the AI advisor,
// persisted per farmer for the history view.
type AdvisoryQuery struct {
	ID        int64     `json:"id"`
	FarmerID  int64     `json:"farmer_id"`
	Kind      string    `json:"kind"` // text or image
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	AdvisoryText  = "text"
	AdvisoryImage = "image"
)

type ChatRequest struct {
	Question string `json:"question"`
	Language string `json:"language"`
}

func (r *ChatRequest) Normalize() {
	r.Question = strings.TrimSpace(r.Question)
	if r.Language == "" {
		r.Language = "hi"
	}
}

func (r *ChatRequest) Validate() error {
	if r.Question == "" {
		return Invalid("question", "question is required")
	}
	return nil
}

type VisionRequest struct {
	Question string `json:"question"`
	Image    string `json:"image"` // base64-encoded, optionally a data URL
	Language string `json:"language"`
}

func (r *VisionRequest) Normalize() {
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		r.Question = "What is wrong with this crop?"
	}
	if r.Language == "" {
		r.Language = "hi"
	}
}

func (r *VisionRequest) Validate() error {
	if r.Image == "" {
		return Invalid("image", "image is required")
	}
	return nil
}
