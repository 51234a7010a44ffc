package model

// Границы оценки отзыва (включительно).
const (
	MinStars = 0
	MaxStars = 5
)

// TargetType: тип объекта отзыва.
type TargetType string

// Допустимые объекты отзыва.
const (
	TargetAgent      TargetType = "agent"
	TargetConsultant TargetType = "consultant"
)

// Review: отзыв с оценкой на агента или консультанта.
type Review struct {
	Base

	TargetID    string     `json:"target_id"`
	TargetType  TargetType `json:"target_type"`
	Stars       int        `json:"stars"`
	Description *string    `json:"description,omitempty"`
}

// ReviewIn: тело запроса POST .../review.
type ReviewIn struct {
	Stars       *int    `json:"stars"`
	Description *string `json:"description,omitempty"`
}
