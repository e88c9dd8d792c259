package models

import "time"

type Deal struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	ExternalID *string           `json:"external_id,omitempty"`
	Name       string            `json:"name"`
	Stage      string            `json:"stage"`
	Amount     float64           `json:"amount"`
	Pipeline   string            `json:"pipeline"`
	Properties map[string]string `json:"properties,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
