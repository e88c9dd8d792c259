package models

import "time"

type Contact struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ExternalID *string   `json:"external_id,omitempty"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Company    string    `json:"company"`
	CreatedAt  time.Time `json:"created_at"`
}
