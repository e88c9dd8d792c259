package models

import "time"

type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	PasswordHash     []byte    `json:"-"`
	SuperAdmin       bool      `json:"super_admin"`
	MetaAccessToken  *string   `json:"-"`
	MetaAdAccountID  *string   `json:"meta_ad_account_id,omitempty"`
	HubSpotToken     *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
