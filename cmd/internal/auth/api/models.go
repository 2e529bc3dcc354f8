package authapi

import "time"

// registerRequest is the POST /clients body.
type registerRequest struct {
	Phone    string `json:"phone" validate:"required_without=Email,omitempty,min=3,max=32"`
	Email    string `json:"email" validate:"required_without=Phone,omitempty,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
	Name     string `json:"name" validate:"omitempty,max=100"`
	FullName string `json:"full_name" validate:"omitempty,max=200"`
}

type clientSummary struct {
	ID       int64   `json:"id"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type clientResponse struct {
	ID        int64     `json:"id"`
	Name      *string   `json:"name"`
	FullName  *string   `json:"full_name"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	Role      *string   `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	Client      *clientSummary `json:"client,omitempty"`
}

type meResponse struct {
	Status string         `json:"status"`
	User   clientResponse `json:"user"`
}

type checkResponse struct {
	Status   string `json:"status"`
	ClientID int64  `json:"client_id"`
}

type statusResponse struct {
	Status string `json:"status"`
}
