package authapi

import (
	"stylehub/cmd/identity"
	"stylehub/cmd/internal/auth/session"
)

func toClientSummary(c identity.Client) *clientSummary {
	return &clientSummary{
		ID:       c.ID,
		FullName: c.FullName,
		Phone:    c.Phone,
		Email:    c.Email,
	}
}

func toClientResponse(c identity.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		FullName:  c.FullName,
		Phone:     c.Phone,
		Email:     c.Email,
		Role:      c.Role,
		CreatedAt: c.CreatedAt,
	}
}

func toTokenResponse(issued session.Issued) tokenResponse {
	return tokenResponse{
		AccessToken: issued.AccessToken,
		TokenType:   "bearer",
	}
}
