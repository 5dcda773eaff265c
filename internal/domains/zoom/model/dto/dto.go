package dto

import (
	"strings"

	"consultation/internal/domains/zoom/model"
	gDto "consultation/shared/dto"
)

const visibleSecretChars = 4

type CreateCredentialRequest struct {
	APIKey    string  `json:"api_key"    validate:"required,max=100"`
	SecretKey string  `json:"secret_key" validate:"required,max=100"`
	StaffID   *string `json:"staff_id"   validate:"omitempty,max=50"`
}

type UpdateCredentialRequest struct {
	APIKey    string `json:"api_key"    validate:"omitempty,max=100"`
	SecretKey string `json:"secret_key" validate:"omitempty,max=100"`
}

type CredentialResponse struct {
	ID        string  `json:"id"`
	StaffID   *string `json:"staff_id"`
	APIKey    string  `json:"api_key"`
	SecretKey string  `json:"secret_key"`
	gDto.Metadata
}

// FromModel copies the credential with its secret masked.
func (r *CredentialResponse) FromModel(model model.Credential, secret string) {
	r.ID = model.ID
	r.StaffID = model.StaffID
	r.APIKey = model.APIKey
	r.SecretKey = mask(secret)
	r.Metadata.FromModel(model.Metadata)
}

func mask(secret string) string {
	if len(secret) <= visibleSecretChars {
		return strings.Repeat("*", len(secret))
	}

	return strings.Repeat("*", len(secret)-visibleSecretChars) + secret[len(secret)-visibleSecretChars:]
}
