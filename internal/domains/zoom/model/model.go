package model

import "consultation/shared/model"

const (
	TableName  = "zoom_credentials"
	EntityName = "zoom_credential"

	FieldID        = "id"
	FieldStaffID   = "staff_id"
	FieldAPIKey    = "api_key"
	FieldSecretKey = "secret_key"
)

// Credential is a Zoom API key pair. StaffID nil is the organisation-wide set.
// SecretKey is kept sealed.
type Credential struct {
	ID           string  `db:"id"`
	Organisation string  `db:"organisation"`
	StaffID      *string `db:"staff_id"`
	APIKey       string  `db:"api_key"`
	SecretKey    string  `db:"secret_key"`
	model.SoftDelete
	model.Metadata
}
