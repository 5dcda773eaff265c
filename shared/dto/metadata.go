package dto

import (
	"time"

	"consultation/shared/constant"
	"consultation/shared/model"
	"consultation/shared/timezone"
)

// Metadata is the audit block embedded in every resource response.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by"`
}

func (m *Metadata) FromModel(source model.Metadata) {
	*m = Metadata{
		CreatedAt:  formatTimestamp(source.CreatedAt),
		ModifiedAt: formatTimestamp(source.ModifiedAt),
		CreatedBy:  source.CreatedBy,
		ModifiedBy: source.ModifiedBy,
	}
}

// formatTimestamp renders t in the application timezone; the zero time renders empty.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return timezone.Format(t, constant.DateFormat)
}
