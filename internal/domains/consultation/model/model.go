package model

import "consultation/shared/model"

const (
	TableName  = "consultations"
	EntityName = "consultation"

	FieldID             = "id"
	FieldName           = "name"
	FieldDescription    = "description"
	FieldCategoryID     = "category_id"
	FieldDuration       = "duration"
	FieldIsStaffEnabled = "is_staff_enabled"
	FieldImage          = "image"
)

const (
	OfferingTableName  = "consultation_offerings"
	OfferingEntityName = "consultation_offering"

	FieldConsultationID = "consultation_id"
	FieldStaffID        = "staff_id"
	FieldMode           = "mode"
)

// Meeting modes as stored and sent over the wire.
const (
	ModeOnline   = "ON_LINE"
	ModeOffline  = "OFF_LINE"
	ModeDoorstep = "DOOR_STEP"
)

// MaxModes is the number of distinct meeting modes a consultation can be offered in.
const MaxModes = 3

func IsValidMode(mode string) bool {
	switch mode {
	case ModeOnline, ModeOffline, ModeDoorstep:
		return true
	default:
		return false
	}
}

type Consultation struct {
	ID             string `db:"id"`
	Organisation   string `db:"organisation"`
	CategoryID     string `db:"category_id"`
	Name           string `db:"name"`
	Description    string `db:"description"`
	Image          string `db:"image"`
	Duration       int    `db:"duration"`
	IsStaffEnabled bool   `db:"is_staff_enabled"`
	model.SoftDelete
	model.Metadata
}

// Offering is one pricing row of a consultation. A nil StaffID marks the default row for
// its mode; staff rows only carry the staff surcharge.
type Offering struct {
	ID                string  `db:"id"`
	Organisation      string  `db:"organisation"`
	ConsultationID    string  `db:"consultation_id"`
	StaffID           *string `db:"staff_id"`
	Mode              string  `db:"mode"`
	DiscountType      string  `db:"discount_type"`
	DiscountValue     int     `db:"discount_value"`
	Price             int     `db:"price"`
	FinalPrice        int     `db:"final_price"`
	IsStaffEnabled    bool    `db:"is_staff_enabled"`
	StaffSpecialPrice int     `db:"staff_special_price"`
	model.SoftDelete
	model.Metadata
}
