package dto

import (
	"encoding/json"
	"mime/multipart"

	"consultation/internal/domains/consultation/model"
	"consultation/shared"
	gDto "consultation/shared/dto"
)

type OfferingRequest struct {
	Mode          string `json:"mode"`
	DiscountType  string `json:"discount_type"`
	DiscountValue int    `json:"discount_value"`
	Price         int    `json:"price"`
}

type StaffOfferingRequest struct {
	StaffID           string `json:"staff_id"`
	Mode              string `json:"mode"`
	StaffSpecialPrice *int   `json:"staff_special_price"`
}

// ConsultationRequest is the full consultation payload used for create and update.
// Offerings are replaced as a whole on update.
type ConsultationRequest struct {
	Name             string                 `json:"name"              validate:"max=150"`
	Description      string                 `json:"description"`
	CategoryID       string                 `json:"category_id"`
	Image            string                 `json:"image"             validate:"omitempty,max=150"`
	Duration         json.Number            `json:"duration"`
	IsStaffEnabled   bool                   `json:"is_staff_enabled"`
	ConsultationData []OfferingRequest      `json:"consultation_data"`
	StaffData        []StaffOfferingRequest `json:"staff_data"`
}

type UploadImageRequest struct {
	Image     *multipart.FileHeader `validate:"required,mimetypes=image/png image/jpg image/jpeg,maxfilesize=2"`
	ImageFile multipart.File        `validate:"-"`
}

type OfferingResponse struct {
	ID            string `json:"id"`
	Mode          string `json:"mode"`
	DiscountType  string `json:"discount_type"`
	DiscountValue int    `json:"discount_value"`
	Price         int    `json:"price"`
	FinalPrice    int    `json:"final_price"`
}

type StaffOfferingResponse struct {
	ID                string `json:"id"`
	StaffID           string `json:"staff_id"`
	Mode              string `json:"mode"`
	StaffSpecialPrice int    `json:"staff_special_price"`
}

type ConsultationResponse struct {
	ID               string                  `json:"id"`
	Organisation     string                  `json:"organisation"`
	CategoryID       string                  `json:"category_id"`
	Name             string                  `json:"name"`
	Description      string                  `json:"description"`
	Image            string                  `json:"image"`
	Duration         int                     `json:"duration"`
	IsStaffEnabled   bool                    `json:"is_staff_enabled"`
	ConsultationData []OfferingResponse      `json:"consultation_data"`
	StaffData        []StaffOfferingResponse `json:"staff_data"`
	gDto.Metadata
}

func (r *ConsultationResponse) FromModel(consultation model.Consultation, offerings []model.Offering) {
	r.ID = consultation.ID
	r.Organisation = consultation.Organisation
	r.CategoryID = consultation.CategoryID
	r.Name = consultation.Name
	r.Description = consultation.Description
	r.Image = consultation.Image
	r.Duration = consultation.Duration
	r.IsStaffEnabled = consultation.IsStaffEnabled
	r.Metadata.FromModel(consultation.Metadata)

	r.ConsultationData = []OfferingResponse{}
	r.StaffData = []StaffOfferingResponse{}

	for _, offering := range offerings {
		if offering.ConsultationID != consultation.ID {
			continue
		}

		if offering.StaffID == nil {
			r.ConsultationData = append(r.ConsultationData, OfferingResponse{
				ID:            offering.ID,
				Mode:          offering.Mode,
				DiscountType:  offering.DiscountType,
				DiscountValue: offering.DiscountValue,
				Price:         offering.Price,
				FinalPrice:    offering.FinalPrice,
			})

			continue
		}

		r.StaffData = append(r.StaffData, StaffOfferingResponse{
			ID:                offering.ID,
			StaffID:           *offering.StaffID,
			Mode:              offering.Mode,
			StaffSpecialPrice: offering.StaffSpecialPrice,
		})
	}
}

type GetConsultationsResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	TotalPage     int                    `json:"total_page"`
	TotalData     int                    `json:"total_data"`
}

func (r *GetConsultationsResponse) FromModels(models []model.Consultation, offerings []model.Offering, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Consultations = make([]ConsultationResponse, len(models))
	for i, mod := range models {
		r.Consultations[i].FromModel(mod, offerings)
	}
}
