package dto

import (
	"mime/multipart"

	"consultation/internal/domains/category/model"
	"consultation/shared"
	gDto "consultation/shared/dto"
	gModel "consultation/shared/model"
	"consultation/shared/timezone"

	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=150"`
	Description string `json:"description" validate:"omitempty,max=300"`
	Image       string `json:"image"       validate:"omitempty,max=150"`
}

func (c *CreateCategoryRequest) ToModel(organisation, user string) model.Category {
	return model.Category{
		ID:           uuid.NewString(),
		Organisation: organisation,
		Name:         c.Name,
		Description:  c.Description,
		Image:        c.Image,
		SoftDelete:   gModel.SoftDelete{IsActive: true},
		Metadata:     gModel.NewMetadata(timezone.Now(), user),
	}
}

type UpdateCategoryRequest struct {
	Name        string  `db:"name"        json:"name"        validate:"omitempty,max=150"`
	Description *string `db:"description" json:"description" validate:"omitempty,max=300"`
	Image       *string `db:"image"       json:"image"       validate:"omitempty,max=150"`
}

type UploadImageRequest struct {
	Image     *multipart.FileHeader `validate:"required,mimetypes=image/png image/jpg image/jpeg,maxfilesize=2"`
	ImageFile multipart.File        `validate:"-"`
}

type CategoryResponse struct {
	ID           string `json:"id"`
	Organisation string `json:"organisation"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	gDto.Metadata
}

func (r *CategoryResponse) FromModel(model model.Category) {
	r.ID = model.ID
	r.Organisation = model.Organisation
	r.Name = model.Name
	r.Description = model.Description
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
	TotalPage  int                `json:"total_page"`
	TotalData  int                `json:"total_data"`
}

func (r *GetCategoriesResponse) FromModels(models []model.Category, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Categories = make([]CategoryResponse, len(models))
	for i, mod := range models {
		r.Categories[i].FromModel(mod)
	}
}
