package model

import "consultation/shared/model"

const (
	TableName  = "categories"
	EntityName = "category"

	FieldID          = "id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldImage       = "image"
)

type Category struct {
	ID           string `db:"id"`
	Organisation string `db:"organisation"`
	Name         string `db:"name"`
	Description  string `db:"description"`
	Image        string `db:"image"`
	model.SoftDelete
	model.Metadata
}
