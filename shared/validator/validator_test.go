package validator_test

import (
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"consultation/shared/failure"
	"consultation/shared/validator"

	"github.com/stretchr/testify/assert"
)

type bookingShape struct {
	ConsultationID string `json:"consultation_id" validate:"required,uuid"`
	Date           string `json:"date" validate:"required"`
	Slot           string `json:"slot" validate:"required"`
	MeetingType    string `json:"meeting_type" validate:"required,oneof=ON_LINE OFF_LINE DOOR_STEP"`
	Duration       int    `json:"duration" validate:"gte=1,lte=1440"`
}

type namedShape struct {
	Name string `json:"name" validate:"name"`
}

type noteShape struct {
	Note string `json:"note,omitempty" validate:"omitempty,max=5"`
	Code string `validate:"required"`
}

type imageShape struct {
	Image *multipart.FileHeader `validate:"required,mimetypes=image/png image/jpeg,maxfilesize=2"`
}

func validBooking() bookingShape {
	return bookingShape{
		ConsultationID: "7b0c3c36-1b6a-4f53-8b43-0f7e7f0a9d10",
		Date:           "01-01-2030",
		Slot:           "10:30",
		MeetingType:    "ON_LINE",
		Duration:       30,
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *bookingShape)
		wantMsg string
	}{
		{
			name:   "valid",
			mutate: func(_ *bookingShape) {},
		},
		{
			name:    "missing date",
			mutate:  func(b *bookingShape) { b.Date = "" },
			wantMsg: "date is required",
		},
		{
			name:    "unknown meeting type",
			mutate:  func(b *bookingShape) { b.MeetingType = "VIDEO" },
			wantMsg: "meeting_type must be one of ON_LINE OFF_LINE DOOR_STEP",
		},
		{
			name:    "bad consultation id",
			mutate:  func(b *bookingShape) { b.ConsultationID = "nope" },
			wantMsg: "consultation_id must be a valid id",
		},
		{
			name:    "duration too long",
			mutate:  func(b *bookingShape) { b.Duration = 2000 },
			wantMsg: "duration must be less than or equal to 1440",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(&b)

			err := validator.ValidateStruct(&b)
			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			assert.EqualError(t, err, tt.wantMsg)
			assert.Equal(t, 400, failure.GetCode(err))
		})
	}
}

func TestValidate_DecodesBody(t *testing.T) {
	var b bookingShape

	err := validator.Validate(strings.NewReader(`{"consultation_id":"7b0c3c36-1b6a-4f53-8b43-0f7e7f0a9d10","date":"01-01-2030","slot":"10:30","meeting_type":"OFF_LINE","duration":45}`), &b)
	assert.NoError(t, err)
	assert.Equal(t, "OFF_LINE", b.MeetingType)

	err = validator.Validate(strings.NewReader(`{"date":`), &b)
	assert.Error(t, err)
	assert.Equal(t, 400, failure.GetCode(err))
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("COD", "oneof=COD ON_LINE"))
	assert.Error(t, validator.ValidateVar("CARD", "oneof=COD ON_LINE"))
	assert.Error(t, validator.ValidateVar("", "required"))
}

func TestNameValidation(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "single word", value: "Haircut", valid: true},
		{name: "several words", value: "Deep Tissue Massage 60", valid: true},
		{name: "surrounding spaces", value: "  Facial  ", valid: true},
		{name: "word starting with symbol", value: "Hair #cut", valid: false},
		{name: "blank", value: "   ", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&namedShape{Name: tt.value})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, "Invalid name")
			}
		})
	}
}

func TestFileValidation(t *testing.T) {
	header := func(contentType string, size int64) *multipart.FileHeader {
		return &multipart.FileHeader{
			Filename: "cover",
			Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
			Size:     size,
		}
	}

	assert.NoError(t, validator.ValidateStruct(&imageShape{Image: header("image/png", 1024)}))
	assert.Error(t, validator.ValidateStruct(&imageShape{Image: header("application/pdf", 1024)}))
	assert.Error(t, validator.ValidateStruct(&imageShape{Image: header("image/jpeg", 3*1024*1024)}))
}

func TestMessages(t *testing.T) {
	err := validator.ValidateStruct(&noteShape{Note: "too long", Code: "x"})
	assert.EqualError(t, err, "note must be at most 5 characters")

	err = validator.ValidateStruct(&noteShape{})
	assert.EqualError(t, err, "Code is required")
}
