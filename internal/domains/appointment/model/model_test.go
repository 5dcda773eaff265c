package model_test

import (
	"testing"

	"consultation/internal/domains/appointment/model"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{name: "hold to accepted", from: model.StatusHold, to: model.StatusAccepted},
		{name: "hold to rejected", from: model.StatusHold, to: model.StatusRejected},
		{name: "hold to completed", from: model.StatusHold, to: model.StatusCompleted},
		{name: "hold to no show", from: model.StatusHold, to: model.StatusNoShow},
		{name: "same status", from: model.StatusAccepted, to: model.StatusAccepted},
		{name: "accepted to completed", from: model.StatusAccepted, to: model.StatusCompleted},
		{name: "accepted to no show", from: model.StatusAccepted, to: model.StatusNoShow},
		{name: "accepted to rejected", from: model.StatusAccepted, to: model.StatusRejected},
		{name: "no show back to hold", from: model.StatusNoShow, to: model.StatusHold},
		{name: "rejected is final", from: model.StatusRejected, to: model.StatusHold, wantErr: true},
		{name: "unknown status", from: model.StatusHold, to: "CANCELLED", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.CanTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidStatus)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestAppointment_HasMeeting(t *testing.T) {
	assert.False(t, model.Appointment{}.HasMeeting())
	assert.False(t, model.Appointment{MeetingInfo: types.JSONText(`{}`)}.HasMeeting())
	assert.False(t, model.Appointment{MeetingInfo: types.JSONText(`null`)}.HasMeeting())
	assert.True(t, model.Appointment{MeetingInfo: types.JSONText(`{"join_url":"https://zoom.us/j/1"}`)}.HasMeeting())

	assert.JSONEq(t, `{}`, string(model.Appointment{}.Meeting()))
}

func TestIsValidPaymentMode(t *testing.T) {
	assert.True(t, model.IsValidPaymentMode(model.PaymentModeCOD))
	assert.True(t, model.IsValidPaymentMode(model.PaymentModeOnline))
	assert.False(t, model.IsValidPaymentMode("CASH"))
}
