package service_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"consultation/infras/otel/mocks"
	appointmentMocks "consultation/internal/domains/appointment/mocks"
	"consultation/internal/domains/appointment/model"
	"consultation/internal/domains/appointment/model/dto"
	"consultation/internal/domains/appointment/orchestrator"
	"consultation/internal/domains/appointment/service"
	"consultation/internal/domains/appointment/slotguard"
	"consultation/internal/domains/appointment/validation"
	consultationMocks "consultation/internal/domains/consultation/mocks"
	consultationModel "consultation/internal/domains/consultation/model"
	outboxMocks "consultation/internal/domains/outbox/mocks"
	outboxModel "consultation/internal/domains/outbox/model"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	gModel "consultation/shared/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func ptr(s string) *string { return &s }

type fixture struct {
	repo          *appointmentMocks.MockAppointment
	consultations *consultationMocks.MockConsultation
	offerings     *consultationMocks.MockOffering
	outbox        *outboxMocks.MockOutbox
	svc           service.Appointment
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	clock := func() time.Time { return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC) }

	f := fixture{
		repo:          appointmentMocks.NewMockAppointment(ctrl),
		consultations: consultationMocks.NewMockConsultation(ctrl),
		offerings:     consultationMocks.NewMockOffering(ctrl),
		outbox:        outboxMocks.NewMockOutbox(ctrl),
	}

	f.svc = service.New(
		f.repo,
		f.consultations,
		f.outbox,
		slotguard.New(f.repo, mocks.NewOtel()),
		validation.New(f.offerings, mocks.NewOtel(), validation.WithClock(clock)),
		mocks.NewOtel(),
	)

	f.repo.EXPECT().
		WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(tx *sqlx.Tx) error) error {
			return fn(nil)
		}).
		AnyTimes()

	return f
}

func endUserContext() context.Context {
	return gModel.ContextWithActor(context.Background(), gModel.Actor{
		UserID:       "u-1",
		AdminID:      "admin-1",
		Organisation: "acme",
		Type:         constant.ActorEndUser,
		Token:        "tok",
	})
}

func adminContext() context.Context {
	return gModel.ContextWithActor(context.Background(), gModel.Actor{
		UserID:       "admin-1",
		AdminID:      "admin-1",
		Organisation: "acme",
		Type:         constant.ActorAdmin,
		Token:        "admin-tok",
	})
}

func haircut(staffEnabled bool) consultationModel.Consultation {
	return consultationModel.Consultation{ID: "c-haircut", Organisation: "acme", Name: "Haircut", Duration: 30, IsStaffEnabled: staffEnabled}
}

func haircutOfferings() []consultationModel.Offering {
	return []consultationModel.Offering{
		{ID: "o-1", ConsultationID: "c-haircut", Mode: consultationModel.ModeOnline, DiscountType: "PERCENTAGE", DiscountValue: 10, Price: 100, FinalPrice: 90},
		{ID: "o-2", ConsultationID: "c-haircut", StaffID: ptr("s1"), Mode: consultationModel.ModeOnline, IsStaffEnabled: true, StaffSpecialPrice: 20},
	}
}

func booking(staffID *string) dto.CreateAppointmentRequest {
	return dto.CreateAppointmentRequest{
		ConsultationID:  "c-haircut",
		StaffID:         staffID,
		Date:            "12-03-2026",
		Slot:            "10:30",
		MeetingType:     consultationModel.ModeOnline,
		PaymentMode:     model.PaymentModeCOD,
		TermsConditions: true,
	}
}

func held() model.Appointment {
	return model.Appointment{
		ID:                "a-1",
		Organisation:      "acme",
		ConsultationID:    "c-haircut",
		StaffID:           ptr("s1"),
		CustomerID:        "u-1",
		Date:              "12-03-2026",
		Slot:              "10:30",
		AppointmentStatus: model.StatusHold,
		MeetingType:       consultationModel.ModeOnline,
		PaymentMode:       model.PaymentModeOnline,
		PaymentStatus:     model.PaymentStatusAwaited,
		DisplayBookingID:  "OR-4821",
		Amount:            110,
		SoftDelete:        gModel.SoftDelete{IsActive: true},
	}
}

func jobOf(t *testing.T, msg outboxModel.Message) orchestrator.Job {
	t.Helper()

	var job orchestrator.Job
	require.NoError(t, json.Unmarshal(msg.Payload, &job))

	return job
}

func TestAppointmentService_Create(t *testing.T) {
	tests := []struct {
		name         string
		staffEnabled bool
		staffID      *string
		wantStaff    *string
		wantAmount   int
	}{
		{name: "default price", wantAmount: 90},
		{name: "staff surcharge", staffEnabled: true, staffID: ptr("s1"), wantStaff: ptr("s1"), wantAmount: 110},
		{name: "staff dropped when not staff priced", staffID: ptr("s1"), wantAmount: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.consultations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(haircut(tt.staffEnabled), nil)
			f.repo.EXPECT().Exist(gomock.Any(), slotguard.Filter(tt.wantStaff, "12-03-2026", "10:30", "acme")).Return(false, nil)
			f.offerings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(haircutOfferings(), nil).Times(2)

			var stored model.Appointment
			f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, appt model.Appointment) error {
					stored = appt

					return nil
				})

			var intent outboxModel.Message
			f.outbox.EXPECT().InsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, msg outboxModel.Message) error {
					intent = msg

					return nil
				})

			res, err := f.svc.Create(endUserContext(), booking(tt.staffID))
			require.NoError(t, err)

			assert.Equal(t, tt.wantAmount, res.Amount)
			assert.Equal(t, model.StatusHold, res.AppointmentStatus)
			assert.Equal(t, model.PaymentStatusAwaited, res.PaymentStatus)
			assert.False(t, res.IsPaid)
			assert.True(t, res.IsActive)
			assert.Equal(t, "u-1", res.CustomerID)
			assert.True(t, strings.HasPrefix(res.DisplayBookingID, "OR-"))
			assert.Equal(t, stored.ID, res.ID)
			assert.Equal(t, tt.wantAmount, stored.Amount)
			assert.Equal(t, tt.wantStaff, stored.StaffID)

			assert.Equal(t, outboxModel.KindOrchestration, intent.Kind)
			assert.Equal(t, stored.ID, intent.AggregateID)
			assert.Equal(t, orchestrator.Job{
				Kind:          orchestrator.KindCreated,
				AppointmentID: stored.ID,
				Organisation:  "acme",
				AdminID:       "admin-1",
				Token:         "tok",
				ActorType:     constant.ActorEndUser,
			}, jobOf(t, intent))
		})
	}
}

func TestAppointmentService_CreateRejected(t *testing.T) {
	tests := []struct {
		name      string
		req       func() dto.CreateAppointmentRequest
		setupMock func(f fixture)
		wantErr   error
	}{
		{
			name: "missing consultation",
			req: func() dto.CreateAppointmentRequest {
				req := booking(nil)
				req.ConsultationID = ""

				return req
			},
			setupMock: func(_ fixture) {},
			wantErr:   service.ErrMissingConsultation,
		},
		{
			name: "unknown consultation",
			req:  func() dto.CreateAppointmentRequest { return booking(nil) },
			setupMock: func(f fixture) {
				f.consultations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(consultationModel.Consultation{}, nil)
			},
			wantErr: validation.ErrInvalidConsultation,
		},
		{
			name: "slot taken",
			req:  func() dto.CreateAppointmentRequest { return booking(nil) },
			setupMock: func(f fixture) {
				f.consultations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(haircut(false), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr: slotguard.ErrSlotUnavailable,
		},
		{
			name: "mode not offered",
			req: func() dto.CreateAppointmentRequest {
				req := booking(nil)
				req.MeetingType = consultationModel.ModeOffline

				return req
			},
			setupMock: func(f fixture) {
				f.consultations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(haircut(false), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.offerings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(haircutOfferings(), nil)
			},
			wantErr: validation.ErrInvalidMeetingType,
		},
		{
			name: "lost the race on the slot index",
			req:  func() dto.CreateAppointmentRequest { return booking(nil) },
			setupMock: func(f fixture) {
				f.consultations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(haircut(false), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.offerings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(haircutOfferings(), nil).Times(2)
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: "23505", Constraint: model.SlotIndexName})
			},
			wantErr: slotguard.ErrSlotUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			_, err := f.svc.Create(endUserContext(), tt.req())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAppointmentService_CreateByAdminNeedsCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(adminContext(), booking(nil))
	assert.ErrorIs(t, err, service.ErrMissingCustomer)
}

func TestAppointmentService_Reschedule(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Appointment, error) {
			where, args := filter.GetWhereClause()
			assert.Contains(t, where, "appointments.customer_id = :customer_id")
			assert.Equal(t, "u-1", args["customer_id"])

			return held(), nil
		})
	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

	var fields map[string]any
	f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Nil(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, req map[string]any, _ gDto.FilterGroup) (int64, error) {
			fields = req

			return 1, nil
		})

	var intent outboxModel.Message
	f.outbox.EXPECT().InsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, msg outboxModel.Message) error {
			intent = msg

			return nil
		})

	res, err := f.svc.Reschedule(endUserContext(), dto.RescheduleRequest{Date: "14-03-2026", Slot: "16:00"}, "a-1")
	require.NoError(t, err)

	assert.Equal(t, "14-03-2026", res.Date)
	assert.Equal(t, "16:00", res.Slot)
	assert.Equal(t, model.StatusHold, res.AppointmentStatus)
	assert.Equal(t, 110, res.Amount)
	assert.Equal(t, "OR-4821", res.DisplayBookingID)

	assert.Equal(t, "14-03-2026", fields[model.FieldDate])
	assert.Equal(t, "16:00", fields[model.FieldSlot])
	assert.NotContains(t, fields, model.FieldAppointmentStatus)
	assert.NotContains(t, fields, "amount")

	job := jobOf(t, intent)
	assert.Equal(t, orchestrator.KindRescheduled, job.Kind)
	assert.Equal(t, "12-03-2026", job.PreviousDate)
	assert.Equal(t, "10:30", job.PreviousSlot)
}

func TestAppointmentService_RescheduleRejected(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.RescheduleRequest
		setupMock func(f fixture)
		wantErr   error
	}{
		{
			name:      "past date",
			req:       dto.RescheduleRequest{Date: "01-03-2026", Slot: "16:00"},
			setupMock: func(_ fixture) {},
			wantErr:   validation.ErrInvalidDate,
		},
		{
			name: "not the customer's appointment",
			req:  dto.RescheduleRequest{Date: "14-03-2026", Slot: "16:00"},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{}, nil)
			},
			wantErr: service.ErrAppointmentNotFound,
		},
		{
			name: "slot taken",
			req:  dto.RescheduleRequest{Date: "14-03-2026", Slot: "16:00"},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(held(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr: slotguard.ErrSlotUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			_, err := f.svc.Reschedule(endUserContext(), tt.req, "a-1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAppointmentService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		req        dto.UpdateAppointmentRequest
		wantStatus string
		wantActive bool
		wantIntent bool
	}{
		{
			name:       "rejection deactivates and notifies",
			req:        dto.UpdateAppointmentRequest{AppointmentStatus: ptr(model.StatusRejected)},
			wantStatus: model.StatusRejected,
			wantIntent: true,
		},
		{
			name:       "acceptance is queued without deactivation",
			req:        dto.UpdateAppointmentRequest{AppointmentStatus: ptr(model.StatusAccepted)},
			wantStatus: model.StatusAccepted,
			wantActive: true,
			wantIntent: true,
		},
		{
			name:       "accepted appointment is completed",
			current:    model.StatusAccepted,
			req:        dto.UpdateAppointmentRequest{AppointmentStatus: ptr(model.StatusCompleted)},
			wantStatus: model.StatusCompleted,
			wantActive: true,
			wantIntent: true,
		},
		{
			name:       "accepted appointment is rejected",
			current:    model.StatusAccepted,
			req:        dto.UpdateAppointmentRequest{AppointmentStatus: ptr(model.StatusRejected)},
			wantStatus: model.StatusRejected,
			wantIntent: true,
		},
		{
			name:       "notes only",
			req:        dto.UpdateAppointmentRequest{Notes: ptr("bring photos")},
			wantStatus: model.StatusHold,
			wantActive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			current := held()
			if tt.current != "" {
				current.AppointmentStatus = tt.current
			}

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)

			var fields map[string]any
			f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Nil(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ *sqlx.Tx, req map[string]any, _ gDto.FilterGroup) (int64, error) {
					fields = req

					return 1, nil
				})

			var intent outboxModel.Message
			if tt.wantIntent {
				f.outbox.EXPECT().InsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, msg outboxModel.Message) error {
						intent = msg

						return nil
					})
			}

			res, err := f.svc.UpdateStatus(adminContext(), tt.req, "a-1")
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, res.AppointmentStatus)
			assert.Equal(t, tt.wantActive, res.IsActive)

			if !tt.wantActive {
				assert.Equal(t, false, fields[constant.FieldIsActive])
			}

			if tt.wantIntent {
				job := jobOf(t, intent)
				assert.Equal(t, orchestrator.KindStatusChanged, job.Kind)
				assert.Equal(t, tt.wantStatus, job.Status)
				assert.Equal(t, constant.ActorAdmin, job.ActorType)
			}
		})
	}
}

func TestAppointmentService_UpdateStatusRejected(t *testing.T) {
	rejected := held()
	rejected.AppointmentStatus = model.StatusRejected

	tests := []struct {
		name    string
		req     dto.UpdateAppointmentRequest
		current *model.Appointment
		wantErr error
	}{
		{name: "empty", req: dto.UpdateAppointmentRequest{}, wantErr: service.ErrEmptyUpdate},
		{name: "unknown status", req: dto.UpdateAppointmentRequest{AppointmentStatus: ptr("CANCELLED")}, current: ptr2(held()), wantErr: model.ErrInvalidStatus},
		{name: "rejected is final", req: dto.UpdateAppointmentRequest{AppointmentStatus: ptr(model.StatusAccepted)}, current: &rejected, wantErr: model.ErrInvalidStatus},
		{name: "payment mode", req: dto.UpdateAppointmentRequest{PaymentMode: ptr("CASH")}, current: ptr2(held()), wantErr: validation.ErrInvalidPaymentMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.current != nil {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(*tt.current, nil)
			}

			_, err := f.svc.UpdateStatus(adminContext(), tt.req, "a-1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func ptr2(a model.Appointment) *model.Appointment { return &a }

func TestAppointmentService_Delete(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(held(), nil)
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req map[string]any, _ gDto.FilterGroup) (int64, error) {
			assert.Equal(t, false, req[constant.FieldIsActive])
			assert.Equal(t, "u-1", req[constant.FieldDeletedBy])

			return 1, nil
		})

	require.NoError(t, f.svc.Delete(endUserContext(), "a-1"))
}

func TestAppointmentService_GetAll(t *testing.T) {
	f := newFixture(t)
	params := gDto.QueryParams{Page: 1, Limit: 10}

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(11, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Appointment, error) {
			where, _ := filter.GetWhereClause()
			assert.NotContains(t, where, "customer_id")

			return []model.Appointment{held()}, nil
		})

	res, err := f.svc.GetAll(adminContext(), params)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalPage)
	assert.Equal(t, 11, res.TotalData)
	require.Len(t, res.Appointments, 1)
	assert.JSONEq(t, `{}`, string(res.Appointments[0].MeetingInfo))
}

func TestAppointmentService_ConfirmPayment(t *testing.T) {
	t.Run("records the payment and queues notifications", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(held(), nil)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Nil(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, req map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, model.PaymentStatusSuccess, req[model.FieldPaymentStatus])
				assert.Equal(t, true, req[model.FieldIsPaid])

				return 1, nil
			})

		var intent outboxModel.Message
		f.outbox.EXPECT().InsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, msg outboxModel.Message) error {
				intent = msg

				return nil
			})

		require.NoError(t, f.svc.ConfirmPayment(context.Background(), "a-1", "acme"))

		job := jobOf(t, intent)
		assert.Equal(t, orchestrator.KindPaymentConfirmed, job.Kind)
		assert.Equal(t, constant.ActorEndUser, job.ActorType)
		assert.Equal(t, "acme", job.Organisation)
	})

	t.Run("already paid", func(t *testing.T) {
		f := newFixture(t)

		paid := held()
		paid.PaymentStatus = model.PaymentStatusSuccess
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(paid, nil)

		require.NoError(t, f.svc.ConfirmPayment(context.Background(), "a-1", "acme"))
	})

	t.Run("unknown appointment", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{}, nil)

		assert.ErrorIs(t, f.svc.ConfirmPayment(context.Background(), "a-9", "acme"), service.ErrAppointmentNotFound)
	})

	t.Run("only active appointments are looked up", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Appointment, error) {
				where, args := filter.GetWhereClause()
				assert.Contains(t, where, "appointments.is_active = :is_active")
				assert.Equal(t, true, args["is_active"])
				assert.Equal(t, "a-1", args["id"])

				return model.Appointment{}, nil
			})

		assert.ErrorIs(t, f.svc.ConfirmPayment(context.Background(), "a-1", "acme"), service.ErrAppointmentNotFound)
	})

	t.Run("rejected appointment is not confirmed", func(t *testing.T) {
		f := newFixture(t)

		rejected := held()
		rejected.AppointmentStatus = model.StatusRejected
		rejected.IsActive = false
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(rejected, nil)

		assert.ErrorIs(t, f.svc.ConfirmPayment(context.Background(), "a-1", "acme"), service.ErrAppointmentNotFound)
	})
}

func TestAppointmentService_UpdateStaff(t *testing.T) {
	t.Run("offered staff is assigned", func(t *testing.T) {
		f := newFixture(t)

		current := held()
		current.StaffID = nil
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		f.offerings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(haircutOfferings(), nil)

		var fields map[string]any
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Nil(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, req map[string]any, _ gDto.FilterGroup) (int64, error) {
				fields = req

				return 1, nil
			})

		res, err := f.svc.UpdateStatus(adminContext(), dto.UpdateAppointmentRequest{StaffID: ptr("s1")}, "a-1")
		require.NoError(t, err)

		assert.Equal(t, "s1", fields[model.FieldStaffID])
		assert.Equal(t, ptr("s1"), res.StaffID)
	})

	t.Run("unknown staff is refused", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(held(), nil)
		f.offerings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(haircutOfferings(), nil)

		_, err := f.svc.UpdateStatus(adminContext(), dto.UpdateAppointmentRequest{StaffID: ptr("s-intruder")}, "a-1")
		assert.ErrorIs(t, err, validation.ErrInvalidStaff)
	})
}

func TestAppointmentService_DeleteFreesSlot(t *testing.T) {
	f := newFixture(t)

	var rows []model.Appointment

	f.consultations.EXPECT().Get(gomock.Any(), gomock.Any()).Return(haircut(false), nil).Times(3)
	f.offerings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(haircutOfferings(), nil).Times(4)
	f.outbox.EXPECT().InsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).Return(nil).Times(2)

	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
			_, args := filter.GetWhereClause()
			for _, row := range rows {
				if args["is_active"] == row.IsActive && args["date"] == row.Date && args["slot"] == row.Slot && args["organisation"] == row.Organisation {
					return true, nil
				}
			}

			return false, nil
		}).
		Times(3)
	f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, appt model.Appointment) error {
			rows = append(rows, appt)

			return nil
		}).
		Times(2)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.FilterGroup, _ ...string) (model.Appointment, error) {
			return rows[0], nil
		})
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req map[string]any, _ gDto.FilterGroup) (int64, error) {
			rows[0].IsActive = req[constant.FieldIsActive].(bool)

			return 1, nil
		})

	first, err := f.svc.Create(endUserContext(), booking(nil))
	require.NoError(t, err)

	_, err = f.svc.Create(endUserContext(), booking(nil))
	require.ErrorIs(t, err, slotguard.ErrSlotUnavailable)

	require.NoError(t, f.svc.Delete(endUserContext(), first.ID))

	second, err := f.svc.Create(endUserContext(), booking(nil))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, rows, 2)
}
