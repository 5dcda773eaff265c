package relay_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"consultation/config"
	kafkaMocks "consultation/infras/kafka/mocks"
	"consultation/infras/otel/mocks"
	appointmentMocks "consultation/internal/domains/appointment/mocks"
	"consultation/internal/domains/appointment/orchestrator"
	outboxMocks "consultation/internal/domains/outbox/mocks"
	"consultation/internal/domains/outbox/model"
	"consultation/internal/domains/outbox/relay"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	outbox       *outboxMocks.MockOutbox
	orchestrator *appointmentMocks.MockOrchestrator
	publisher    *kafkaMocks.MockPublisher
	relay        *relay.Relay
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.PollInterval = time.Hour
	cfg.Outbox.MaxAttempts = 4
	cfg.Outbox.InitialBackoff = 5 * time.Second
	cfg.Outbox.MaxBackoff = time.Hour
	cfg.Outbox.LeaseDuration = time.Minute

	f := fixture{
		outbox:       outboxMocks.NewMockOutbox(ctrl),
		orchestrator: appointmentMocks.NewMockOrchestrator(ctrl),
		publisher:    kafkaMocks.NewMockPublisher(ctrl),
	}
	f.relay = relay.New(cfg, f.outbox, f.orchestrator, f.publisher, mocks.NewOtel(), nil,
		relay.WithClock(func() time.Time { return now }))

	return f
}

func (f fixture) claim(msgs ...model.Message) {
	f.outbox.EXPECT().ClaimDue(gomock.Any(), 10, now, now.Add(time.Minute)).Return(msgs, nil)
}

func event(attempts int) model.Message {
	return model.Message{
		ID:          "msg-1",
		Kind:        model.KindEvent,
		AggregateID: "a-1",
		Exchange:    "EMAIL_SERVICE_EXCHANGE",
		RoutingKey:  "APPOINTMENT_CREATE",
		Payload:     types.JSONText(`{"type":"EMAIL"}`),
		Status:      model.StatusPending,
		Attempts:    attempts,
	}
}

func TestRelay_DeliversEvent(t *testing.T) {
	f := newFixture(t)

	f.claim(event(0))
	f.publisher.EXPECT().
		Publish(gomock.Any(), "EMAIL_SERVICE_EXCHANGE", "APPOINTMENT_CREATE", json.RawMessage(`{"type":"EMAIL"}`)).
		Return(nil)
	f.outbox.EXPECT().MarkDelivered(gomock.Any(), "msg-1", now).Return(nil)

	assert.Equal(t, 1, f.relay.Drain(context.Background()))
}

func TestRelay_RunsOrchestration(t *testing.T) {
	f := newFixture(t)

	job := orchestrator.Job{Kind: orchestrator.KindCreated, AppointmentID: "a-1", Organisation: "acme", ActorType: "END_USER"}
	msg, err := model.NewOrchestration("acme", "a-1", job, now)
	assert.NoError(t, err)

	f.claim(msg)
	f.orchestrator.EXPECT().Run(gomock.Any(), job).Return(nil)
	f.outbox.EXPECT().MarkDelivered(gomock.Any(), msg.ID, now).Return(nil)

	assert.Equal(t, 1, f.relay.Drain(context.Background()))
}

func TestRelay_Failures(t *testing.T) {
	boom := errors.New("broker unavailable")

	tests := []struct {
		name      string
		msg       model.Message
		setupMock func(f fixture)
	}{
		{
			name: "first failure is retried after the initial backoff",
			msg:  event(0),
			setupMock: func(f fixture) {
				f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)
				f.outbox.EXPECT().MarkFailed(gomock.Any(), "msg-1", 1, now.Add(5*time.Second), boom.Error()).Return(nil)
			},
		},
		{
			name: "backoff grows with the attempts",
			msg:  event(2),
			setupMock: func(f fixture) {
				f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)
				f.outbox.EXPECT().MarkFailed(gomock.Any(), "msg-1", 3, now.Add(11250*time.Millisecond), boom.Error()).Return(nil)
			},
		},
		{
			name: "last attempt dead-letters",
			msg:  event(3),
			setupMock: func(f fixture) {
				f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)
				f.outbox.EXPECT().MarkDead(gomock.Any(), "msg-1", 4, boom.Error()).Return(nil)
			},
		},
		{
			name: "undecodable job dead-letters at once",
			msg: model.Message{
				ID:      "msg-1",
				Kind:    model.KindOrchestration,
				Payload: types.JSONText(`"not a job"`),
			},
			setupMock: func(f fixture) {
				f.outbox.EXPECT().MarkDead(gomock.Any(), "msg-1", 1, gomock.Any()).Return(nil)
			},
		},
		{
			name: "unknown kind dead-letters at once",
			msg:  model.Message{ID: "msg-1", Kind: "WEBHOOK", Payload: types.JSONText(`{}`)},
			setupMock: func(f fixture) {
				f.outbox.EXPECT().MarkDead(gomock.Any(), "msg-1", 1, gomock.Any()).Return(nil)
			},
		},
		{
			name: "orchestration failure is retried",
			msg: model.Message{
				ID:      "msg-1",
				Kind:    model.KindOrchestration,
				Payload: types.JSONText(`{"kind":"CREATED","appointment_id":"a-1"}`),
			},
			setupMock: func(f fixture) {
				f.orchestrator.EXPECT().Run(gomock.Any(), gomock.Any()).Return(orchestrator.ErrAppointmentNotFound)
				f.outbox.EXPECT().MarkFailed(gomock.Any(), "msg-1", 1, now.Add(5*time.Second), gomock.Any()).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.claim(tt.msg)
			tt.setupMock(f)

			assert.Equal(t, 1, f.relay.Drain(context.Background()))
		})
	}
}

func TestRelay_ClaimFailure(t *testing.T) {
	f := newFixture(t)

	f.outbox.EXPECT().ClaimDue(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	assert.Zero(t, f.relay.Drain(context.Background()))
}

func TestRelay_RunStopsWithContext(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, f.relay.Run(ctx))
}
