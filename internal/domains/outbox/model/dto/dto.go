package dto

import (
	"consultation/internal/domains/outbox/model"
	"consultation/shared"
	"consultation/shared/constant"
	"consultation/shared/timezone"
)

type MessageResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	AggregateID   string `json:"aggregate_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Status        string `json:"status"`
	Attempts      int    `json:"attempts"`
	NextAttemptAt string `json:"next_attempt_at"`
	LastError     string `json:"last_error"`
	CreatedAt     string `json:"created_at"`
}

func (r *MessageResponse) FromModel(msg model.Message) {
	r.ID = msg.ID
	r.Kind = msg.Kind
	r.AggregateID = msg.AggregateID
	r.Exchange = msg.Exchange
	r.RoutingKey = msg.RoutingKey
	r.Status = msg.Status
	r.Attempts = msg.Attempts
	r.NextAttemptAt = timezone.Format(msg.NextAttemptAt, constant.DateFormat)
	r.CreatedAt = timezone.Format(msg.CreatedAt, constant.DateFormat)

	if msg.LastError != nil {
		r.LastError = *msg.LastError
	}
}

type GetMessagesResponse struct {
	Messages  []MessageResponse `json:"messages"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetMessagesResponse) FromModels(messages []model.Message, total, limit int) {
	r.Messages = make([]MessageResponse, len(messages))
	for i, msg := range messages {
		r.Messages[i].FromModel(msg)
	}

	r.TotalData = total
	r.TotalPage = shared.CalculateTotalPage(total, limit)
}
