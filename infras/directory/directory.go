// Package directory looks up user identity (email and names) in the user service.
package directory

//go:generate go run go.uber.org/mock/mockgen -source=./directory.go -destination=./mocks/directory_mock.go -package=mocks

import (
	"context"

	"consultation/infras/metrics"
	"consultation/infras/otel"
	"consultation/shared/constant"

	"github.com/rs/zerolog/log"
)

const otelScopeName = "directory"

type UserInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
}

// Client is the primary lookup channel. A nil info with a nil error means unknown user.
type Client interface {
	GetUserInfo(ctx context.Context, id string) (*UserInfo, error)
}

// Fallback is the HTTP lookup used when the primary channel has no answer.
type Fallback interface {
	Admin(ctx context.Context, id, token string) (*UserInfo, error)
	EndUser(ctx context.Context, id, organisation string) (*UserInfo, error)
}

// Resolver never fails: an unresolved identity is nil.
type Resolver interface {
	Resolve(ctx context.Context, id, actorType, token, organisation string) *UserInfo
}

type resolverImpl struct {
	client   Client
	fallback Fallback
	otel     otel.Otel
	metrics  *metrics.Metrics
}

func NewResolver(client Client, fallback Fallback, ot otel.Otel, m *metrics.Metrics) Resolver {
	return &resolverImpl{
		client:   client,
		fallback: fallback,
		otel:     ot,
		metrics:  m,
	}
}

func (r *resolverImpl) Resolve(ctx context.Context, id, actorType, token, organisation string) *UserInfo {
	if id == "" {
		return nil
	}

	ctx, scope := r.otel.NewScope(ctx, otelScopeName, otelScopeName+".Resolve")
	defer scope.End()

	scope.SetAttributes(map[string]any{"user.id": id, "actor.type": actorType})

	info, err := r.client.GetUserInfo(ctx, id)
	r.observe("directory_grpc", info, err)

	if err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("user service lookup failed, using http fallback")
	}

	if info != nil {
		return info
	}

	if actorType == constant.ActorEndUser {
		info, err = r.fallback.EndUser(ctx, id, organisation)
	} else {
		info, err = r.fallback.Admin(ctx, id, token)
	}

	r.observe("directory_http", info, err)

	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("user_id", id).Str("actor_type", actorType).Msg("user info fallback failed")

		return nil
	}

	return info
}

func (r *resolverImpl) observe(collaborator string, info *UserInfo, err error) {
	switch {
	case err != nil:
		r.metrics.ObserveCollaborator(collaborator, metrics.ResultFailure)
	case info == nil:
		r.metrics.ObserveCollaborator(collaborator, metrics.ResultMiss)
	default:
		r.metrics.ObserveCollaborator(collaborator, metrics.ResultSuccess)
	}
}
