package model

import (
	"context"

	"consultation/shared/constant"
)

// Actor is the authenticated caller as placed on the request context by the auth middleware.
// AdminID is the organisation owner the caller acts under; alerts are addressed to it.
type Actor struct {
	UserID       string
	AdminID      string
	Organisation string
	Role         string
	Type         string
	Token        string
}

func (a Actor) IsAdmin() bool {
	return a.Type != constant.ActorEndUser
}

func ActorFromContext(ctx context.Context) Actor {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	organisation, _ := ctx.Value(constant.ContextKeyOrganisation).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	actorType, _ := ctx.Value(constant.ContextKeyActorType).(string)
	token, _ := ctx.Value(constant.ContextKeyRawToken).(string)
	adminID, _ := ctx.Value(constant.ContextKeyAdminID).(string)

	return Actor{
		UserID:       userID,
		AdminID:      adminID,
		Organisation: organisation,
		Role:         role,
		Type:         actorType,
		Token:        token,
	}
}

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, actor.UserID)
	ctx = context.WithValue(ctx, constant.ContextKeyAdminID, actor.AdminID)
	ctx = context.WithValue(ctx, constant.ContextKeyOrganisation, actor.Organisation)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, actor.Role)
	ctx = context.WithValue(ctx, constant.ContextKeyActorType, actor.Type)

	return context.WithValue(ctx, constant.ContextKeyRawToken, actor.Token)
}
