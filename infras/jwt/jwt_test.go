package jwt_test

import (
	"testing"
	"time"

	"consultation/config"
	"consultation/infras/jwt"
	"consultation/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(secret string) jwt.JWT {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = secret
	cfg.App.Name = "consultation"

	return jwt.New(cfg)
}

func TestSignAndValidate(t *testing.T) {
	svc := newService("access-secret")

	token, err := svc.Sign(jwt.Claims{
		UserID:       "admin-1",
		Email:        "ops@acme.test",
		Role:         constant.RoleAdmin,
		Organisation: "acme",
		UserType:     constant.ActorAdmin,
	}, time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, "acme", claims.Organisation)
	assert.Equal(t, constant.ActorAdmin, claims.ActorType())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Failures(t *testing.T) {
	svc := newService("access-secret")

	expired, err := svc.Sign(jwt.Claims{UserID: "u1", Organisation: "acme"}, -time.Minute)
	require.NoError(t, err)

	foreign, err := newService("other-secret").Sign(jwt.Claims{UserID: "u1", Organisation: "acme"}, time.Minute)
	require.NoError(t, err)

	noOrg, err := svc.Sign(jwt.Claims{UserID: "u1"}, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expired, wantErr: jwt.ErrExpiredToken},
		{name: "wrong secret", token: foreign, wantErr: jwt.ErrInvalidToken},
		{name: "garbage", token: "not-a-token", wantErr: jwt.ErrInvalidToken},
		{name: "missing organisation", token: noOrg, wantErr: jwt.ErrInvalidClaim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestClaims_ActorType(t *testing.T) {
	assert.Equal(t, constant.ActorEndUser, (&jwt.Claims{UserType: constant.ActorEndUser}).ActorType())
	assert.Equal(t, constant.ActorEndUser, (&jwt.Claims{Role: constant.RoleEndUser}).ActorType())
	assert.Equal(t, constant.ActorAdmin, (&jwt.Claims{Role: constant.RoleStaff}).ActorType())
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := jwt.ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = jwt.ExtractTokenFromHeader("")
	assert.ErrorIs(t, err, jwt.ErrMissingHeader)

	_, err = jwt.ExtractTokenFromHeader("Token abc")
	assert.ErrorIs(t, err, jwt.ErrMalformed)
}
