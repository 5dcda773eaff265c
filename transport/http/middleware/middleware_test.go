package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"consultation/config"
	"consultation/infras/jwt"
	jwtMocks "consultation/infras/jwt/mocks"
	"consultation/infras/otel/mocks"
	"consultation/permissions"
	"consultation/shared/cache"
	"consultation/shared/constant"
	gModel "consultation/shared/model"
	"consultation/transport/http/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const testAPIKey = "internal-key"

func newRouter(t *testing.T, jwtService jwt.JWT) (http.Handler, *gModel.Actor) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Name = "consultation"
	cfg.App.APIKey = testAPIKey

	auth := middleware.NewAuthRoleMiddleware(jwtService, mocks.NewOtel(), permissions.Get(), cfg)
	seen := &gModel.Actor{}

	ok := func(w http.ResponseWriter, r *http.Request) {
		*seen = gModel.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	router := chi.NewRouter()
	router.Route("/v1/consultations", func(r chi.Router) {
		r.Route("/outbox", func(group chi.Router) {
			group.Use(auth.APIKey, auth.Auth, auth.RBAC)
			group.Get("/dead", ok)
			group.Get("/unregistered", ok)
		})
		r.Route("/end_user/category", func(group chi.Router) {
			group.Use(auth.Auth, auth.RBAC)
			group.Get("/", ok)
		})
	})

	return router, seen
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		header    map[string]string
		setupMock func(m *jwtMocks.MockJWT)
		wantCode  int
		wantActor gModel.Actor
	}{
		{
			name:     "missing token",
			path:     "/v1/consultations/outbox/dead",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed header",
			path:     "/v1/consultations/outbox/dead",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			path:   "/v1/consultations/outbox/dead",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer old"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("old").Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "end user on admin route",
			path:   "/v1/consultations/outbox/dead",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer user"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("user").Return(&jwt.Claims{UserID: "u-1", UserType: constant.ActorEndUser, Organisation: "org-1"}, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "manager allowed",
			path:   "/v1/consultations/outbox/dead",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer manager"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("manager").Return(&jwt.Claims{UserID: "a-1", Role: constant.RoleManager, Organisation: "org-1"}, nil)
			},
			wantCode: http.StatusOK,
			wantActor: gModel.Actor{
				UserID:       "a-1",
				AdminID:      "a-1",
				Organisation: "org-1",
				Role:         constant.RoleManager,
				Type:         constant.ActorAdmin,
				Token:        "Bearer manager",
			},
		},
		{
			name:   "route missing from permissions",
			path:   "/v1/consultations/outbox/unregistered",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer admin"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken("admin").Return(&jwt.Claims{UserID: "a-1", Role: constant.RoleAdmin}, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "public listing skips auth",
			path:     "/v1/consultations/end_user/category/",
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong api key",
			path:     "/v1/consultations/outbox/dead",
			header:   map[string]string{constant.RequestHeaderAPIKey: "guess"},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "internal caller with api key",
			path:     "/v1/consultations/outbox/dead?org=org-9",
			header:   map[string]string{constant.RequestHeaderAPIKey: testAPIKey},
			wantCode: http.StatusOK,
			wantActor: gModel.Actor{
				UserID:       "consultation",
				Organisation: "org-9",
				Role:         constant.RoleAdmin,
				Type:         constant.ActorAdmin,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtService := jwtMocks.NewMockJWT(gomock.NewController(t))
			if tt.setupMock != nil {
				tt.setupMock(jwtService)
			}

			router, seen := newRouter(t, jwtService)

			request := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for key, value := range tt.header {
				request.Header.Set(key, value)
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code)

			if tt.wantActor != (gModel.Actor{}) {
				assert.Equal(t, tt.wantActor, *seen)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	app := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache.NewRedisCache(client, mocks.NewOtel()))
	handler := app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/v1/consultations/end_user/category/", nil)
		request.Header.Set(constant.RequestHeaderForwardedFor, ip+", 10.0.0.1")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		return recorder
	}

	assert.Equal(t, http.StatusOK, call("203.0.113.7").Code)

	second := call("203.0.113.7")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get(constant.RequestHeaderRateLimitRemaining))

	third := call("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "60", third.Header().Get(constant.RequestHeaderRetryAfter))

	assert.Equal(t, http.StatusOK, call("198.51.100.2").Code)
}
