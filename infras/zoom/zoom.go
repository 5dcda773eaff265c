// Package zoom provisions video meetings through the Zoom REST API.
package zoom

//go:generate go run go.uber.org/mock/mockgen -source=./zoom.go -destination=./mocks/zoom_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"consultation/config"
	"consultation/infras/otel"
	"consultation/shared/constant"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	otelScopeName        = "zoom"
	meetingTypeScheduled = 2
	joinBeforeHostMins   = 5
	autoRecordingCloud   = "cloud"
	startTimeLayout      = "2006-01-02T15:04:05"
)

var (
	ErrNoActiveUser   = errors.New("zoom account has no active user")
	ErrMissingKeys    = errors.New("zoom credentials are incomplete")
	ErrUnexpectedCode = errors.New("zoom returned an unexpected status")
)

type Credentials struct {
	APIKey    string
	SecretKey string
}

type MeetingRequest struct {
	Topic    string
	Start    time.Time
	Duration int
}

// Meeting holds the fields of a meeting descriptor that notifications use.
type Meeting struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	StartURL string `json:"start_url"`
}

type Client interface {
	CreateMeeting(ctx context.Context, creds Credentials, req MeetingRequest) (json.RawMessage, error)
}

type clientImpl struct {
	httpClient *http.Client
	baseURL    string
	tokenTTL   time.Duration
	now        func() time.Time
	otel       otel.Otel
}

func New(cfg *config.Config, ot otel.Otel) Client {
	return &clientImpl{
		httpClient: &http.Client{
			Timeout:   cfg.External.Zoom.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:  strings.TrimSuffix(cfg.External.Zoom.BaseURL, "/"),
		tokenTTL: cfg.External.Zoom.TokenTTL,
		now:      time.Now,
		otel:     ot,
	}
}

// ParseMeeting extracts the urls of a stored descriptor. An empty or invalid blob yields
// a zero Meeting.
func ParseMeeting(raw json.RawMessage) Meeting {
	meeting := Meeting{}
	if len(raw) == 0 {
		return meeting
	}

	_ = json.Unmarshal(raw, &meeting)

	return meeting
}

type meetingSettings struct {
	JoinBeforeHost bool   `json:"join_before_host"`
	JbhTime        int    `json:"jbh_time"`
	AutoRecording  string `json:"auto_recording"`
}

type meetingPayload struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Settings  meetingSettings `json:"settings"`
}

type usersResponse struct {
	Users []struct {
		ID string `json:"id"`
	} `json:"users"`
}

func (c *clientImpl) CreateMeeting(ctx context.Context, creds Credentials, req MeetingRequest) (raw json.RawMessage, err error) {
	ctx, scope := c.otel.NewScope(ctx, otelScopeName, otelScopeName+".CreateMeeting")
	defer scope.End()
	defer scope.TraceIfError(err)

	token, err := c.token(creds)
	if err != nil {
		return nil, err
	}

	userID, err := c.activeUser(ctx, token)
	if err != nil {
		return nil, err
	}

	payload := meetingPayload{
		Topic:     req.Topic,
		Type:      meetingTypeScheduled,
		StartTime: req.Start.Format(startTimeLayout),
		Duration:  req.Duration,
		Settings: meetingSettings{
			JoinBeforeHost: false,
			JbhTime:        joinBeforeHostMins,
			AutoRecording:  autoRecordingCloud,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode meeting payload: %w", err)
	}

	status, respBody, err := c.do(ctx, http.MethodPost, "/users/"+userID+"/meetings", token, body)
	if err != nil {
		return nil, err
	}

	if status != http.StatusCreated {
		return nil, fmt.Errorf("%w: create meeting %d", ErrUnexpectedCode, status)
	}

	return json.RawMessage(respBody), nil
}

func (c *clientImpl) token(creds Credentials) (string, error) {
	if creds.APIKey == "" || creds.SecretKey == "" {
		return "", ErrMissingKeys
	}

	claims := jwt.MapClaims{
		"iss": creds.APIKey,
		"exp": c.now().Add(c.tokenTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(creds.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign zoom token: %w", err)
	}

	return signed, nil
}

func (c *clientImpl) activeUser(ctx context.Context, token string) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/users?status=active", token, nil)
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		return "", fmt.Errorf("%w: list users %d", ErrUnexpectedCode, status)
	}

	users := usersResponse{}
	if err := json.Unmarshal(body, &users); err != nil {
		return "", fmt.Errorf("failed to decode zoom users: %w", err)
	}

	if len(users.Users) == 0 || users.Users[0].ID == "" {
		return "", ErrNoActiveUser
	}

	return users.Users[0].ID, nil
}

func (c *clientImpl) do(ctx context.Context, method, path, token string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build zoom request: %w", err)
	}

	req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+token)

	if body != nil {
		req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("zoom request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read zoom response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}
