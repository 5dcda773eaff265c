package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"consultation/config"
	"consultation/shared/constant"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type userInfoEnvelope struct {
	Data UserInfo `json:"data"`
}

type httpFallback struct {
	client         *http.Client
	adminBaseURL   string
	endUserBaseURL string
}

func NewHTTPFallback(cfg *config.Config) Fallback {
	return &httpFallback{
		client: &http.Client{
			Timeout:   cfg.External.UserService.HTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		adminBaseURL:   cfg.External.UserService.UserInfoURL,
		endUserBaseURL: cfg.External.UserService.EndUserUserInfoURL,
	}
}

// Admin calls {USER_INFO}{id}/ forwarding the caller's Authorization header value.
func (f *httpFallback) Admin(ctx context.Context, id, token string) (*UserInfo, error) {
	if f.adminBaseURL == "" {
		return nil, nil //nolint:nilnil
	}

	return f.get(ctx, f.adminBaseURL+url.PathEscape(id)+"/", token)
}

// EndUser calls {USER_INFO_FOR_ENDUSER}org={org}&staff_id={id}.
func (f *httpFallback) EndUser(ctx context.Context, id, organisation string) (*UserInfo, error) {
	if f.endUserBaseURL == "" {
		return nil, nil //nolint:nilnil
	}

	target := fmt.Sprintf("%sorg=%s&staff_id=%s", f.endUserBaseURL, url.QueryEscape(organisation), url.QueryEscape(id))

	return f.get(ctx, target, "")
}

func (f *httpFallback) get(ctx context.Context, target, token string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user info request: %w", err)
	}

	if token != "" {
		req.Header.Set(constant.RequestHeaderAuthorization, token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil //nolint:nilnil
	}

	envelope := &userInfoEnvelope{}
	if err := json.NewDecoder(resp.Body).Decode(envelope); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &envelope.Data, nil
}
