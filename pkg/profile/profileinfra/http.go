// Package profileinfra implements the profile ports over the internal HTTP
// APIs of the user and mileage services.
package profileinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/profile"
)

const defaultTimeout = 5 * time.Second

// clientIDHeader carries the acting user downstream, mirroring what the
// gateway injects on inbound requests.
const clientIDHeader = "X-Client-ID"

// envelope is the common response wrapper of the downstream services.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HTTPUserClient implements profile.UserClient.
type HTTPUserClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPUserClient(baseURL string, httpClient *http.Client) *HTTPUserClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPUserClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *HTTPUserClient) RegisterProfile(ctx context.Context, in profile.RegisterProfileInput) error {
	resp, err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/users/register", in.UserID, in)
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeReplicationFailed, err).
			WithDetail("email", in.Email)
	}
	if resp.Status >= 300 {
		return profile.ErrReplicationFailed().
			WithDetail("status", resp.Status).
			WithDetail("message", resp.Message)
	}
	return nil
}

func (c *HTTPUserClient) GetProfile(ctx context.Context, id kernel.UserID) (*profile.Profile, error) {
	url := fmt.Sprintf("%s/api/users/%d", c.baseURL, id.Int64())
	resp, err := doJSON(ctx, c.httpClient, http.MethodGet, url, id, nil)
	if err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeLookupFailed, err).
			WithDetail("user_id", id.Int64())
	}
	if resp.Status >= 300 {
		return nil, profile.ErrLookupFailed().WithDetail("status", resp.Status)
	}

	var p profile.Profile
	if err := json.Unmarshal(resp.Data, &p); err != nil {
		return nil, errx.Wrap(err, "failed to decode profile payload", errx.TypeExternal)
	}
	return &p, nil
}

func (c *HTTPUserClient) DeleteProfile(ctx context.Context, id kernel.UserID, in profile.DeleteProfileInput) error {
	url := fmt.Sprintf("%s/api/users/%d", c.baseURL, id.Int64())
	resp, err := doJSON(ctx, c.httpClient, http.MethodDelete, url, id, in)
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeDeleteFailed, err).
			WithDetail("user_id", id.Int64())
	}
	if resp.Status >= 300 {
		return profile.ErrDeleteFailed().WithDetail("status", resp.Status)
	}
	return nil
}

// HTTPMileageClient implements profile.MileageClient.
type HTTPMileageClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPMileageClient(baseURL string, httpClient *http.Client) *HTTPMileageClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPMileageClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *HTTPMileageClient) GetMileage(ctx context.Context, id kernel.UserID) (*profile.Mileage, error) {
	url := fmt.Sprintf("%s/api/mileage/%d", c.baseURL, id.Int64())
	resp, err := doJSON(ctx, c.httpClient, http.MethodGet, url, id, nil)
	if err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeLookupFailed, err).
			WithDetail("user_id", id.Int64())
	}
	if resp.Status == http.StatusNotFound {
		return nil, profile.ErrMileageNotFound().WithDetail("user_id", id.Int64())
	}
	if resp.Status >= 300 {
		return nil, profile.ErrLookupFailed().WithDetail("status", resp.Status)
	}

	var m profile.Mileage
	if err := json.Unmarshal(resp.Data, &m); err != nil {
		return nil, errx.Wrap(err, "failed to decode mileage payload", errx.TypeExternal)
	}
	return &m, nil
}

func (c *HTTPMileageClient) DeleteMileage(ctx context.Context, id kernel.UserID) error {
	url := fmt.Sprintf("%s/api/mileage/%d", c.baseURL, id.Int64())
	resp, err := doJSON(ctx, c.httpClient, http.MethodDelete, url, id, nil)
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeDeleteFailed, err).
			WithDetail("user_id", id.Int64())
	}
	if resp.Status >= 300 && resp.Status != http.StatusNotFound {
		return profile.ErrDeleteFailed().WithDetail("status", resp.Status)
	}
	return nil
}

// doJSON performs a request with a JSON body (nil payload sends none) and
// decodes the downstream response envelope. Non-2xx statuses are returned in
// the envelope, not as errors, so callers can branch on them.
func doJSON(ctx context.Context, client *http.Client, method, url string, clientID kernel.UserID, payload any) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(clientIDHeader, clientID.String())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	env := &envelope{Status: resp.StatusCode}
	if len(raw) > 0 {
		// Body decoding is best effort: the status code alone is enough to
		// classify the outcome.
		_ = json.Unmarshal(raw, env)
		if env.Status == 0 {
			env.Status = resp.StatusCode
		}
	}
	return env, nil
}
