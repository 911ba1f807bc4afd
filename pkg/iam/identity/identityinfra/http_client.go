package identityinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/identity"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/Abraxas-365/gatekeeper/pkg/ptrx"
)

const (
	DefaultBaseURL = "https://api.clerk.com/v1"
	DefaultTimeout = 5 * time.Second
	maxErrorBody   = 64 << 10
)

// HTTPClient is an identity.Client for a Clerk-compatible backend API.
// It never retries; every call is bounded by timeout.
type HTTPClient struct {
	secretKey  string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPClient creates a new provider client. A nil httpClient gets one
// with the given timeout.
func NewHTTPClient(secretKey, baseURL string, timeout time.Duration, httpClient *http.Client) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		secretKey:  secretKey,
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// GetUser fetches a user profile
func (c *HTTPClient) GetUser(ctx context.Context, subjectID kernel.SubjectID) (*identity.Profile, error) {
	var u apiUser
	if err := c.do(ctx, "get_user", http.MethodGet, "/users/"+url.PathEscape(subjectID.String()), nil, &u); err != nil {
		return nil, err
	}
	return u.toDomain(), nil
}

// UpdateUser changes the provider-side first and last name
func (c *HTTPClient) UpdateUser(ctx context.Context, subjectID kernel.SubjectID, update identity.NameUpdate) (*identity.Profile, error) {
	var u apiUser
	if err := c.do(ctx, "update_user", http.MethodPatch, "/users/"+url.PathEscape(subjectID.String()), update, &u); err != nil {
		return nil, err
	}
	return u.toDomain(), nil
}

// RevokeSession ends a provider session
func (c *HTTPClient) RevokeSession(ctx context.Context, sessionID kernel.SessionID) (*identity.Session, error) {
	var s apiSession
	if err := c.do(ctx, "revoke_session", http.MethodPost, "/sessions/"+url.PathEscape(sessionID.String())+"/revoke", nil, &s); err != nil {
		return nil, err
	}
	return &identity.Session{
		ID:     kernel.SessionID(s.ID),
		UserID: kernel.SubjectID(s.UserID),
		Status: s.Status,
	}, nil
}

// ListUsers returns one page of provider users, newest first
func (c *HTTPClient) ListUsers(ctx context.Context, opts kernel.PaginationOptions) ([]identity.Profile, error) {
	opts = opts.Normalize()
	q := url.Values{}
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("offset", strconv.Itoa(opts.Offset))
	q.Set("order_by", "-created_at")

	var users []apiUser
	if err := c.do(ctx, "list_users", http.MethodGet, "/users?"+q.Encode(), nil, &users); err != nil {
		return nil, err
	}

	out := make([]identity.Profile, len(users))
	for i := range users {
		out[i] = *users[i].toDomain()
	}
	return out, nil
}

// CountUsers returns the total number of provider users
func (c *HTTPClient) CountUsers(ctx context.Context) (int, error) {
	var res struct {
		TotalCount int `json:"total_count"`
	}
	if err := c.do(ctx, "count_users", http.MethodGet, "/users/count", nil, &res); err != nil {
		return 0, err
	}
	return res.TotalCount, nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, payload, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &errx.ProviderFailure{Kind: errx.ProviderBadResponse, Operation: op, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &errx.ProviderFailure{Kind: errx.ProviderUnavailable, Operation: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &errx.ProviderFailure{Kind: errx.ProviderUnavailable, Operation: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &errx.ProviderFailure{
			Kind:       kindForStatus(resp.StatusCode),
			Operation:  op,
			StatusCode: resp.StatusCode,
			Err:        parseAPIError(raw),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errx.ProviderFailure{Kind: errx.ProviderBadResponse, Operation: op, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

func kindForStatus(status int) errx.ProviderKind {
	switch {
	case status == http.StatusNotFound:
		return errx.ProviderNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errx.ProviderUnauthorized
	case status >= 400 && status < 500 && status != http.StatusTooManyRequests:
		return errx.ProviderBadResponse
	default:
		return errx.ProviderUnavailable
	}
}

// parseAPIError extracts the first provider error message
func parseAPIError(raw []byte) error {
	var body struct {
		Errors []struct {
			Code        string `json:"code"`
			Message     string `json:"message"`
			LongMessage string `json:"long_message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Errors) == 0 {
		if len(raw) == 0 {
			return errors.New("empty error response")
		}
		return fmt.Errorf("unparsed error response: %.200s", raw)
	}

	e := body.Errors[0]
	msg := e.LongMessage
	if msg == "" {
		msg = e.Message
	}
	return fmt.Errorf("%s: %s", e.Code, msg)
}

// ============================================================================
// Wire format
// ============================================================================

type apiEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
	Verification *struct {
		Status string `json:"status"`
	} `json:"verification"`
}

type apiUser struct {
	ID                    string            `json:"id"`
	FirstName             *string           `json:"first_name"`
	LastName              *string           `json:"last_name"`
	ImageURL              string            `json:"image_url"`
	PrimaryEmailAddressID *string           `json:"primary_email_address_id"`
	EmailAddresses        []apiEmailAddress `json:"email_addresses"`
	CreatedAt             int64             `json:"created_at"`
	LastSignInAt          *int64            `json:"last_sign_in_at"`
}

type apiSession struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

func (u apiUser) toDomain() *identity.Profile {
	p := &identity.Profile{
		ID:        kernel.SubjectID(u.ID),
		FirstName: ptrx.Value(u.FirstName),
		LastName:  ptrx.Value(u.LastName),
		ImageURL:  u.ImageURL,
		CreatedAt: u.CreatedAt,
	}
	p.PrimaryEmailAddressID = ptrx.Value(u.PrimaryEmailAddressID)
	if u.LastSignInAt != nil {
		p.LastSignInAt = *u.LastSignInAt
	}
	for _, e := range u.EmailAddresses {
		p.EmailAddresses = append(p.EmailAddresses, identity.EmailAddress{
			ID:       e.ID,
			Address:  e.EmailAddress,
			Verified: e.Verification != nil && e.Verification.Status == "verified",
		})
	}
	return p
}
