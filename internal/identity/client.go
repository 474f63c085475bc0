// Package identity is the HTTP client for the external Identity Store, the
// credential authority that owns emails, passwords, and session tokens.
// The admin API coordinates with it on signup and account deletion; it never
// stores credentials locally.
package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "audycon/internal/errors"
)

const defaultTimeout = 10 * time.Second

// Client talks to a Supabase-compatible auth admin API using a service-role
// key. All methods translate non-2xx responses into ErrIdentityStore with
// the upstream body preserved as the internal error.
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

// NewClient creates a Client for the given base URL and service-role key.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: defaultTimeout},
	}
}

type createUserRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	EmailConfirm bool   `json:"email_confirm"`
}

type createUserResponse struct {
	ID string `json:"id"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	AccessToken string `json:"access_token"`
}

// CreateUser registers a new credential record and returns the account id
// the Identity Store assigned. The same id keys the local profile row.
func (c *Client) CreateUser(email, password string) (string, error) {
	body, err := json.Marshal(createUserRequest{Email: email, Password: password, EmailConfirm: true})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/auth/v1/admin/users", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	var created createUserResponse
	if err := c.do(req, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", apperrors.Wrap(apperrors.ErrIdentityStore, fmt.Errorf("create user: empty id in response"))
	}
	return created.ID, nil
}

// DeleteCredential removes the credential record for the given account id.
// Callers must treat any error as "nothing was deleted upstream" and abort
// without mutating local state.
func (c *Client) DeleteCredential(accountID string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/auth/v1/admin/users/"+accountID, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	c.setHeaders(req)

	return c.do(req, nil)
}

// SignIn exchanges email/password for an access token. Token issuance and
// refresh are entirely the Identity Store's business; this is a pass-through.
func (c *Client) SignIn(email, password string) (string, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	var signedIn signInResponse
	if err := c.do(req, &signedIn); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidCredentials, err)
	}
	if signedIn.AccessToken == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidCredentials, fmt.Errorf("sign in: empty access token"))
	}
	return signedIn.AccessToken, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}

// do executes the request and decodes a 2xx response body into out, if out
// is non-nil. Non-2xx responses become ErrIdentityStore.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrIdentityStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Cap the upstream body so a misbehaving server cannot flood logs.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.Wrap(apperrors.ErrIdentityStore,
			fmt.Errorf("identity store returned %d: %s", resp.StatusCode, string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.ErrIdentityStore, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
