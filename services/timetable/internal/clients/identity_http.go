package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RequestError is a non-2xx answer from identity. Message carries the text
// identity wants shown to the user, when it sent one.
type RequestError struct {
	Status  int
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	ClassID   *string `json:"classId"`
	ClassName *string `json:"className"`
}

type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

type CreateUserRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Name     string  `json:"name,omitempty"`
	ClassID  *string `json:"classId,omitempty"`
}

// IdentityHTTP calls the identity HTTP API, forwarding the caller's bearer
// token where one is needed.
type IdentityHTTP struct {
	baseURL    string
	httpClient *http.Client
}

func NewIdentityHTTP(baseURL string, httpClient *http.Client) *IdentityHTTP {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &IdentityHTTP{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *IdentityHTTP) Login(ctx context.Context, email, password string) (Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password}, &session)
	return session, err
}

func (c *IdentityHTTP) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", accessToken, nil, nil)
}

// CreateUser returns the new user's id.
func (c *IdentityHTTP) CreateUser(ctx context.Context, accessToken string, req CreateUserRequest) (string, error) {
	var resp struct {
		Message string `json:"message"`
		UserID  string `json:"userId"`
	}
	if err := c.do(ctx, http.MethodPost, "/admin/users", accessToken, req, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

func (c *IdentityHTTP) ListUsers(ctx context.Context, accessToken string) ([]User, error) {
	users := []User{}
	err := c.do(ctx, http.MethodGet, "/users/", accessToken, nil, &users)
	return users, err
}

func (c *IdentityHTTP) UpdateRole(ctx context.Context, accessToken, userID, role string) error {
	return c.do(ctx, http.MethodPatch, "/users/"+userID+"/role", accessToken, map[string]string{"role": role}, nil)
}

func (c *IdentityHTTP) do(ctx context.Context, method, path, accessToken string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return identityErrorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func identityErrorFromResponse(resp *http.Response) error {
	reqErr := &RequestError{Status: resp.StatusCode, Code: "identity_request_failed"}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Error != "" {
			reqErr.Code = payload.Error
		}
		reqErr.Message = payload.Message
	}
	return reqErr
}
