package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("server returned %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// API talks to the storefront HTTP server.
type API struct {
	baseURL string
	http    *http.Client
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (a *API) Login(ctx context.Context, email, password string) (AuthBundle, error) {
	var resp struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return AuthBundle{}, err
	}
	return AuthBundle{User: &resp.User, Token: resp.Token}, nil
}

func (a *API) ClientToken(ctx context.Context) (string, error) {
	var resp struct {
		ClientToken string `json:"clientToken"`
	}
	if err := a.do(ctx, http.MethodGet, "/braintree/token", "", nil, &resp); err != nil {
		return "", err
	}
	return resp.ClientToken, nil
}

func (a *API) Pay(ctx context.Context, token, nonce string, cart []models.CartItem) (models.Order, error) {
	var resp struct {
		OK    bool         `json:"ok"`
		Order models.Order `json:"order"`
	}
	body := struct {
		Nonce string            `json:"nonce"`
		Cart  []models.CartItem `json:"cart"`
	}{Nonce: nonce, Cart: cart}
	if err := a.do(ctx, http.MethodPost, "/braintree/payment", token, body, &resp); err != nil {
		return models.Order{}, err
	}
	if !resp.OK {
		return models.Order{}, &APIError{StatusCode: http.StatusOK, Message: "payment not confirmed"}
	}
	return resp.Order, nil
}

func (a *API) Orders(ctx context.Context, token string) ([]models.OrderDetail, error) {
	var orders []models.OrderDetail
	if err := a.do(ctx, http.MethodGet, "/auth/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ProfileUpdate holds the profile fields to change. Empty fields are left alone.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Password string `json:"password,omitempty"`
}

func (a *API) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (User, error) {
	var resp struct {
		UpdatedUser User `json:"updatedUser"`
	}
	if err := a.do(ctx, http.MethodPut, "/auth/profile", token, update, &resp); err != nil {
		return User{}, err
	}
	return resp.UpdatedUser, nil
}

func (a *API) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.Detail = payload.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
