// Package remote is the HTTP client for the cart API. The server owns the
// authenticated cart; this client is a thin, session-cookie-authenticated view
// of it that callers treat as the authoritative store while logged in.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cartbridge/internal/domain"
)

// SessionCookie is the cookie the API reads the session token from.
const SessionCookie = "cart_session"

// Client talks to the cart API under /client. A zero session token means
// anonymous; every cart call then fails with 401 server-side, so callers only
// use the cart methods after Login.
type Client struct {
	baseURL string
	http    *http.Client
	session string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetSession installs the session token attached to subsequent requests.
// An empty token reverts the client to anonymous.
func (c *Client) SetSession(token string) {
	c.session = token
}

// Session returns the current session token, empty when anonymous.
func (c *Client) Session() string {
	return c.session
}

// envelope is the response wrapper every API route uses. Success false is an
// application-level failure even on HTTP 200.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

type cartPayload struct {
	Items []domain.LineItem `json:"items"`
}

type lineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type sessionRequest struct {
	UserID string `json:"userId"`
}

type sessionPayload struct {
	Token string `json:"token"`
}

// FetchCart reads the authoritative cart for the current session.
func (c *Client) FetchCart(ctx context.Context) ([]domain.LineItem, error) {
	var payload cartPayload
	if err := c.call(ctx, http.MethodGet, "/client/cart", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// AddItem adds or increments a line by the given quantity delta. The server
// resolves whether the line already exists.
func (c *Client) AddItem(ctx context.Context, productID string, quantity int) error {
	return c.call(ctx, http.MethodPost, "/client/cart", lineRequest{ProductID: productID, Quantity: quantity}, nil)
}

// SetQuantity sets a line's quantity to the given absolute value.
func (c *Client) SetQuantity(ctx context.Context, productID string, quantity int) error {
	return c.call(ctx, http.MethodPut, "/client/cart", lineRequest{ProductID: productID, Quantity: quantity}, nil)
}

// RemoveItem removes one line.
func (c *Client) RemoveItem(ctx context.Context, productID string) error {
	return c.call(ctx, http.MethodDelete, "/client/cart/"+url.PathEscape(productID), nil, nil)
}

// Clear removes all lines.
func (c *Client) Clear(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/client/cart", nil, nil)
}

// GetProduct looks up one catalog entry.
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product
	if err := c.call(ctx, http.MethodGet, "/client/products/"+url.PathEscape(productID), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.call(ctx, http.MethodGet, "/client/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Logout revokes the current session server-side and drops the token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.call(ctx, http.MethodDelete, "/client/session", nil, nil)
	c.session = ""
	return err
}

// Login exchanges a user id for a session token and installs it on the client.
func (c *Client) Login(ctx context.Context, userID string) (string, error) {
	var payload sessionPayload
	if err := c.call(ctx, http.MethodPost, "/client/session", sessionRequest{UserID: userID}, &payload); err != nil {
		return "", err
	}
	c.session = payload.Token
	return payload.Token, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.session})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &TransportError{Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	return nil
}
