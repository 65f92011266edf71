package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cartbridge/internal/domain"
)

func TestFetchCartDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/client/cart", r.URL.Path)
		cookie, err := r.Cookie(SessionCookie)
		require.NoError(t, err)
		require.Equal(t, "tok-1", cookie.Value)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"items": []map[string]interface{}{
					{"_id": "p1", "name": "Tee", "price": 1999, "image": "https://img/tee.jpg", "quantity": 2},
				},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	c.SetSession("tok-1")

	items, err := c.FetchCart(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.LineItem{
		{ID: "p1", Name: "Tee", UnitPrice: 1999, ImageURL: "https://img/tee.jpg", Quantity: 2},
	}, items)
}

func TestAddItemSendsDelta(t *testing.T) {
	var got struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	require.NoError(t, c.AddItem(context.Background(), "p1", 3))
	require.Equal(t, "p1", got.ProductID)
	require.Equal(t, 3, got.Quantity)
}

func TestSuccessFalseIsApplicationError(t *testing.T) {
	// success false must be treated as an error even on HTTP 200.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "out of stock",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.AddItem(context.Background(), "p1", 1)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "out of stock", apiErr.Message)
	require.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "session required"})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.FetchCart(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL, time.Second)
	err := c.Clear(context.Background())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestLoginInstallsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/client/session", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"token": "tok-9"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	token, err := c.Login(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "tok-9", token)
	require.Equal(t, "tok-9", c.Session())
}

func TestRemoveItemEscapesProductID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	require.NoError(t, c.RemoveItem(context.Background(), "p/1"))
	require.Equal(t, "/client/cart/p%2F1", gotPath)
}

func TestErrorsIsOnWrappedSentinels(t *testing.T) {
	err := &APIError{StatusCode: http.StatusNotFound, Message: "product not found"}
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.Equal(t, "product not found", err.Error())
}
