package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cartbridge/internal/domain"
)

type cartService interface {
	Get(ctx context.Context, userID string) ([]domain.LineItem, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

type cartResponse struct {
	Items []domain.LineItem `json:"items"`
}

type lineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func toCartResponse(items []domain.LineItem) cartResponse {
	if items == nil {
		items = []domain.LineItem{}
	}
	return cartResponse{Items: items}
}

func getCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.Get(c.Request.Context(), userFromContext(c))
		if err != nil {
			respondError(c, http.StatusInternalServerError, "could not load cart")
			return
		}
		respondOK(c, http.StatusOK, toCartResponse(items))
	}
}

// addItemHandler adds or increments a line by the request's quantity delta.
func addItemHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		userID := userFromContext(c)
		if err := svc.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity); err != nil {
			respondCartError(c, err)
			return
		}
		items, err := svc.Get(c.Request.Context(), userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "could not load cart")
			return
		}
		respondOK(c, http.StatusOK, toCartResponse(items))
	}
}

// setQuantityHandler sets a line's quantity to the request's absolute value.
func setQuantityHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		userID := userFromContext(c)
		if err := svc.SetQuantity(c.Request.Context(), userID, req.ProductID, req.Quantity); err != nil {
			respondCartError(c, err)
			return
		}
		items, err := svc.Get(c.Request.Context(), userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "could not load cart")
			return
		}
		respondOK(c, http.StatusOK, toCartResponse(items))
	}
}

func removeItemHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userFromContext(c)
		if err := svc.RemoveItem(c.Request.Context(), userID, c.Param("productId")); err != nil {
			respondCartError(c, err)
			return
		}
		items, err := svc.Get(c.Request.Context(), userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "could not load cart")
			return
		}
		respondOK(c, http.StatusOK, toCartResponse(items))
	}
}

func clearCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userFromContext(c)
		if err := svc.Clear(c.Request.Context(), userID); err != nil {
			respondError(c, http.StatusInternalServerError, "could not clear cart")
			return
		}
		respondOK(c, http.StatusOK, toCartResponse(nil))
	}
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondError(c, http.StatusBadRequest, domain.ErrInvalidQuantity.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "product not found")
	case errors.Is(err, domain.ErrProductRequired):
		respondError(c, http.StatusBadRequest, domain.ErrProductRequired.Error())
	default:
		respondError(c, http.StatusInternalServerError, "could not update cart")
	}
}
