package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopping-list/internal/lists"
	"shopping-list/internal/models"
)

// ListService is the repository surface the handlers use.
type ListService interface {
	Lists() []models.ShoppingList
	GetList(listID string) (models.ShoppingList, error)
	AddList(ctx context.Context, name string, priority models.Priority) (models.ShoppingList, error)
	DeleteList(ctx context.Context, listID string) error
	AddItem(ctx context.Context, listID string, req models.CreateItemRequest) (models.ShoppingItem, error)
	UpdateItem(ctx context.Context, listID, itemID string, req models.UpdateItemRequest) (models.ShoppingItem, error)
	RemoveItem(ctx context.Context, listID, itemID string) error
}

// respondError maps repository errors to status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lists.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, lists.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, lists.ErrStoreUnavailable), errors.Is(err, lists.ErrStoreWriteFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage is unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
