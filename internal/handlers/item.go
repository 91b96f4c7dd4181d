package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"shopping-list/internal/logging"
	"shopping-list/internal/models"
)

type ItemHandler struct {
	lists     ListService
	validator *validator.Validate
	logger    logging.Logger
}

func NewItemHandler(lists ListService, logger logging.Logger) *ItemHandler {
	return &ItemHandler{
		lists:     lists,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *ItemHandler) GetItems(c *gin.Context) {
	list, err := h.lists.GetList(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": list.Items})
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.lists.AddItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "create item failed", "list_id", c.Param("id"), "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) UpdateItem(c *gin.Context) {
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.lists.UpdateItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), req)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "update item failed",
			"list_id", c.Param("id"), "item_id", c.Param("itemId"), "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	if err := h.lists.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		h.logger.Warn(c.Request.Context(), "delete item failed",
			"list_id", c.Param("id"), "item_id", c.Param("itemId"), "error", err)
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
