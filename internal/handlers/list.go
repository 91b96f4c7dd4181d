package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"shopping-list/internal/logging"
	"shopping-list/internal/models"
)

type ListHandler struct {
	lists     ListService
	validator *validator.Validate
	logger    logging.Logger
}

func NewListHandler(lists ListService, logger logging.Logger) *ListHandler {
	return &ListHandler{
		lists:     lists,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *ListHandler) GetLists(c *gin.Context) {
	all := h.lists.Lists()

	summaries := make([]models.ListSummary, 0, len(all))
	for _, list := range all {
		summaries = append(summaries, list.Summary())
	}

	c.JSON(http.StatusOK, gin.H{"lists": summaries})
}

func (h *ListHandler) CreateList(c *gin.Context) {
	var req models.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.lists.AddList(c.Request.Context(), req.Name, req.Priority)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "create list failed", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, list)
}

func (h *ListHandler) GetList(c *gin.Context) {
	list, err := h.lists.GetList(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *ListHandler) DeleteList(c *gin.Context) {
	if err := h.lists.DeleteList(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Warn(c.Request.Context(), "delete list failed", "list_id", c.Param("id"), "error", err)
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
