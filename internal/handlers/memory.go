package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopping-list/internal/memory"
)

type MemoryHandler struct {
	lists ListService
}

func NewMemoryHandler(lists ListService) *MemoryHandler {
	return &MemoryHandler{lists: lists}
}

func (h *MemoryHandler) GetMemory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(memory.DefaultLimit)))
	if err != nil {
		limit = memory.DefaultLimit
	}

	items := memory.Recall(h.lists.Lists(), c.Query("q"), limit)

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *MemoryHandler) GetCommonItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": memory.CommonItems})
}

func (h *MemoryHandler) GetMemoryStats(c *gin.Context) {
	c.JSON(http.StatusOK, memory.Summarize(h.lists.Lists()))
}
