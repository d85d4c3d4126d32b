package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MemorySearcher performs semantic lookups over a character's memories.
type MemorySearcher interface {
	Retrieve(ctx context.Context, characterID int, topic string, limit int) []string
}

// MemoryHandler exposes memory retrieval for inspection and debugging of
// what a character would be grounded on for a given topic.
type MemoryHandler struct {
	retriever MemorySearcher
}

func NewMemoryHandler(retriever MemorySearcher) *MemoryHandler {
	return &MemoryHandler{retriever: retriever}
}

// Search returns the memories nearest to the given topic.
func (h *MemoryHandler) Search(c *gin.Context) {
	characterID, err := strconv.Atoi(c.Query("characterId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "characterId is required"})
		return
	}
	topic := c.Query("topic")
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "topic is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	memories := h.retriever.Retrieve(c.Request.Context(), characterID, topic, limit)
	if memories == nil {
		memories = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok", "memories": memories})
}
