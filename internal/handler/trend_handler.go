package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kharazdev/joke-factory/internal/trend"
	"github.com/kharazdev/joke-factory/internal/types"
	"github.com/kharazdev/joke-factory/pkg/log"
)

// TrendService reads and regenerates trend snapshots.
type TrendService interface {
	LatestCached(ctx context.Context) (*types.TrendSnapshot, error)
	Generate(ctx context.Context) error
}

// TrendGate guards manual regeneration with the same cooldown the daily job
// uses.
type TrendGate interface {
	CanMakeCall(ctx context.Context, action string, intervalDays int) bool
}

// TrendHandler exposes the cached snapshot and a manual regeneration trigger.
type TrendHandler struct {
	trends       TrendService
	gate         TrendGate
	intervalDays int
}

func NewTrendHandler(trends TrendService, gate TrendGate, intervalDays int) *TrendHandler {
	if intervalDays <= 0 {
		intervalDays = 7
	}
	return &TrendHandler{
		trends:       trends,
		gate:         gate,
		intervalDays: intervalDays,
	}
}

// Latest returns the most recent trend snapshot.
func (h *TrendHandler) Latest(c *gin.Context) {
	snapshot, err := h.trends.LatestCached(c.Request.Context())
	if err != nil {
		log.Error("failed to load trend snapshot", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load trends"})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "no trend snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok", "trends": snapshot})
}

// Generate regenerates the snapshot synchronously, honoring the cooldown.
func (h *TrendHandler) Generate(c *gin.Context) {
	if !h.gate.CanMakeCall(c.Request.Context(), trend.ActionTrendGeneration, h.intervalDays) {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "trend generation cooldown has not elapsed"})
		return
	}
	if err := h.trends.Generate(c.Request.Context()); err != nil {
		log.Error("trend generation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "trend generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trend snapshot regenerated"})
}
