// Package handler implements the HTTP and WebSocket surface.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kharazdev/joke-factory/internal/orchestrator"
)

// JobHandler triggers pipeline jobs and exposes their tracked state.
type JobHandler struct {
	orch *orchestrator.Orchestrator
}

func NewJobHandler(orch *orchestrator.Orchestrator) *JobHandler {
	return &JobHandler{orch: orch}
}

// TriggerDaily starts the daily-cached job and returns its id immediately.
func (h *JobHandler) TriggerDaily(c *gin.Context) {
	jobID := h.orch.StartDailyJob()
	c.JSON(http.StatusAccepted, gin.H{"message": "daily joke generation started", "jobId": jobID})
}

// TriggerCategory starts the smart-category job for one category.
func (h *JobHandler) TriggerCategory(c *gin.Context) {
	categoryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid category id"})
		return
	}
	jobID := h.orch.StartCategoryJob(categoryID)
	c.JSON(http.StatusAccepted, gin.H{"message": "category joke generation started", "jobId": jobID})
}

// TriggerTop starts the high-volume job over the top characters.
func (h *JobHandler) TriggerTop(c *gin.Context) {
	jobID := h.orch.StartTopCharactersJob()
	c.JSON(http.StatusAccepted, gin.H{"message": "top characters joke generation started", "jobId": jobID})
}

// GetStatus returns a tracked job's snapshot.
func (h *JobHandler) GetStatus(c *gin.Context) {
	job, ok := h.orch.JobStatus(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok", "job": job})
}

// Cancel stops a running job.
func (h *JobHandler) Cancel(c *gin.Context) {
	if !h.orch.Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"message": "job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "job canceled"})
}
