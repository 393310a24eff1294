package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/lexpravo/intake-api/pkg/logger"
	"go.uber.org/zap"
)

// LogsHandler receives log batches from the Mini App frontend and appends
// them to a dedicated file next to the backend logs
type LogsHandler struct {
	logDir string
	mu     sync.Mutex
}

type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

type LogBatchRequest struct {
	Logs []LogEntry `json:"logs" binding:"required,max=100,dive"`
}

func NewLogsHandler(logDir string) *LogsHandler {
	return &LogsHandler{
		logDir: logDir,
	}
}

func (h *LogsHandler) ReceiveFrontendLogs(c *gin.Context) {
	var req LogBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if len(req.Logs) == 0 {
		respondError(c, http.StatusBadRequest, "No logs provided", nil)
		return
	}

	if err := h.writeLogsToFile(req.Logs); err != nil {
		logger.Error("Failed to write frontend logs", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to write logs", err)
		return
	}

	logger.Info("Received frontend logs", zap.Int("count", len(req.Logs)))
	c.JSON(http.StatusOK, gin.H{"success": true, "received": len(req.Logs)})
}

func (h *LogsHandler) writeLogsToFile(logs []LogEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(h.logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(h.logDir, "miniapp.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open frontend log file: %w", err)
	}
	defer f.Close()

	// Each entry becomes one JSON line matching the backend log shape
	encoder := json.NewEncoder(f)
	for _, entry := range logs {
		logLine := map[string]interface{}{
			"ts":      entry.Timestamp,
			"level":   entry.Level,
			"msg":     entry.Message,
			"service": "miniapp",
		}

		for k, v := range entry.Context {
			logLine[k] = v
		}

		if err := encoder.Encode(logLine); err != nil {
			return fmt.Errorf("failed to encode log entry: %w", err)
		}
	}

	return nil
}
