package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lexpravo/intake-api/pkg/httpclient"
	"github.com/lexpravo/intake-api/pkg/logger"
	"go.uber.org/zap"
)

// CallAsync calls a trigger URL asynchronously with a record id appended.
// Used for fire-and-forget webhooks after an application is created.
// Failures are logged but never affect the caller.
func CallAsync(triggerURL, recordID string, httpClient httpclient.Client) {
	if triggerURL == "" {
		// No trigger URL configured, skip silently
		return
	}

	go func() {
		targetURL := fmt.Sprintf("%s%s", triggerURL, recordID)

		logger.Info("Calling trigger URL",
			zap.String("url", targetURL),
			zap.String("record_id", recordID))

		resp, err := httpClient.Get(targetURL)
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("url", targetURL),
				zap.String("record_id", recordID))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("Trigger URL called successfully",
				zap.String("url", targetURL),
				zap.Int("status_code", resp.StatusCode))
		} else {
			logger.Warn("Trigger URL returned non-success status",
				zap.String("url", targetURL),
				zap.Int("status_code", resp.StatusCode))
		}
	}()
}

// CallAsyncWithPayload POSTs a JSON payload to a trigger URL asynchronously.
// Failures are logged but never affect the caller.
func CallAsyncWithPayload(triggerURL string, payload interface{}, httpClient httpclient.Client) {
	if triggerURL == "" {
		return
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			logger.Error("Failed to marshal trigger payload",
				zap.Error(err),
				zap.String("url", triggerURL))
			return
		}

		resp, err := httpClient.Post(triggerURL, "application/json", bytes.NewReader(body))
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("url", triggerURL))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			logger.Warn("Trigger URL returned non-success status",
				zap.String("url", triggerURL),
				zap.Int("status_code", resp.StatusCode))
		}
	}()
}
