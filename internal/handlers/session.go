package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/lexpravo/intake-api/internal/middleware"
)

// SessionHeader carries the anonymous wizard session id for clients that
// open the form outside Telegram
const SessionHeader = "X-Wizard-Session"

// sessionKey derives the draft owner key for a request. Authenticated
// Mini App users are keyed by their Telegram id so a draft follows the user
// across devices; anonymous browsers bring their own session id.
func sessionKey(c *gin.Context) (string, bool) {
	if userID, ok := middleware.TelegramUserID(c); ok {
		return fmt.Sprintf("tg:%d", userID), true
	}
	if session := c.GetHeader(SessionHeader); session != "" {
		return "anon:" + session, true
	}
	return "", false
}
