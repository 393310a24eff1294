package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimit caps the request body. Attachment endpoints get a cap sized
// for base64-encoded files; everything else stays small so an oversized
// payload cannot tie up the server.
func BodySizeLimit(maxBodySize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			// no body to cap
		default:
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		}

		c.Next()
	}
}
