package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexpravo/intake-api/pkg/logger"
	"go.uber.org/zap"
)

const (
	// InitDataHeader carries the raw Mini App init data on every request.
	InitDataHeader = "X-Telegram-Init-Data"

	// TelegramUserContextKey stores the verified Telegram user in request context.
	TelegramUserContextKey = "telegram_user"

	// initDataMaxAge rejects init data older than one day. Telegram does not
	// expire it server-side, so replay protection is on us.
	initDataMaxAge = 24 * time.Hour
)

var (
	ErrInitDataMissing = errors.New("init data missing")
	ErrInitDataInvalid = errors.New("init data signature mismatch")
	ErrInitDataExpired = errors.New("init data expired")
)

// TelegramUser is the subset of the Mini App user payload the API relies on
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// TelegramAuthMiddleware verifies the Mini App init data signature. With
// required=false the request proceeds unauthenticated when the header is
// absent; a present but invalid header is always rejected.
func TelegramAuthMiddleware(botToken string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(InitDataHeader)
		if raw == "" {
			if required {
				_ = c.Error(ErrInitDataMissing) //nolint:errcheck
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		user, err := VerifyInitData(raw, botToken, time.Now())
		if err != nil {
			_ = c.Error(fmt.Errorf("telegram init data rejected: %w", err)) //nolint:errcheck
			logger.Warn("Telegram init data rejected",
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set(TelegramUserContextKey, user)
		c.Next()
	}
}

// TelegramUserID returns the verified Telegram user id for a request
func TelegramUserID(c *gin.Context) (int64, bool) {
	val, exists := c.Get(TelegramUserContextKey)
	if !exists {
		return 0, false
	}
	user, ok := val.(*TelegramUser)
	if !ok {
		return 0, false
	}
	return user.ID, true
}

// VerifyInitData checks the init data HMAC the way the Bot API specifies:
// the data-check string is every field except hash, sorted and joined with
// newlines, signed with HMAC-SHA256 keyed by HMAC("WebAppData", botToken).
func VerifyInitData(raw, botToken string, now time.Time) (*TelegramUser, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitDataInvalid, err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInitDataInvalid
	}

	pairs := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(gotHash)) {
		return nil, ErrInitDataInvalid
	}

	if authDate := values.Get("auth_date"); authDate != "" {
		ts, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil || now.Sub(time.Unix(ts, 0)) > initDataMaxAge {
			return nil, ErrInitDataExpired
		}
	}

	var user TelegramUser
	if rawUser := values.Get("user"); rawUser != "" {
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			return nil, fmt.Errorf("%w: bad user payload", ErrInitDataInvalid)
		}
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: no user id", ErrInitDataInvalid)
	}

	return &user, nil
}
