package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "12345:test-bot-token"

func init() {
	gin.SetMode(gin.TestMode)
}

// signInitData produces init data signed the way Telegram clients do
func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	pairs := make([]string, 0, len(fields))
	for key, value := range fields {
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values := url.Values{}
	for key, value := range fields {
		values.Set(key, value)
	}
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func validInitDataFields(now time.Time) map[string]string {
	return map[string]string{
		"auth_date": fmt.Sprintf("%d", now.Unix()),
		"query_id":  "AAH9mUEzAAAAAP2ZQTN5mB2c",
		"user":      `{"id":42,"first_name":"Иван","username":"ivan"}`,
	}
}

func TestVerifyInitData_Valid(t *testing.T) {
	now := time.Now()
	raw := signInitData(t, testBotToken, validInitDataFields(now))

	user, err := VerifyInitData(raw, testBotToken, now)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "Иван", user.FirstName)
	assert.Equal(t, "ivan", user.Username)
}

func TestVerifyInitData_TamperedHash(t *testing.T) {
	now := time.Now()
	raw := signInitData(t, testBotToken, validInitDataFields(now))
	raw = strings.Replace(raw, "hash=", "hash=00", 1)

	_, err := VerifyInitData(raw, testBotToken, now)
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestVerifyInitData_WrongBotToken(t *testing.T) {
	now := time.Now()
	raw := signInitData(t, "99999:other-bot", validInitDataFields(now))

	_, err := VerifyInitData(raw, testBotToken, now)
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestVerifyInitData_Expired(t *testing.T) {
	now := time.Now()
	fields := validInitDataFields(now.Add(-25 * time.Hour))
	raw := signInitData(t, testBotToken, fields)

	_, err := VerifyInitData(raw, testBotToken, now)
	assert.ErrorIs(t, err, ErrInitDataExpired)
}

func TestVerifyInitData_MissingHash(t *testing.T) {
	_, err := VerifyInitData("auth_date=123&user=%7B%22id%22%3A42%7D", testBotToken, time.Now())
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestVerifyInitData_NoUser(t *testing.T) {
	now := time.Now()
	raw := signInitData(t, testBotToken, map[string]string{
		"auth_date": fmt.Sprintf("%d", now.Unix()),
	})

	_, err := VerifyInitData(raw, testBotToken, now)
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func serveWithTelegramAuth(required bool, initData string) (*httptest.ResponseRecorder, int64, bool) {
	router := gin.New()

	var userID int64
	var authed bool
	router.GET("/check", TelegramAuthMiddleware(testBotToken, required), func(c *gin.Context) {
		userID, authed = TelegramUserID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	if initData != "" {
		req.Header.Set(InitDataHeader, initData)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, userID, authed
}

func TestTelegramAuthMiddleware_ValidHeader(t *testing.T) {
	raw := signInitData(t, testBotToken, validInitDataFields(time.Now()))

	w, userID, authed := serveWithTelegramAuth(true, raw)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, authed)
	assert.Equal(t, int64(42), userID)
}

func TestTelegramAuthMiddleware_RequiredMissingHeader(t *testing.T) {
	w, _, _ := serveWithTelegramAuth(true, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTelegramAuthMiddleware_OptionalMissingHeader(t *testing.T) {
	w, _, authed := serveWithTelegramAuth(false, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, authed)
}

func TestTelegramAuthMiddleware_OptionalInvalidHeaderStillRejected(t *testing.T) {
	raw := signInitData(t, "99999:other-bot", validInitDataFields(time.Now()))

	w, _, _ := serveWithTelegramAuth(false, raw)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
