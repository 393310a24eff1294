package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/pkg/logger"
	"github.com/lexpravo/intake-api/pkg/metrics"
	"github.com/lexpravo/intake-api/pkg/retry"
	"go.uber.org/zap"
)

// Notifier sends application events to the staff Telegram channel and
// service messages to clients via the bot
type Notifier struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

// NewNotifier creates a notifier. Returns an error when the token is
// rejected by the Bot API so a bad deploy fails fast.
func NewNotifier(botToken string, adminChatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Notifier{
		bot:         bot,
		adminChatID: adminChatID,
	}, nil
}

// NotifyNewApplication posts a summary of a fresh application to the staff chat
func (n *Notifier) NotifyNewApplication(ctx context.Context, app *models.Application) error {
	var b strings.Builder
	b.WriteString("📋 *Новая заявка*\n\n")
	fmt.Fprintf(&b, "*Номер:* `%d`\n", app.ID)
	fmt.Fprintf(&b, "*Категория:* %s\n", escapeMarkdown(app.CategoryName))
	if app.Subcategory != "" {
		fmt.Fprintf(&b, "*Уточнение:* %s\n", escapeMarkdown(app.Subcategory))
	}
	fmt.Fprintf(&b, "*Клиент:* %s\n", escapeMarkdown(app.ClientName))
	fmt.Fprintf(&b, "*Телефон:* %s\n", escapeMarkdown(app.ClientPhone))
	if app.ClientEmail != "" {
		fmt.Fprintf(&b, "*Email:* %s\n", escapeMarkdown(app.ClientEmail))
	}
	fmt.Fprintf(&b, "*Связь:* %s, %s\n", contactMethodLabel(app.ContactMethod), contactTimeLabel(app.ContactTime))
	if len(app.Files) > 0 {
		fmt.Fprintf(&b, "*Файлы:* %d\n", len(app.Files))
	}
	fmt.Fprintf(&b, "\n%s", escapeMarkdown(truncate(app.Description, 500)))

	return n.send(ctx, n.adminChatID, b.String(), "new_application")
}

// NotifyClient sends a plain text message to a client's Telegram chat
func (n *Notifier) NotifyClient(ctx context.Context, telegramUserID int64, text string) error {
	return n.send(ctx, telegramUserID, text, "client_message")
}

func (n *Notifier) send(ctx context.Context, chatID int64, text, kind string) error {
	start := time.Now()

	err := retry.Do(ctx, retry.TelegramConfig(), "telegram_send", func() error {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = "Markdown"
		_, sendErr := n.bot.Send(msg)
		return sendErr
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.AdminNotifications.WithLabelValues("error").Inc()
		logger.LogAPICall("telegram", kind, "error", duration,
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	metrics.AdminNotifications.WithLabelValues("success").Inc()
	logger.LogAPICall("telegram", kind, "success", duration, zap.Int64("chat_id", chatID))

	return nil
}

func contactMethodLabel(m models.ContactMethod) string {
	switch m {
	case models.ContactMethodTelegram:
		return "Telegram"
	case models.ContactMethodPhone:
		return "телефон"
	case models.ContactMethodWhatsApp:
		return "WhatsApp"
	case models.ContactMethodEmail:
		return "email"
	}
	return string(m)
}

func contactTimeLabel(t models.ContactTime) string {
	switch t {
	case models.ContactTimeMorning:
		return "утром"
	case models.ContactTimeAfternoon:
		return "днём"
	case models.ContactTimeEvening:
		return "вечером"
	}
	return "в любое время"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// escapeMarkdown keeps user text from breaking legacy Markdown parse mode
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return replacer.Replace(s)
}
