package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// Withdrawal events are announced to the ops Telegram channel so admins can
// review holds without polling the dashboard. Delivery is best-effort: a
// failed notification is logged and never rolls back the ledger write that
// already committed.

var (
	botOnce sync.Once
	bot     *tgbotapi.BotAPI
	chatID  int64
)

func notifyBot() *tgbotapi.BotAPI {
	botOnce.Do(func() {
		token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
		chat := strings.TrimSpace(os.Getenv("TELEGRAM_ADMIN_CHAT_ID"))
		if token == "" || chat == "" {
			return
		}
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			Log.Warnf("notify: invalid TELEGRAM_ADMIN_CHAT_ID: %v", err)
			return
		}
		b, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			Log.Warnf("notify: telegram bot init failed: %v", err)
			return
		}
		bot = b
		chatID = id
	})
	return bot
}

// NotifyAdmins sends a message to the admin channel. No-op when Telegram is
// not configured.
func NotifyAdmins(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	b := notifyBot()
	if b == nil {
		Log.Debugf("notify (admins, unconfigured): %s", msg)
		return
	}
	if _, err := b.Send(tgbotapi.NewMessage(chatID, msg)); err != nil {
		Log.Warnf("notify: admin message failed: %v", err)
	}
}

// NotifyWithdrawalRequested announces a new hold awaiting review.
func NotifyWithdrawalRequested(requestID, sellerID uint, amount float64) {
	NotifyAdmins("Withdrawal request #%d: seller %d requested $%.2f (funds held, pending review)", requestID, sellerID, amount)
}

// NotifyWithdrawalReviewed announces an admin decision.
func NotifyWithdrawalReviewed(requestID uint, status string, adminID int64) {
	NotifyAdmins("Withdrawal request #%d is now %s (reviewed by admin %d)", requestID, status, adminID)
}
