package handlers

import (
	"context"
	"log"
	"regexp"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"brandpost-bot/internal/locales"
	"brandpost-bot/pkg/telegoapi"
)

// minFileIDLength filters out truncated or corrupted Telegram file ids.
const minFileIDLength = 20

var fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// sendSuccess sends a generic success message to the user.
func (h *MessageHandler) sendSuccess(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string) error {
	_, err := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	if err != nil {
		log.Printf("Error sending success message to chat %d: %v", chatID, err)
		// Don't return error to user, just log it.
	}
	return nil
}

// sendError sends a generic error message to the user.
// Logs the original error.
func (h *MessageHandler) sendError(ctx context.Context, bot telegoapi.BotAPI, chatID int64, originalErr error) error {
	log.Printf("Error for user in chat %d: %v", chatID, originalErr)

	localizer := locales.NewLocalizer(h.cfg.DefaultLanguage)
	errMsg := locales.GetMessage(localizer, "MsgErrorGeneral", nil, nil)

	_, sendErr := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), errMsg))
	if sendErr != nil {
		log.Printf("Error sending generic error message to chat %d: %v", chatID, sendErr)
	}

	// Return the original error to allow the main loop to handle it (e.g., Sentry logging)
	return originalErr
}

// getLocalizer determines the best localizer for a given user, falling
// back to the configured default language.
func (h *MessageHandler) getLocalizer(user *telego.User) *i18n.Localizer {
	lang := h.cfg.DefaultLanguage
	if user != nil && user.LanguageCode != "" {
		lang = user.LanguageCode
	}
	return locales.NewLocalizer(lang)
}

// RecordUserActivity combines updating user info and logging the action.
func (h *MessageHandler) RecordUserActivity(ctx context.Context, user *telego.User, action string, isAdmin bool, details map[string]interface{}) {
	if user == nil {
		log.Printf("Attempted to record activity for nil user, action: %s", action)
		return
	}

	if err := h.userRepo.UpdateUser(ctx, user.ID, user.Username, user.FirstName, user.LastName, isAdmin, action); err != nil {
		log.Printf("Error updating user %d (%s) in DB during action %s: %v", user.ID, user.Username, action, err)
		// Continue to log the action even if DB update fails
	}

	if err := h.actionLogger.LogUserAction(user.ID, action, details); err != nil {
		log.Printf("Error logging action %s for user %d (%s): %v", action, user.ID, user.Username, err)
	}
}

// validFileID reports whether a Telegram file id looks usable.
func validFileID(id string) bool {
	return len(id) > minFileIDLength && fileIDPattern.MatchString(id)
}

// correctionTarget extracts the correction-target message id: a submission
// sent as a reply marks the replied-to post for correction.
func correctionTarget(message telego.Message) int {
	if message.ReplyToMessage != nil {
		return message.ReplyToMessage.MessageID
	}
	return 0
}
