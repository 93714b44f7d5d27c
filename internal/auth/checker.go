package auth

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mymmrac/telego"

	"brandpost-bot/pkg/telegoapi"
)

// AdminChecker handles checking user admin status against the primary
// destination chat.
type AdminChecker struct {
	bot          telegoapi.BotAPI
	targetChatID int64
}

// NewAdminChecker creates a new AdminChecker.
// It requires a non-nil bot instance and a non-zero target chat ID.
func NewAdminChecker(bot telegoapi.BotAPI, chatID int64) (*AdminChecker, error) {
	if bot == nil {
		return nil, fmt.Errorf("bot instance cannot be nil")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("target chat ID cannot be zero")
	}
	return &AdminChecker{
		bot:          bot,
		targetChatID: chatID,
	}, nil
}

// IsAdmin checks if a user is an administrator or creator in the target
// chat configured in the AdminChecker.
func (ac *AdminChecker) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	member, err := ac.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: ac.targetChatID},
		UserID: userID,
	})
	if err != nil {
		// A user not found in the chat is simply not an admin.
		// API errors (network, permissions) should be returned.
		if strings.Contains(strings.ToLower(err.Error()), "user not found") {
			return false, nil
		}
		log.Printf("[AdminCheck User:%d Chat:%d] Error checking chat member: %v. Assuming non-admin.", userID, ac.targetChatID, err)
		return false, fmt.Errorf("failed to get chat member info: %w", err)
	}

	status := member.MemberStatus()
	isAdminStatus := status == telego.MemberStatusCreator || status == telego.MemberStatusAdministrator
	return isAdminStatus, nil
}
