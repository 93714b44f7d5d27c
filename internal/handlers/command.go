package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mymmrac/telego"

	"brandpost-bot/internal/locales"
	"brandpost-bot/pkg/telegoapi"
)

// HandleStart handles the /start command.
// It registers the bot commands, records the user, and sends the welcome message.
func (h *MessageHandler) HandleStart(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if err := h.setupCommands(ctx, bot); err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("failed to set up commands: %w", err))
	}

	localizer := h.getLocalizer(message.From)

	isAdmin := false
	if h.adminChecker != nil {
		isAdmin, _ = h.adminChecker.IsAdmin(ctx, message.From.ID)
	}

	h.RecordUserActivity(ctx, message.From, ActionCommandStart, isAdmin, map[string]interface{}{
		"chat_id": message.Chat.ID,
	})

	startMsg := locales.GetMessage(localizer, "MsgStart", nil, nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, startMsg)
}

// HandleHelp handles the /help command.
// It lists the available commands with localized descriptions.
func (h *MessageHandler) HandleHelp(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)

	var helpText strings.Builder
	helpText.WriteString(locales.GetMessage(localizer, "MsgHelpHeader", nil, nil) + "\n")
	for _, cmd := range h.commands {
		localizedDesc := locales.GetMessage(localizer, cmd.Description, nil, nil)
		helpText.WriteString(fmt.Sprintf("/%s - %s\n", cmd.Command, localizedDesc))
	}
	helpText.WriteString(locales.GetMessage(localizer, "MsgHelpFooter", nil, nil))

	h.RecordUserActivity(ctx, message.From, ActionCommandHelp, false, map[string]interface{}{
		"chat_id": message.Chat.ID,
	})

	return h.sendSuccess(ctx, bot, message.Chat.ID, helpText.String())
}

// HandleStatus handles the /status command.
// It reports how many posts are waiting in the publish queue. Admins of the
// primary destination additionally see the failed-entry count.
func (h *MessageHandler) HandleStatus(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	localizer := h.getLocalizer(message.From)

	pendingCount, err := h.queue.PendingCount(ctx)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("failed to count pending queue entries: %w", err))
	}

	isAdmin := false
	if h.adminChecker != nil {
		isAdmin, _ = h.adminChecker.IsAdmin(ctx, message.From.ID)
	}

	var statusText string
	if isAdmin {
		failedCount, err := h.queue.FailedCount(ctx)
		if err != nil {
			return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("failed to count failed queue entries: %w", err))
		}
		statusText = locales.GetMessage(localizer, "MsgStatusAdmin", map[string]interface{}{
			"Pending": pendingCount,
			"Failed":  failedCount,
		}, nil)
	} else {
		statusText = locales.GetMessage(localizer, "MsgStatus", map[string]interface{}{
			"Pending": pendingCount,
		}, nil)
	}

	h.RecordUserActivity(ctx, message.From, ActionCommandStatus, isAdmin, map[string]interface{}{
		"chat_id": message.Chat.ID,
		"pending": pendingCount,
	})

	return h.sendSuccess(ctx, bot, message.Chat.ID, statusText)
}

// HandleVersion handles the /version command.
func (h *MessageHandler) HandleVersion(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	version := h.cfg.Version
	if version == "" {
		version = "dev"
	}

	localizer := h.getLocalizer(message.From)
	versionText := locales.GetMessage(localizer, "MsgVersion", map[string]interface{}{
		"Version": version,
	}, nil)

	h.RecordUserActivity(ctx, message.From, ActionCommandVersion, false, map[string]interface{}{
		"chat_id": message.Chat.ID,
		"version": version,
	})

	return h.sendSuccess(ctx, bot, message.Chat.ID, versionText)
}

// setupCommands registers the bot's commands with Telegram using
// descriptions localized to the configured default language.
func (h *MessageHandler) setupCommands(ctx context.Context, bot telegoapi.BotAPI) error {
	if len(h.commands) == 0 {
		log.Println("No commands defined in handler, skipping SetMyCommands.")
		return nil
	}

	localizer := locales.NewLocalizer(h.cfg.DefaultLanguage)

	commands := make([]telego.BotCommand, 0, len(h.commands))
	for _, cmd := range h.commands {
		commands = append(commands, telego.BotCommand{
			Command:     cmd.Command,
			Description: locales.GetMessage(localizer, cmd.Description, nil, nil),
		})
	}

	err := bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands})
	if err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	log.Printf("Successfully set %d bot commands.", len(commands))
	return nil
}
