package handlers

import (
	"context"

	"github.com/mymmrac/telego"

	"brandpost-bot/internal/aggregator"
	"brandpost-bot/internal/auth"
	"brandpost-bot/internal/config"
	"brandpost-bot/internal/database"
	"brandpost-bot/internal/pending"
	"brandpost-bot/internal/queue"
	"brandpost-bot/pkg/telegoapi"
)

// Action types for logging and user updates
const (
	ActionCommandStart     = "command_start"
	ActionCommandHelp      = "command_help"
	ActionCommandStatus    = "command_status"
	ActionCommandVersion   = "command_version"
	ActionSubmitPhoto      = "submit_photo"
	ActionSubmitCaption    = "submit_caption"
	ActionSubmitCorrection = "submit_correction"
)

// Command represents a bot command, mapping the command string to its description and handler function.
type Command struct {
	Command     string // The command string (e.g., "start").
	Description string // Localization key of the description shown in /help.
	Handler     func(context.Context, telegoapi.BotAPI, telego.Message) error
}

// MessageHandler handles incoming Telegram messages.
// It routes photos into the aggregation window, attaches captions to
// pending submissions, and feeds completed submissions to the publish
// queue.
type MessageHandler struct {
	cfg *config.Config
	bot telegoapi.BotAPI

	queue      *queue.Queue
	pending    *pending.Store
	aggregator *aggregator.Aggregator

	// commands holds the list of available bot commands.
	commands []Command

	actionLogger database.UserActionLogger
	userRepo     database.UserRepository
	adminChecker *auth.AdminChecker
}

// NewMessageHandler creates and initializes a new MessageHandler instance.
// The aggregation window is owned by the handler: completed batches are
// routed back through the same submission path single photos take.
func NewMessageHandler(
	cfg *config.Config,
	bot telegoapi.BotAPI,
	q *queue.Queue,
	pendingStore *pending.Store,
	actionLogger database.UserActionLogger,
	userRepo database.UserRepository,
	adminChecker *auth.AdminChecker,
) *MessageHandler {
	h := &MessageHandler{
		cfg:          cfg,
		bot:          bot,
		queue:        q,
		pending:      pendingStore,
		actionLogger: actionLogger,
		userRepo:     userRepo,
		adminChecker: adminChecker,
	}
	h.aggregator = aggregator.New(h.deliverBatch)
	h.commands = []Command{
		{Command: "start", Description: "CmdStartDesc", Handler: h.HandleStart},
		{Command: "help", Description: "CmdHelpDesc", Handler: h.HandleHelp},
		{Command: "status", Description: "CmdStatusDesc", Handler: h.HandleStatus},
		{Command: "version", Description: "CmdVersionDesc", Handler: h.HandleVersion},
	}
	return h
}

// GetCommandHandler retrieves the handler function associated with a specific command string (e.g., "start").
// It returns nil if the command is not found.
func (h *MessageHandler) GetCommandHandler(command string) func(context.Context, telegoapi.BotAPI, telego.Message) error {
	for _, cmd := range h.commands {
		if cmd.Command == command {
			return cmd.Handler
		}
	}
	return nil
}

// Shutdown stops the aggregation window's pending timers.
func (h *MessageHandler) Shutdown() {
	h.aggregator.Shutdown()
}
