package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"brandpost-bot/internal/locales"
	"brandpost-bot/internal/pending"
	"brandpost-bot/internal/queue"
	"brandpost-bot/internal/submission"
	"brandpost-bot/pkg/telegoapi"
)

// HandlePhoto processes an incoming photo message: single photos route
// straight to the submission path, album parts go through the aggregation
// window first.
func (h *MessageHandler) HandlePhoto(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if message.From == nil || len(message.Photo) == 0 {
		return nil
	}

	fileID := highestResolutionFileID(message.Photo)
	if !validFileID(fileID) {
		localizer := h.getLocalizer(message.From)
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgInvalidPhotoIDs", nil, nil))
	}

	h.RecordUserActivity(ctx, message.From, ActionSubmitPhoto, false, map[string]interface{}{
		"chat_id":        message.Chat.ID,
		"media_group_id": message.MediaGroupID,
	})

	sub := submission.Submission{
		SubmitterID:        message.From.ID,
		ChatID:             message.Chat.ID,
		MessageID:          message.MessageID,
		GroupID:            message.MediaGroupID,
		FileIDs:            []string{fileID},
		Caption:            message.Caption,
		CorrectionTargetID: correctionTarget(message),
		ReceivedAt:         time.Now(),
	}

	if sub.GroupID != "" {
		h.aggregator.Add(sub)
		return nil
	}
	return h.routeSubmission(ctx, bot, sub)
}

// HandleText attaches an incoming caption to the submitter's matching
// pending submission and enqueues the completed post.
func (h *MessageHandler) HandleText(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if message.From == nil {
		return nil
	}
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return nil
	}

	targetID := correctionTarget(message)
	action := ActionSubmitCaption
	if targetID != 0 {
		action = ActionSubmitCorrection
	}
	h.RecordUserActivity(ctx, message.From, action, false, map[string]interface{}{
		"chat_id":              message.Chat.ID,
		"correction_target_id": targetID,
	})

	rec, err := h.pending.Match(ctx, message.From.ID, "", targetID)
	if errors.Is(err, pending.ErrNoMatch) {
		if targetID != 0 {
			// Caption-only correction of an already-published post.
			_, err := h.enqueue(ctx, bot, h.getLocalizer(message.From), submission.Submission{
				SubmitterID:        message.From.ID,
				ChatID:             message.Chat.ID,
				MessageID:          message.MessageID,
				Caption:            text,
				CorrectionTargetID: targetID,
				ReceivedAt:         time.Now(),
			})
			return err
		}
		localizer := h.getLocalizer(message.From)
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgSendPhotosFirst", nil, nil))
	}
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, err)
	}

	sub := submission.Submission{
		SubmitterID:        rec.SubmitterID,
		ChatID:             message.Chat.ID,
		MessageID:          message.MessageID,
		GroupID:            rec.BatchID,
		FileIDs:            rec.FileIDs,
		Caption:            text,
		CorrectionTargetID: targetID,
		ReceivedAt:         time.Now(),
	}
	if sub.CorrectionTargetID == 0 {
		sub.CorrectionTargetID = rec.CorrectionTargetID
	}

	queued, err := h.enqueue(ctx, bot, h.getLocalizer(message.From), sub)
	if err != nil || !queued {
		return err
	}
	if err := h.pending.Consume(ctx, rec); err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, err)
	}
	return nil
}

// deliverBatch receives completed batches from the aggregation window.
func (h *MessageHandler) deliverBatch(ctx context.Context, _ string, sub submission.Submission) error {
	return h.routeSubmission(ctx, h.bot, sub)
}

// routeSubmission sends a completed submission onward: with a caption it
// joins the publish queue, without one it waits in the pending store.
func (h *MessageHandler) routeSubmission(ctx context.Context, bot telegoapi.BotAPI, sub submission.Submission) error {
	if strings.TrimSpace(sub.Caption) != "" {
		_, err := h.enqueue(ctx, bot, locales.NewLocalizer(h.cfg.DefaultLanguage), sub)
		return err
	}

	if err := h.pending.Put(ctx, sub); err != nil {
		return h.sendError(ctx, bot, sub.ChatID, err)
	}

	localizer := locales.NewLocalizer(h.cfg.DefaultLanguage)
	msgID := "MsgPhotoReceivedPrompt"
	data := map[string]interface{}(nil)
	if len(sub.FileIDs) > 1 {
		msgID = "MsgPhotosReceivedPrompt"
		data = map[string]interface{}{"Count": len(sub.FileIDs)}
	}
	return h.sendSuccess(ctx, bot, sub.ChatID, locales.GetMessage(localizer, msgID, data, nil))
}

// enqueue pushes a completed submission into the publish queue and
// tells the submitter what happened. A duplicate is reported but does
// not count as queued, so the caller keeps the pending record intact.
func (h *MessageHandler) enqueue(ctx context.Context, bot telegoapi.BotAPI, localizer *i18n.Localizer, sub submission.Submission) (bool, error) {
	_, err := h.queue.Enqueue(ctx, sub)
	if errors.Is(err, queue.ErrDuplicate) {
		return false, h.sendSuccess(ctx, bot, sub.ChatID, locales.GetMessage(localizer, "MsgDuplicatePost", nil, nil))
	}
	if err != nil {
		return false, h.sendError(ctx, bot, sub.ChatID, err)
	}
	return true, h.sendSuccess(ctx, bot, sub.ChatID, locales.GetMessage(localizer, "MsgPostQueued", nil, nil))
}

// highestResolutionFileID picks the largest rendition of a photo.
// Telegram delivers every photo as a list of sizes.
func highestResolutionFileID(sizes []telego.PhotoSize) string {
	if len(sizes) == 0 {
		return ""
	}
	photo := sizes[0]
	for _, p := range sizes {
		if p.FileSize > photo.FileSize {
			photo = p
		}
	}
	return photo.FileID
}
