package publisher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"brandpost-bot/internal/brand"
	"brandpost-bot/internal/config"
	"brandpost-bot/internal/database"
	"brandpost-bot/internal/database/models"
	"brandpost-bot/internal/locales"
	"brandpost-bot/internal/pricing"
	"brandpost-bot/pkg/telegoapi"
)

// Publish failures reported back to the submitter.
var (
	ErrPriceNotFound      = errors.New("price not found in caption")
	ErrBrandNotRecognized = errors.New("brand not recognized")
	ErrOriginalNotFound   = errors.New("original post not found")
	ErrNoDestination      = errors.New("no destination configured")
)

// defaultSettleDelay is the wait between deleting an old message and
// sending its replacement. Sending immediately after a delete makes
// Telegram occasionally drop the new message.
const defaultSettleDelay = 3 * time.Second

// correctionStaleAfter bounds how long an unconsumed correction request
// stays tracked.
const correctionStaleAfter = 24 * time.Hour

// BrandResolver resolves free-text brand input.
type BrandResolver interface {
	Resolve(ctx context.Context, input string) (*brand.Resolution, error)
}

// Transformer prepares a photo for upload, typically by watermarking it.
// Implementations degrade to the original file id on failure.
type Transformer interface {
	Transform(ctx context.Context, fileID string) telego.InputFile
}

// Publisher turns queue entries into durable external posts and keeps
// them consistent across corrections.
type Publisher struct {
	bot         telegoapi.BotAPI
	cfg         *config.Config
	resolver    BrandResolver
	posts       database.PostRepository
	brands      database.BrandRepository
	corrections database.CorrectionRepository
	transformer Transformer

	settleDelay time.Duration
	retryBase   time.Duration
}

// New creates the publisher. transformer may be nil when watermarking is
// disabled.
func New(
	bot telegoapi.BotAPI,
	cfg *config.Config,
	resolver BrandResolver,
	posts database.PostRepository,
	brands database.BrandRepository,
	corrections database.CorrectionRepository,
	transformer Transformer,
) *Publisher {
	return &Publisher{
		bot:         bot,
		cfg:         cfg,
		resolver:    resolver,
		posts:       posts,
		brands:      brands,
		corrections: corrections,
		transformer: transformer,
		settleDelay: defaultSettleDelay,
		retryBase:   baseBackoff,
	}
}

// NewWithDelays creates a publisher with explicit delays, for tests.
func NewWithDelays(
	bot telegoapi.BotAPI,
	cfg *config.Config,
	resolver BrandResolver,
	posts database.PostRepository,
	brands database.BrandRepository,
	corrections database.CorrectionRepository,
	transformer Transformer,
	settleDelay, retryBase time.Duration,
) *Publisher {
	p := New(bot, cfg, resolver, posts, brands, corrections, transformer)
	p.settleDelay = settleDelay
	p.retryBase = retryBase
	return p
}

// Publish processes one queue entry: either a first publication or, when
// an already-published post matches, a correction of that post.
func (p *Publisher) Publish(ctx context.Context, entry *models.QueueEntry) error {
	price, err := pricing.ParsePrice(entry.Caption)
	if err != nil {
		p.notify(ctx, entry, "MsgPriceNotFound", map[string]interface{}{"Caption": entry.Caption})
		return fmt.Errorf("%w: %q", ErrPriceNotFound, entry.Caption)
	}

	res, err := p.resolver.Resolve(ctx, pricing.BrandText(entry.Caption))
	if err != nil {
		return fmt.Errorf("brand resolution failed: %w", err)
	}

	brandName := res.Brand
	if !res.Known() {
		if p.cfg.SortByBrand {
			p.notify(ctx, entry, "MsgBrandNotRecognized", map[string]interface{}{"Caption": entry.Caption})
			return fmt.Errorf("%w: %q", ErrBrandNotRecognized, entry.Caption)
		}
		// With a static destination an unmapped brand still publishes,
		// displayed exactly as the submitter typed it.
		brandName = pricing.BrandText(entry.Caption)
	}

	original, err := p.locateOriginal(ctx, entry, brandName, price.Amount)
	if err != nil {
		return err
	}
	if original != nil {
		if len(entry.FileIDs) == 0 || sameFileSet(entry.FileIDs, original.FileIDs) {
			return p.editPrice(ctx, entry, original, price)
		}
		return p.republish(ctx, entry, original, price)
	}

	return p.publishNew(ctx, entry, res, brandName, price)
}

// locateOriginal finds the published post this entry corrects, if any.
// Priority: explicit correction target, then the exact item set within the
// brand, then brand+price, then a single photo id within the brand. A nil
// post with nil error means this is a first publication.
func (p *Publisher) locateOriginal(ctx context.Context, entry *models.QueueEntry, brandName string, price float64) (*models.PublishedPost, error) {
	if entry.CorrectionTargetID != 0 {
		post, err := p.posts.FindByCorrectionTarget(ctx, entry.CorrectionTargetID)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, database.ErrPostNotFound) {
			return nil, err
		}
		p.notify(ctx, entry, "MsgOriginalPostNotFound", nil)
		return nil, fmt.Errorf("%w: target message %d", ErrOriginalNotFound, entry.CorrectionTargetID)
	}

	if len(entry.FileIDs) > 0 {
		post, err := p.posts.FindByBrandAndFiles(ctx, brandName, entry.FileIDs, nil)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, database.ErrPostNotFound) {
			return nil, err
		}
	}

	post, err := p.posts.FindByBrandAndPrice(ctx, brandName, price)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, database.ErrPostNotFound) {
		return nil, err
	}

	if len(entry.FileIDs) > 0 {
		post, err := p.posts.FindByFileID(ctx, entry.FileIDs[0], brandName)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, database.ErrPostNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// publishNew is the first-publication path: send to the primary
// destination, fan out to buyer groups, persist the post.
func (p *Publisher) publishNew(ctx context.Context, entry *models.QueueEntry, res *brand.Resolution, brandName string, price pricing.Price) error {
	adjusted := price.Amount
	annotation := ""
	if percent, ok := pricing.ParsePercent(entry.Caption); ok {
		if p.cfg.AdjustPrice {
			var effective int
			adjusted, effective = pricing.Adjust(price.Amount, percent)
			annotation = pricing.FormatPercent(effective)
		} else {
			annotation = pricing.FormatPercent(percent)
		}
	}
	sizes := pricing.ExtractSizes(entry.Caption)
	caption := composeCaption(brandName, adjusted, price.Currency, annotation, sizes)

	groupName, topicName := p.cfg.TargetGroup, p.cfg.TargetTopic
	if p.cfg.SortByBrand && len(res.TargetGroups) > 0 {
		groupName, topicName = res.TargetGroups[0], res.TargetTopic
	}

	chatID, err := p.brands.GetDestinationChatID(ctx, groupName)
	if errors.Is(err, database.ErrDestinationNotFound) {
		p.notify(ctx, entry, "MsgNoDestination", map[string]interface{}{"Brand": brandName})
		return fmt.Errorf("%w: group %q", ErrNoDestination, groupName)
	}
	if err != nil {
		return err
	}

	threadID := 0
	if topicName != "" {
		threadID, err = p.brands.GetTopicThreadID(ctx, groupName, topicName)
		if errors.Is(err, database.ErrTopicNotFound) {
			log.Printf("[Publisher Entry:%s] Topic %q not found in %q, posting to the general thread.", entry.ID.Hex(), topicName, groupName)
			threadID = 0
		} else if err != nil {
			return err
		}
	}

	primaryID, assignedIDs, err := p.sendPhotos(ctx, chatID, threadID, entry.FileIDs, caption, true)
	if err != nil {
		return fmt.Errorf("failed to publish to %q: %w", groupName, err)
	}
	log.Printf("[Publisher Entry:%s] Published %d photo(s) to %q as message %d.", entry.ID.Hex(), len(entry.FileIDs), groupName, primaryID)

	buyers := p.fanOutToBuyers(ctx, entry, caption)

	post := &models.PublishedPost{
		BotName:            p.cfg.BotName,
		SubmitterID:        entry.SubmitterID,
		MessageID:          entry.MessageID,
		Brand:              brandName,
		Caption:            caption,
		Price:              adjusted,
		OriginalPrice:      price.Amount,
		Currency:           price.Currency,
		Percent:            annotation,
		Sizes:              sizes,
		FileIDs:            entry.FileIDs,
		WatermarkedFileIDs: assignedIDs,
		PrimaryGroupName:   groupName,
		PrimaryChatID:      chatID,
		PrimaryMessageID:   primaryID,
		TopicName:          topicName,
		BuyerMessages:      buyers,
	}
	if err := p.posts.Insert(ctx, post); err != nil {
		return fmt.Errorf("failed to persist published post: %w", err)
	}
	return nil
}

// fanOutToBuyers copies the post to every buyer group, continuing on
// failure. Each group's outcome is independent.
func (p *Publisher) fanOutToBuyers(ctx context.Context, entry *models.QueueEntry, caption string) []models.BuyerMessageRef {
	var buyers []models.BuyerMessageRef
	for _, groupName := range p.cfg.BuyerGroups {
		chatID, err := p.brands.GetDestinationChatID(ctx, groupName)
		if err != nil {
			log.Printf("[Publisher Entry:%s] Buyer group %q not resolvable, skipping: %v", entry.ID.Hex(), groupName, err)
			continue
		}
		msgID, _, err := p.sendPhotos(ctx, chatID, 0, entry.FileIDs, caption, false)
		if err != nil {
			log.Printf("[Publisher Entry:%s] Failed to publish to buyer group %q, continuing: %v", entry.ID.Hex(), groupName, err)
			continue
		}
		buyers = append(buyers, models.BuyerMessageRef{GroupName: groupName, ChatID: chatID, MessageID: msgID})
	}
	return buyers
}

// editPrice is the price-only correction path: the photo set is unchanged,
// so the displayed captions are edited in place and no message churns.
func (p *Publisher) editPrice(ctx context.Context, entry *models.QueueEntry, original *models.PublishedPost, price pricing.Price) error {
	newPrice, annotation := p.adjustedForCorrection(entry.Caption, original, price)

	baseCaption := original.Caption
	if baseCaption == "" {
		baseCaption = composeCaption(original.Brand, original.Price, original.Currency, original.Percent, original.Sizes)
	}
	newCaption := pricing.RewriteCaption(baseCaption, newPrice, annotation)

	err := p.withRetry(ctx, "edit primary caption", func() error {
		_, err := p.bot.EditMessageCaption(ctx, &telego.EditMessageCaptionParams{
			ChatID:    tu.ID(original.PrimaryChatID),
			MessageID: original.PrimaryMessageID,
			Caption:   newCaption,
		})
		return err
	})
	if err != nil && !isNotModified(err) {
		return fmt.Errorf("failed to edit primary caption: %w", err)
	}

	for _, buyer := range original.BuyerMessages {
		err := p.withRetry(ctx, "edit buyer caption", func() error {
			_, err := p.bot.EditMessageCaption(ctx, &telego.EditMessageCaptionParams{
				ChatID:    tu.ID(buyer.ChatID),
				MessageID: buyer.MessageID,
				Caption:   newCaption,
			})
			return err
		})
		if err != nil && !isNotModified(err) {
			log.Printf("[Publisher Entry:%s] Failed to edit caption in buyer group %q, continuing: %v", entry.ID.Hex(), buyer.GroupName, err)
		}
	}

	if err := p.posts.UpdatePrice(ctx, original.PrimaryMessageID, newPrice, annotation, newCaption); err != nil {
		return fmt.Errorf("failed to persist price update: %w", err)
	}

	p.cleanupCorrection(ctx, entry)
	p.notify(ctx, entry, "MsgPostUpdated", nil)
	return nil
}

// republish is the delete-then-resend correction path, used when the photo
// set changed. Grouped media cannot be edited in place.
func (p *Publisher) republish(ctx context.Context, entry *models.QueueEntry, original *models.PublishedPost, price pricing.Price) error {
	newPrice, annotation := p.adjustedForCorrection(entry.Caption, original, price)

	// Same in-place rewrite as the edit path, so manual caption text
	// survives the resend too.
	baseCaption := original.Caption
	if baseCaption == "" {
		baseCaption = composeCaption(original.Brand, original.Price, original.Currency, original.Percent, original.Sizes)
	}
	caption := pricing.RewriteCaption(baseCaption, newPrice, annotation)

	p.trackCorrection(ctx, entry, original)

	if err := p.deleteMessage(ctx, original.PrimaryChatID, original.PrimaryMessageID); err != nil {
		log.Printf("[Publisher Entry:%s] Failed to delete old primary message %d: %v", entry.ID.Hex(), original.PrimaryMessageID, err)
	}
	if !sleepCtx(ctx, p.settleDelay) {
		return ctx.Err()
	}

	threadID := 0
	if original.TopicName != "" {
		id, err := p.brands.GetTopicThreadID(ctx, original.PrimaryGroupName, original.TopicName)
		if err == nil {
			threadID = id
		}
	}

	newPrimaryID, _, err := p.sendPhotos(ctx, original.PrimaryChatID, threadID, entry.FileIDs, caption, true)
	if err != nil {
		return fmt.Errorf("failed to resend primary message: %w", err)
	}

	buyers := make([]models.BuyerMessageRef, 0, len(original.BuyerMessages))
	for _, buyer := range original.BuyerMessages {
		if err := p.deleteMessage(ctx, buyer.ChatID, buyer.MessageID); err != nil {
			log.Printf("[Publisher Entry:%s] Failed to delete old message in buyer group %q, keeping old reference: %v", entry.ID.Hex(), buyer.GroupName, err)
			buyers = append(buyers, buyer)
			continue
		}
		msgID, _, err := p.sendPhotos(ctx, buyer.ChatID, 0, entry.FileIDs, caption, false)
		if err != nil {
			log.Printf("[Publisher Entry:%s] Failed to resend in buyer group %q, keeping old reference: %v", entry.ID.Hex(), buyer.GroupName, err)
			buyers = append(buyers, buyer)
			continue
		}
		buyers = append(buyers, models.BuyerMessageRef{GroupName: buyer.GroupName, ChatID: buyer.ChatID, MessageID: msgID})
	}

	if err := p.posts.ReplaceIdentifiers(ctx, original.ID, newPrimaryID, buyers, newPrice, annotation, caption); err != nil {
		return fmt.Errorf("failed to persist republished post: %w", err)
	}

	p.cleanupCorrection(ctx, entry)
	p.notify(ctx, entry, "MsgPostUpdated", nil)
	return nil
}

// adjustedForCorrection computes the new display price for a correction.
// Percentages apply to the originally recorded price, never the currently
// displayed one, so repeated corrections do not compound.
func (p *Publisher) adjustedForCorrection(caption string, original *models.PublishedPost, price pricing.Price) (float64, string) {
	if percent, ok := pricing.ParsePercent(caption); ok {
		basis := original.OriginalPrice
		if basis == 0 {
			basis = price.Amount
		}
		adjusted, effective := pricing.Adjust(basis, percent)
		return adjusted, pricing.FormatPercent(effective)
	}
	return price.Amount, ""
}

// sendPhotos sends one photo or a grouped album with the caption attached
// to the first photo only. It returns the destination message id and the
// destination-assigned file ids. transform controls whether photos go
// through the upload transformer; buyer copies reuse plain file ids.
func (p *Publisher) sendPhotos(ctx context.Context, chatID int64, threadID int, fileIDs []string, caption string, transform bool) (int, []string, error) {
	if len(fileIDs) == 0 {
		return 0, nil, errors.New("no photos to send")
	}

	if len(fileIDs) == 1 {
		var msg *telego.Message
		err := p.withRetry(ctx, "send photo", func() error {
			params := &telego.SendPhotoParams{
				ChatID:  tu.ID(chatID),
				Photo:   p.inputFile(ctx, fileIDs[0], transform),
				Caption: caption,
			}
			if threadID != 0 {
				params.MessageThreadID = threadID
			}
			sent, err := p.bot.SendPhoto(ctx, params)
			if err == nil {
				msg = sent
			}
			return err
		})
		if err != nil {
			return 0, nil, err
		}
		return msg.MessageID, photoFileIDs([]telego.Message{*msg}), nil
	}

	var msgs []telego.Message
	err := p.withRetry(ctx, "send media group", func() error {
		// Rebuild media each attempt: uploaded photos are single-use readers.
		media := make([]telego.InputMedia, len(fileIDs))
		for i, id := range fileIDs {
			photo := tu.MediaPhoto(p.inputFile(ctx, id, transform))
			if i == 0 && caption != "" {
				photo = photo.WithCaption(caption)
			}
			media[i] = photo
		}
		params := &telego.SendMediaGroupParams{
			ChatID: tu.ID(chatID),
			Media:  media,
		}
		if threadID != 0 {
			params.MessageThreadID = threadID
		}
		sent, err := p.bot.SendMediaGroup(ctx, params)
		if err == nil {
			msgs = sent
		}
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return msgs[0].MessageID, photoFileIDs(msgs), nil
}

func (p *Publisher) inputFile(ctx context.Context, fileID string, transform bool) telego.InputFile {
	if transform && p.transformer != nil {
		return p.transformer.Transform(ctx, fileID)
	}
	return telego.InputFile{FileID: fileID}
}

func (p *Publisher) deleteMessage(ctx context.Context, chatID int64, messageID int) error {
	err := p.withRetry(ctx, "delete message", func() error {
		return p.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
			ChatID:    tu.ID(chatID),
			MessageID: messageID,
		})
	})
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// trackCorrection records the in-flight correction so an operator can see
// what is being replaced if the process dies mid-protocol.
func (p *Publisher) trackCorrection(ctx context.Context, entry *models.QueueEntry, original *models.PublishedPost) {
	if entry.CorrectionTargetID == 0 {
		return
	}
	req := &models.CorrectionRequest{
		SubmitterID:        entry.SubmitterID,
		BotName:            p.cfg.BotName,
		MessageID:          entry.MessageID,
		Brand:              original.Brand,
		FileIDs:            entry.FileIDs,
		Caption:            entry.Caption,
		CorrectionTargetID: entry.CorrectionTargetID,
		PrimaryMessageID:   original.PrimaryMessageID,
	}
	if err := p.corrections.Log(ctx, req); err != nil {
		log.Printf("[Publisher Entry:%s] Failed to track correction: %v", entry.ID.Hex(), err)
	}
}

func (p *Publisher) cleanupCorrection(ctx context.Context, entry *models.QueueEntry) {
	if entry.CorrectionTargetID == 0 {
		return
	}
	if err := p.corrections.DeleteByMessageID(ctx, entry.MessageID); err != nil {
		log.Printf("[Publisher Entry:%s] Failed to remove correction tracking: %v", entry.ID.Hex(), err)
	}
	if err := p.corrections.DeleteStale(ctx, entry.SubmitterID, time.Now().Add(-correctionStaleAfter)); err != nil {
		log.Printf("[Publisher Entry:%s] Failed to purge stale corrections: %v", entry.ID.Hex(), err)
	}
}

func (p *Publisher) notify(ctx context.Context, entry *models.QueueEntry, msgID string, data map[string]interface{}) {
	if entry.ChatID == 0 {
		return
	}
	localizer := locales.NewLocalizer(p.cfg.DefaultLanguage)
	text := locales.GetMessage(localizer, msgID, data, nil)
	if _, err := p.bot.SendMessage(ctx, tu.Message(tu.ID(entry.ChatID), text)); err != nil {
		log.Printf("[Publisher Entry:%s] Failed to notify submitter: %v", entry.ID.Hex(), err)
	}
}

// composeCaption builds the published caption: brand, price with currency,
// optional percent annotation, optional sizes.
func composeCaption(brandName string, price float64, currency, annotation, sizes string) string {
	if currency == "" {
		currency = "$"
	}
	parts := []string{brandName, pricing.FormatPrice(price) + currency}
	if annotation != "" {
		parts = append(parts, annotation)
	}
	if sizes != "" {
		parts = append(parts, sizes)
	}
	return strings.Join(parts, " ")
}

// photoFileIDs extracts the highest-resolution file id of each sent photo.
func photoFileIDs(msgs []telego.Message) []string {
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if len(msg.Photo) == 0 {
			continue
		}
		ids = append(ids, msg.Photo[len(msg.Photo)-1].FileID)
	}
	return ids
}

// sameFileSet reports whether two photo sets contain the same ids,
// ignoring order.
func sameFileSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, id := range a {
		set[id]++
	}
	for _, id := range b {
		set[id]--
		if set[id] < 0 {
			return false
		}
	}
	return true
}
