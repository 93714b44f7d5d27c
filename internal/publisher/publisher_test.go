package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"brandpost-bot/internal/brand"
	"brandpost-bot/internal/config"
	"brandpost-bot/internal/database"
	"brandpost-bot/internal/database/models"
	"brandpost-bot/internal/locales"
	"brandpost-bot/internal/pricing"
)

func TestMain(m *testing.M) {
	locales.Init("ru")
	m.Run()
}

// --- Mocks ---

type MockBot struct {
	mock.Mock
}

func (m *MockBot) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg := args.Get(0); msg != nil {
		return msg.(*telego.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetMe(ctx context.Context) (*telego.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.(*telego.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockBot) SendMediaGroup(ctx context.Context, params *telego.SendMediaGroupParams) ([]telego.Message, error) {
	args := m.Called(ctx, params)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]telego.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendPhoto(ctx context.Context, params *telego.SendPhotoParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg := args.Get(0); msg != nil {
		return msg.(*telego.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockBot) EditMessageCaption(ctx context.Context, params *telego.EditMessageCaptionParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg := args.Get(0); msg != nil {
		return msg.(*telego.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error) {
	args := m.Called(ctx, params)
	if member := args.Get(0); member != nil {
		return member.(telego.ChatMember), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetFile(ctx context.Context, params *telego.GetFileParams) (*telego.File, error) {
	args := m.Called(ctx, params)
	if f := args.Get(0); f != nil {
		return f.(*telego.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) FileDownloadURL(filepath string) string {
	args := m.Called(filepath)
	return args.String(0)
}

type MockPostRepo struct {
	mock.Mock
}

func (m *MockPostRepo) Insert(ctx context.Context, post *models.PublishedPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepo) FindByCorrectionTarget(ctx context.Context, targetID int) (*models.PublishedPost, error) {
	args := m.Called(ctx, targetID)
	if post := args.Get(0); post != nil {
		return post.(*models.PublishedPost), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostRepo) FindByBrandAndPrice(ctx context.Context, brandName string, price float64) (*models.PublishedPost, error) {
	args := m.Called(ctx, brandName, price)
	if post := args.Get(0); post != nil {
		return post.(*models.PublishedPost), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostRepo) FindByFileID(ctx context.Context, fileID string, brandName string) (*models.PublishedPost, error) {
	args := m.Called(ctx, fileID, brandName)
	if post := args.Get(0); post != nil {
		return post.(*models.PublishedPost), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostRepo) FindByBrandAndFiles(ctx context.Context, brandName string, fileIDs []string, price *float64) (*models.PublishedPost, error) {
	args := m.Called(ctx, brandName, fileIDs, price)
	if post := args.Get(0); post != nil {
		return post.(*models.PublishedPost), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostRepo) UpdatePrice(ctx context.Context, primaryMessageID int, price float64, percent, caption string) error {
	args := m.Called(ctx, primaryMessageID, price, percent, caption)
	return args.Error(0)
}

func (m *MockPostRepo) ReplaceIdentifiers(ctx context.Context, id primitive.ObjectID, primaryMessageID int, buyers []models.BuyerMessageRef, price float64, percent, caption string) error {
	args := m.Called(ctx, id, primaryMessageID, buyers, price, percent, caption)
	return args.Error(0)
}

type MockBrandRepo struct {
	mock.Mock
}

func (m *MockBrandRepo) FindByInput(ctx context.Context, inputName string) (*models.BrandMapping, error) {
	args := m.Called(ctx, inputName)
	if v := args.Get(0); v != nil {
		return v.(*models.BrandMapping), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBrandRepo) FindByCanonical(ctx context.Context, canonicalName string) (*models.BrandMapping, error) {
	args := m.Called(ctx, canonicalName)
	if v := args.Get(0); v != nil {
		return v.(*models.BrandMapping), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBrandRepo) ListCanonicalNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBrandRepo) GetDestinationChatID(ctx context.Context, groupName string) (int64, error) {
	args := m.Called(ctx, groupName)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBrandRepo) GetTopicThreadID(ctx context.Context, groupName, topicName string) (int, error) {
	args := m.Called(ctx, groupName, topicName)
	return args.Int(0), args.Error(1)
}

type MockCorrectionRepo struct {
	mock.Mock
}

func (m *MockCorrectionRepo) Log(ctx context.Context, req *models.CorrectionRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCorrectionRepo) DeleteByMessageID(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MockCorrectionRepo) DeleteStale(ctx context.Context, submitterID int64, before time.Time) error {
	args := m.Called(ctx, submitterID, before)
	return args.Error(0)
}

type stubResolver struct {
	res *brand.Resolution
	err error
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (*brand.Resolution, error) {
	return s.res, s.err
}

// --- Fixtures ---

func testConfig() *config.Config {
	return &config.Config{
		BotName:         "testbot",
		DefaultLanguage: "ru",
		TargetGroup:     "showroom",
		TargetTopic:     "",
		BuyerGroups:     []string{"buyers"},
		AdjustPrice:     true,
	}
}

func photoMessage(messageID int, fileID string) *telego.Message {
	return &telego.Message{
		MessageID: messageID,
		Photo:     []telego.PhotoSize{{FileID: "thumb-" + fileID}, {FileID: "full-" + fileID}},
	}
}

func newPublisherForTest(bot *MockBot, cfg *config.Config, resolver BrandResolver, posts *MockPostRepo, brands *MockBrandRepo, corrections *MockCorrectionRepo) *Publisher {
	return NewWithDelays(bot, cfg, resolver, posts, brands, corrections, nil, time.Millisecond, time.Millisecond)
}

// --- Tests ---

func TestPublishNewSinglePhoto(t *testing.T) {
	bot := new(MockBot)
	posts := new(MockPostRepo)
	brands := new(MockBrandRepo)
	corrections := new(MockCorrectionRepo)
	resolver := &stubResolver{res: &brand.Resolution{Brand: "Gucci"}}
	p := newPublisherForTest(bot, testConfig(), resolver, posts, brands, corrections)

	entry := &models.QueueEntry{
		ID:          primitive.NewObjectID(),
		SubmitterID: 1,
		ChatID:      100,
		FileIDs:     []string{"photo1"},
		Caption:     "Gucci 100$ +20% S M",
	}

	posts.On("FindByBrandAndFiles", mock.Anything, "Gucci", []string{"photo1"}, (*float64)(nil)).Return(nil, database.ErrPostNotFound)
	posts.On("FindByBrandAndPrice", mock.Anything, "Gucci", 100.0).Return(nil, database.ErrPostNotFound)
	posts.On("FindByFileID", mock.Anything, "photo1", "Gucci").Return(nil, database.ErrPostNotFound)
	brands.On("GetDestinationChatID", mock.Anything, "showroom").Return(int64(-100200), nil)
	brands.On("GetDestinationChatID", mock.Anything, "buyers").Return(int64(-100300), nil)
	bot.On("SendPhoto", mock.Anything, mock.MatchedBy(func(params *telego.SendPhotoParams) bool {
		return params.Caption == "Gucci 120$ +20% S M"
	})).Return(photoMessage(501, "photo1"), nil).Twice()
	posts.On("Insert", mock.Anything, mock.MatchedBy(func(post *models.PublishedPost) bool {
		return post.Brand == "Gucci" &&
			post.Price == 120 &&
			post.OriginalPrice == 100 &&
			post.Percent == "+20%" &&
			post.Sizes == "S M" &&
			post.PrimaryMessageID == 501 &&
			len(post.BuyerMessages) == 1
	})).Return(nil)

	err := p.Publish(context.Background(), entry)
	require.NoError(t, err)
	posts.AssertExpectations(t)
	bot.AssertExpectations(t)
}

func TestPublishNewAlbumAttachesCaptionToFirstPhotoOnly(t *testing.T) {
	bot := new(MockBot)
	posts := new(MockPostRepo)
	brands := new(MockBrandRepo)
	corrections := new(MockCorrectionRepo)
	resolver := &stubResolver{res: &brand.Resolution{Brand: "Prada"}}
	cfg := testConfig()
	cfg.BuyerGroups = nil
	p := newPublisherForTest(bot, cfg, resolver, posts, brands, corrections)

	entry := &models.QueueEntry{
		ID:      primitive.NewObjectID(),
		ChatID:  100,
		FileIDs: []string{"a", "b", "c"},
		Caption: "Prada 50€",
	}

	posts.On("FindByBrandAndFiles", mock.Anything, "Prada", []string{"a", "b", "c"}, (*float64)(nil)).Return(nil, database.ErrPostNotFound)
	posts.On("FindByBrandAndPrice", mock.Anything, "Prada", 50.0).Return(nil, database.ErrPostNotFound)
	posts.On("FindByFileID", mock.Anything, "a", "Prada").Return(nil, database.ErrPostNotFound)
	brands.On("GetDestinationChatID", mock.Anything, "showroom").Return(int64(-1), nil)
	bot.On("SendMediaGroup", mock.Anything, mock.MatchedBy(func(params *telego.SendMediaGroupParams) bool {
		if len(params.Media) != 3 {
			return false
		}
		first, ok := params.Media[0].(*telego.InputMediaPhoto)
		if !ok || first.Caption != "Prada 50€" {
			return false
		}
		second := params.Media[1].(*telego.InputMediaPhoto)
		return second.Caption == ""
	})).Return([]telego.Message{*photoMessage(600, "a"), *photoMessage(601, "b"), *photoMessage(602, "c")}, nil)
	posts.On("Insert", mock.Anything, mock.MatchedBy(func(post *models.PublishedPost) bool {
		return post.PrimaryMessageID == 600 && post.Percent == "" && post.Price == 50
	})).Return(nil)

	err := p.Publish(context.Background(), entry)
	require.NoError(t, err)
	bot.AssertExpectations(t)
}

func TestPublishMissingPriceNotifiesSubmitter(t *testing.T) {
	bot := new(MockBot)
	p := newPublisherForTest(bot, testConfig(), &stubResolver{res: &brand.Resolution{Brand: "Gucci"}}, new(MockPostRepo), new(MockBrandRepo), new(MockCorrectionRepo))

	bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil)

	entry := &models.QueueEntry{ID: primitive.NewObjectID(), ChatID: 100, FileIDs: []string{"a"}, Caption: "Gucci gorgeous bag"}
	err := p.Publish(context.Background(), entry)
	assert.ErrorIs(t, err, ErrPriceNotFound)
	bot.AssertExpectations(t)
}

func TestPublishUnknownBrandFailsWhenRoutingByBrand(t *testing.T) {
	bot := new(MockBot)
	cfg := testConfig()
	cfg.SortByBrand = true
	p := newPublisherForTest(bot, cfg, &stubResolver{res: &brand.Resolution{Brand: brand.Unknown}}, new(MockPostRepo), new(MockBrandRepo), new(MockCorrectionRepo))

	bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil)

	entry := &models.QueueEntry{ID: primitive.NewObjectID(), ChatID: 100, FileIDs: []string{"a"}, Caption: "Nobrand 100$"}
	err := p.Publish(context.Background(), entry)
	assert.ErrorIs(t, err, ErrBrandNotRecognized)
}

func TestPublishEditsPriceInPlaceWhenPhotosUnchanged(t *testing.T) {
	bot := new(MockBot)
	posts := new(MockPostRepo)
	brands := new(MockBrandRepo)
	corrections := new(MockCorrectionRepo)
	resolver := &stubResolver{res: &brand.Resolution{Brand: "Gucci"}}
	p := newPublisherForTest(bot, testConfig(), resolver, posts, brands, corrections)

	original := &models.PublishedPost{
		ID:               primitive.NewObjectID(),
		Brand:            "Gucci",
		Caption:          "Gucci 100$ +10% S",
		Price:            110,
		OriginalPrice:    100,
		FileIDs:          []string{"a", "b"},
		PrimaryChatID:    -1,
		PrimaryMessageID: 700,
		BuyerMessages:    []models.BuyerMessageRef{{GroupName: "buyers", ChatID: -2, MessageID: 800}},
	}

	entry := &models.QueueEntry{
		ID:          primitive.NewObjectID(),
		SubmitterID: 1,
		ChatID:      100,
		FileIDs:     []string{"b", "a"},
		Caption:     "Gucci 100$ +20%",
	}

	// The set lookup ignores photo order, so ["b", "a"] finds the post
	// stored as ["a", "b"].
	posts.On("FindByBrandAndFiles", mock.Anything, "Gucci", []string{"b", "a"}, (*float64)(nil)).Return(original, nil)
	bot.On("EditMessageCaption", mock.Anything, mock.MatchedBy(func(params *telego.EditMessageCaptionParams) bool {
		return params.MessageID == 700 && params.Caption == "Gucci 120$ +20% S"
	})).Return(&telego.Message{}, nil).Once()
	bot.On("EditMessageCaption", mock.Anything, mock.MatchedBy(func(params *telego.EditMessageCaptionParams) bool {
		return params.MessageID == 800
	})).Return(&telego.Message{}, nil).Once()
	posts.On("UpdatePrice", mock.Anything, 700, 120.0, "+20%", "Gucci 120$ +20% S").Return(nil)
	bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil)

	err := p.Publish(context.Background(), entry)
	require.NoError(t, err)
	bot.AssertExpectations(t)
	posts.AssertExpectations(t)
	posts.AssertNotCalled(t, "FindByBrandAndPrice", mock.Anything, mock.Anything, mock.Anything)
	// No messages were deleted or resent.
	bot.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
	bot.AssertNotCalled(t, "SendPhoto", mock.Anything, mock.Anything)
}

func TestPublishExactItemSetMatchBeatsPriceLookup(t *testing.T) {
	bot := new(MockBot)
	posts := new(MockPostRepo)
	brands := new(MockBrandRepo)
	corrections := new(MockCorrectionRepo)
	resolver := &stubResolver{res: &brand.Resolution{Brand: "Gucci"}}
	p := newPublisherForTest(bot, testConfig(), resolver, posts, brands, corrections)

	original := &models.PublishedPost{
		ID:               primitive.NewObjectID(),
		Brand:            "Gucci",
		Caption:          "Gucci 100$ S",
		Price:            100,
		OriginalPrice:    100,
		FileIDs:          []string{"a"},
		PrimaryChatID:    -1,
		PrimaryMessageID: 700,
	}

	// Identical photos resubmitted with a new price: the exact item set
	// identifies the post even though no price matches.
	entry := &models.QueueEntry{
		ID:          primitive.NewObjectID(),
		SubmitterID: 1,
		ChatID:      100,
		FileIDs:     []string{"a"},
		Caption:     "Gucci 90$",
	}

	posts.On("FindByBrandAndFiles", mock.Anything, "Gucci", []string{"a"}, (*float64)(nil)).Return(original, nil)
	bot.On("EditMessageCaption", mock.Anything, mock.MatchedBy(func(params *telego.EditMessageCaptionParams) bool {
		return params.MessageID == 700 && params.Caption == "Gucci 90$ S"
	})).Return(&telego.Message{}, nil).Once()
	posts.On("UpdatePrice", mock.Anything, 700, 90.0, "", "Gucci 90$ S").Return(nil)
	bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil)

	err := p.Publish(context.Background(), entry)
	require.NoError(t, err)
	posts.AssertNotCalled(t, "FindByBrandAndPrice", mock.Anything, mock.Anything, mock.Anything)
	bot.AssertExpectations(t)
}

func TestPublishRepublishesWhenPhotosChanged(t *testing.T) {
	bot := new(MockBot)
	posts := new(MockPostRepo)
	brands := new(MockBrandRepo)
	corrections := new(MockCorrectionRepo)
	resolver := &stubResolver{res: &brand.Resolution{Brand: "Gucci"}}
	p := newPublisherForTest(bot, testConfig(), resolver, posts, brands, corrections)

	original := &models.PublishedPost{
		ID:               primitive.NewObjectID(),
		Brand:            "Gucci",
		Caption:          "Gucci 100$",
		Price:            100,
		OriginalPrice:    100,
		Currency:         "$",
		FileIDs:          []string{"old1"},
		PrimaryChatID:    -1,
		PrimaryMessageID: 700,
		BuyerMessages: []models.BuyerMessageRef{
			{GroupName: "buyers-a", ChatID: -2, MessageID: 800},
			{GroupName: "buyers-b", ChatID: -3, MessageID: 900},
		},
	}

	entry := &models.QueueEntry{
		ID:          primitive.NewObjectID(),
		SubmitterID: 1,
		ChatID:      100,
		MessageID:   55,
		FileIDs:     []string{"new1"},
		Caption:     "Gucci 100$ -5%",
	}

	posts.On("FindByBrandAndFiles", mock.Anything, "Gucci", []string{"new1"}, (*float64)(nil)).Return(nil, database.ErrPostNotFound)
	posts.On("FindByBrandAndPrice", mock.Anything, "Gucci", 100.0).Return(original, nil)
	bot.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(params *telego.DeleteMessageParams) bool {
		return params.MessageID == 700
	})).Return(nil).Once()
	bot.On("SendPhoto", mock.Anything, mock.MatchedBy(func(params *telego.SendPhotoParams) bool {
		// -5% is absorbed to +5, applied to the original price basis.
		return params.Caption == "Gucci 105$ +5%"
	})).Return(photoMessage(701, "new1"), nil).Times(2)

	// First buyer group: delete fails, old reference must be retained.
	bot.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(params *telego.DeleteMessageParams) bool {
		return params.MessageID == 800
	})).Return(errors.New("forbidden")).Once()
	// Second buyer group: full delete-and-resend.
	bot.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(params *telego.DeleteMessageParams) bool {
		return params.MessageID == 900
	})).Return(nil).Once()

	posts.On("ReplaceIdentifiers", mock.Anything, original.ID, 701, mock.MatchedBy(func(buyers []models.BuyerMessageRef) bool {
		return len(buyers) == 2 && buyers[0].MessageID == 800 && buyers[1].MessageID == 701
	}), 105.0, "+5%", "Gucci 105$ +5%").Return(nil)
	bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil)

	err := p.Publish(context.Background(), entry)
	require.NoError(t, err)
	bot.AssertExpectations(t)
	posts.AssertExpectations(t)
}

func TestPublishRepublishKeepsManualCaptionText(t *testing.T) {
	bot := new(MockBot)
	posts := new(MockPostRepo)
	brands := new(MockBrandRepo)
	corrections := new(MockCorrectionRepo)
	resolver := &stubResolver{res: &brand.Resolution{Brand: "Gucci"}}
	p := newPublisherForTest(bot, testConfig(), resolver, posts, brands, corrections)

	original := &models.PublishedPost{
		ID:               primitive.NewObjectID(),
		Brand:            "Gucci",
		Caption:          "Gucci vintage bag 100$ S",
		Price:            100,
		OriginalPrice:    100,
		Currency:         "$",
		FileIDs:          []string{"old1"},
		PrimaryChatID:    -1,
		PrimaryMessageID: 700,
	}

	entry := &models.QueueEntry{
		ID:          primitive.NewObjectID(),
		SubmitterID: 1,
		ChatID:      100,
		FileIDs:     []string{"new1"},
		Caption:     "Gucci 100$ +10%",
	}

	posts.On("FindByBrandAndFiles", mock.Anything, "Gucci", []string{"new1"}, (*float64)(nil)).Return(nil, database.ErrPostNotFound)
	posts.On("FindByBrandAndPrice", mock.Anything, "Gucci", 100.0).Return(original, nil)
	bot.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(params *telego.DeleteMessageParams) bool {
		return params.MessageID == 700
	})).Return(nil).Once()
	// The free-text "vintage bag" annotation survives the resend.
	bot.On("SendPhoto", mock.Anything, mock.MatchedBy(func(params *telego.SendPhotoParams) bool {
		return params.Caption == "Gucci vintage bag 110$ +10% S"
	})).Return(photoMessage(701, "new1"), nil).Once()
	posts.On("ReplaceIdentifiers", mock.Anything, original.ID, 701, mock.Anything, 110.0, "+10%", "Gucci vintage bag 110$ +10% S").Return(nil)
	bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil)

	err := p.Publish(context.Background(), entry)
	require.NoError(t, err)
	bot.AssertExpectations(t)
	posts.AssertExpectations(t)
}

func TestPublishCorrectionTargetMissing(t *testing.T) {
	bot := new(MockBot)
	posts := new(MockPostRepo)
	p := newPublisherForTest(bot, testConfig(), &stubResolver{res: &brand.Resolution{Brand: "Gucci"}}, posts, new(MockBrandRepo), new(MockCorrectionRepo))

	posts.On("FindByCorrectionTarget", mock.Anything, 42).Return(nil, database.ErrPostNotFound)
	bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil)

	entry := &models.QueueEntry{ID: primitive.NewObjectID(), ChatID: 100, FileIDs: []string{"a"}, Caption: "Gucci 100$", CorrectionTargetID: 42}
	err := p.Publish(context.Background(), entry)
	assert.ErrorIs(t, err, ErrOriginalNotFound)
}

func TestPublishRetriesOnRateLimit(t *testing.T) {
	bot := new(MockBot)
	posts := new(MockPostRepo)
	brands := new(MockBrandRepo)
	resolver := &stubResolver{res: &brand.Resolution{Brand: "Gucci"}}
	cfg := testConfig()
	cfg.BuyerGroups = nil
	p := newPublisherForTest(bot, cfg, resolver, posts, brands, new(MockCorrectionRepo))

	entry := &models.QueueEntry{ID: primitive.NewObjectID(), ChatID: 100, FileIDs: []string{"a"}, Caption: "Gucci 100$"}

	posts.On("FindByBrandAndFiles", mock.Anything, "Gucci", []string{"a"}, (*float64)(nil)).Return(nil, database.ErrPostNotFound)
	posts.On("FindByBrandAndPrice", mock.Anything, "Gucci", 100.0).Return(nil, database.ErrPostNotFound)
	posts.On("FindByFileID", mock.Anything, "a", "Gucci").Return(nil, database.ErrPostNotFound)
	brands.On("GetDestinationChatID", mock.Anything, "showroom").Return(int64(-1), nil)
	bot.On("SendPhoto", mock.Anything, mock.Anything).Return(nil, errors.New("telegram: Too Many Requests: retry after 1")).Twice()
	bot.On("SendPhoto", mock.Anything, mock.Anything).Return(photoMessage(501, "a"), nil).Once()
	posts.On("Insert", mock.Anything, mock.Anything).Return(nil)

	err := p.Publish(context.Background(), entry)
	require.NoError(t, err)
	bot.AssertNumberOfCalls(t, "SendPhoto", 3)
}

func TestPublishNoDestination(t *testing.T) {
	bot := new(MockBot)
	posts := new(MockPostRepo)
	brands := new(MockBrandRepo)
	p := newPublisherForTest(bot, testConfig(), &stubResolver{res: &brand.Resolution{Brand: "Gucci"}}, posts, brands, new(MockCorrectionRepo))

	posts.On("FindByBrandAndFiles", mock.Anything, "Gucci", []string{"a"}, (*float64)(nil)).Return(nil, database.ErrPostNotFound)
	posts.On("FindByBrandAndPrice", mock.Anything, "Gucci", 100.0).Return(nil, database.ErrPostNotFound)
	posts.On("FindByFileID", mock.Anything, "a", "Gucci").Return(nil, database.ErrPostNotFound)
	brands.On("GetDestinationChatID", mock.Anything, "showroom").Return(int64(0), database.ErrDestinationNotFound)
	bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{}, nil)

	entry := &models.QueueEntry{ID: primitive.NewObjectID(), ChatID: 100, FileIDs: []string{"a"}, Caption: "Gucci 100$"}
	err := p.Publish(context.Background(), entry)
	assert.ErrorIs(t, err, ErrNoDestination)
}

func TestAdjustedForCorrectionUsesOriginalPriceBasis(t *testing.T) {
	p := newPublisherForTest(new(MockBot), testConfig(), nil, new(MockPostRepo), new(MockBrandRepo), new(MockCorrectionRepo))

	original := &models.PublishedPost{OriginalPrice: 100, Price: 120}
	price, _ := pricing.ParsePrice("Gucci 120$ +30%")

	// The +30% applies to the recorded original price, not the displayed one.
	adjusted, annotation := p.adjustedForCorrection("Gucci 120$ +30%", original, price)
	assert.Equal(t, 130.0, adjusted)
	assert.Equal(t, "+30%", annotation)
}
