package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"taskquest/internal/config"
	"taskquest/internal/repository"
	"taskquest/internal/service"
	"taskquest/internal/view"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageCategoryName
	stageTaskText
	stageTaskDaily
)

type conversationState struct {
	stage conversationStage
	text  string
}

type confirmationAction int

const (
	actionDeleteCategory confirmationAction = iota
	actionResetAll
)

type confirmationRequest struct {
	categoryID string
	action     confirmationAction
}

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot renders the tracker in a Telegram chat. It listens to the store:
// level-ups queue a celebration and every render trigger marks the board
// dirty; both are delivered by Flush after the current update.
type Bot struct {
	api    *tgbotapi.BotAPI
	out    sender
	store  *service.Store
	chats  *repository.ChatRepository
	config *config.Config
	log    log.FieldLogger

	mu            sync.Mutex
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	activeChat    int64
	dirty         bool
	celebrations  []string
	unsubscribe   func()
}

func New(token string, store *service.Store, chats *repository.ChatRepository, cfg *config.Config, logger log.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := newBot(api, store, chats, cfg, logger)
	b.api = api
	b.log.WithField("account", api.Self.UserName).Info("bot authorized")
	return b, nil
}

func newBot(out sender, store *service.Store, chats *repository.ChatRepository, cfg *config.Config, logger log.FieldLogger) *Bot {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	b := &Bot{
		out:           out,
		store:         store,
		chats:         chats,
		config:        cfg,
		log:           logger,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
	b.unsubscribe = store.Subscribe(b)
	return b
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return fmt.Errorf("bot has no telegram api")
	}
	defer b.unsubscribe()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if err := b.HandleUpdate(ctx, update); err != nil {
			b.log.WithError(err).Error("handle update")
		}
	}

	return ctx.Err()
}

// HandleUpdate processes one update and then flushes pending output.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	var (
		from   *tgbotapi.User
		chatID int64
		handle func() error
	)

	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
			return nil
		}
		from, chatID = cb.From, cb.Message.Chat.ID
		handle = func() error { return b.handleCallback(ctx, cb) }
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
			return nil
		}
		from, chatID = msg.From, msg.Chat.ID
		handle = func() error { return b.handleMessage(ctx, msg) }
	default:
		return nil
	}

	if !b.allowed(from.ID) {
		b.log.WithField("user", from.ID).Warn("ignoring update from stranger")
		if update.CallbackQuery != nil {
			b.ack(update.CallbackQuery, "")
		}
		return b.sendText(chatID, "This tracker belongs to someone else.")
	}

	b.mu.Lock()
	b.activeChat = chatID
	b.mu.Unlock()

	err := handle()
	if flushErr := b.Flush(ctx); err == nil {
		err = flushErr
	}
	return err
}

// LevelUp queues a celebration for the next flush.
func (b *Bot) LevelUp(categoryName string, newLevel int) {
	text := formatLevelUp(categoryName, newLevel)
	b.mu.Lock()
	b.celebrations = append(b.celebrations, text)
	b.mu.Unlock()
}

// Render marks the board as stale.
func (b *Bot) Render(change service.Change) {
	b.mu.Lock()
	b.dirty = true
	b.mu.Unlock()
}

// Flush sends queued celebrations and, if anything changed, a fresh board to
// the last active chat (or the configured owner).
func (b *Bot) Flush(ctx context.Context) error {
	b.mu.Lock()
	chatID := b.activeChat
	if chatID == 0 {
		chatID = b.config.OwnerID
	}
	celebrations := b.celebrations
	dirty := b.dirty
	if chatID != 0 {
		b.celebrations = nil
		b.dirty = false
	}
	b.mu.Unlock()

	if chatID == 0 {
		return nil
	}
	for _, text := range celebrations {
		if err := b.sendText(chatID, text); err != nil {
			return err
		}
	}
	if dirty {
		return b.sendBoard(chatID)
	}
	return nil
}

// SendDailyReports sends the daily summary to every known chat.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	targets, err := b.reportTargets(ctx)
	if err != nil {
		return err
	}
	doc, _ := b.store.Snapshot()
	text := formatSummary(view.DailySummary(doc, b.store.Today()))
	for _, chatID := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(chatID, text); err != nil {
			b.log.WithError(err).WithField("chat", chatID).Error("send summary")
		}
	}
	return nil
}

func (b *Bot) reportTargets(ctx context.Context) ([]int64, error) {
	if b.chats == nil {
		if b.config.OwnerID != 0 {
			return []int64{b.config.OwnerID}, nil
		}
		return nil, nil
	}
	chats, err := b.chats.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var targets []int64
	for _, chat := range chats {
		if b.allowed(chat.TelegramID) {
			targets = append(targets, chat.TelegramID)
		}
	}
	return targets, nil
}

func (b *Bot) allowed(userID int64) bool {
	return b.config.OwnerID == 0 || b.config.OwnerID == userID
}

func (b *Bot) ensureChat(ctx context.Context, from *tgbotapi.User) error {
	if b.chats == nil {
		return nil
	}
	_, err := b.chats.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.UserName)
	return err
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.out.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Main menu")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.out.Send(msg)
	return err
}

// sendBoard shows the selected category with toggle buttons, or the
// category picker when nothing is selected.
func (b *Bot) sendBoard(chatID int64) error {
	doc, selected := b.store.Snapshot()
	board := view.Project(doc, selected, b.store.Today())
	text, markup := formatBoard(board)
	if markup == nil {
		return b.sendText(chatID, text)
	}
	return b.sendWithReplyMarkup(chatID, text, *markup)
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.out.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.WithError(err).Warn("callback ack")
	}
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// promptConfirmer shows the store's question with a confirm keyboard and
// declines for now. The answer arrives as a later message and re-runs the
// operation with service.AlwaysConfirm.
type promptConfirmer struct {
	b      *Bot
	chatID int64
	userID int64
	req    confirmationRequest
	err    error
}

func (p *promptConfirmer) Confirm(message string) bool {
	p.b.setConfirmation(p.userID, p.req)
	p.err = p.b.sendWithReplyMarkup(p.chatID, "⚠️ "+escape(message), confirmKeyboard())
	return false
}
