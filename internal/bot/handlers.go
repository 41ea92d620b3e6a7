package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"taskquest/internal/model"
	"taskquest/internal/service"
	"taskquest/internal/view"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input stopped.")
	}

	if msg.IsCommand() {
		b.log.WithFields(log.Fields{
			"user":    msg.From.ID,
			"command": msg.Command(),
			"args":    msg.CommandArguments(),
		}).Info("command")
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		return b.handleConversation(ctx, msg, state)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Try /newtask or /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(chatID, helpText)
	case "categories":
		return b.sendCategories(chatID)
	case "newcategory":
		if args == "" {
			b.setConversation(msg.From.ID, &conversationState{stage: stageCategoryName})
			return b.sendWithReplyMarkup(chatID, "📂 Name the new category:", cancelKeyboard())
		}
		return b.createCategory(ctx, chatID, args)
	case "select":
		return b.handleSelect(chatID, args)
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "tasks":
		return b.sendBoard(chatID)
	case "deletecategory":
		return b.handleDeleteCategory(ctx, msg, args)
	case "resetcategory":
		return b.handleResetCategory(ctx, chatID, args)
	case "resetdaily":
		changed, err := b.store.ForceDailyReset(ctx)
		if err != nil {
			return err
		}
		if !changed {
			return b.sendText(chatID, "No completed daily tasks to reset.")
		}
		return b.sendText(chatID, "🔁 Daily tasks unchecked.")
	case "progress":
		return b.sendProgress(chatID)
	case "report":
		doc, _ := b.store.Snapshot()
		return b.sendText(chatID, formatSummary(view.DailySummary(doc, b.store.Today())))
	case "resetall":
		confirmer := &promptConfirmer{b: b, chatID: chatID, userID: msg.From.ID, req: confirmationRequest{action: actionResetAll}}
		if _, err := b.store.ResetAll(ctx, confirmer); err != nil {
			return err
		}
		return confirmer.err
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(chatID, "Nothing in progress any more.")
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if err := b.ensureChat(ctx, msg.From); err != nil {
		return err
	}
	name := msg.From.FirstName
	if name == "" {
		name = msg.From.UserName
	}
	text := "👋 Hi, " + escape(name) + "!\n\n" + helpText
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.sendBoard(msg.Chat.ID)
	case strings.ToLower(menuLabelCategories):
		return true, b.sendCategories(msg.Chat.ID)
	case strings.ToLower(menuLabelProgress):
		return true, b.sendProgress(msg.Chat.ID)
	default:
		return false, nil
	}
}

func (b *Bot) sendCategories(chatID int64) error {
	doc, selected := b.store.Snapshot()
	board := view.Project(doc, selected, b.store.Today())
	picker := categoryPicker(board.Categories)
	if picker == nil {
		return b.sendText(chatID, formatCategories(board.Categories))
	}
	return b.sendWithReplyMarkup(chatID, formatCategories(board.Categories), *picker)
}

func (b *Bot) sendProgress(chatID int64) error {
	doc, selected := b.store.Snapshot()
	board := view.Project(doc, selected, b.store.Today())
	return b.sendText(chatID, formatProgress(board.Categories))
}

func (b *Bot) createCategory(ctx context.Context, chatID int64, name string) error {
	cat, err := b.store.AddCategory(ctx, name)
	if err != nil {
		return err
	}
	if cat == nil {
		return b.sendText(chatID, "A category needs a name.")
	}
	b.store.SelectCategory(cat.ID)
	return b.sendText(chatID, "📂 Category <b>"+escape(cat.Name)+"</b> created.")
}

func (b *Bot) handleSelect(chatID int64, ref string) error {
	doc, _ := b.store.Snapshot()
	cat := view.FindCategory(doc, ref)
	if cat == nil {
		return b.sendText(chatID, "Category not found. See /categories.")
	}
	b.store.SelectCategory(cat.ID)
	return nil
}

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	if b.store.Selected() == nil {
		return b.sendText(msg.Chat.ID, "Select a category first: /select <n>.")
	}
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTaskText})
	return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ What is the task?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	b.log.WithFields(log.Fields{"user": msg.From.ID, "stage": state.stage}).Info("conversation step")

	switch state.stage {
	case stageCategoryName:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "A category needs a name. Try again:", cancelKeyboard())
		}
		b.clearConversation(msg.From.ID)
		return b.createCategory(ctx, chatID, text)
	case stageTaskText:
		if text == "" {
			return b.sendWithReplyMarkup(chatID, "A task needs some text. Try again:", cancelKeyboard())
		}
		state.text = text
		state.stage = stageTaskDaily
		return b.sendWithReplyMarkup(chatID, "🔁 Should it reset every day?", yesNoKeyboard())
	case stageTaskDaily:
		var daily bool
		switch {
		case isYesInput(text):
			daily = true
		case isNoInput(text):
		default:
			return b.sendWithReplyMarkup(chatID, "Please answer Yes or No.", yesNoKeyboard())
		}
		b.clearConversation(msg.From.ID)
		task, err := b.store.AddTask(ctx, "", state.text, daily)
		if err != nil {
			return err
		}
		if task == nil {
			return b.sendText(chatID, "Select a category first: /select <n>.")
		}
		return b.sendText(chatID, "✅ Task added.")
	default:
		b.clearConversation(msg.From.ID)
		return nil
	}
}

func (b *Bot) handleDeleteCategory(ctx context.Context, msg *tgbotapi.Message, ref string) error {
	doc, _ := b.store.Snapshot()
	cat := view.FindCategory(doc, ref)
	if cat == nil {
		return b.sendText(msg.Chat.ID, "Category not found. See /categories.")
	}
	return b.askDeleteCategory(ctx, msg.Chat.ID, msg.From.ID, cat.ID)
}

func (b *Bot) askDeleteCategory(ctx context.Context, chatID, userID int64, categoryID string) error {
	confirmer := &promptConfirmer{
		b:      b,
		chatID: chatID,
		userID: userID,
		req:    confirmationRequest{categoryID: categoryID, action: actionDeleteCategory},
	}
	if _, err := b.store.DeleteCategory(ctx, categoryID, confirmer); err != nil {
		return err
	}
	return confirmer.err
}

func (b *Bot) handleResetCategory(ctx context.Context, chatID int64, ref string) error {
	var cat *model.Category
	if ref == "" {
		cat = b.store.Selected()
	} else {
		doc, _ := b.store.Snapshot()
		cat = view.FindCategory(doc, ref)
	}
	if cat == nil {
		return b.sendText(chatID, "Category not found. See /categories.")
	}
	changed, err := b.store.ResetCategoryTasks(ctx, cat.ID)
	if err != nil {
		return err
	}
	if !changed {
		return b.sendText(chatID, "Nothing to reset.")
	}
	return b.sendText(chatID, "↩️ Tasks in <b>"+escape(cat.Name)+"</b> unchecked.")
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	chatID := msg.Chat.ID
	b.clearConfirmation(msg.From.ID)

	if !isConfirmInput(msg.Text) {
		return b.sendTextWithRemove(chatID, "↩️ Cancelled.")
	}

	switch req.action {
	case actionDeleteCategory:
		deleted, err := b.store.DeleteCategory(ctx, req.categoryID, service.AlwaysConfirm)
		if err != nil {
			return err
		}
		if !deleted {
			return b.sendTextWithRemove(chatID, "Category is already gone.")
		}
		return b.sendTextWithRemove(chatID, "🗑 Category deleted.")
	case actionResetAll:
		if _, err := b.store.ResetAll(ctx, service.AlwaysConfirm); err != nil {
			return err
		}
		return b.sendTextWithRemove(chatID, "🧹 Everything was reset.")
	default:
		return nil
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	chatID := cb.Message.Chat.ID
	data := cb.Data
	b.log.WithFields(log.Fields{"user": cb.From.ID, "data": data}).Info("callback")

	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		return b.toggleFromCallback(ctx, cb, strings.TrimPrefix(data, cbTogglePrefix))
	case strings.HasPrefix(data, cbSelectPrefix):
		if !b.store.SelectCategory(strings.TrimPrefix(data, cbSelectPrefix)) {
			b.ack(cb, "Category not found")
			return nil
		}
		b.ack(cb, "")
		return nil
	case strings.HasPrefix(data, cbDeletePrefix):
		b.ack(cb, "")
		return b.askDeleteCategory(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbDeletePrefix))
	default:
		b.ack(cb, "")
		return nil
	}
}

func (b *Bot) toggleFromCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, taskID string) error {
	doc, _ := b.store.Snapshot()
	categoryID := owningCategory(doc, taskID)
	if categoryID == "" {
		b.ack(cb, "Task not found")
		return nil
	}
	res, err := b.store.ToggleTask(ctx, categoryID, taskID)
	if err != nil {
		b.ack(cb, "Could not save")
		return err
	}
	switch {
	case res == nil:
		b.ack(cb, "Task not found")
	case res.Completed:
		b.ack(cb, "+1 XP")
	default:
		b.ack(cb, "")
	}
	return nil
}

func owningCategory(doc *model.Document, taskID string) string {
	for _, cat := range doc.Categories {
		if cat.FindTask(taskID) != nil {
			return cat.ID
		}
	}
	return ""
}
