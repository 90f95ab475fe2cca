package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/moviedeck/internal/catalog"
	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

const (
	unauthorizedMsg = "Sorry, you are not authorized to use this bot."
	errorMsg        = "Could not reach TMDb right now. Please try again."
	resetMsg        = "List closed. Send /popular or another command to start over."
	expiredMsg      = "This list is no longer active."
	maxCaptionLen   = 1024

	helpMsg = `Welcome to MovieDeck!

/popular - popular movies
/top - top rated movies
/upcoming - upcoming movies
/now - now playing in theaters
/tv - popular TV shows
/tvtop - top rated TV shows
/genre <id> - movies of a genre (e.g. /genre 28)
/search <text> - search movies
/movie <id> - movie details
/reset - close the current list`
)

// listCommands maps list commands to their list and heading.
var listCommands = map[string]struct {
	list  tmdb.List
	title string
}{
	"popular":  {tmdb.ListPopular, "Popular movies"},
	"top":      {tmdb.ListTopRated, "Top rated movies"},
	"upcoming": {tmdb.ListUpcoming, "Upcoming movies"},
	"now":      {tmdb.ListNowPlaying, "Now playing"},
	"tv":       {tmdb.ListTVPopular, "Popular TV shows"},
	"tvtop":    {tmdb.ListTVTopRated, "Top rated TV shows"},
}

// handleMessage processes an incoming text message.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	cmd, args := parseCommand(msg.Text)
	if lc, ok := listCommands[cmd]; ok {
		b.openList(ctx, chatID, lc.list, lc.title)
		return
	}

	switch cmd {
	case "":
		if strings.TrimSpace(msg.Text) != "" {
			b.sendText(chatID, "Send /help to see what I can do.")
		}
	case "start", "help":
		b.sendText(chatID, helpMsg)
	case "reset":
		b.sessions.reset(chatID)
		b.sendText(chatID, resetMsg)
	case "genre":
		id, err := strconv.Atoi(args)
		if err != nil || id <= 0 {
			b.sendText(chatID, "Usage: /genre <id>, for example /genre 28")
			return
		}
		b.openList(ctx, chatID, tmdb.GenreList(tmdb.MediaMovie, id), fmt.Sprintf("Genre %d", id))
	case "search":
		if args == "" {
			b.sendText(chatID, "Usage: /search <text>")
			return
		}
		b.openList(ctx, chatID, tmdb.SearchList(tmdb.MediaMovie, args), fmt.Sprintf("Search: %q", args))
	case "movie":
		b.showMovieArg(ctx, chatID, args)
	default:
		if raw, ok := strings.CutPrefix(cmd, "movie_"); ok {
			b.showMovieArg(ctx, chatID, raw)
			return
		}
		b.sendText(chatID, helpMsg)
	}
}

// handleCallback processes pagination button presses.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Every callback is answered exactly once so the button spinner stops.
	answered := false
	answer := func(text string) {
		answered = true
		if _, err := b.out.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
			b.logger.Debug("callback ack failed", slog.String("error", err.Error()))
		}
	}
	defer func() {
		if !answered {
			answer("")
		}
	}()

	if cq.Message == nil || cq.From == nil || !b.sessions.isAllowed(cq.From.ID) {
		return
	}
	chatID := cq.Message.Chat.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", cq.From.ID),
		slog.String("data", cq.Data),
	)

	idx, ok := parsePageCallback(cq.Data)
	if !ok {
		return
	}

	v := b.sessions.get(chatID)
	if v == nil || v.message() != cq.Message.MessageID {
		answer(expiredMsg)
		return
	}

	req, err := v.ctrl.SelectPage(idx)
	if err != nil {
		b.logger.Debug("page selection rejected",
			slog.Int("index", idx),
			slog.String("error", err.Error()),
		)
		return
	}
	answer(fmt.Sprintf("Page %d", req.Query.Page()))

	b.refresh(chatID, v, req.Seq)
	b.load(ctx, chatID, v, req)
}

// openList starts paging through list in a new message, replacing the chat's previous view.
func (b *Bot) openList(ctx context.Context, chatID int64, list tmdb.List, title string) {
	ctrl := catalog.NewController(list, b.catalog.Queries(), "telegram", b.logger)
	req, _, err := ctrl.Start()
	if err != nil {
		b.logger.Error("start list", slog.String("list", list.Name), slog.String("error", err.Error()))
		b.sendText(chatID, errorMsg)
		return
	}

	v := &view{title: title, ctrl: ctrl}
	b.sessions.open(chatID, v)

	msg := tgbotapi.NewMessage(chatID, renderList(title, ctrl.State()))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	sent, err := b.out.Send(msg)
	if err != nil {
		b.logger.Error("failed to send list message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
		return
	}
	v.setMessageID(sent.MessageID)

	b.load(ctx, chatID, v, req)
}

// load fetches req and renders the result unless a newer request superseded it.
func (b *Bot) load(ctx context.Context, chatID int64, v *view, req catalog.Request) {
	if !v.ctrl.Load(ctx, b.catalog, req) {
		return
	}
	b.refresh(chatID, v, req.Seq)
}

// refresh redraws the list message if seq is still the view's active request.
func (b *Bot) refresh(chatID int64, v *view, seq uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.ctrl.State()
	if s.Seq != seq || v.messageID == 0 {
		return
	}
	b.edit(chatID, v.messageID, renderList(v.title, s), pageKeyboard(s))
}

func (b *Bot) edit(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	var edit tgbotapi.EditMessageTextConfig
	if kb != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *kb)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	edit.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := b.out.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		b.logger.Warn("failed to edit list message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

func (b *Bot) showMovieArg(ctx context.Context, chatID int64, raw string) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		b.sendText(chatID, "Usage: /movie <id>, for example /movie 603")
		return
	}
	b.showMovie(ctx, chatID, id)
}

// showMovie sends movie details, with the poster when there is one.
func (b *Bot) showMovie(ctx context.Context, chatID int64, id int) {
	typing := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.out.Request(typing) //nolint:errcheck // best-effort typing indicator

	movie, err := b.catalog.GetMovie(ctx, id)
	if err != nil {
		b.logger.Warn("movie lookup failed",
			slog.Int("movie_id", id),
			slog.String("kind", string(tmdb.KindOf(err))),
			slog.String("error", err.Error()),
		)
		b.sendText(chatID, errorMsg)
		return
	}
	credits, err := b.catalog.GetCredits(ctx, tmdb.MediaMovie, id)
	if err != nil {
		b.logger.Debug("credits lookup failed", slog.Int("movie_id", id), slog.String("error", err.Error()))
		credits = nil
	}

	text := renderMovie(movie, credits)
	if poster := tmdb.PosterURL(movie.PosterPath, "w500"); poster != "" && len([]rune(text)) <= maxCaptionLen {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(poster))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdownV2
		if _, err := b.out.Send(photo); err == nil {
			return
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Warn("failed to send markdown, retrying plain",
			slog.String("error", err.Error()),
		)
		b.sendText(chatID, movie.Title+"\n\n"+movie.Overview)
	}
}

// sendText sends a plain text message (no parse mode).
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// parseCommand splits "/cmd@bot args" into a lower-cased command and its arguments.
// Text that is not a command yields an empty command.
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd, args, _ := strings.Cut(text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}
