package telegram

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ sender = (*fakeSender)(nil)

// fakeSender records everything the bot sends.
type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastEdit(t *testing.T) tgbotapi.EditMessageTextConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if e, ok := f.sent[i].(tgbotapi.EditMessageTextConfig); ok {
			return e
		}
	}
	t.Fatal("no message edit was sent")
	return tgbotapi.EditMessageTextConfig{}
}

func (f *fakeSender) lastCallbackText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if cb, ok := f.requests[i].(tgbotapi.CallbackConfig); ok {
			return cb.Text
		}
	}
	t.Fatal("callback was not acknowledged")
	return ""
}

// pagesHandler serves 45 results for any list and records the requested pages.
func pagesHandler(pages *[]string, mu *sync.Mutex) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*pages = append(*pages, r.URL.Path+"?page="+r.URL.Query().Get("page"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"page": ` + r.URL.Query().Get("page") + `,
			"results": [{"id": 603, "title": "The Matrix", "release_date": "1999-03-30", "vote_average": 8.2}],
			"total_results": 45, "total_pages": 3}`))
	}
}

func newTestBot(t *testing.T, upstream http.Handler, allowed ...int64) (*Bot, *fakeSender) {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)
	out := &fakeSender{}
	return newBot(out, tmdb.NewForTest(server.URL, discardLogger), allowed, discardLogger), out
}

func textMessage(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func pageCallbackQuery(userID, chatID int64, messageID int, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}
}

func TestHandleMessage_OpensList(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []string
	)
	b, out := newTestBot(t, pagesHandler(&pages, &mu))

	b.handleMessage(context.Background(), textMessage(1, 10, "/popular"))

	if len(out.sent) != 2 {
		t.Fatalf("expected loading message and one edit, got %d sends", len(out.sent))
	}
	first, ok := out.sent[0].(tgbotapi.MessageConfig)
	if !ok || !strings.Contains(first.Text, "Loading") {
		t.Errorf("first send should be the loading message, got %+v", out.sent[0])
	}

	edit := out.lastEdit(t)
	if edit.MessageID != 1 || edit.ChatID != 10 {
		t.Errorf("edit target = chat %d message %d", edit.ChatID, edit.MessageID)
	}
	if !strings.Contains(edit.Text, "The Matrix") || !strings.Contains(edit.Text, "page 1 of 3") {
		t.Errorf("edit text = %q", edit.Text)
	}
	if edit.ReplyMarkup == nil {
		t.Error("loaded list should carry a pagination keyboard")
	}
	if len(pages) != 1 || pages[0] != "/movie/popular?page=1" {
		t.Errorf("upstream pages = %v", pages)
	}
}

func TestHandleCallback_SelectsPage(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []string
	)
	b, out := newTestBot(t, pagesHandler(&pages, &mu))
	b.handleMessage(context.Background(), textMessage(1, 10, "/tv"))

	b.handleCallback(context.Background(), pageCallbackQuery(1, 10, 1, "pg:2"))

	if got := out.lastCallbackText(t); got != "Page 3" {
		t.Errorf("callback answer = %q, want Page 3", got)
	}
	if !strings.Contains(out.lastEdit(t).Text, "page 3 of 3") {
		t.Errorf("last edit = %q", out.lastEdit(t).Text)
	}
	if len(pages) != 2 || pages[1] != "/tv/popular?page=3" {
		t.Errorf("upstream pages = %v", pages)
	}
}

func (f *fakeSender) callbackCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if _, ok := r.(tgbotapi.CallbackConfig); ok {
			n++
		}
	}
	return n
}

func TestHandleCallback_AnswersBeforeFetch(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []string
		out   *fakeSender
		// answeredBeforeFetch[i] records whether the callback was answered
		// by the time upstream request i arrived.
		answeredBeforeFetch []bool
	)
	serve := pagesHandler(&pages, &mu)
	b, out := newTestBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		answered := out.callbackCount() == 1
		mu.Lock()
		answeredBeforeFetch = append(answeredBeforeFetch, answered)
		mu.Unlock()
		serve(w, r)
	}))
	b.handleMessage(context.Background(), textMessage(1, 10, "/popular"))

	b.handleCallback(context.Background(), pageCallbackQuery(1, 10, 1, "pg:1"))

	mu.Lock()
	defer mu.Unlock()
	if len(answeredBeforeFetch) != 2 || !answeredBeforeFetch[1] {
		t.Errorf("page fetch started before the callback was answered: %v", answeredBeforeFetch)
	}
	if n := out.callbackCount(); n != 1 {
		t.Errorf("callback answered %d times, want 1", n)
	}
	if got := out.lastCallbackText(t); got != "Page 2" {
		t.Errorf("callback answer = %q, want Page 2", got)
	}
}

func TestHandleCallback_ExpiredList(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []string
	)
	b, out := newTestBot(t, pagesHandler(&pages, &mu))
	b.handleMessage(context.Background(), textMessage(1, 10, "/popular"))

	// A keyboard on an older message no longer drives the chat's view.
	b.handleCallback(context.Background(), pageCallbackQuery(1, 10, 99, "pg:1"))
	if got := out.lastCallbackText(t); got != expiredMsg {
		t.Errorf("callback answer = %q, want %q", got, expiredMsg)
	}

	b.handleMessage(context.Background(), textMessage(1, 10, "/reset"))
	b.handleCallback(context.Background(), pageCallbackQuery(1, 10, 1, "pg:1"))
	if got := out.lastCallbackText(t); got != expiredMsg {
		t.Errorf("after reset callback answer = %q, want %q", got, expiredMsg)
	}
	if len(pages) != 1 {
		t.Errorf("expired callbacks must not fetch, upstream pages = %v", pages)
	}
}

func TestHandleCallback_OutOfRangeIgnored(t *testing.T) {
	var (
		mu    sync.Mutex
		pages []string
	)
	b, out := newTestBot(t, pagesHandler(&pages, &mu))
	b.handleMessage(context.Background(), textMessage(1, 10, "/popular"))
	before := len(out.sent)

	b.handleCallback(context.Background(), pageCallbackQuery(1, 10, 1, "pg:7"))
	if len(out.sent) != before {
		t.Error("out-of-range page must not edit the list")
	}
	if len(pages) != 1 {
		t.Errorf("out-of-range page must not fetch, upstream pages = %v", pages)
	}
}

func TestHandleMessage_FetchFailureShowsError(t *testing.T) {
	b, out := newTestBot(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	b.handleMessage(context.Background(), textMessage(1, 10, "/upcoming"))

	edit := out.lastEdit(t)
	if !strings.Contains(edit.Text, "Could not load") {
		t.Errorf("edit text = %q", edit.Text)
	}
	if edit.ReplyMarkup == nil || *edit.ReplyMarkup.InlineKeyboard[0][0].CallbackData != "pg:0" {
		t.Error("failed first load should offer a retry button")
	}
}

func TestHandleMessage_Commands(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantPath string
		wantArg  string
	}{
		{"genre", "/genre 28", "/discover/movie", "with_genres=28"},
		{"search", "/search blade runner", "/search/movie", "query=blade+runner"},
		{"top", "/top", "/movie/top_rated", ""},
		{"tv top", "/tvtop", "/tv/top_rated", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotQuery string
			b, _ := newTestBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
				_, _ = w.Write([]byte(`{"page": 1, "results": [], "total_results": 0}`))
			}))
			b.handleMessage(context.Background(), textMessage(1, 10, tt.text))
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if !strings.Contains(gotQuery, tt.wantArg) {
				t.Errorf("query %q missing %q", gotQuery, tt.wantArg)
			}
		})
	}
}

func TestHandleMessage_Usage(t *testing.T) {
	b, out := newTestBot(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("usage errors must not reach TMDb")
	}))

	for _, text := range []string{"/genre drama", "/search", "/movie abc"} {
		b.handleMessage(context.Background(), textMessage(1, 10, text))
	}
	if len(out.sent) != 3 {
		t.Fatalf("expected three usage replies, got %d", len(out.sent))
	}
	for _, c := range out.sent {
		if msg := c.(tgbotapi.MessageConfig); !strings.HasPrefix(msg.Text, "Usage:") {
			t.Errorf("reply = %q", msg.Text)
		}
	}
}

func TestHandleMessage_Unauthorized(t *testing.T) {
	b, out := newTestBot(t, http.NotFoundHandler(), 42)

	b.handleMessage(context.Background(), textMessage(7, 10, "/popular"))

	if len(out.sent) != 1 || out.sent[0].(tgbotapi.MessageConfig).Text != unauthorizedMsg {
		t.Errorf("expected unauthorized reply, got %+v", out.sent)
	}
}

func TestShowMovie(t *testing.T) {
	b, out := newTestBot(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/603":
			_, _ = w.Write([]byte(`{"id": 603, "title": "The Matrix", "release_date": "1999-03-30", "poster_path": "/m.jpg"}`))
		case "/movie/603/credits":
			_, _ = w.Write([]byte(`{"id": 603, "cast": [{"name": "Keanu Reeves", "character": "Neo"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	b.handleMessage(context.Background(), textMessage(1, 10, "/movie_603"))

	if len(out.sent) != 1 {
		t.Fatalf("expected one photo, got %d sends", len(out.sent))
	}
	photo, ok := out.sent[0].(tgbotapi.PhotoConfig)
	if !ok {
		t.Fatalf("expected photo, got %T", out.sent[0])
	}
	if !strings.Contains(photo.Caption, "Keanu Reeves as Neo") {
		t.Errorf("caption = %q", photo.Caption)
	}
}

func TestShowMovie_NotFound(t *testing.T) {
	b, out := newTestBot(t, http.NotFoundHandler())

	b.handleMessage(context.Background(), textMessage(1, 10, "/movie 1"))

	if len(out.sent) != 1 || out.sent[0].(tgbotapi.MessageConfig).Text != errorMsg {
		t.Errorf("expected error reply, got %+v", out.sent)
	}
}
