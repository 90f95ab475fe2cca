package telegram

import (
	"sync"

	"github.com/vadimtrunov/moviedeck/internal/catalog"
)

// view is the list a chat is paging through and the message showing it.
type view struct {
	title string
	ctrl  *catalog.Controller

	// mu serializes edits of the list message.
	mu        sync.Mutex
	messageID int
}

func (v *view) setMessageID(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messageID = id
}

func (v *view) message() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.messageID
}

// sessionManager tracks the open view per chat and access control.
type sessionManager struct {
	mu      sync.Mutex
	views   map[int64]*view
	allowed map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		views:   make(map[int64]*view),
		allowed: allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// open makes v the chat's current view, replacing any previous one.
func (sm *sessionManager) open(chatID int64, v *view) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.views[chatID] = v
}

// get returns the chat's current view, or nil.
func (sm *sessionManager) get(chatID int64) *view {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.views[chatID]
}

// reset drops the chat's view; its keyboard stops responding.
func (sm *sessionManager) reset(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.views, chatID)
}
