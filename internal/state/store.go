package state

import (
	"sort"
	"sync"

	"github.com/danhigham/autotele/internal/domain"
)

// Store caches the chats a backend knows about, keyed by TDLib chat id.
// The gotd backend fills it from the dialog list and resolves destinations
// through it; update handlers may touch it from other goroutines.
type Store struct {
	mu        sync.RWMutex
	chats     map[int64]domain.ChatInfo
	loaded    bool
	authState domain.AuthState
}

func New() *Store {
	return &Store{
		chats: make(map[int64]domain.ChatInfo),
	}
}

// OnChatListUpdate merges chats into the cache and marks the list loaded.
func (s *Store) OnChatListUpdate(chats []domain.ChatInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chats {
		s.chats[c.ID] = c
	}
	s.loaded = true
}

// Chat looks up a cached chat.
func (s *Store) Chat(id int64) (domain.ChatInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[id]
	return c, ok
}

// ChatListLoaded reports whether the chat list was loaded at least once.
func (s *Store) ChatListLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) GetChatList() []domain.ChatInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatInfo, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Title < out[j].Title
	})
	return out
}

func (s *Store) SetAuthState(as domain.AuthState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authState = as
}

func (s *Store) GetAuthState() domain.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authState
}
