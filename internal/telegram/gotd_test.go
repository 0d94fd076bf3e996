package telegram

import (
	"errors"
	"testing"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/danhigham/autotele/internal/domain"
	"github.com/danhigham/autotele/internal/state"
)

func TestFindPeer_LogsDestinationTitle(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := state.New()
	store.OnChatListUpdate([]domain.ChatInfo{{
		ID:    -1001234567890,
		Title: "Legion of Mary",
		Peer:  &tg.InputPeerChannel{ChannelID: 1234567890, AccessHash: 42},
	}})
	c := NewGotdClient(1, "hash", t.TempDir(), store, nil, zap.New(core))

	peer, err := c.findPeer(-1001234567890)
	if err != nil {
		t.Fatalf("findPeer: %v", err)
	}
	if ch, ok := peer.(*tg.InputPeerChannel); !ok || ch.ChannelID != 1234567890 {
		t.Errorf("peer = %#v", peer)
	}

	entries := logs.FilterMessage("Resolved destination").All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if title := entries[0].ContextMap()["title"]; title != "Legion of Mary" {
		t.Errorf("logged title = %v, want %q", title, "Legion of Mary")
	}
}

func TestFindPeer_UnknownChat(t *testing.T) {
	c := NewGotdClient(1, "hash", t.TempDir(), state.New(), nil, nil)
	if _, err := c.findPeer(-1009); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("findPeer error = %v, want ErrChatNotFound", err)
	}
}

func TestUserTitle(t *testing.T) {
	tests := []struct {
		user tg.User
		want string
	}{
		{tg.User{ID: 1, FirstName: "Maria", LastName: "Goretti"}, "Maria Goretti"},
		{tg.User{ID: 2, FirstName: "Maria"}, "Maria"},
		{tg.User{ID: 3, LastName: "Goretti"}, "Goretti"},
		{tg.User{ID: 4, Username: "legio"}, "@legio"},
		{tg.User{ID: 5}, "user 5"},
	}
	for _, tt := range tests {
		u := tt.user
		if got := userTitle(&u); got != tt.want {
			t.Errorf("userTitle(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}
}
