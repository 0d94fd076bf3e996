package telegram

import (
	"context"
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gotd/td/constant"
	"github.com/gotd/td/crypto"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/tg"

	"github.com/danhigham/autotele/internal/domain"
	"github.com/danhigham/autotele/internal/state"
)

// GotdClient implements Client over MTProto using gotd/td. It needs no
// native library and keeps its session file in the storage directory.
type GotdClient struct {
	apiID      int
	apiHash    string
	sessionDir string
	authFlow   *CodeAuth
	store      *state.Store
	logger     *zap.Logger

	client *telegram.Client
	api    *tg.Client
}

func NewGotdClient(apiID int, apiHash, sessionDir string, store *state.Store, authFlow *CodeAuth, logger *zap.Logger) *GotdClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GotdClient{
		apiID:      apiID,
		apiHash:    apiHash,
		sessionDir: sessionDir,
		authFlow:   authFlow,
		store:      store,
		logger:     logger,
	}
}

// Run connects, logs in if necessary and calls f with the client ready.
// The connection is closed when f returns.
func (c *GotdClient) Run(ctx context.Context, f func(ctx context.Context) error) error {
	c.client = telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		Logger:         c.logger,
		SessionStorage: &session.FileStorage{Path: filepath.Join(c.sessionDir, "session.json")},
	})

	return c.client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(c.authFlow, auth.SendCodeOptions{})
		if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		c.store.SetAuthState(domain.AuthStateReady)
		c.logger.Info("Authorization state", zap.Stringer("state", domain.AuthStateReady))

		c.api = c.client.API()
		return f(ctx)
	})
}

// LoadChats walks the dialog list and caches every peer under its TDLib
// chat id.
func (c *GotdClient) LoadChats(ctx context.Context) error {
	iter := dialogs.NewQueryBuilder(c.api).GetDialogs().BatchSize(100).Iter()

	var chats []domain.ChatInfo
	for iter.Next(ctx) {
		elem := iter.Value()
		id := tdlibPeerID(elem.Peer)
		if id == 0 {
			continue
		}
		chats = append(chats, domain.ChatInfo{
			ID:    id,
			Title: dialogTitle(elem),
			Peer:  elem.Peer,
		})
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("iterate dialogs: %w", err)
	}

	c.store.OnChatListUpdate(chats)
	c.logger.Info("Loaded chat list", zap.Int("chats", len(chats)))
	return nil
}

func (c *GotdClient) findPeer(chatID int64) (tg.InputPeerClass, error) {
	chat, ok := c.store.Chat(chatID)
	if !ok {
		if c.store.ChatListLoaded() {
			c.logger.Warn("Destination is not in the chat list",
				zap.Int64("chat_id", chatID),
				zap.Int("known_chats", len(c.store.GetChatList())),
			)
		}
		return nil, fmt.Errorf("peer %d: %w", chatID, ErrChatNotFound)
	}
	peer, ok := chat.Peer.(tg.InputPeerClass)
	if !ok {
		return nil, fmt.Errorf("peer %d: %w", chatID, ErrChatNotFound)
	}
	c.logger.Debug("Resolved destination", zap.Int64("chat_id", chatID), zap.String("title", chat.Title))
	return peer, nil
}

// ScheduledMessages lists the messages scheduled in chatID. Service and
// empty messages are skipped.
func (c *GotdClient) ScheduledMessages(ctx context.Context, chatID int64) ([]domain.ScheduledMessage, error) {
	peer, err := c.findPeer(chatID)
	if err != nil {
		return nil, err
	}

	result, err := c.api.MessagesGetScheduledHistory(ctx, &tg.MessagesGetScheduledHistoryRequest{
		Peer: peer,
	})
	if err != nil {
		return nil, fmt.Errorf("get scheduled history: %w", err)
	}

	var messages []tg.MessageClass
	switch r := result.(type) {
	case *tg.MessagesMessages:
		messages = r.Messages
	case *tg.MessagesMessagesSlice:
		messages = r.Messages
	case *tg.MessagesChannelMessages:
		messages = r.Messages
	case *tg.MessagesMessagesNotModified:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected messages type: %T", result)
	}

	out := make([]domain.ScheduledMessage, 0, len(messages))
	for _, m := range messages {
		msg, ok := m.(*tg.Message)
		if !ok {
			continue
		}
		out = append(out, domain.ScheduledMessage{
			ID:     int64(msg.ID),
			ChatID: chatID,
			Date:   int64(msg.Date),
			Text:   msg.Message,
		})
	}
	return out, nil
}

// SendScheduled schedules msg for delivery in chatID at date.
func (c *GotdClient) SendScheduled(ctx context.Context, chatID, date int64, msg domain.Message) error {
	peer, err := c.findPeer(chatID)
	if err != nil {
		return err
	}
	randomID, err := crypto.RandInt64(rand.Reader)
	if err != nil {
		return fmt.Errorf("random id: %w", err)
	}

	req := &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  msg.Text,
		RandomID: randomID,
	}
	req.SetScheduleDate(int(date))
	if entities := ToTGEntities(msg.Entities); len(entities) > 0 {
		req.SetEntities(entities)
	}

	if _, err := c.api.MessagesSendMessage(ctx, req); err != nil {
		return fmt.Errorf("schedule message at %d: %w", date, err)
	}
	return nil
}

// tdlibPeerID converts an input peer into the chat id TDLib would use, so
// secrets files work with either backend.
func tdlibPeerID(peer tg.InputPeerClass) int64 {
	var id constant.TDLibPeerID
	switch p := peer.(type) {
	case *tg.InputPeerUser:
		id.User(p.UserID)
	case *tg.InputPeerChat:
		id.Chat(p.ChatID)
	case *tg.InputPeerChannel:
		id.Channel(p.ChannelID)
	default:
		return 0
	}
	return int64(id)
}

// dialogTitle names a dialog the way Telegram clients show it, falling
// back to its chat id.
func dialogTitle(elem dialogs.Elem) string {
	if elem.Dialog != nil {
		switch p := elem.Dialog.GetPeer().(type) {
		case *tg.PeerUser:
			if u, ok := elem.Entities.User(p.UserID); ok {
				return userTitle(u)
			}
		case *tg.PeerChat:
			if ch, ok := elem.Entities.Chat(p.ChatID); ok {
				return ch.Title
			}
		case *tg.PeerChannel:
			if ch, ok := elem.Entities.Channel(p.ChannelID); ok {
				return ch.Title
			}
		}
	}
	return fmt.Sprintf("chat %d", tdlibPeerID(elem.Peer))
}

func userTitle(u *tg.User) string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return fmt.Sprintf("user %d", u.ID)
}
