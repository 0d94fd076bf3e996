package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/danhigham/autotele/internal/domain"
	"github.com/danhigham/autotele/internal/tdjson"
)

// loadChatsLimit is how many chats one loadChats request pages in.
const loadChatsLimit = 100

// TDLibClient implements Client over an authenticated tdjson.Session.
type TDLibClient struct {
	session *tdjson.Session
	logger  *zap.Logger
}

func NewTDLibClient(session *tdjson.Session, logger *zap.Logger) *TDLibClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TDLibClient{session: session, logger: logger}
}

// ScheduledMessages lists the messages scheduled in chatID. Entries that
// lack a send date or text are skipped.
func (c *TDLibClient) ScheduledMessages(ctx context.Context, chatID int64) ([]domain.ScheduledMessage, error) {
	resp, err := c.session.Call(ctx, tdjson.GetChatScheduledMessages(chatID))
	if err != nil {
		if isChatNotFound(err) {
			return nil, fmt.Errorf("scheduled messages of %d: %w", chatID, ErrChatNotFound)
		}
		return nil, fmt.Errorf("scheduled messages of %d: %w", chatID, err)
	}
	if !resp.Has("messages") {
		return nil, nil
	}
	items, err := resp.Objects("messages")
	if err != nil {
		return nil, fmt.Errorf("scheduled messages of %d: %w", chatID, err)
	}

	out := make([]domain.ScheduledMessage, 0, len(items))
	for _, item := range items {
		msg, ok := scheduledFromObject(item)
		if !ok {
			c.logger.Debug("Skipping malformed scheduled message", zap.Int64("chat_id", chatID))
			continue
		}
		if msg.ChatID == 0 {
			msg.ChatID = chatID
		}
		out = append(out, msg)
	}
	return out, nil
}

func scheduledFromObject(o tdjson.Object) (domain.ScheduledMessage, bool) {
	state, err := o.Object("scheduling_state")
	if err != nil {
		return domain.ScheduledMessage{}, false
	}
	date, err := state.Int64("send_date")
	if err != nil {
		return domain.ScheduledMessage{}, false
	}
	text, err := o.Path("content", "text")
	if err != nil {
		return domain.ScheduledMessage{}, false
	}
	body, err := text.String("text")
	if err != nil {
		return domain.ScheduledMessage{}, false
	}
	id, _ := o.Int64("id")
	chatID, _ := o.Int64("chat_id")
	return domain.ScheduledMessage{ID: id, ChatID: chatID, Date: date, Text: body}, true
}

// LoadChats pages the main chat list into TDLib's cache. TDLib answers 404
// once the whole list is loaded, which is not an error here.
func (c *TDLibClient) LoadChats(ctx context.Context) error {
	_, err := c.session.Call(ctx, tdjson.LoadChats(loadChatsLimit))
	var tdErr *tdjson.Error
	if errors.As(err, &tdErr) && tdErr.Code == 404 {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load chats: %w", err)
	}
	return nil
}

// SendScheduled schedules msg for delivery in chatID at date.
func (c *TDLibClient) SendScheduled(ctx context.Context, chatID, date int64, msg domain.Message) error {
	if _, err := c.session.Call(ctx, tdjson.SendMessageAt(chatID, date, msg)); err != nil {
		return fmt.Errorf("schedule message at %d: %w", date, err)
	}
	return nil
}

func isChatNotFound(err error) bool {
	var tdErr *tdjson.Error
	if !errors.As(err, &tdErr) {
		return false
	}
	return tdErr.Code == 400 && strings.Contains(strings.ToLower(tdErr.Message), "chat not found")
}
