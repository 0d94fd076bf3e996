package telegram

import (
	"context"
	"errors"

	"github.com/danhigham/autotele/internal/domain"
)

// ErrChatNotFound is returned when the backend does not know the
// destination chat yet, typically because the chat list was never loaded.
var ErrChatNotFound = errors.New("chat not found")

// Client is a logged-in connection able to manage scheduled messages.
type Client interface {
	ScheduledMessages(ctx context.Context, chatID int64) ([]domain.ScheduledMessage, error)
	LoadChats(ctx context.Context) error
	SendScheduled(ctx context.Context, chatID, date int64, msg domain.Message) error
}

// CodeSource supplies the one-time login code.
type CodeSource interface {
	Code(ctx context.Context) (string, error)
}

// Prompter asks the operator for values that cannot come from the secrets
// file.
type Prompter interface {
	Name(ctx context.Context) (firstName, lastName string, err error)
	Password(ctx context.Context) (string, error)
}
