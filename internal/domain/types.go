package domain

// ChatInfo describes a chat known to the backend.
type ChatInfo struct {
	ID    int64 // TDLib-style chat id (-100... for channels)
	Title string
	Peer  interface{} // holds tg.InputPeerClass for the gotd backend
}

type EntityKind int

const (
	EntityURL EntityKind = iota
	EntityTextURL
	EntityUnderline
	EntityBold
	EntityItalic
	EntityCode
	EntityStrike
)

// TextEntity annotates a range of a message's text. Offset and Length are
// in UTF-16 code units, as Telegram expects.
type TextEntity struct {
	Offset int
	Length int
	Kind   EntityKind
	URL    string // only for EntityTextURL
}

// Message is the payload of a scheduled message.
type Message struct {
	Text     string
	Entities []TextEntity
}

// ScheduleRequest maps a Unix delivery time (seconds) to the message to
// deliver at that time.
type ScheduleRequest map[int64]Message

// ScheduledMessage is a message already scheduled on the server.
type ScheduledMessage struct {
	ID     int64
	ChatID int64
	Date   int64 // Unix seconds
	Text   string
}

type AuthState int

const (
	AuthStateUnknown AuthState = iota
	AuthStateNeedsParameters
	AuthStateNeedsEncryptionKey
	AuthStateNeedsPhoneNumber
	AuthStateNeedsCode
	AuthStateNeedsRegistration
	AuthStateNeedsPassword
	AuthStateClosed
	AuthStateReady
)

func (s AuthState) String() string {
	switch s {
	case AuthStateNeedsParameters:
		return "needs-parameters"
	case AuthStateNeedsEncryptionKey:
		return "needs-encryption-key"
	case AuthStateNeedsPhoneNumber:
		return "needs-phone-number"
	case AuthStateNeedsCode:
		return "needs-code"
	case AuthStateNeedsRegistration:
		return "needs-registration"
	case AuthStateNeedsPassword:
		return "needs-password"
	case AuthStateClosed:
		return "closed"
	case AuthStateReady:
		return "ready"
	default:
		return "unknown"
	}
}
