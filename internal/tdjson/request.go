package tdjson

import (
	"github.com/go-faster/jx"

	"github.com/danhigham/autotele/internal/domain"
)

// Object and update type names used by this package.
const (
	TypeError                    = "error"
	TypeOk                       = "ok"
	TypeUpdateAuthorizationState = "updateAuthorizationState"
	TypeMessages                 = "messages"
)

// Request is an outgoing TDLib query.
type Request struct {
	Type  string
	Extra int64 // correlation token; zero means none

	body func(e *jx.Encoder)
}

// Encode renders the request as a TDLib JSON object.
func (r Request) Encode() []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("@type")
	e.Str(r.Type)
	if r.Extra != 0 {
		e.FieldStart("@extra")
		e.Int64(r.Extra)
	}
	if r.body != nil {
		r.body(&e)
	}
	e.ObjEnd()
	return e.Bytes()
}

// WithExtra returns a copy of r carrying the given correlation token.
func (r Request) WithExtra(token int64) Request {
	r.Extra = token
	return r
}

func GetAuthorizationState() Request {
	return Request{Type: "getAuthorizationState"}
}

// Parameters configure the TDLib instance on first start.
type Parameters struct {
	DatabaseDirectory      string
	UseMessageDatabase     bool
	UseSecretChats         bool
	EnableStorageOptimizer bool
	APIID                  int
	APIHash                string
	SystemLanguageCode     string
	DeviceModel            string
	ApplicationVersion     string
}

func SetTdlibParameters(p Parameters) Request {
	return Request{
		Type: "setTdlibParameters",
		body: func(e *jx.Encoder) {
			e.FieldStart("parameters")
			e.ObjStart()
			e.FieldStart("@type")
			e.Str("tdlibParameters")
			e.FieldStart("database_directory")
			e.Str(p.DatabaseDirectory)
			e.FieldStart("use_message_database")
			e.Bool(p.UseMessageDatabase)
			e.FieldStart("use_secret_chats")
			e.Bool(p.UseSecretChats)
			e.FieldStart("api_id")
			e.Int(p.APIID)
			e.FieldStart("api_hash")
			e.Str(p.APIHash)
			e.FieldStart("system_language_code")
			e.Str(p.SystemLanguageCode)
			e.FieldStart("device_model")
			e.Str(p.DeviceModel)
			e.FieldStart("application_version")
			e.Str(p.ApplicationVersion)
			e.FieldStart("enable_storage_optimizer")
			e.Bool(p.EnableStorageOptimizer)
			e.ObjEnd()
		},
	}
}

func CheckDatabaseEncryptionKey(key string) Request {
	return Request{
		Type: "checkDatabaseEncryptionKey",
		body: func(e *jx.Encoder) {
			e.FieldStart("encryption_key")
			e.Str(key)
		},
	}
}

func SetAuthenticationPhoneNumber(phone string) Request {
	return Request{
		Type: "setAuthenticationPhoneNumber",
		body: func(e *jx.Encoder) {
			e.FieldStart("phone_number")
			e.Str(phone)
		},
	}
}

func CheckAuthenticationCode(code string) Request {
	return Request{
		Type: "checkAuthenticationCode",
		body: func(e *jx.Encoder) {
			e.FieldStart("code")
			e.Str(code)
		},
	}
}

func RegisterUser(firstName, lastName string) Request {
	return Request{
		Type: "registerUser",
		body: func(e *jx.Encoder) {
			e.FieldStart("first_name")
			e.Str(firstName)
			e.FieldStart("last_name")
			e.Str(lastName)
		},
	}
}

func CheckAuthenticationPassword(password string) Request {
	return Request{
		Type: "checkAuthenticationPassword",
		body: func(e *jx.Encoder) {
			e.FieldStart("password")
			e.Str(password)
		},
	}
}

func SetLogVerbosityLevel(level int) Request {
	return Request{
		Type: "setLogVerbosityLevel",
		body: func(e *jx.Encoder) {
			e.FieldStart("new_verbosity_level")
			e.Int(level)
		},
	}
}

// LoadChats pages the main chat list into TDLib's local cache.
func LoadChats(limit int) Request {
	return Request{
		Type: "loadChats",
		body: func(e *jx.Encoder) {
			e.FieldStart("chat_list")
			e.ObjStart()
			e.FieldStart("@type")
			e.Str("chatListMain")
			e.ObjEnd()
			e.FieldStart("limit")
			e.Int(limit)
		},
	}
}

func GetChatScheduledMessages(chatID int64) Request {
	return Request{
		Type: "getChatScheduledMessages",
		body: func(e *jx.Encoder) {
			e.FieldStart("chat_id")
			e.Int64(chatID)
		},
	}
}

// SendMessageAt schedules a text message for delivery at the given Unix time.
func SendMessageAt(chatID, date int64, msg domain.Message) Request {
	return Request{
		Type: "sendMessage",
		body: func(e *jx.Encoder) {
			e.FieldStart("chat_id")
			e.Int64(chatID)

			e.FieldStart("options")
			e.ObjStart()
			e.FieldStart("@type")
			e.Str("messageSendOptions")
			e.FieldStart("scheduling_state")
			e.ObjStart()
			e.FieldStart("@type")
			e.Str("messageSchedulingStateSendAtDate")
			e.FieldStart("send_date")
			e.Int64(date)
			e.ObjEnd()
			e.ObjEnd()

			e.FieldStart("input_message_content")
			e.ObjStart()
			e.FieldStart("@type")
			e.Str("inputMessageText")
			e.FieldStart("text")
			encodeFormattedText(e, msg)
			e.ObjEnd()
		},
	}
}

func encodeFormattedText(e *jx.Encoder, msg domain.Message) {
	e.ObjStart()
	e.FieldStart("@type")
	e.Str("formattedText")
	e.FieldStart("text")
	e.Str(msg.Text)
	e.FieldStart("entities")
	e.ArrStart()
	for _, ent := range msg.Entities {
		e.ObjStart()
		e.FieldStart("@type")
		e.Str("textEntity")
		e.FieldStart("offset")
		e.Int(ent.Offset)
		e.FieldStart("length")
		e.Int(ent.Length)
		e.FieldStart("type")
		e.ObjStart()
		e.FieldStart("@type")
		e.Str(entityTypeName(ent.Kind))
		if ent.Kind == domain.EntityTextURL {
			e.FieldStart("url")
			e.Str(ent.URL)
		}
		e.ObjEnd()
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

func entityTypeName(k domain.EntityKind) string {
	switch k {
	case domain.EntityURL:
		return "textEntityTypeUrl"
	case domain.EntityTextURL:
		return "textEntityTypeTextUrl"
	case domain.EntityUnderline:
		return "textEntityTypeUnderline"
	case domain.EntityBold:
		return "textEntityTypeBold"
	case domain.EntityItalic:
		return "textEntityTypeItalic"
	case domain.EntityCode:
		return "textEntityTypeCode"
	case domain.EntityStrike:
		return "textEntityTypeStrikethrough"
	default:
		return "textEntityTypeUnknown"
	}
}

// ParseAuthState maps a TDLib authorizationState* object to its variant.
// Variants this client does not handle map to domain.AuthStateUnknown.
func ParseAuthState(o Object) domain.AuthState {
	switch o.Type {
	case "authorizationStateWaitTdlibParameters":
		return domain.AuthStateNeedsParameters
	case "authorizationStateWaitEncryptionKey":
		return domain.AuthStateNeedsEncryptionKey
	case "authorizationStateWaitPhoneNumber":
		return domain.AuthStateNeedsPhoneNumber
	case "authorizationStateWaitCode":
		return domain.AuthStateNeedsCode
	case "authorizationStateWaitRegistration":
		return domain.AuthStateNeedsRegistration
	case "authorizationStateWaitPassword":
		return domain.AuthStateNeedsPassword
	case "authorizationStateClosed":
		return domain.AuthStateClosed
	case "authorizationStateReady":
		return domain.AuthStateReady
	default:
		return domain.AuthStateUnknown
	}
}
