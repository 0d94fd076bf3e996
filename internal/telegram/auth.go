package telegram

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danhigham/autotele/internal/domain"
	"github.com/danhigham/autotele/internal/tdjson"
)

// AuthConfig holds everything the Authenticator needs besides the session.
type AuthConfig struct {
	Parameters  tdjson.Parameters
	PhoneNumber string
	Codes       CodeSource
	Prompter    Prompter
	Logger      *zap.Logger

	// OnState, when set, observes every authorization state transition.
	OnState func(domain.AuthState)
}

// Authenticator drives TDLib's login handshake. It reacts only to
// updateAuthorizationState events pushed by TDLib and answers each state
// with exactly one request.
type Authenticator struct {
	session *tdjson.Session
	cfg     AuthConfig
	log     *zap.Logger

	state   domain.AuthState
	pending int64 // token of the last request sent for state
}

func NewAuthenticator(session *tdjson.Session, cfg AuthConfig) *Authenticator {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{session: session, cfg: cfg, log: log}
}

// Authenticate returns once TDLib reports the ready state.
func (a *Authenticator) Authenticate(ctx context.Context) error {
	a.session.Send(tdjson.GetAuthorizationState())

	for {
		ev, err := a.session.Next(ctx)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}

		switch ev.Type {
		case tdjson.TypeUpdateAuthorizationState:
			st, err := ev.Object("authorization_state")
			if err != nil {
				a.log.Warn("Malformed authorization update", zap.Error(err))
				continue
			}
			state := tdjson.ParseAuthState(st)
			if state == domain.AuthStateUnknown {
				a.log.Info("Ignoring authorization state", zap.String("type", st.Type))
				continue
			}
			a.state = state
			a.log.Info("Authorization state", zap.Stringer("state", state))
			if a.cfg.OnState != nil {
				a.cfg.OnState(state)
			}
			if state == domain.AuthStateReady {
				return nil
			}
			if err := a.handle(ctx, state); err != nil {
				return fmt.Errorf("auth: %s: %w", state, err)
			}

		case tdjson.TypeError:
			if !ev.HasExtra || ev.Extra != a.pending {
				continue
			}
			tdErr := tdjson.AsError(ev)
			if !retryable(a.state) {
				return fmt.Errorf("auth: %s: %w", a.state, tdErr)
			}
			a.log.Warn("Authorization step rejected, retrying",
				zap.Stringer("state", a.state),
				zap.Error(tdErr),
			)
			if err := a.handle(ctx, a.state); err != nil {
				return fmt.Errorf("auth: %s: %w", a.state, err)
			}
		}
	}
}

// retryable reports whether a rejected request for state can be answered
// again with fresh operator input.
func retryable(state domain.AuthState) bool {
	switch state {
	case domain.AuthStateNeedsCode, domain.AuthStateNeedsRegistration, domain.AuthStateNeedsPassword:
		return true
	default:
		return false
	}
}

func (a *Authenticator) handle(ctx context.Context, state domain.AuthState) error {
	var req tdjson.Request

	switch state {
	case domain.AuthStateNeedsParameters:
		req = tdjson.SetTdlibParameters(a.cfg.Parameters)

	case domain.AuthStateNeedsEncryptionKey:
		req = tdjson.CheckDatabaseEncryptionKey("")

	case domain.AuthStateNeedsPhoneNumber:
		req = tdjson.SetAuthenticationPhoneNumber(a.cfg.PhoneNumber)

	case domain.AuthStateNeedsCode:
		if a.cfg.Codes == nil {
			return errors.New("no code source configured")
		}
		code, err := a.cfg.Codes.Code(ctx)
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}
		req = tdjson.CheckAuthenticationCode(code)

	case domain.AuthStateNeedsRegistration:
		if a.cfg.Prompter == nil {
			return errors.New("registration required but no prompter configured")
		}
		first, last, err := a.cfg.Prompter.Name(ctx)
		if err != nil {
			return fmt.Errorf("read name: %w", err)
		}
		req = tdjson.RegisterUser(first, last)

	case domain.AuthStateNeedsPassword:
		if a.cfg.Prompter == nil {
			return errors.New("password required but no prompter configured")
		}
		pw, err := a.cfg.Prompter.Password(ctx)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		req = tdjson.CheckAuthenticationPassword(pw)

	case domain.AuthStateClosed:
		// TDLib may close and reinitialize on its own; start over.
		req = tdjson.GetAuthorizationState()

	default:
		return nil
	}

	a.pending = a.session.Token()
	a.session.Send(req.WithExtra(a.pending))
	return nil
}
