package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/danhigham/autotele/internal/domain"
)

// CodeAuth implements gotd's auth.UserAuthenticator with the phone number
// from the secrets file, the code from a CodeSource and the rest from a
// Prompter.
type CodeAuth struct {
	PhoneNumber string
	Codes       CodeSource
	Prompter    Prompter
	Logger      *zap.Logger

	// OnState, when set, observes every state the flow asks for.
	OnState func(domain.AuthState)
}

var _ auth.UserAuthenticator = (*CodeAuth)(nil)

func (a *CodeAuth) enter(state domain.AuthState) {
	if a.Logger != nil {
		a.Logger.Info("Authorization state", zap.Stringer("state", state))
	}
	if a.OnState != nil {
		a.OnState(state)
	}
}

func (a *CodeAuth) Phone(ctx context.Context) (string, error) {
	a.enter(domain.AuthStateNeedsPhoneNumber)
	if a.PhoneNumber == "" {
		return "", errors.New("no phone number configured")
	}
	return a.PhoneNumber, nil
}

func (a *CodeAuth) Code(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
	a.enter(domain.AuthStateNeedsCode)
	if a.Codes == nil {
		return "", errors.New("no code source configured")
	}
	return a.Codes.Code(ctx)
}

func (a *CodeAuth) Password(ctx context.Context) (string, error) {
	a.enter(domain.AuthStateNeedsPassword)
	if a.Prompter == nil {
		return "", auth.ErrPasswordNotProvided
	}
	return a.Prompter.Password(ctx)
}

func (a *CodeAuth) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	if a.Logger != nil {
		a.Logger.Info("Accepting terms of service", zap.String("id", tos.ID.Data))
	}
	return nil
}

func (a *CodeAuth) SignUp(ctx context.Context) (auth.UserInfo, error) {
	a.enter(domain.AuthStateNeedsRegistration)
	if a.Prompter == nil {
		return auth.UserInfo{}, errors.New("sign up not supported without a prompter")
	}
	first, last, err := a.Prompter.Name(ctx)
	if err != nil {
		return auth.UserInfo{}, err
	}
	return auth.UserInfo{FirstName: first, LastName: last}, nil
}
