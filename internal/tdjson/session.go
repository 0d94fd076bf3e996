package tdjson

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Transport is the raw channel to a TDLib instance.
type Transport interface {
	// Send queues a request without waiting for an answer.
	Send(req []byte)
	// Receive waits up to timeout for the next response or update and
	// returns nil if nothing arrived.
	Receive(timeout time.Duration) []byte
	// Execute runs a request that TDLib can answer without the network.
	Execute(req []byte) []byte
}

// DefaultPollTimeout bounds a single Receive call.
const DefaultPollTimeout = time.Second

// SessionOptions configure a Session.
type SessionOptions struct {
	Logger      *zap.Logger
	PollTimeout time.Duration
	// Tokens mints correlation tokens. Defaults to random non-zero 32-bit values.
	Tokens func() int64
}

func (o *SessionOptions) setDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = DefaultPollTimeout
	}
	if o.Tokens == nil {
		o.Tokens = randomToken
	}
}

func randomToken() int64 {
	for {
		if v := rand.Uint32(); v != 0 {
			return int64(v)
		}
	}
}

// Session owns a transport and is the only way the rest of the program
// talks to TDLib. It is not safe for concurrent use: one request is in
// flight at a time.
type Session struct {
	transport   Transport
	log         *zap.Logger
	pollTimeout time.Duration
	tokens      func() int64
}

func NewSession(t Transport, opts SessionOptions) *Session {
	opts.setDefaults()
	return &Session{
		transport:   t,
		log:         opts.Logger,
		pollTimeout: opts.PollTimeout,
		tokens:      opts.Tokens,
	}
}

// Token mints a fresh correlation token.
func (s *Session) Token() int64 {
	return s.tokens()
}

// Send queues req without waiting for its result.
func (s *Session) Send(req Request) {
	s.log.Debug("Send", zap.String("type", req.Type), zap.Int64("extra", req.Extra))
	s.transport.Send(req.Encode())
}

// Execute runs req synchronously.
func (s *Session) Execute(req Request) (Object, error) {
	raw := s.transport.Execute(req.Encode())
	if raw == nil {
		return Object{}, errors.Errorf("execute %s: no result", req.Type)
	}
	obj, err := Decode(raw)
	if err != nil {
		return Object{}, errors.Wrapf(err, "execute %s", req.Type)
	}
	if tdErr := AsError(obj); tdErr != nil {
		return obj, tdErr
	}
	return obj, nil
}

// Next polls the transport until an event arrives or ctx is done. Every
// received event is logged.
func (s *Session) Next(ctx context.Context) (Object, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Object{}, err
		}
		raw := s.transport.Receive(s.pollTimeout)
		if raw == nil {
			continue
		}
		obj, err := Decode(raw)
		if err != nil {
			s.log.Warn("Undecodable event", zap.Error(err), zap.ByteString("raw", raw))
			continue
		}
		s.log.Info("Received", zap.String("type", obj.Type))
		s.log.Debug("Event payload", zap.ByteString("raw", raw))
		return obj, nil
	}
}

// Call sends req with a fresh correlation token and blocks until the
// response carrying that token arrives. Events received in the meantime
// are dropped, not queued: callers that care about updates must not have a
// call in flight.
func (s *Session) Call(ctx context.Context, req Request) (Object, error) {
	token := s.tokens()
	s.Send(req.WithExtra(token))
	for {
		obj, err := s.Next(ctx)
		if err != nil {
			return Object{}, errors.Wrapf(err, "call %s", req.Type)
		}
		if !obj.HasExtra || obj.Extra != token {
			s.log.Debug("Dropped unmatched event",
				zap.String("type", obj.Type),
				zap.Int64("want_extra", token),
			)
			continue
		}
		if tdErr := AsError(obj); tdErr != nil {
			return obj, tdErr
		}
		return obj, nil
	}
}
