package tdjson

import (
	"sync"
	"time"

	"github.com/ebitengine/purego"
	"github.com/go-faster/errors"
	"golang.org/x/sys/unix"
)

// LogHandler receives messages from TDLib's internal log. Verbosity 0 is
// a fatal error after which the library is unusable.
type LogHandler func(verbosity int, message string)

// Library is a loaded libtdjson shared object.
type Library struct {
	createClientID        func() int32
	send                  func(clientID int32, request string)
	receive               func(timeout float64) string
	execute               func(request string) string
	setLogMessageCallback func(maxVerbosity int32, callback uintptr)

	mu         sync.Mutex
	logHandler LogHandler
	callback   uintptr
}

// Open loads libtdjson from path.
func Open(path string) (lib *Library, err error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	// RegisterLibFunc panics on a missing symbol.
	defer func() {
		if r := recover(); r != nil {
			lib = nil
			err = errors.Errorf("load %s: %v", path, r)
		}
	}()

	l := &Library{}
	purego.RegisterLibFunc(&l.createClientID, handle, "td_create_client_id")
	purego.RegisterLibFunc(&l.send, handle, "td_send")
	purego.RegisterLibFunc(&l.receive, handle, "td_receive")
	purego.RegisterLibFunc(&l.execute, handle, "td_execute")
	purego.RegisterLibFunc(&l.setLogMessageCallback, handle, "td_set_log_message_callback")
	return l, nil
}

// SetLogHandler installs h as the receiver of TDLib log messages up to
// maxVerbosity. The C callback is registered once per Library.
func (l *Library) SetLogHandler(maxVerbosity int, h LogHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logHandler = h
	if l.callback == 0 {
		l.callback = purego.NewCallback(func(verbosity int32, message *byte) {
			l.mu.Lock()
			handler := l.logHandler
			l.mu.Unlock()
			if handler != nil {
				handler(int(verbosity), unix.BytePtrToString(message))
			}
		})
	}
	l.setLogMessageCallback(int32(maxVerbosity), l.callback)
}

// NewClient creates a TDLib client instance.
func (l *Library) NewClient() *Client {
	return &Client{lib: l, id: l.createClientID()}
}

// Execute runs a synchronous request that is not bound to any client.
func (l *Library) Execute(req []byte) []byte {
	return toBytes(l.execute(string(req)))
}

// Client is one TDLib instance. It implements Transport.
type Client struct {
	lib *Library
	id  int32
}

func (c *Client) Send(req []byte) {
	c.lib.send(c.id, string(req))
}

// Receive returns the next event for any client created by the library.
// Only one client is created per process, so every event is this client's.
func (c *Client) Receive(timeout time.Duration) []byte {
	return toBytes(c.lib.receive(timeout.Seconds()))
}

func (c *Client) Execute(req []byte) []byte {
	return c.lib.Execute(req)
}

func toBytes(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}
