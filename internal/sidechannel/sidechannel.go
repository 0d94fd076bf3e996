// Package sidechannel delivers the one-time login code into the running
// process over a local unix datagram socket.
package sidechannel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	// CodeLength is the number of characters taken from a datagram.
	CodeLength = 6
	// BufferSize bounds the datagram read.
	BufferSize = 4096
)

// ErrPathOccupied is returned when something other than a socket lives at
// the rendezvous path.
var ErrPathOccupied = errors.New("side channel path is occupied")

// Listener receives one code per call to Code.
type Listener struct {
	Path string
	// Timeout bounds the wait for a datagram. Zero waits forever.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Code binds the socket, waits for a single datagram, unbinds, and returns
// the first CodeLength characters of the payload.
func (l *Listener) Code(ctx context.Context) (string, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := removeStale(l.Path); err != nil {
		return "", err
	}

	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: l.Path, Net: "unixgram"})
	if err != nil {
		return "", fmt.Errorf("bind %s: %w", l.Path, err)
	}
	defer os.Remove(l.Path)
	defer conn.Close()

	if l.Timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(l.Timeout)); err != nil {
			return "", fmt.Errorf("set deadline: %w", err)
		}
	}

	// Unblock the read when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	logger.Info("Waiting for login code", zap.String("socket", l.Path))

	buf := make([]byte, BufferSize)
	n, _, err := conn.ReadFromUnix(buf)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("read code: %w", err)
	}
	return Truncate(string(buf[:n])), nil
}

// Truncate returns the first CodeLength characters of payload.
func Truncate(payload string) string {
	runes := []rune(payload)
	if len(runes) > CodeLength {
		runes = runes[:CodeLength]
	}
	return string(runes)
}

// removeStale deletes a socket left behind by an earlier run. Anything else
// at path is reported rather than removed.
func removeStale(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%w: %s (%s)", ErrPathOccupied, path, fi.Mode().Type())
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

// Send writes code as a single datagram to the listener at path.
func Send(path, code string) error {
	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		return fmt.Errorf("dial %s: %w", path, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(code)); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}
