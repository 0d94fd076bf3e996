package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhigham/autotele/internal/config"
	"github.com/danhigham/autotele/internal/plan"
	"github.com/danhigham/autotele/internal/sidechannel"
)

const secretsYAML = `
api_id: 12345
api_hash: "0123456789abcdef"
phone_number: "+6590000000"
timezone: Asia/Singapore
log_level: error
angelus_channel: -1001111111111
legion_channel: -1002222222222
`

func writeSecrets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func fixedNow(t time.Time) *options {
	return &options{now: func() time.Time { return t }}
}

func TestCommand_MissingArguments(t *testing.T) {
	out, err := executeCommand(NewCommand(plan.AngelusName), "secrets.yaml", "code.sock")
	require.Error(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestCommand_BadSecrets(t *testing.T) {
	path := writeSecrets(t, "api_id: 1\n")
	_, err := executeCommand(NewCommand(plan.AngelusName), path, "code.sock", "libtdjson.so", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_hash")
}

func TestCommand_DryRunMassBooking(t *testing.T) {
	path := writeSecrets(t, secretsYAML)
	now := time.Date(2026, time.October, 19, 10, 0, 0, 0, plan.Singapore)

	cmd := newCommand(plan.MassBookingName, fixedNow(now))
	out, err := executeCommand(cmd, "--dry-run", "--preview-style", "notty",
		path, "code.sock", "libtdjson.so", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "MASSBOOKING")
	assert.Contains(t, out, "2 messages")
	assert.Contains(t, out, "Tuesday, October 20, 2026")
	assert.Contains(t, out, "Tuesday, October 27, 2026")
	assert.NotContains(t, out, "October 13")
}

func TestCommand_DryRunDateOverride(t *testing.T) {
	path := writeSecrets(t, secretsYAML)
	now := time.Date(2026, time.October, 19, 10, 0, 0, 0, plan.Singapore)

	cmd := newCommand(plan.MassBookingName, fixedNow(now))
	out, err := executeCommand(cmd, "--dry-run", "--preview-style", "notty",
		path, "code.sock", "libtdjson.so", t.TempDir(), "2026-12-01")
	require.NoError(t, err)

	// December 2026 has five Tuesdays.
	assert.Contains(t, out, "5 messages")
	assert.Contains(t, out, "Tuesday, December 1, 2026")
}

func TestResolve(t *testing.T) {
	secrets, err := config.Load(writeSecrets(t, secretsYAML))
	require.NoError(t, err)

	sgt := plan.Singapore
	o := fixedNow(time.Date(2026, time.October, 19, 21, 0, 0, 0, sgt))

	j, err := o.resolve(plan.AngelusName, secrets, "")
	require.NoError(t, err)
	assert.Equal(t, int64(-1001111111111), j.chatID)
	assert.Equal(t, "Asia/Singapore", j.location.String())
	assert.Len(t, j.target, 4)
	assert.Contains(t, j.target, time.Date(2026, time.October, 20, 6, 0, 0, 0, sgt).Unix())

	_, err = o.resolve(plan.AngelusName, secrets, "2026-13-45")
	require.Error(t, err)

	_, err = o.resolve("vespers", secrets, "")
	require.Error(t, err)
}

func TestResolve_MissingChannel(t *testing.T) {
	secrets, err := config.Load(writeSecrets(t, strings.Replace(secretsYAML, "legion_channel", "other_channel", 1)))
	require.NoError(t, err)

	_, err = fixedNow(time.Now()).resolve(plan.MassBookingName, secrets, "")
	require.ErrorIs(t, err, config.ErrUnknownChannel)
}

func TestBackendSelection(t *testing.T) {
	s := &config.Secrets{}
	assert.Equal(t, BackendTDLib, (&options{}).backendName(s))

	s.Backend = BackendMTProto
	assert.Equal(t, BackendMTProto, (&options{}).backendName(s))
	assert.Equal(t, BackendTDLib, (&options{backend: BackendTDLib}).backendName(s))
}

func TestCommand_UnknownBackend(t *testing.T) {
	path := writeSecrets(t, secretsYAML)
	now := time.Date(2026, time.October, 19, 10, 0, 0, 0, plan.Singapore)

	cmd := newCommand(plan.AngelusName, fixedNow(now))
	_, err := executeCommand(cmd, "--backend", "carrier-pigeon",
		path, "code.sock", "libtdjson.so", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestCodeCommand(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "code.sock")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := (&sidechannel.Listener{Path: sock}).Code(ctx)
		done <- result{code, err}
	}()

	// Wait for the listener to bind.
	require.Eventually(t, func() bool {
		_, err := os.Stat(sock)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	out, err := executeCommand(NewCommand(plan.AngelusName), "code", sock, "424242trailing")
	require.NoError(t, err)
	assert.Contains(t, out, "Code sent.")

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "424242", res.code)
}
