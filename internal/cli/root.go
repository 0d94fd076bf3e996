// Package cli is the command line surface shared by the plan binaries.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const (
	BackendTDLib   = "tdlib"
	BackendMTProto = "mtproto"
)

type options struct {
	backend      string
	codeTimeout  time.Duration
	dryRun       bool
	logLevel     string
	previewStyle string

	// now is replaced in tests.
	now func() time.Time
}

// NewCommand returns the root command scheduling the named built-in plan.
func NewCommand(planName string) *cobra.Command {
	return newCommand(planName, &options{now: time.Now})
}

func newCommand(planName string, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   planName + " [flags] <secrets> <code-socket> <tdjson-lib> <storage-dir> [date]",
		Short: fmt.Sprintf("Schedule the %s messages", planName),
		Long: fmt.Sprintf(`Logs in to Telegram and schedules the %s plan in its destination chat.
Messages already scheduled within three minutes of a planned time are left
alone, so the command can be run repeatedly.

The login code is read from a unix datagram socket at <code-socket>; send
it with "%s code <code-socket> <code>". The optional [date] moves the
reference date of the plan (any common format, e.g. 2026-11-03).`, planName, planName),
		Args: cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, planName, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.backend, "backend", "", "telegram backend: tdlib or mtproto (default from secrets, else tdlib)")
	f.DurationVar(&opts.codeTimeout, "code-timeout", 0, "how long to wait for the login code (0 waits forever)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the messages that would be scheduled and exit")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (default from secrets, else info)")
	f.StringVar(&opts.previewStyle, "preview-style", "dark", "glamour style for --dry-run output")
	_ = f.MarkHidden("preview-style")

	cmd.AddCommand(newCodeCommand())
	return cmd
}
