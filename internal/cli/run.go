package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danhigham/autotele/internal/config"
	"github.com/danhigham/autotele/internal/domain"
	"github.com/danhigham/autotele/internal/plan"
	"github.com/danhigham/autotele/internal/schedule"
	"github.com/danhigham/autotele/internal/sidechannel"
	"github.com/danhigham/autotele/internal/state"
	"github.com/danhigham/autotele/internal/tdjson"
	"github.com/danhigham/autotele/internal/telegram"
	"github.com/danhigham/autotele/internal/ui"
)

// Values sent to TDLib in setTdlibParameters.
const (
	systemLanguageCode = "en"
	deviceModel        = "Desktop"
	applicationVersion = "0.1"
)

// tdlibLogVerbosity keeps TDLib's own log to errors only.
const tdlibLogVerbosity = 1

type invocation struct {
	secretsPath string
	socketPath  string
	libraryPath string
	storageDir  string
	date        string
}

func parseArgs(args []string) invocation {
	inv := invocation{
		secretsPath: args[0],
		socketPath:  args[1],
		libraryPath: args[2],
		storageDir:  args[3],
	}
	if len(args) > 4 {
		inv.date = args[4]
	}
	return inv
}

// job is a plan resolved against the secrets file.
type job struct {
	plan     plan.Plan
	chatID   int64
	target   domain.ScheduleRequest
	location *time.Location
}

func (o *options) run(cmd *cobra.Command, planName string, args []string) error {
	inv := parseArgs(args)

	secrets, err := config.Load(inv.secretsPath)
	if err != nil {
		return err
	}
	// Past this point failures are not usage errors.
	cmd.SilenceUsage = true

	logger, err := newLogger(o.level(secrets))
	if err != nil {
		return err
	}
	defer logger.Sync()

	j, err := o.resolve(planName, secrets, inv.date)
	if err != nil {
		return err
	}
	logger.Info("Planned messages",
		zap.String("plan", j.plan.Name),
		zap.Int64("chat_id", j.chatID),
		zap.Int("count", len(j.target)),
	)

	if o.dryRun {
		out, err := ui.RenderPreview(j.target, ui.PreviewOptions{
			Plan:        j.plan.Name,
			Destination: j.plan.Channel,
			Location:    j.location,
			Style:       o.previewStyle,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	if len(j.target) == 0 {
		logger.Info("Nothing to schedule")
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	codes := &sidechannel.Listener{
		Path:    inv.socketPath,
		Timeout: o.codeTimeout,
		Logger:  logger.Named("sidechannel"),
	}

	backend := o.backendName(secrets)
	switch backend {
	case BackendTDLib:
		return o.runTDLib(ctx, logger, secrets, inv, codes, j)
	case BackendMTProto:
		return o.runMTProto(ctx, logger, secrets, inv, codes, j)
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", backend, BackendTDLib, BackendMTProto)
	}
}

func (o *options) level(s *config.Secrets) string {
	if o.logLevel != "" {
		return o.logLevel
	}
	return s.LogLevel
}

func (o *options) backendName(s *config.Secrets) string {
	if o.backend != "" {
		return o.backend
	}
	if s.Backend != "" {
		return s.Backend
	}
	return BackendTDLib
}

// resolve builds the plan's target for the reference date, dropping
// anything that is already in the past.
func (o *options) resolve(planName string, s *config.Secrets, date string) (job, error) {
	loc := time.Local
	if s.Timezone != "" {
		l, err := time.LoadLocation(s.Timezone)
		if err != nil {
			return job{}, fmt.Errorf("timezone %q: %w", s.Timezone, err)
		}
		loc = l
	}

	p, err := plan.Builtin(planName, loc)
	if err != nil {
		return job{}, err
	}
	if p.Location == nil {
		p.Location = loc
	}

	chatID, err := s.Channel(p.Channel)
	if err != nil {
		return job{}, err
	}

	now := o.now()
	ref := now
	if date != "" {
		ref, err = plan.ParseDate(date, p.Location)
		if err != nil {
			return job{}, err
		}
	}

	target, err := p.Build(ref, now)
	if err != nil {
		return job{}, err
	}
	return job{plan: p, chatID: chatID, target: target, location: p.Location}, nil
}

func (o *options) runTDLib(ctx context.Context, logger *zap.Logger, s *config.Secrets, inv invocation, codes telegram.CodeSource, j job) error {
	lib, err := tdjson.Open(inv.libraryPath)
	if err != nil {
		return err
	}

	tdLog := logger.Named("tdlib")
	lib.SetLogHandler(2, func(verbosity int, message string) {
		if verbosity == 0 {
			tdLog.Fatal("TDLib fatal error", zap.String("message", message))
		}
		tdLog.Debug(message, zap.Int("verbosity", verbosity))
	})
	if resp := lib.Execute(tdjson.SetLogVerbosityLevel(tdlibLogVerbosity).Encode()); resp != nil {
		tdLog.Debug("Set log verbosity", zap.ByteString("response", resp))
	}

	session := tdjson.NewSession(lib.NewClient(), tdjson.SessionOptions{Logger: logger.Named("session")})
	store := state.New()

	auth := telegram.NewAuthenticator(session, telegram.AuthConfig{
		Parameters: tdjson.Parameters{
			DatabaseDirectory:      inv.storageDir,
			UseMessageDatabase:     true,
			UseSecretChats:         true,
			EnableStorageOptimizer: true,
			APIID:                  s.APIID,
			APIHash:                s.APIHash,
			SystemLanguageCode:     systemLanguageCode,
			DeviceModel:            deviceModel,
			ApplicationVersion:     applicationVersion,
		},
		PhoneNumber: s.PhoneNumber,
		Codes:       codes,
		Prompter:    ui.Prompter{},
		Logger:      logger.Named("auth"),
		OnState:     store.SetAuthState,
	})
	if err := auth.Authenticate(ctx); err != nil {
		return err
	}
	logger.Info("Logged in", zap.Stringer("state", store.GetAuthState()))

	return reconcile(ctx, telegram.NewTDLibClient(session, logger.Named("tdlib")), logger, j)
}

func (o *options) runMTProto(ctx context.Context, logger *zap.Logger, s *config.Secrets, inv invocation, codes telegram.CodeSource, j job) error {
	if err := os.MkdirAll(inv.storageDir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	store := state.New()
	authFlow := &telegram.CodeAuth{
		PhoneNumber: s.PhoneNumber,
		Codes:       codes,
		Prompter:    ui.Prompter{},
		Logger:      logger.Named("auth"),
		OnState:     store.SetAuthState,
	}
	client := telegram.NewGotdClient(s.APIID, s.APIHash, inv.storageDir, store, authFlow, logger.Named("gotd"))

	return client.Run(ctx, func(ctx context.Context) error {
		logger.Info("Logged in", zap.Stringer("state", store.GetAuthState()))
		return reconcile(ctx, client, logger, j)
	})
}

func reconcile(ctx context.Context, backend schedule.Backend, logger *zap.Logger, j job) error {
	r := schedule.NewReconciler(backend, logger.Named("reconcile"))
	res, err := r.Reconcile(ctx, j.target, j.chatID)
	logger.Info("Reconciled",
		zap.String("plan", j.plan.Name),
		zap.Int("existing", res.Existing),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("sent", len(res.Sent)),
	)
	return err
}
