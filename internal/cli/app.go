package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/liftlog/internal/client"
	"github.com/2beens/liftlog/internal/localstore"
	"github.com/2beens/liftlog/internal/weight"
	"github.com/2beens/liftlog/pkg"
)

const (
	AppName       = "liftlog"
	DefaultServer = "http://localhost:9000"

	envServer  = "LIFTLOG_SERVER"
	envDataDir = "LIFTLOG_DATA_DIR"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in, run: liftlog login")
	ErrSessionExpired = errors.New("session expired, run: liftlog login")
)

// App holds what every command needs: the device store, the unit preference and the backend client.
type App struct {
	out        io.Writer
	httpClient *http.Client

	serverURL string
	dataDir   string
	verbose   bool

	store   *localstore.Store
	units   *weight.Preference
	api     *client.Client
	session *localstore.Session
}

// Run executes the CLI with args. A nil httpClient makes the backend client use its own.
func Run(ctx context.Context, args []string, out io.Writer, httpClient *http.Client) error {
	app := &App{
		out:        out,
		httpClient: httpClient,
	}
	defer app.close()

	root := app.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           AppName,
		Short:         "Plan weekly workout routines",
		Long:          "liftlog keeps weekly workout routines: training and rest days, the exercises of each day, weights in kg or lbs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.serverURL, "server", envOr(envServer, DefaultServer), "liftlog backend address [env "+envServer+"]")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", envOr(envDataDir, defaultDataDir()), "directory of the local data [env "+envDataDir+"]")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.accountCmd(),
		a.unitCmd(),
		a.routinesCmd(),
		a.draftCmd(),
		a.exercisesCmd(),
		a.resetCmd(),
	)
	return root
}

func (a *App) open(ctx context.Context) error {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if a.verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := pkg.EnsureDir(a.dataDir); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := localstore.Open(filepath.Join(a.dataDir, localstore.FileName))
	if err != nil {
		return err
	}
	a.store = store

	a.units = weight.NewPreference(store)
	a.units.Load(ctx)

	a.api = client.New(a.serverURL, a.httpClient)

	session, err := store.GetSession()
	switch {
	case errors.Is(err, localstore.ErrNotFound):
	case err != nil:
		log.Errorf("read local session: %s", err)
	case session.Server != a.serverURL:
		log.Debugf("stored session belongs to [%s], not using it for [%s]", session.Server, a.serverURL)
	default:
		a.session = session
		a.api.SetToken(session.Token)
	}

	return nil
}

func (a *App) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		log.Errorf("close local store: %s", err)
	}
	a.store = nil
}

func (a *App) requireLogin() error {
	if a.session == nil {
		return ErrNotLoggedIn
	}
	return nil
}

func (a *App) withLogin(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		return run(cmd, args)
	}
}

// backendErr turns a rejected token into ErrSessionExpired and forgets the local session.
func (a *App) backendErr(err error) error {
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	if clearErr := a.store.ClearSession(); clearErr != nil {
		log.Errorf("clear local session: %s", clearErr)
	}
	a.session = nil
	return ErrSessionExpired
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(dir, AppName)
}
