// Package cli implements the certexpiry command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/TykTechnologies/certexpiry/config"
	"github.com/TykTechnologies/certexpiry/internal/build"
	logger "github.com/TykTechnologies/certexpiry/log"
)

const (
	appName = "certexpiry"
	appDesc = "Checks the expiry of TLS certificates served by remote hosts."
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitAlertWindow = 2
)

var log = logger.Get()

// exitError carries a process exit code out of a command action.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// globals are the flags shared by every command.
type globals struct {
	confPaths []string
	envFiles  []string
	logLevel  string
	logFormat string

	ctx    context.Context
	conf   *config.Config
	stdout io.Writer
}

func (g *globals) logger(prefix string) *logrus.Entry {
	return log.WithField("prefix", prefix)
}

// load reads .env files and the configuration, then applies the log settings.
func (g *globals) load(_ *kingpin.ParseContext) error {
	for _, f := range g.envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("couldn't load %s: %w", f, err)
		}
	}

	conf, err := config.New(g.confPaths...)
	if err != nil {
		return err
	}

	if g.logLevel != "" {
		conf.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		conf.LogFormat = g.logFormat
	}
	logger.Configure(conf.LogLevel, conf.LogFormat)

	g.conf = conf
	return nil
}

// newApp builds the command tree. Actions run under ctx and write their
// output to stdout.
func newApp(ctx context.Context, stdout io.Writer) *kingpin.Application {
	app := kingpin.New(appName, appDesc)
	app.Version(build.VERSION)
	app.HelpFlag.Short('h')

	g := &globals{ctx: ctx, stdout: stdout}
	app.Flag("conf", "Path to a JSON or YAML config file. The first existing one is used.").
		Default("certexpiry.yaml", "certexpiry.yml", "certexpiry.json").StringsVar(&g.confPaths)
	app.Flag("env-file", "Load environment variables from this file.").
		Default(".env").StringsVar(&g.envFiles)
	app.Flag("log-level", "Log level: debug, info, warn or error.").StringVar(&g.logLevel)
	app.Flag("log-format", "Log format: text or json.").EnumVar(&g.logFormat, "text", "json")
	app.PreAction(g.load)

	addCheck(app, g)
	addWatch(app, g)
	addServe(app, g)
	addWriteConfig(app, g)

	return app
}

// Run executes the command line in args and returns the process exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, args, os.Stdout)
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	app := newApp(ctx, stdout)
	app.Terminate(nil)

	if _, err := app.Parse(args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			switch {
			case exitErr.err == nil:
			case exitErr.code == ExitAlertWindow:
				log.Warn(exitErr.err)
			default:
				log.WithError(exitErr.err).Error("Command failed")
			}
			return exitErr.code
		}
		app.Errorf("%s", err)
		return ExitFailure
	}

	return ExitOK
}
