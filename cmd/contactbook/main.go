package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/benbjohnson/clock"
	"github.com/tartampluch/go-contactbook/internal/config"
)

// CLI is the top-level command structure for contactbook.
type CLI struct {
	Config  string           `help:"Path to the YAML settings file." default:"${settings}" type:"path" short:"c"`
	Debug   bool             `help:"Enable debug logging."`
	Version kong.VersionFlag `help:"Show version." short:"V"`

	Serve  ServeCmd  `cmd:"" help:"Serve the birthday calendar over HTTP."`
	Export ExportCmd `cmd:"" help:"Write the birthday calendar as an ICS file."`
	Import ImportCmd `cmd:"" help:"Import vCards into the address book."`
	List   ListCmd   `cmd:"" help:"Print the address book page by page."`
	Search SearchCmd `cmd:"" help:"Find records by name or field value."`
}

// main is the application entry point.
// os.Exit does not run defers, so runMain returns the exit code first.
func main() {
	os.Exit(runMain(os.Args[1:]))
}

// newParser builds the kong parser. Extra options are used by tests.
func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	base := []kong.Option{
		kong.Name(config.BinaryName),
		kong.Description(config.AppName),
		kong.Vars{
			"version":  versionString(),
			"settings": config.SettingsFileName,
		},
		kong.UsageOnError(),
	}
	return kong.New(cli, append(base, opts...)...)
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain(args []string) int {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return config.ExitCodeError
	}

	logCloser := setupLogging(cli.Debug)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	settings, err := config.LoadSettings(cli.Config)
	if err == nil {
		err = settings.Validate()
	}
	if err == nil {
		env := &appEnv{
			ctx:      ctx,
			settings: settings,
			clock:    clock.New(),
			out:      os.Stdout,
		}
		err = kctx.Run(env)
	}
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

func versionString() string {
	return fmt.Sprintf(config.FormatVersion,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
// Logs go to stderr so that stdout stays free for command output.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stderr}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
