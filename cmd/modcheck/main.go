package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/modcheck/internal/auth"
	"github.com/frederic-klein/modcheck/internal/check"
	"github.com/frederic-klein/modcheck/internal/config"
	"github.com/frederic-klein/modcheck/internal/logging"
	"github.com/frederic-klein/modcheck/internal/mod"
	"github.com/frederic-klein/modcheck/internal/modlist"
	"github.com/frederic-klein/modcheck/internal/portal"
	"github.com/frederic-klein/modcheck/internal/report"
)

type options struct {
	mods         []string
	disabledFile string
	enabledFile  string
	after        string
	before       string
	quiet        bool
	single       bool
	verbose      bool
	password     string
	configFile   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return check.ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			printError(stderr, exitErr.Err)
		}
		return exitErr.Code
	}
	printError(stderr, err)
	return check.ExitFailure
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "modcheck [flags] [mod...]",
		Short: "Check Factorio mods for releases inside a time window",
		Long: `modcheck looks up mods on the Factorio mod portal and reports which of them
published a release strictly between --after and --before.

The exit code is 0 when every mod matched (or, with --quiet --single, when
any mod matched) and 1 otherwise.`,
		Example: `  modcheck -m Krastorio2 -m rso-mod --after 2024-01-01T00:00:00.000000Z
  modcheck -e ~/.factorio/mods/mod-list.json -b 2023-06-01T00:00:00.000000Z -v
  modcheck -q -s -d mod-list.json -a 2024-05-01T00:00:00.000000Z`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.mods = append(opts.mods, args...)
			return runCheck(cmd, opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringSliceVarP(&opts.mods, "mod", "m", nil, "look up this mod's last release (repeatable)")
	f.StringVarP(&opts.disabledFile, "disabled-file", "d", "", "add the disabled entries of a mod-list.json file")
	f.StringVarP(&opts.enabledFile, "enabled-file", "e", "", "add the enabled entries of a mod-list.json file")
	f.StringVarP(&opts.after, "after", "a", "", "match releases dated after this time ("+mod.TimeLayout+")")
	f.StringVarP(&opts.before, "before", "b", "", "match releases dated before this time ("+mod.TimeLayout+")")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "no output; stop as soon as the exit code is known")
	f.BoolVarP(&opts.single, "single", "s", false, "succeed if any mod matches instead of requiring all")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "list every mod under its verdict and log debug details (ignored with --quiet)")
	f.StringP("user", "u", "", "portal username")
	f.StringP("token", "t", "", "portal token to verify")
	f.StringVarP(&opts.password, "password", "p", "", "portal password to log in with")
	f.Bool("require-login", false, "authenticate before looking up mods")
	f.StringP("output", "o", report.FormatText, "report format: "+strings.Join(report.Formats, ", "))
	f.String("portal-url", portal.DefaultPortalURL, "mod portal base URL")
	f.String("auth-url", portal.DefaultAuthURL, "authentication server base URL")
	f.Duration("timeout", portal.DefaultTimeout, "timeout for each portal request")
	f.StringVar(&opts.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/modcheck/config.yaml)")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	logger := logging.New(stderr, logging.DefaultConfig(opts.verbose && !opts.quiet))

	cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.configFile, Flags: cmd.Flags()})
	if err != nil {
		return &ExitError{Code: check.ExitFailure, Err: err}
	}

	window, err := parseWindow(opts, time.Now())
	if err != nil {
		return &ExitError{Code: check.ExitFailure, Err: err}
	}

	names, err := collectMods(opts)
	if err != nil {
		return &ExitError{Code: check.ExitFailure, Err: err}
	}
	queue := check.NewQueue(names...)
	logger.Debug().Int("mods", queue.Len()).
		Str("after", mod.FormatTime(window.After)).
		Str("before", mod.FormatTime(window.Before)).
		Msg("starting check")

	client := portal.NewClient(portal.Config{
		PortalURL:  cfg.PortalURL,
		AuthURL:    cfg.AuthURL,
		VerifyPath: cfg.VerifyPath,
		Timeout:    cfg.Timeout,
	})

	ctx := cmd.Context()
	creds := auth.Credentials{User: cfg.User, Token: cfg.Token, Password: opts.password}
	mode := auth.SelectMode(cfg.RequireLogin, creds)
	logger.Debug().Stringer("mode", mode).Msg("acquiring session")

	authCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	token, err := auth.Acquire(authCtx, client, mode, creds)
	cancel()
	if err != nil {
		return &ExitError{Code: check.ExitFailure, Err: err}
	}

	emitter, err := report.New(cfg.Output, stdout, opts.verbose)
	if err != nil {
		return &ExitError{Code: check.ExitFailure, Err: err}
	}

	checker := check.NewChecker(client, token, queue, check.Options{
		Window:  window,
		Flags:   check.Flags{Quiet: opts.quiet, Single: opts.single, Verbose: opts.verbose},
		Emitter: emitter,
		Timeout: cfg.Timeout,
		Logger:  &logger,
	})
	outcome := checker.Run(ctx)
	if outcome.Err != nil {
		return &ExitError{Code: check.ExitFailure, Err: outcome.Err}
	}
	if outcome.ExitCode != check.ExitSuccess {
		return &ExitError{Code: outcome.ExitCode}
	}
	return nil
}

func parseWindow(opts *options, now time.Time) (mod.Window, error) {
	window := mod.DefaultWindow(now)
	for _, bound := range []struct {
		flag  string
		value string
		dst   *time.Time
	}{
		{"after", opts.after, &window.After},
		{"before", opts.before, &window.Before},
	} {
		if bound.value == "" {
			continue
		}
		t, err := mod.ParseTime(bound.value)
		if err != nil {
			return mod.Window{}, fmt.Errorf("invalid --%s value: %w (example: %s)", bound.flag, err, mod.FormatTime(now))
		}
		*bound.dst = t
	}
	return window, nil
}

func collectMods(opts *options) ([]string, error) {
	names := append([]string(nil), opts.mods...)

	parser := modlist.NewParser()
	for _, src := range []struct {
		path    string
		enabled bool
	}{
		{opts.disabledFile, false},
		{opts.enabledFile, true},
	} {
		if src.path == "" {
			continue
		}
		list, err := parser.Parse(src.path)
		if err != nil {
			return nil, err
		}
		names = append(names, list.Names(src.enabled)...)
	}
	return names, nil
}
