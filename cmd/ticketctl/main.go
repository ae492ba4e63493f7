package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-ticket-client/internal/app"
	"github.com/jrsteele09/go-ticket-client/internal/config"
	ierrors "github.com/jrsteele09/go-ticket-client/internal/errors"
	"github.com/spf13/pflag"
)

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if msg := describe(err); msg != "" {
			fmt.Fprintf(os.Stderr, "ticketctl: %s\n", msg)
		}
		os.Exit(1)
	}
}

// describe returns the line to print for err, or "" when a notice already
// covered it.
func describe(err error) string {
	switch {
	case ierrors.Is(err, ierrors.ErrSessionExpired):
		return "session expired, sign in again with 'ticketctl login'"
	case errors.Is(err, errReported):
		return ""
	}
	return err.Error()
}

type globalFlags struct {
	configPath string
	envFile    string
	trace      bool
	noColour   bool
}

func (g *globalFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ticketctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVar(&g.configPath, "config", config.GetEnv("TICKETCTL_CONFIG", ""), "YAML config file")
	fs.StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before the config")
	fs.BoolVar(&g.trace, "trace", false, "print one line per API request to stderr")
	fs.BoolVar(&g.noColour, "no-colour", false, "disable coloured output")
	return fs
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	var globals globalFlags
	fs := globals.flagSet()
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			return fmt.Errorf("%w\n\nRun 'ticketctl --help' for usage", err)
		}
		args = []string{"help"}
	} else {
		args = fs.Args()
	}

	cl := newCLI(stdin, stdout, stderr, !globals.noColour)
	root := cl.rootCommand()

	if len(args) == 0 || isHelpFlag(args[0]) {
		displayAppname(stdout, "ticketctl")
		root.printHelp(stdout)
		fmt.Fprintf(stdout, "\nGlobal flags:\n%s", fs.FlagUsages())
		return nil
	}
	if args[0] == "version" {
		displayAppname(stdout, "ticketctl")
		fmt.Fprintf(stdout, "ticketctl %s\n", version)
		return nil
	}

	if err := config.LoadDotEnv(globals.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(globals.configPath)
	if err != nil {
		return err
	}

	options := []app.Option{app.WithNotifier(cl.notifier())}
	if globals.trace || cfg.GetTraceRequests() {
		options = append(options, app.WithTraceOutput(stderr, cl.colour))
	}
	container, err := app.New(cfg, options...)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(shutdownCtx); err != nil {
			container.Log.Warn().Err(err).Msg("closing client")
		}
	}()

	cl.app = container
	return root.execute(ctx, cl, args)
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprint(w, myFigure.String())
	fmt.Fprintln(w)
}
