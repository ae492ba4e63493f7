package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jrsteele09/go-ticket-client/internal/app"
	"github.com/jrsteele09/go-ticket-client/internal/ui"
	"github.com/jrsteele09/go-ticket-client/router"
	"golang.org/x/term"
)

var errNavigationRefused = errors.New("navigation refused")

type cli struct {
	app     *app.Container
	stdin   *bufio.Reader
	stdinFd int
	stdout  io.Writer
	stderr  io.Writer
	colour  bool
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer, colour bool) *cli {
	cl := &cli{
		stdin:   bufio.NewReader(stdin),
		stdinFd: -1,
		stdout:  stdout,
		stderr:  stderr,
		colour:  colour && isTerminal(stdout),
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cl.stdinFd = int(f.Fd())
	}
	return cl
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (cl *cli) rootCommand() *command {
	return &command{
		Name:    "ticketctl",
		Summary: "Command-line client for the ticket desk",
		Subcommands: []*command{
			cl.loginCommand(),
			cl.verifyCommand(),
			cl.logoutCommand(),
			cl.whoamiCommand(),
			cl.registerCommand(),
			cl.passwordCommand(),
			cl.profileCommand(),
			cl.twoFactorCommand(),
			cl.openCommand(),
			cl.ticketsCommand(),
			cl.ticketCommand(),
			cl.statsCommand(),
			cl.contractorsCommand(),
			cl.expiringCommand(),
		},
	}
}

// enter moves to route through the navigation guard. A redirect means the
// session may not see the route; the redirect target is printed and the
// command does not run.
func (cl *cli) enter(ctx context.Context, route string) error {
	nav, err := cl.app.Navigator.Navigate(ctx, route)
	if err != nil {
		return err
	}
	if nav.Redirected() {
		fmt.Fprintf(cl.stderr, "%s %s -> %s\n",
			ui.Colourize(cl.colour, ui.Yellow, "redirect"), nav.Requested, nav.Path)
		return fmt.Errorf("%w: %s", errNavigationRefused, redirectReason(nav.Path))
	}
	return nil
}

func redirectReason(target string) string {
	switch target {
	case router.RouteLogin:
		return "sign in first with 'ticketctl login'"
	case router.RouteDashboard:
		return "already signed in"
	default:
		return "redirected to " + target
	}
}

// sessionFailure prefers the message the session manager recorded for the
// user over the wrapped error chain.
func (cl *cli) sessionFailure(err error) error {
	if msg := cl.app.Session.Error(); msg != "" {
		return errors.New(msg)
	}
	return err
}

// prompt reads one line from stdin. io.EOF is returned when stdin is closed
// before any input.
func (cl *cli) prompt(label string) (string, error) {
	fmt.Fprintf(cl.stderr, "%s: ", label)
	line, err := cl.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// valueOrPrompt returns value, asking for it on stdin when empty.
func (cl *cli) valueOrPrompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	v, err := cl.prompt(label)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return v, nil
}

// secretOrPrompt is valueOrPrompt with echo turned off when stdin is a
// terminal.
func (cl *cli) secretOrPrompt(value, label string) (string, error) {
	if value != "" || cl.stdinFd < 0 {
		return cl.valueOrPrompt(value, label)
	}
	fmt.Fprintf(cl.stderr, "%s: ", label)
	b, err := term.ReadPassword(cl.stdinFd)
	fmt.Fprintln(cl.stderr)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

func (cl *cli) notifier() *consoleNotifier {
	return &consoleNotifier{w: cl.stderr, colour: cl.colour}
}

// consoleNotifier prints ticket notices to the terminal.
type consoleNotifier struct {
	w      io.Writer
	colour bool
}

func (n *consoleNotifier) Success(msg string) {
	fmt.Fprintf(n.w, "%s %s\n", ui.Colourize(n.colour, ui.Green, "ok"), msg)
}

func (n *consoleNotifier) Error(msg string) {
	fmt.Fprintf(n.w, "%s %s\n", ui.Colourize(n.colour, ui.Red, "error"), msg)
}
