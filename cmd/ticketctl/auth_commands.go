package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-ticket-client/internal/ui"
	"github.com/jrsteele09/go-ticket-client/router"
	"github.com/jrsteele09/go-ticket-client/users"
	"github.com/spf13/pflag"
)

func (cl *cli) loginCommand() *command {
	var email, password, code string
	var legacy bool
	return &command{
		Name:    "login",
		Summary: "Sign in, completing two-factor verification when the account needs it",
		Route:   router.RouteLogin,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVar(&email, "email", "", "account email (prompted when empty)")
			fs.StringVar(&password, "password", "", "account password (prompted when empty)")
			fs.StringVar(&code, "code", "", "two-factor code (prompted when required and empty)")
			fs.BoolVar(&legacy, "legacy", false, "single step login without two-factor")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			var err error
			if email, err = cl.valueOrPrompt(email, "Email"); err != nil {
				return err
			}
			if password, err = cl.secretOrPrompt(password, "Password"); err != nil {
				return err
			}
			if legacy {
				return cl.legacyLogin(ctx, email, password)
			}

			challenge, err := cl.app.Session.Login(ctx, email, password)
			if err != nil {
				return cl.sessionFailure(err)
			}
			if !challenge.Requires2FA {
				return cl.completeLogin(ctx, challenge.TempSessionID, "", true)
			}

			if code == "" {
				fmt.Fprintf(cl.stderr, "A verification code was sent by %s.\n", challenge.Method)
				code, err = cl.prompt("Code")
				if err != nil || code == "" {
					fmt.Fprintf(cl.stdout, "Finish with: ticketctl verify --session %s --code <code>\n", challenge.TempSessionID)
					return nil
				}
			}
			return cl.completeLogin(ctx, challenge.TempSessionID, code, false)
		},
	}
}

func (cl *cli) legacyLogin(ctx context.Context, email, password string) error {
	if err := cl.app.Session.LegacyLogin(ctx, email, password); err != nil {
		return cl.sessionFailure(err)
	}
	profile, err := cl.app.Session.VerifyUser(ctx)
	if err != nil {
		return cl.sessionFailure(err)
	}
	cl.printSignedIn(profile)
	return nil
}

func (cl *cli) completeLogin(ctx context.Context, tempSessionID, code string, skip bool) error {
	profile, err := cl.app.Session.VerifyLogin(ctx, tempSessionID, code, skip)
	if err != nil {
		return cl.sessionFailure(err)
	}
	cl.printSignedIn(profile)
	return nil
}

func (cl *cli) printSignedIn(p *users.Profile) {
	fmt.Fprintf(cl.stdout, "Signed in as %s (%s)\n", p.FullName(), p.Role)
}

func (cl *cli) verifyCommand() *command {
	var session, code string
	var skip bool
	return &command{
		Name:    "verify",
		Summary: "Complete a two-step login started with 'login'",
		Route:   router.RouteLogin,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			fs.StringVar(&session, "session", "", "temporary session id from login")
			fs.StringVar(&code, "code", "", "verification code")
			fs.BoolVar(&skip, "skip", false, "skip the code for accounts without two-factor")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			if session == "" {
				return fmt.Errorf("--session is required")
			}
			return cl.completeLogin(ctx, session, code, skip)
		},
	}
}

func (cl *cli) logoutCommand() *command {
	return &command{
		Name:    "logout",
		Summary: "Sign out and forget the stored session",
		Run: func(ctx context.Context, _ []string) error {
			cl.app.Session.Logout(ctx)
			fmt.Fprintln(cl.stdout, "Signed out")
			return nil
		},
	}
}

func (cl *cli) whoamiCommand() *command {
	return &command{
		Name:    "whoami",
		Summary: "Show the signed-in user",
		Route:   router.RouteProfile,
		Run: func(ctx context.Context, _ []string) error {
			profile, err := cl.app.Session.FetchUser(ctx)
			if err != nil {
				// fall back to the cached profile
				profile = cl.app.Session.User()
			}
			if profile == nil {
				return err
			}
			cl.printProfile(profile)
			return nil
		},
	}
}

func (cl *cli) printProfile(p *users.Profile) {
	tw := newTable(cl.stdout)
	fmt.Fprintf(tw, "Name:\t%s\n", p.FullName())
	fmt.Fprintf(tw, "Email:\t%s\n", p.Email)
	if p.Username != "" {
		fmt.Fprintf(tw, "Username:\t%s\n", p.Username)
	}
	fmt.Fprintf(tw, "Role:\t%s\n", p.Role)
	if p.PhoneNumber != "" {
		fmt.Fprintf(tw, "Phone:\t%s\n", p.PhoneNumber)
	}
	fmt.Fprintf(tw, "Two-factor:\t%s\n", onOff(p.TwoFactorEnabled))
	tw.Flush()
}

func (cl *cli) registerCommand() *command {
	var req users.RegisterRequest
	var role string
	return &command{
		Name:    "register",
		Summary: "Create a new account",
		Route:   router.RouteRegister,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
			fs.StringVar(&req.Email, "email", "", "account email")
			fs.StringVar(&req.Username, "username", "", "username")
			fs.StringVar(&req.Password, "password", "", "password (prompted when empty)")
			fs.StringVar(&req.ConfirmPassword, "confirm-password", "", "password again (prompted when empty)")
			fs.StringVar(&req.FirstName, "first-name", "", "first name")
			fs.StringVar(&req.LastName, "last-name", "", "last name")
			fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
			fs.StringVar(&role, "role", string(users.RoleContractor), "admin or contractor")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			var err error
			if req.Email, err = cl.valueOrPrompt(req.Email, "Email"); err != nil {
				return err
			}
			if req.Password, err = cl.secretOrPrompt(req.Password, "Password"); err != nil {
				return err
			}
			if req.ConfirmPassword, err = cl.secretOrPrompt(req.ConfirmPassword, "Confirm password"); err != nil {
				return err
			}
			req.Role = users.RoleType(role)
			if err := cl.app.Session.Register(ctx, req); err != nil {
				return cl.sessionFailure(err)
			}
			fmt.Fprintf(cl.stdout, "Account created for %s. Sign in with 'ticketctl login'.\n", req.Email)
			return nil
		},
	}
}

func (cl *cli) passwordCommand() *command {
	var current, next string
	return &command{
		Name:    "password",
		Summary: "Change the account password",
		Route:   router.RouteProfile,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("password", pflag.ContinueOnError)
			fs.StringVar(&current, "current", "", "current password (prompted when empty)")
			fs.StringVar(&next, "new", "", "new password (prompted when empty)")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			var err error
			if current, err = cl.secretOrPrompt(current, "Current password"); err != nil {
				return err
			}
			if next, err = cl.secretOrPrompt(next, "New password"); err != nil {
				return err
			}
			if err := cl.app.Session.ChangePassword(ctx, current, next); err != nil {
				return cl.sessionFailure(err)
			}
			fmt.Fprintln(cl.stdout, "Password changed")
			return nil
		},
	}
}

func (cl *cli) profileCommand() *command {
	var username, firstName, lastName, phone string
	return &command{
		Name:    "profile",
		Summary: "Show or update the account profile",
		Route:   router.RouteProfile,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("profile", pflag.ContinueOnError)
			fs.StringVar(&username, "username", "", "new username")
			fs.StringVar(&firstName, "first-name", "", "new first name")
			fs.StringVar(&lastName, "last-name", "", "new last name")
			fs.StringVar(&phone, "phone", "", "new phone number")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			update := users.ProfileUpdate{
				Username:    optional(username),
				FirstName:   optional(firstName),
				LastName:    optional(lastName),
				PhoneNumber: optional(phone),
			}
			if update.Empty() {
				if p := cl.app.Session.User(); p != nil {
					cl.printProfile(p)
				}
				return nil
			}
			profile, err := cl.app.Session.UpdateProfile(ctx, update)
			if err != nil {
				return cl.sessionFailure(err)
			}
			cl.printProfile(profile)
			return nil
		},
	}
}

func (cl *cli) twoFactorCommand() *command {
	var code string
	return &command{
		Name:    "2fa",
		Summary: "Manage two-factor verification",
		Subcommands: []*command{
			{
				Name:    "status",
				Summary: "Show the two-factor configuration",
				Route:   router.RouteTwoFactorSetup,
				Run: func(ctx context.Context, _ []string) error {
					status, err := cl.app.Auth.TwoFactorStatus(ctx)
					if err != nil {
						return err
					}
					tw := newTable(cl.stdout)
					fmt.Fprintf(tw, "Enabled:\t%s\n", onOff(status.Enabled))
					if status.Enabled {
						fmt.Fprintf(tw, "Method:\t%s\n", firstNonEmpty(status.MethodDisplay, string(status.Method)))
					}
					return tw.Flush()
				},
			},
			{
				Name:    "setup",
				Summary: "Show what is needed to enable two-factor",
				Route:   router.RouteTwoFactorSetup,
				Run: func(ctx context.Context, _ []string) error {
					setup, err := cl.app.Auth.TwoFactorSetup(ctx)
					if err != nil {
						return err
					}
					tw := newTable(cl.stdout)
					fmt.Fprintf(tw, "Enabled:\t%s\n", onOff(setup.Enabled))
					fmt.Fprintf(tw, "Method:\t%s\n", firstNonEmpty(setup.MethodDisplay, string(setup.Method)))
					fmt.Fprintf(tw, "SMS available:\t%s\n", yesNo(setup.CanUseSMS))
					if setup.PhoneNumberRequired {
						fmt.Fprintf(tw, "Note:\t%s\n", ui.Colourize(cl.colour, ui.Yellow, "add a phone number with 'ticketctl profile --phone' to use SMS"))
					}
					return tw.Flush()
				},
			},
			{
				Name:    "enable",
				Summary: "Turn two-factor on",
				Route:   router.RouteTwoFactorSetup,
				Flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("enable", pflag.ContinueOnError)
					fs.StringVar(&code, "code", "", "verification code (prompted when empty)")
					return fs
				},
				Run: func(ctx context.Context, _ []string) error {
					var err error
					if code, err = cl.valueOrPrompt(code, "Code"); err != nil {
						return err
					}
					if err := cl.app.Session.EnableTwoFactor(ctx, code); err != nil {
						return cl.sessionFailure(err)
					}
					fmt.Fprintln(cl.stdout, "Two-factor enabled")
					return nil
				},
			},
			{
				Name:    "verify",
				Summary: "Check a two-factor code without changing anything",
				Route:   router.RouteTwoFactorSetup,
				Flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
					fs.StringVar(&code, "code", "", "verification code (prompted when empty)")
					return fs
				},
				Run: func(ctx context.Context, _ []string) error {
					var err error
					if code, err = cl.valueOrPrompt(code, "Code"); err != nil {
						return err
					}
					result, err := cl.app.Auth.VerifyTwoFactor(ctx, code)
					if err != nil {
						return err
					}
					if !result.Verified {
						return fmt.Errorf("code not accepted: %s", firstNonEmpty(result.Message, "verification failed"))
					}
					fmt.Fprintln(cl.stdout, ui.Colourize(cl.colour, ui.Green, firstNonEmpty(result.Message, "Code verified")))
					return nil
				},
			},
			{
				Name:    "disable",
				Summary: "Turn two-factor off",
				Route:   router.RouteTwoFactorSetup,
				Run: func(ctx context.Context, _ []string) error {
					if err := cl.app.Session.DisableTwoFactor(ctx); err != nil {
						return cl.sessionFailure(err)
					}
					fmt.Fprintln(cl.stdout, "Two-factor disabled")
					return nil
				},
			},
		},
	}
}

func (cl *cli) openCommand() *command {
	return &command{
		Name:    "open",
		Summary: "Resolve a route through the navigation guard",
		Usage:   "ticketctl open <route>",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("open takes exactly one route")
			}
			nav, err := cl.app.Navigator.Navigate(ctx, args[0])
			if err != nil {
				return err
			}
			if nav.Redirected() {
				fmt.Fprintf(cl.stdout, "%s %s -> %s\n",
					ui.Colourize(cl.colour, ui.Yellow, "redirect"), nav.Requested, strings.Join(nav.Redirects, " -> "))
				return nil
			}
			fmt.Fprintln(cl.stdout, nav.Path)
			return nil
		},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
