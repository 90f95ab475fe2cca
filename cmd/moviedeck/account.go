package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviedeck/internal/account"
	"github.com/vadimtrunov/moviedeck/internal/config"
)

// errInvalidForm is returned after the field errors have been printed.
var errInvalidForm = errors.New("form has errors")

func newSignupCmd() *cobra.Command {
	var form account.SignupForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: "Fill in the signup form. The password needs 8 characters with an uppercase letter,\n" +
			"a lowercase letter, a number and one of !@#$%^&*.",
		Example: `  moviedeck signup --username neo --email neo@example.com --password 'Matr1x!!' \
    --gender male --job developer --accept-terms`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return submitForm("Creating account...", form, func(r account.Receipt) string {
				return styleSuccess.Render("✓ Welcome, "+form.Username+"!") + styleDim.Render(" (request "+r.ID+")")
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Username, "username", "", "user name")
	f.StringVar(&form.Email, "email", "", "email address")
	f.StringVar(&form.Password, "password", "", "password")
	f.StringVar(&form.Gender, "gender", "", strings.Join(account.Genders, " or "))
	f.StringVar(&form.Job, "job", "", "one of "+strings.Join(account.Jobs, ", "))
	f.BoolVar(&form.Terms, "accept-terms", false, "accept the terms and conditions")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var form account.LoginForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return submitForm("Signing in...", form, func(account.Receipt) string {
				return styleSuccess.Render("✓ Signed in as " + form.Email)
			})
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "password")
	return cmd
}

// submitForm validates form locally, then submits it behind a spinner.
func submitForm(label string, form account.Form, done func(account.Receipt) string) error {
	if errs := form.Validate(); len(errs) > 0 {
		fmt.Fprintln(os.Stderr, renderFieldErrors(errs))
		return errInvalidForm
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := config.SetupLoggerTo(os.Stderr, cfg.App.LogLevel)
	submitter := account.NewSubmitter(time.Duration(cfg.Account.SubmitDelaySeconds)*time.Second, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runTask(ctx, label, func(ctx context.Context) (string, error) {
		receipt, err := submitter.Submit(ctx, form)
		if err != nil {
			return "", err
		}
		return done(receipt), nil
	})
}

// renderFieldErrors lists one "field: message" line per invalid field.
func renderFieldErrors(errs account.FieldErrors) string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, styleError.Render("✗ "+f+": ")+errs[f])
	}
	return strings.Join(lines, "\n")
}
