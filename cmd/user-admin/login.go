package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/user-admin/user-admin/internal/auth"
	"github.com/user-admin/user-admin/internal/config"
	"github.com/user-admin/user-admin/internal/logging"
	"github.com/user-admin/user-admin/internal/userapi"
)

var (
	loginEmail         string
	loginPassword      string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the user API and print the access token.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := auth.NormalizeEmail(loginEmail)
		if email == "" {
			return errors.New("--email is required")
		}
		password, _, err := resolvePassword(cmd, passwordSource{Flag: loginPassword, Stdin: loginPasswordStdin}, "")
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client, err := newAPIClient(cfg, logging.Discard())
		if err != nil {
			return err
		}
		return runLogin(cmd.Context(), client, cmd.OutOrStdout(), email, password)
	},
}

type loginAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
}

func runLogin(ctx context.Context, api loginAPI, out io.Writer, email, password string) error {
	token, err := api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, userapi.ErrInvalidCredentials) {
			return exitWith(exitCodeInvalidInput, errors.New("invalid email or password"))
		}
		return fmt.Errorf("login: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (discouraged; prefer --password-stdin)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
	_ = loginCmd.MarkFlagRequired("email")
}
