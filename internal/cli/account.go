package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/client"
	"github.com/2beens/liftlog/internal/localstore"
)

func (a *App) signupCmd() *cobra.Command {
	var req auth.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				password, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.Password = password
			}

			user, err := a.api.Signup(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("signup: %w", err)
			}
			a.printf("account %s <%s> created, log in with: liftlog login --email %s\n", user.Username, user.Email, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Username, "username", "", "display name, at least 3 characters")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, read from stdin when empty")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readPassword(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			resp, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, client.ErrUnauthorized) {
					return errors.New("wrong email or password")
				}
				return fmt.Errorf("login: %w", err)
			}

			session := localstore.Session{
				Server:    a.serverURL,
				Token:     resp.Token,
				UserID:    resp.UserID,
				Username:  resp.Username,
				CreatedAt: time.Now(),
			}
			if err := a.store.SaveSession(session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			a.session = &session

			a.printf("logged in as %s\n", resp.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password, read from stdin when empty")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			// the local session goes away even when the backend already forgot it
			if err := a.api.Logout(cmd.Context()); err != nil && !errors.Is(err, client.ErrUnauthorized) {
				log.Warnf("backend logout: %s", err)
			}
			if err := a.store.ClearSession(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			a.printf("logged out\n")
			return nil
		},
	}
}

func (a *App) accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the account",
	}

	var confirmed bool
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the account with all its routines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if !confirmed {
				return errors.New("this deletes all routines and cannot be undone, repeat with --yes")
			}

			if err := a.api.DeleteAccount(cmd.Context()); err != nil {
				return fmt.Errorf("delete account: %w", a.backendErr(err))
			}
			if err := a.store.ClearSession(); err != nil {
				log.Errorf("clear session: %s", err)
			}
			if err := a.store.Reset(); err != nil {
				log.Errorf("reset local data: %s", err)
			}
			a.printf("account %s deleted\n", a.session.Username)
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the deletion")

	cmd.AddCommand(deleteCmd)
	return cmd
}

func (a *App) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop the local draft and cached exercise names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Reset(); err != nil {
				return fmt.Errorf("reset local data: %w", err)
			}
			a.printf("local data cleared\n")
			return nil
		},
	}
}

func readPassword(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
