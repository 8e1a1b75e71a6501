package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iamlokanath/imagehub/internal/client/session"
)

type authClient struct {
	serverURL *string
}

func newAuthCmd(serverURL *string) *cobra.Command {
	a := &authClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "auth", Short: "Authentication commands"}
	cmd.AddCommand(&cobra.Command{Use: "register", Short: "Register new account", RunE: a.register})
	cmd.AddCommand(&cobra.Command{Use: "login", Short: "Login and store token", RunE: a.login})
	cmd.AddCommand(&cobra.Command{Use: "logout", Short: "Discard the stored token", RunE: a.logout})
	cmd.AddCommand(&cobra.Command{Use: "whoami", Short: "Show the current identity", RunE: a.whoami})
	return cmd
}

func (a *authClient) register(cmd *cobra.Command, args []string) error {
	name, err := promptLine(cmd, "Name: ")
	if err != nil {
		return err
	}
	email, err := promptLine(cmd, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}

	sess := newSession(*a.serverURL)
	user, err := sess.Register(cmd.Context(), session.RegisterPayload{
		Name:     name,
		Email:    email,
		Password: string(password),
	})
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *authClient) login(cmd *cobra.Command, args []string) error {
	email, err := promptLine(cmd, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return err
	}

	sess := newSession(*a.serverURL)
	user, err := sess.Login(cmd.Context(), email, string(password))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *authClient) logout(cmd *cobra.Command, args []string) error {
	sess := newSession(*a.serverURL)
	sess.Logout()
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func (a *authClient) whoami(cmd *cobra.Command, args []string) error {
	sess := newSession(*a.serverURL)
	if err := sess.Initialize(cmd.Context()); err != nil {
		return err
	}
	user := sess.CurrentUser()
	if user == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s\n", user.Name, user.Email, user.Role)
	return nil
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(cmd *cobra.Command, prompt string) ([]byte, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	return pass, err
}
