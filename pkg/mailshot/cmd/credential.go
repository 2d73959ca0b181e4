package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/telekom/mailshot/pkg/secret"
)

func NewCredentialCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the SMTP password stored in the OS keyring",
	}

	cmd.AddCommand(
		newCredentialSetCommand(),
		newCredentialDeleteCommand(),
	)

	return cmd
}

func newCredentialSetCommand() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the SMTP password in the OS keyring",
		Long: `Store the SMTP password in the OS keyring. The password is read from the
terminal without echo, or from the first line of stdin when it is not a
terminal. Set smtp.keyring to true in the campaign file to use it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			acct, err := rt.resolveAccount(account)
			if err != nil {
				return err
			}
			password, err := rt.readPassword(fmt.Sprintf("SMTP password for %s: ", acct))
			if err != nil {
				return err
			}
			if err := secret.Store(acct, password); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Stored credential for %s in keyring service %q\n", acct, secret.KeyringService)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Keyring account, defaults to smtp.username of the campaign")
	return cmd
}

func newCredentialDeleteCommand() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the SMTP password from the OS keyring",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			acct, err := rt.resolveAccount(account)
			if err != nil {
				return err
			}
			if err := secret.Delete(acct); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Deleted credential for %s\n", acct)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Keyring account, defaults to smtp.username of the campaign")
	return cmd
}

func (rt *runtimeState) resolveAccount(account string) (string, error) {
	if account != "" {
		return account, nil
	}
	if err := rt.EnsureConfigLoaded(); err != nil {
		return "", fmt.Errorf("no --account given and the campaign file could not be loaded: %w", err)
	}
	if rt.cfg.SMTP.Username == "" {
		return "", errors.New("no --account given and smtp.username is empty")
	}
	return rt.cfg.SMTP.Username, nil
}

func (rt *runtimeState) readPassword(prompt string) (string, error) {
	if f, ok := rt.Input().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if rt.nonInteractive {
			return "", errors.New("password prompt disabled in non-interactive mode")
		}
		_, _ = fmt.Fprint(rt.ErrWriter(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(rt.ErrWriter())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(rt.Input()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
