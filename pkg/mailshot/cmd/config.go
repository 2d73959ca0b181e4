package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/telekom/mailshot/pkg/mailshot/config"
	"github.com/telekom/mailshot/pkg/mailshot/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the campaign file",
	}

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigViewCommand(),
		newConfigValidateCommand(),
	)

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		senderAddress string
		senderName    string
		smtpHost      string
		smtpPort      int
		subject       string
		source        string
		attachment    string
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter campaign file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPathValue()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config already exists: %s", path)
				}
			}

			cfg := config.DefaultConfig()
			cfg.Sender = config.Sender{Address: senderAddress, Name: senderName}
			cfg.SMTP.Host = smtpHost
			if smtpPort != 0 {
				cfg.SMTP.Port = smtpPort
				cfg.SMTP.Encryption = ""
			}
			cfg.Message.Subject = subject
			cfg.Message.Attachment = attachment
			cfg.Source.Path = source
			cfg.ApplyDefaults()

			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Initialized config at %s\n", path)
			if err := cfg.Validate(); err != nil {
				_, _ = fmt.Fprintf(rt.Writer(), "Edit the file before sending:\n%v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&senderAddress, "sender", "", "Sender email address")
	cmd.Flags().StringVar(&senderName, "sender-name", "", "Sender display name")
	cmd.Flags().StringVar(&smtpHost, "smtp-host", "smtp.gmail.com", "SMTP server host")
	cmd.Flags().IntVar(&smtpPort, "smtp-port", 0, "SMTP server port (465 implies ssl, 587 starttls)")
	cmd.Flags().StringVar(&subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&source, "contacts", "contacts.xlsx", "Contact source (.xlsx or .csv)")
	cmd.Flags().StringVar(&attachment, "attachment", "", "File attached to every email")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")

	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the effective campaign configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			if format == output.FormatText {
				format = output.FormatYAML
			}
			return output.WriteObject(rt.Writer(), format, rt.cfg)
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the campaign file for errors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			if err := rt.cfg.Validate(); err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("invalid campaign %s: %w", rt.configPathValue(), err)}
			}
			if _, err := newComposer(*rt.cfg, rt.Logger()); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Campaign %s is valid\n", rt.configPathValue())
			return nil
		},
	}
}
