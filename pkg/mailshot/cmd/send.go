package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/telekom/mailshot/pkg/campaign"
	"github.com/telekom/mailshot/pkg/mail"
	"github.com/telekom/mailshot/pkg/mailshot/output"
	"github.com/telekom/mailshot/pkg/metrics"
	"github.com/telekom/mailshot/pkg/secret"
	"github.com/telekom/mailshot/pkg/version"
)

func NewSendCommand() *cobra.Command {
	var (
		src         sourceFlags
		yes         bool
		dryRun      bool
		delay       time.Duration
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the campaign to every contact",
		Long: `Load the contacts, show a preview, ask for confirmation and send one email per
contact, pausing between two sends. The exit status is 0 when every email was
accepted, 1 on a configuration error, 2 when some sends failed, 3 when the
source holds no address, 4 when the campaign was declined and 130 when it was
interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			log := rt.Logger()

			cfg := src.apply(*rt.cfg)
			if cmd.Flags().Changed("delay") {
				cfg.SetDelay(delay)
			}
			if err := cfg.Validate(); err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("invalid campaign %s: %w", rt.configPathValue(), err)}
			}
			log.Debugw("Starting campaign", "build", version.GetBuildInfo().String(), "config", rt.configPathValue(), "dryRun", dryRun)

			composer, err := newComposer(cfg, log)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			var sender mail.Sender
			if dryRun {
				sender = mail.NewDryRunSender(cfg.SMTP.Host, cfg.SMTP.Port, log)
			} else {
				password, err := secret.Resolve(secret.Source{
					Env:     cfg.SMTP.PasswordEnv,
					File:    cfg.SMTP.PasswordFile,
					Keyring: cfg.SMTP.Keyring,
					Account: cfg.SMTP.Username,
				})
				if err != nil {
					return &ExitError{Code: 1, Err: err}
				}
				sender = mail.NewSender(cfg.SMTP, password, log)
			}

			// Structured output keeps stdout for the summary document.
			var console io.Writer = rt.Writer()
			if format != output.FormatText {
				console = rt.ErrWriter()
			}
			if dryRun {
				_, _ = fmt.Fprintln(console, "🧪 Dry run: no email will be sent.")
			}

			runner := campaign.NewRunner(contactLoader(cfg, log), composer, sender,
				campaign.WithSource(cfg.Source.Path),
				campaign.WithIO(rt.Input(), console),
				campaign.WithPacer(campaign.FixedDelay(cfg.Delay())),
				campaign.WithLimiter(campaign.NewLimiter(cfg.Pacing.MaxPerMinute)),
				campaign.WithAssumeYes(yes),
				campaign.WithNonInteractive(rt.nonInteractive),
				campaign.WithDryRun(dryRun),
				campaign.WithQuietSummary(format != output.FormatText),
				campaign.WithLogger(log),
			)
			summary, status, runErr := runner.Run(cmd.Context())

			if format != output.FormatText {
				switch status {
				case campaign.StatusCompleted, campaign.StatusCompletedWithFailures, campaign.StatusInterrupted:
					if err := output.WriteObject(rt.Writer(), format, summary); err != nil {
						return err
					}
				}
			}
			if metricsFile != "" {
				if err := metrics.WriteTextfile(metricsFile); err != nil {
					log.Warnw("Failed to write metrics textfile", "path", metricsFile, "error", err)
				}
			}
			if code := status.ExitCode(); code != 0 {
				// The load report has already shown a source error.
				if status == campaign.StatusConfigError {
					runErr = nil
				}
				return &ExitError{Code: code, Err: runErr}
			}
			return nil
		},
	}

	src.register(cmd.Flags())
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Send without asking for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compose every email but do not connect to the SMTP server")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Pause between two sends, overrides pacing.delay (default 5s)")
	cmd.Flags().StringVar(&metricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file after the run")

	return cmd
}
