package campaign

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/telekom/mailshot/pkg/contacts"
	"github.com/telekom/mailshot/pkg/mail"
	"github.com/telekom/mailshot/pkg/mailshot/output"
	"github.com/telekom/mailshot/pkg/metrics"
	"github.com/telekom/mailshot/pkg/system"
)

// ErrConfirmationRequired is returned when a campaign needs confirmation but
// the runner may not prompt for it.
var ErrConfirmationRequired = errors.New("confirmation required: rerun with --yes to send without prompting")

// Loader produces the contacts of a campaign. It is called exactly once per
// run.
type Loader func() contacts.Result

// Composer builds the message for one contact.
type Composer interface {
	Compose(recipient contacts.Contact) (*mail.Message, []mail.Notice, error)
}

// Runner executes a campaign: load, preview, confirm, dispatch, summarize.
type Runner struct {
	load     Loader
	composer Composer
	sender   mail.Sender

	source         string
	pacer          Pacer
	limiter        *rate.Limiter
	in             io.Reader
	out            io.Writer
	assumeYes      bool
	nonInteractive bool
	dryRun         bool
	quiet          bool
	previewLimit   int
	log            *zap.SugaredLogger
	now            func() time.Time
}

type Option func(*Runner)

// WithSource names the contact source in console output.
func WithSource(path string) Option {
	return func(r *Runner) { r.source = path }
}

func WithPacer(p Pacer) Option {
	return func(r *Runner) { r.pacer = p }
}

// WithLimiter adds a token bucket consulted before every send.
func WithLimiter(l *rate.Limiter) Option {
	return func(r *Runner) { r.limiter = l }
}

// WithIO sets where the confirmation answer is read from and where console
// output goes.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		r.in = in
		r.out = out
	}
}

// WithAssumeYes skips the confirmation prompt.
func WithAssumeYes(yes bool) Option {
	return func(r *Runner) { r.assumeYes = yes }
}

// WithNonInteractive makes the runner abort instead of prompting.
func WithNonInteractive(nonInteractive bool) Option {
	return func(r *Runner) { r.nonInteractive = nonInteractive }
}

// WithDryRun marks the summary as a dry run.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) { r.dryRun = dryRun }
}

// WithQuietSummary suppresses the text summary banner, for callers that render
// the Summary themselves.
func WithQuietSummary(quiet bool) Option {
	return func(r *Runner) { r.quiet = quiet }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Runner) { r.log = log }
}

// NewRunner returns a Runner with a FixedDelay pacer of five seconds reading
// from stdin and writing to stdout unless options say otherwise.
func NewRunner(load Loader, composer Composer, sender mail.Sender, opts ...Option) *Runner {
	r := &Runner{
		load:         load,
		composer:     composer,
		sender:       sender,
		pacer:        FixedDelay(5 * time.Second),
		in:           os.Stdin,
		out:          os.Stdout,
		previewLimit: output.PreviewLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = zap.NewNop().Sugar()
	}
	if r.pacer == nil {
		r.pacer = FixedDelay(0)
	}
	return r
}

// Run executes the campaign. The returned error is non-nil for a ConfigError
// (the load error) and when the run was interrupted (the context error); a
// declined confirmation is not an error.
func (r *Runner) Run(ctx context.Context) (Summary, Status, error) {
	summary := Summary{
		RunID:     uuid.NewString(),
		DryRun:    r.dryRun,
		StartedAt: r.now().UTC(),
		Outcomes:  []Outcome{},
	}
	log := r.log.With(system.CampaignFields(summary.RunID, r.source)...)

	status, err := r.run(ctx, log, &summary)
	summary.Status = status
	summary.FinishedAt = r.now().UTC()
	switch status {
	case StatusCompleted, StatusCompletedWithFailures, StatusInterrupted:
		if !r.quiet {
			summary.WriteText(r.out)
		}
	}

	metrics.CampaignRuns.WithLabelValues(status.String()).Inc()
	metrics.CampaignLastRunTimestamp.Set(float64(summary.FinishedAt.Unix()))
	log.Infow("Campaign finished", "status", status.String(), "successful", summary.Successful, "failed", summary.Failed, "total", summary.Total)
	return summary, status, err
}

func (r *Runner) run(ctx context.Context, log *zap.SugaredLogger, summary *Summary) (Status, error) {
	r.printf("🚀 Starting Email Campaign...\n%s\n", output.Rule)

	res := r.load()
	output.WriteLoadReport(r.out, r.source, res)
	metrics.CampaignContactsLoaded.Set(float64(len(res.Contacts)))
	switch res.Status {
	case contacts.StatusConfigError:
		return StatusConfigError, res.Err
	case contacts.StatusEmpty:
		r.printf("❌ No valid email addresses found. Please check your contact source.\n")
		return StatusNothingToSend, nil
	}
	list := res.Contacts

	r.printf("\n📋 Contacts to email:\n")
	output.WriteContactPreview(r.out, list, r.previewLimit)

	ok, err := r.confirm(len(list))
	if err != nil {
		r.printf("❌ %v\n", err)
		return StatusAborted, nil
	}
	if !ok {
		r.printf("❌ Email campaign cancelled.\n")
		return StatusAborted, nil
	}

	r.printf("\n📧 Sending emails...\n")
	for i, c := range list {
		if err := ctx.Err(); err != nil {
			return r.interrupted(log, summary, err)
		}
		if i > 0 {
			if d := r.pacer.Interval(); d > 0 {
				r.printf("⏳ Waiting %s before next email...\n", d)
			}
			if err := r.pacer.Wait(ctx); err != nil {
				return r.interrupted(log, summary, err)
			}
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return r.interrupted(log, summary, err)
			}
		}

		r.printf("\n📤 Sending email %d/%d to %s (%s)\n", i+1, len(list), c.Name, c.Email)
		o := r.attempt(ctx, log, c)
		summary.record(o)
		if o.Success {
			r.printf("✅ Email sent successfully to %s (%s)\n", c.Name, c.Email)
		} else {
			r.printf("❌ Failed to send email to %s: %s\n", c.Email, o.Error)
		}
	}

	// A cancel during the last send has no next iteration to notice it.
	if err := ctx.Err(); err != nil {
		return r.interrupted(log, summary, err)
	}
	if summary.Failed > 0 {
		return StatusCompletedWithFailures, nil
	}
	return StatusCompleted, nil
}

func (r *Runner) attempt(ctx context.Context, log *zap.SugaredLogger, c contacts.Contact) Outcome {
	start := r.now()
	o := Outcome{Contact: c}

	msg, notices, err := r.composer.Compose(c)
	for _, n := range notices {
		r.printf("⚠️  %s\n", n.Message)
		o.Notices = append(o.Notices, n.Message)
	}
	if err != nil {
		o.Reason = mail.ReasonCompose
		o.Error = err.Error()
		o.Duration = r.now().Sub(start)
		log.Warnw("Failed to compose mail", "to", c.Email, "row", c.Row, "error", err)
		return o
	}

	if err := r.sender.Send(ctx, msg); err != nil {
		o.Reason = mail.Classify(err)
		o.Error = err.Error()
	} else {
		o.Success = true
	}
	o.Duration = r.now().Sub(start)
	return o
}

func (r *Runner) interrupted(log *zap.SugaredLogger, summary *Summary, err error) (Status, error) {
	log.Warnw("Campaign interrupted", "attempted", summary.Total, "error", err)
	return StatusInterrupted, err
}

// confirm asks once. Only "yes" or "y", in any case and ignoring surrounding
// whitespace, proceeds; end of input declines.
func (r *Runner) confirm(n int) (bool, error) {
	if r.assumeYes {
		return true, nil
	}
	if r.nonInteractive {
		return false, ErrConfirmationRequired
	}
	r.printf("\nDo you want to send emails to %d recipients? (yes/no): ", n)
	line, err := bufio.NewReader(r.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}
