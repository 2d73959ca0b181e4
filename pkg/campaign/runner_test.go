package campaign

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/mailshot/pkg/contacts"
	"github.com/telekom/mailshot/pkg/mail"
	"github.com/telekom/mailshot/pkg/system"
)

// fakeSender records every message and fails for the addresses in failFor.
// onSend, if set, runs before the result is decided.
type fakeSender struct {
	mu      sync.Mutex
	sent    []*mail.Message
	failFor map[string]error
	onSend  func(to string)
}

func (f *fakeSender) Send(ctx context.Context, msg *mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if f.onSend != nil {
		f.onSend(msg.To)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := f.failFor[msg.To]; ok {
		return err
	}
	return nil
}

func (f *fakeSender) GetHost() string { return "smtp.test" }
func (f *fakeSender) GetPort() int    { return 465 }

func (f *fakeSender) Recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

// countingPacer counts waits and runs onWait, if set, before returning.
type countingPacer struct {
	waits  int
	onWait func()
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	if p.onWait != nil {
		p.onWait()
	}
	return ctx.Err()
}

func (p *countingPacer) Interval() time.Duration { return 5 * time.Second }

type failingComposer struct {
	inner   Composer
	failFor string
}

func (f failingComposer) Compose(c contacts.Contact) (*mail.Message, []mail.Notice, error) {
	if c.Email == f.failFor {
		return nil, nil, errors.New("template: body: executing failed")
	}
	return f.inner.Compose(c)
}

func loaded(list ...contacts.Contact) Loader {
	return func() contacts.Result {
		return contacts.Result{Status: contacts.StatusLoaded, Contacts: list, Rows: len(list), Columns: []string{"Name", "Email"}}
	}
}

func contactList(n int) []contacts.Contact {
	list := make([]contacts.Contact, n)
	for i := range list {
		list[i] = contacts.Contact{Email: fmt.Sprintf("hr%d@example.com", i+1), Name: fmt.Sprintf("HR %d", i+1), Row: i + 2}
	}
	return list
}

func testComposer(t *testing.T) *mail.Composer {
	t.Helper()
	return mail.NewComposer(mail.ComposerConfig{
		From:    mail.Address{Email: "jane@example.com", Name: "Jane"},
		Subject: "Application",
	}, system.NewTestLogger(t))
}

type harness struct {
	sender *fakeSender
	pacer  *countingPacer
	out    *bytes.Buffer
}

func newHarness() *harness {
	return &harness{sender: &fakeSender{}, pacer: &countingPacer{}, out: &bytes.Buffer{}}
}

func (h *harness) runner(t *testing.T, load Loader, input string, opts ...Option) *Runner {
	t.Helper()
	base := []Option{
		WithIO(strings.NewReader(input), h.out),
		WithPacer(h.pacer),
		WithSource("contacts.xlsx"),
		WithLogger(system.NewTestLogger(t)),
	}
	return NewRunner(load, testComposer(t), h.sender, append(base, opts...)...)
}

func TestRunner_NothingToSend(t *testing.T) {
	h := newHarness()
	empty := func() contacts.Result { return contacts.Result{Status: contacts.StatusEmpty, Rows: 2} }

	summary, status, err := h.runner(t, empty, "yes\n").Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusNothingToSend, status)
	assert.Equal(t, 3, status.ExitCode())
	assert.Zero(t, summary.Total)
	assert.Empty(t, h.sender.Recipients())
	assert.NotContains(t, h.out.String(), "Do you want to send")
	assert.Contains(t, h.out.String(), "No valid email addresses found")
}

func TestRunner_ConfigError(t *testing.T) {
	h := newHarness()
	loadErr := fmt.Errorf("%w: %q", contacts.ErrColumnNotFound, "Email")
	broken := func() contacts.Result {
		return contacts.Result{Status: contacts.StatusConfigError, Err: loadErr, Columns: []string{"Mail"}}
	}

	_, status, err := h.runner(t, broken, "yes\n").Run(context.Background())

	assert.ErrorIs(t, err, contacts.ErrColumnNotFound)
	assert.Equal(t, StatusConfigError, status)
	assert.Equal(t, 1, status.ExitCode())
	assert.Empty(t, h.sender.Recipients())
	assert.NotContains(t, h.out.String(), "Do you want to send")
}

func TestRunner_Confirmation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		proceed bool
	}{
		{"yes", "yes\n", true},
		{"short yes", "y\n", true},
		{"uppercase with spaces", "  YES  \n", true},
		{"yes without newline", "Y", true},
		{"no", "no\n", false},
		{"anything else", "sure\n", false},
		{"empty line", "\n", false},
		{"end of input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			summary, status, err := h.runner(t, loaded(contactList(2)...), tt.input).Run(context.Background())

			require.NoError(t, err)
			assert.Contains(t, h.out.String(), "Do you want to send emails to 2 recipients? (yes/no): ")
			if tt.proceed {
				assert.Equal(t, StatusCompleted, status)
				assert.Len(t, h.sender.Recipients(), 2)
				return
			}
			assert.Equal(t, StatusAborted, status)
			assert.Equal(t, 4, status.ExitCode())
			assert.Zero(t, summary.Total)
			assert.Empty(t, h.sender.Recipients())
			assert.Zero(t, h.pacer.waits)
			assert.Contains(t, h.out.String(), "Email campaign cancelled.")
		})
	}
}

func TestRunner_AssumeYesSkipsPrompt(t *testing.T) {
	h := newHarness()
	_, status, err := h.runner(t, loaded(contactList(1)...), "", WithAssumeYes(true), WithNonInteractive(true)).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	assert.NotContains(t, h.out.String(), "Do you want to send")
	assert.Equal(t, []string{"hr1@example.com"}, h.sender.Recipients())
}

func TestRunner_NonInteractiveWithoutYesAborts(t *testing.T) {
	h := newHarness()
	_, status, err := h.runner(t, loaded(contactList(3)...), "yes\n", WithNonInteractive(true)).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusAborted, status)
	assert.Empty(t, h.sender.Recipients())
	assert.Contains(t, h.out.String(), "--yes")
}

func TestRunner_TwoSuccessesWaitOnce(t *testing.T) {
	h := newHarness()
	summary, status, err := h.runner(t, loaded(contactList(2)...), "yes\n").Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, 0, status.ExitCode())
	assert.Equal(t, 1, h.pacer.waits, "exactly one pause between two sends and none after the last")
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, []string{"hr1@example.com", "hr2@example.com"}, h.sender.Recipients())

	out := h.out.String()
	assert.Contains(t, out, "📤 Sending email 1/2 to HR 1 (hr1@example.com)")
	assert.Contains(t, out, "📤 Sending email 2/2 to HR 2 (hr2@example.com)")
	assert.Equal(t, 1, strings.Count(out, "Waiting 5s before next email..."))
	assert.Contains(t, out, "✅ Successful: 2")
	assert.Contains(t, out, "🎉 Email campaign completed!")
}

func TestRunner_FailureDoesNotStopLoop(t *testing.T) {
	h := newHarness()
	h.sender.failFor = map[string]error{
		"hr1@example.com": errors.New("gomail: could not send email 1: 535 5.7.8 Username and Password not accepted"),
	}

	summary, status, err := h.runner(t, loaded(contactList(2)...), "y\n").Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusCompletedWithFailures, status)
	assert.Equal(t, 2, status.ExitCode())
	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Total)
	require.Len(t, summary.Outcomes, 2)
	assert.False(t, summary.Outcomes[0].Success)
	assert.Equal(t, mail.ReasonAuth, summary.Outcomes[0].Reason)
	assert.Contains(t, summary.Outcomes[0].Error, "535")
	assert.True(t, summary.Outcomes[1].Success)
	assert.Equal(t, map[mail.FailureReason]int{mail.ReasonAuth: 1}, summary.FailureReasons())
	assert.Contains(t, h.out.String(), "❌ Failed to send email to hr1@example.com")
	assert.Contains(t, h.out.String(), "   auth: 1")
}

func TestRunner_OutcomesMatchContacts(t *testing.T) {
	h := newHarness()
	h.sender.failFor = map[string]error{
		"hr2@example.com": mail.ErrSendTimeout,
		"hr5@example.com": errors.New("dial tcp: connection refused"),
	}
	list := contactList(7)

	summary, _, err := h.runner(t, loaded(list...), "yes\n").Run(context.Background())

	require.NoError(t, err)
	require.Len(t, summary.Outcomes, len(list))
	for i, o := range summary.Outcomes {
		assert.Equal(t, list[i], o.Contact)
	}
	assert.Equal(t, summary.Total, summary.Successful+summary.Failed)
	assert.Equal(t, 6, h.pacer.waits)
	assert.Equal(t, mail.ReasonTimeout, summary.Outcomes[1].Reason)
	assert.Equal(t, mail.ReasonNetwork, summary.Outcomes[4].Reason)
	assert.Contains(t, h.out.String(), "... and 2 more")
}

func TestRunner_ComposeErrorIsRecorded(t *testing.T) {
	h := newHarness()
	r := h.runner(t, loaded(contactList(2)...), "yes\n")
	r.composer = failingComposer{inner: testComposer(t), failFor: "hr1@example.com"}

	summary, status, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusCompletedWithFailures, status)
	assert.Equal(t, mail.ReasonCompose, summary.Outcomes[0].Reason)
	assert.Equal(t, []string{"hr2@example.com"}, h.sender.Recipients())
}

func TestRunner_MissingAttachmentStillSends(t *testing.T) {
	h := newHarness()
	r := h.runner(t, loaded(contactList(1)...), "yes\n")
	r.composer = mail.NewComposer(mail.ComposerConfig{
		From:           mail.Address{Email: "jane@example.com", Name: "Jane"},
		Subject:        "Application",
		AttachmentPath: t.TempDir() + "/resume.pdf",
	}, nil)

	summary, status, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	require.Len(t, summary.Outcomes, 1)
	assert.Len(t, summary.Outcomes[0].Notices, 1)
	assert.Contains(t, h.out.String(), "⚠️")
	require.Len(t, h.sender.sent, 1)
	assert.Empty(t, h.sender.sent[0].Attachments)
}

func TestRunner_InterruptedDuringPause(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.pacer.onWait = cancel

	summary, status, err := h.runner(t, loaded(contactList(3)...), "yes\n").Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusInterrupted, status)
	assert.Equal(t, 130, status.ExitCode())
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, []string{"hr1@example.com"}, h.sender.Recipients())
	assert.Contains(t, h.out.String(), "interrupted")
}

func TestRunner_InterruptedDuringLastSend(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.sender.onSend = func(to string) {
		if to == "hr2@example.com" {
			cancel()
		}
	}

	summary, status, err := h.runner(t, loaded(contactList(2)...), "yes\n").Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusInterrupted, status)
	assert.Equal(t, 130, status.ExitCode())
	assert.Equal(t, StatusInterrupted, summary.Status)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, []string{"hr1@example.com", "hr2@example.com"}, h.sender.Recipients())
	assert.Contains(t, h.out.String(), "interrupted")
}

func TestRunner_QuietSummary(t *testing.T) {
	h := newHarness()
	summary, _, err := h.runner(t, loaded(contactList(1)...), "yes\n", WithQuietSummary(true), WithDryRun(true)).Run(context.Background())

	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, StatusCompleted, summary.Status)
	assert.NotEmpty(t, summary.RunID)
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))
	assert.NotContains(t, h.out.String(), "EMAIL CAMPAIGN SUMMARY")
}

func TestRunner_CanceledBeforeFirstSend(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, status, err := h.runner(t, loaded(contactList(2)...), "yes\n").Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusInterrupted, status)
	assert.Zero(t, summary.Total)
	assert.Empty(t, h.sender.Recipients())
}

func TestRunner_LimiterSpacesSends(t *testing.T) {
	h := newHarness()

	start := time.Now()
	summary, status, err := h.runner(t, loaded(contactList(2)...), "yes\n", WithLimiter(NewLimiter(600))).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, 2, summary.Successful)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond, "600 per minute admits one send every 100ms")
}
