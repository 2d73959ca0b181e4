package mail

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/mailshot/pkg/contacts"
	"github.com/telekom/mailshot/pkg/metrics"
	"github.com/telekom/mailshot/pkg/system"
)

func newTestComposer(t *testing.T, attachment string) *Composer {
	t.Helper()
	return NewComposer(ComposerConfig{
		From:           Address{Email: "jane@example.com", Name: "Jane Sender"},
		Subject:        "Application",
		AttachmentPath: attachment,
	}, system.NewTestLogger(t))
}

func TestComposer_Compose(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "Resume.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("%PDF-1.4 test"), 0o600))

	c := newTestComposer(t, resume)
	msg, notices, err := c.Compose(contacts.Contact{Email: "alice@example.com", Name: "Alice", Row: 2})

	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "Application", msg.Subject)
	assert.Equal(t, Address{Email: "jane@example.com", Name: "Jane Sender"}, msg.From)
	assert.Contains(t, msg.Body, "Dear Alice,")
	assert.Contains(t, msg.Body, "Jane Sender")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Resume.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-1.4 test"), msg.Attachments[0].Data)
}

func TestComposer_ComposeMissingAttachment(t *testing.T) {
	c := newTestComposer(t, filepath.Join(t.TempDir(), "missing.pdf"))

	before := testutil.ToFloat64(metrics.MailAttachmentMissing)
	msg, notices, err := c.Compose(contacts.Contact{Email: "bob@example.com", Name: "Bob"})

	require.NoError(t, err)
	assert.Empty(t, msg.Attachments)
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeAttachmentMissing, notices[0].Kind)
	assert.Contains(t, notices[0].Message, "not found")
	assert.True(t, errors.Is(notices[0].Err, os.ErrNotExist))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.MailAttachmentMissing))
}

func TestComposer_ComposeUnreadableAttachment(t *testing.T) {
	c := newTestComposer(t, "resume.pdf")
	c.readFile = func(string) ([]byte, error) { return nil, errors.New("permission denied") }

	msg, notices, err := c.Compose(contacts.Contact{Email: "bob@example.com", Name: "Bob"})

	require.NoError(t, err)
	assert.Empty(t, msg.Attachments)
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Message, "could not be read")
}

func TestComposer_ComposeWithoutAttachment(t *testing.T) {
	c := newTestComposer(t, "")

	msg, notices, err := c.Compose(contacts.Contact{Email: "bob@example.com", Name: "Bob"})

	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Empty(t, msg.Attachments)
}

func TestComposer_ComposeTemplateError(t *testing.T) {
	tmpl, err := parse("broken", "{{ fail \"boom\" }}")
	require.NoError(t, err)
	c := NewComposer(ComposerConfig{Template: tmpl}, nil)

	_, _, err = c.Compose(contacts.Contact{Email: "bob@example.com", Name: "Bob"})
	assert.Error(t, err)
}

func TestMessage_WriteTo(t *testing.T) {
	msg := &Message{
		From:    Address{Email: "jane@example.com", Name: "Jane"},
		To:      "alice@example.com",
		Subject: "Application",
		Body:    "Dear Alice,\n",
		Attachments: []Attachment{
			{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("data")},
		},
	}

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "To: alice@example.com")
	assert.Contains(t, out, "Subject: Application")
	assert.Contains(t, out, "Content-Type: text/plain")
	assert.Contains(t, out, "Content-Type: application/pdf; name=cv.pdf")
	assert.Contains(t, out, "Dear Alice,")
}
