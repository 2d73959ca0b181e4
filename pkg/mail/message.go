package mail

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/telekom/mailshot/pkg/contacts"
	"github.com/telekom/mailshot/pkg/metrics"
)

// Address is a mailbox with an optional display name.
type Address struct {
	Email string
	Name  string
}

// Attachment is a file embedded into a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a ready-to-send campaign email.
type Message struct {
	From        Address
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// NoticeKind identifies a non-fatal condition met while composing.
type NoticeKind string

const NoticeAttachmentMissing NoticeKind = "attachment-missing"

// Notice reports a problem that did not prevent the message from being
// composed.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// ComposerConfig holds the per-campaign parts of every message.
type ComposerConfig struct {
	From                  Address
	Subject               string
	Template              *Template
	AttachmentPath        string
	AttachmentContentType string
}

// Composer builds one Message per contact.
type Composer struct {
	cfg      ComposerConfig
	readFile func(string) ([]byte, error)
	log      *zap.SugaredLogger
}

// NewComposer returns a Composer. A nil template selects the built-in
// default.
func NewComposer(cfg ComposerConfig, log *zap.SugaredLogger) *Composer {
	if cfg.Template == nil {
		cfg.Template = DefaultTemplate()
	}
	if cfg.AttachmentContentType == "" {
		cfg.AttachmentContentType = "application/pdf"
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Composer{cfg: cfg, readFile: os.ReadFile, log: log.Named("composer")}
}

// Compose renders the body for recipient and attaches the campaign file. An
// unreadable attachment yields a message without attachment and a Notice;
// only a template failure is an error.
func (c *Composer) Compose(recipient contacts.Contact) (*Message, []Notice, error) {
	body, err := c.cfg.Template.Render(TemplateData{
		RecipientName:  recipient.Name,
		RecipientEmail: recipient.Email,
		SenderName:     c.cfg.From.Name,
		SenderEmail:    c.cfg.From.Email,
	})
	if err != nil {
		return nil, nil, err
	}

	msg := &Message{
		From:    c.cfg.From,
		To:      recipient.Email,
		Subject: c.cfg.Subject,
		Body:    body,
	}

	var notices []Notice
	if path := c.cfg.AttachmentPath; path != "" {
		data, err := c.readFile(path)
		if err != nil {
			text := fmt.Sprintf("Attachment %q could not be read; the email will be sent without it", path)
			if errors.Is(err, os.ErrNotExist) {
				text = fmt.Sprintf("Attachment %q not found; the email will be sent without it", path)
			}
			c.log.Warnw("Composing without attachment", "path", path, "error", err)
			metrics.MailAttachmentMissing.Inc()
			notices = append(notices, Notice{Kind: NoticeAttachmentMissing, Message: text, Err: err})
		} else {
			msg.Attachments = append(msg.Attachments, Attachment{
				Filename:    filepath.Base(path),
				ContentType: c.cfg.AttachmentContentType,
				Data:        data,
			})
		}
	}
	return msg, notices, nil
}

// ToGomail converts the message into its gomail representation with a plain
// text body.
func (m *Message) ToGomail() *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.From.Email, m.From.Name)
	gm.SetHeader("To", m.To)
	gm.SetHeader("Subject", m.Subject)
	gm.SetBody("text/plain", m.Body)
	for _, a := range m.Attachments {
		data := a.Data
		gm.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {mime.FormatMediaType(a.ContentType, map[string]string{"name": a.Filename})},
			}),
		)
	}
	return gm
}

// WriteTo writes the message in RFC 5322 format.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	return m.ToGomail().WriteTo(w)
}
