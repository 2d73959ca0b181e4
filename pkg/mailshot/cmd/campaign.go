package cmd

import (
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/telekom/mailshot/pkg/contacts"
	"github.com/telekom/mailshot/pkg/mail"
	"github.com/telekom/mailshot/pkg/mailshot/config"
)

// sourceFlags override the contact source and attachment of the campaign
// file for a single invocation.
type sourceFlags struct {
	contacts    string
	sheet       string
	emailColumn string
	nameColumn  string
	attachment  string
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.contacts, "contacts", "", "Contact source (.xlsx or .csv), overrides source.path")
	fs.StringVar(&f.sheet, "sheet", "", "Worksheet to read, overrides source.sheet")
	fs.StringVar(&f.emailColumn, "email-column", "", "Header of the email column, overrides source.email-column")
	fs.StringVar(&f.nameColumn, "name-column", "", "Header of the name column, overrides source.name-column")
	fs.StringVar(&f.attachment, "attachment", "", "File to attach, overrides message.attachment")
}

// apply returns a copy of cfg with the flag overrides applied.
func (f *sourceFlags) apply(cfg config.Config) config.Config {
	if f.contacts != "" {
		cfg.Source.Path = f.contacts
	}
	if f.sheet != "" {
		cfg.Source.Sheet = f.sheet
	}
	if f.emailColumn != "" {
		cfg.Source.EmailColumn = f.emailColumn
	}
	if f.nameColumn != "" {
		cfg.Source.NameColumn = f.nameColumn
	}
	if f.attachment != "" {
		cfg.Message.Attachment = f.attachment
	}
	return cfg
}

func contactLoader(cfg config.Config, log *zap.SugaredLogger) func() contacts.Result {
	return func() contacts.Result {
		return contacts.Load(cfg.Source.Path, contacts.Options{
			Sheet:       cfg.Source.Sheet,
			EmailColumn: cfg.Source.EmailColumn,
			NameColumn:  cfg.Source.NameColumn,
			DefaultName: cfg.Source.DefaultName,
			Logger:      log,
		})
	}
}

func newComposer(cfg config.Config, log *zap.SugaredLogger) (*mail.Composer, error) {
	text, err := cfg.TemplateText()
	if err != nil {
		return nil, err
	}
	tmpl, err := mail.ParseTemplate(text)
	if err != nil {
		return nil, err
	}
	return mail.NewComposer(mail.ComposerConfig{
		From:                  mail.Address{Email: cfg.Sender.Address, Name: cfg.SenderDisplayName()},
		Subject:               cfg.Message.Subject,
		Template:              tmpl,
		AttachmentPath:        cfg.Message.Attachment,
		AttachmentContentType: cfg.Message.AttachmentContentType,
	}, log), nil
}
