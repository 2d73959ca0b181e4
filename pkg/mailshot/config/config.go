package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"

	EncryptionSSL      = "ssl"
	EncryptionStartTLS = "starttls"

	DefaultDelay                 = 5 * time.Second
	DefaultTimeout               = 60 * time.Second
	DefaultDisplayName           = "Sir/Madam"
	DefaultEmailColumn           = "Email"
	DefaultNameColumn            = "Name"
	DefaultAttachmentContentType = "application/pdf"
	DefaultPasswordEnv           = "MAILSHOT_SMTP_PASSWORD"
)

// Config is the immutable description of one campaign. It is loaded once at
// start-up and handed by value to every component.
type Config struct {
	Version string  `yaml:"version" json:"version"`
	Sender  Sender  `yaml:"sender" json:"sender"`
	SMTP    SMTP    `yaml:"smtp" json:"smtp"`
	Message Message `yaml:"message" json:"message"`
	Source  Source  `yaml:"source" json:"source"`
	Pacing  Pacing  `yaml:"pacing,omitempty" json:"pacing"`
}

type Sender struct {
	Address string `yaml:"address" json:"address"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
}

// SMTP describes the submission endpoint. The password itself is never part of
// the campaign file; it is looked up from PasswordEnv, PasswordFile or the OS
// keyring.
type SMTP struct {
	Host               string        `yaml:"host" json:"host"`
	Port               int           `yaml:"port,omitempty" json:"port,omitempty"`
	Encryption         string        `yaml:"encryption,omitempty" json:"encryption,omitempty"`
	Username           string        `yaml:"username,omitempty" json:"username,omitempty"`
	PasswordEnv        string        `yaml:"password-env,omitempty" json:"passwordEnv,omitempty"`
	PasswordFile       string        `yaml:"password-file,omitempty" json:"passwordFile,omitempty"`
	Keyring            bool          `yaml:"keyring,omitempty" json:"keyring,omitempty"`
	InsecureSkipVerify bool          `yaml:"insecure-skip-tls-verify,omitempty" json:"insecureSkipTLSVerify,omitempty"`
	Timeout            time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

type Message struct {
	Subject               string `yaml:"subject" json:"subject"`
	Template              string `yaml:"template,omitempty" json:"template,omitempty"`
	TemplateFile          string `yaml:"template-file,omitempty" json:"templateFile,omitempty"`
	Attachment            string `yaml:"attachment,omitempty" json:"attachment,omitempty"`
	AttachmentContentType string `yaml:"attachment-content-type,omitempty" json:"attachmentContentType,omitempty"`
}

type Source struct {
	Path        string `yaml:"path" json:"path"`
	Sheet       string `yaml:"sheet,omitempty" json:"sheet,omitempty"`
	EmailColumn string `yaml:"email-column,omitempty" json:"emailColumn,omitempty"`
	NameColumn  string `yaml:"name-column,omitempty" json:"nameColumn,omitempty"`
	DefaultName string `yaml:"default-name,omitempty" json:"defaultName,omitempty"`
}

// Pacing throttles the dispatch loop. Delay is slept between two sends;
// MaxPerMinute, when positive, additionally caps the send rate with a token
// bucket.
type Pacing struct {
	Delay        *time.Duration `yaml:"delay,omitempty" json:"delay,omitempty"`
	MaxPerMinute int            `yaml:"max-per-minute,omitempty" json:"maxPerMinute,omitempty"`
}

// DefaultConfig returns a campaign with every optional field populated. It is
// also the content written by `mailshot config init`.
func DefaultConfig() Config {
	delay := DefaultDelay
	return Config{
		Version: VersionV1,
		SMTP: SMTP{
			Host:        "smtp.gmail.com",
			Port:        465,
			Encryption:  EncryptionSSL,
			PasswordEnv: DefaultPasswordEnv,
			Timeout:     DefaultTimeout,
		},
		Message: Message{
			AttachmentContentType: DefaultAttachmentContentType,
		},
		Source: Source{
			EmailColumn: DefaultEmailColumn,
			NameColumn:  DefaultNameColumn,
			DefaultName: DefaultDisplayName,
		},
		Pacing: Pacing{Delay: &delay},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	cfg.resolvePaths(path)
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

// ApplyDefaults fills every unset optional field. Port and username are
// derived from the encryption mode and the sender address respectively.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = VersionV1
	}
	if c.SMTP.Encryption == "" {
		c.SMTP.Encryption = EncryptionSSL
		if c.SMTP.Port == 587 || c.SMTP.Port == 25 {
			c.SMTP.Encryption = EncryptionStartTLS
		}
	}
	c.SMTP.Encryption = strings.ToLower(c.SMTP.Encryption)
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 465
		if c.SMTP.Encryption == EncryptionStartTLS {
			c.SMTP.Port = 587
		}
	}
	if c.SMTP.Username == "" {
		c.SMTP.Username = c.Sender.Address
	}
	if c.SMTP.PasswordEnv == "" && c.SMTP.PasswordFile == "" && !c.SMTP.Keyring {
		c.SMTP.PasswordEnv = DefaultPasswordEnv
	}
	if c.SMTP.Timeout <= 0 {
		c.SMTP.Timeout = DefaultTimeout
	}
	if c.Message.AttachmentContentType == "" {
		c.Message.AttachmentContentType = DefaultAttachmentContentType
	}
	if c.Source.EmailColumn == "" {
		c.Source.EmailColumn = DefaultEmailColumn
	}
	if c.Source.DefaultName == "" {
		c.Source.DefaultName = DefaultDisplayName
	}
	if c.Pacing.Delay == nil {
		delay := DefaultDelay
		c.Pacing.Delay = &delay
	}
}

func (c *Config) resolvePaths(configPath string) {
	c.Source.Path = ResolveRelative(configPath, c.Source.Path)
	c.Message.Attachment = ResolveRelative(configPath, c.Message.Attachment)
	c.Message.TemplateFile = ResolveRelative(configPath, c.Message.TemplateFile)
	c.SMTP.PasswordFile = ResolveRelative(configPath, c.SMTP.PasswordFile)
}

// Delay returns the pause between two sends. An explicit zero disables pacing.
func (c *Config) Delay() time.Duration {
	if c.Pacing.Delay == nil {
		return DefaultDelay
	}
	return *c.Pacing.Delay
}

// SetDelay overrides the pacing delay.
func (c *Config) SetDelay(d time.Duration) {
	c.Pacing.Delay = &d
}

// SenderDisplayName is the name used in the From header and the template;
// it falls back to the sender address.
func (c *Config) SenderDisplayName() string {
	if c.Sender.Name != "" {
		return c.Sender.Name
	}
	return c.Sender.Address
}

// Validate reports every problem of the campaign at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Version != VersionV1 {
		errs = append(errs, fmt.Errorf("unsupported config version %q", c.Version))
	}
	if strings.TrimSpace(c.Sender.Address) == "" {
		errs = append(errs, errors.New("sender.address is required"))
	} else if _, err := mail.ParseAddress(c.Sender.Address); err != nil {
		errs = append(errs, fmt.Errorf("sender.address %q is invalid: %w", c.Sender.Address, err))
	}
	if strings.TrimSpace(c.SMTP.Host) == "" {
		errs = append(errs, errors.New("smtp.host is required"))
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("smtp.port %d out of range", c.SMTP.Port))
	}
	switch c.SMTP.Encryption {
	case EncryptionSSL, EncryptionStartTLS:
	default:
		errs = append(errs, fmt.Errorf("smtp.encryption must be %q or %q, got %q", EncryptionSSL, EncryptionStartTLS, c.SMTP.Encryption))
	}
	if strings.TrimSpace(c.Message.Subject) == "" {
		errs = append(errs, errors.New("message.subject is required"))
	}
	if c.Message.Template != "" && c.Message.TemplateFile != "" {
		errs = append(errs, errors.New("message.template and message.template-file are mutually exclusive"))
	}
	if strings.TrimSpace(c.Source.Path) == "" {
		errs = append(errs, errors.New("source.path is required"))
	}
	if c.Pacing.Delay != nil && *c.Pacing.Delay < 0 {
		errs = append(errs, errors.New("pacing.delay must not be negative"))
	}
	if c.Pacing.MaxPerMinute < 0 {
		errs = append(errs, errors.New("pacing.max-per-minute must not be negative"))
	}
	return errors.Join(errs...)
}

// TemplateText returns the body template: the inline template, the content of
// template-file, or an empty string when the built-in default applies.
func (c *Config) TemplateText() (string, error) {
	if c.Message.TemplateFile == "" {
		return c.Message.Template, nil
	}
	content, err := os.ReadFile(c.Message.TemplateFile)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(content), nil
}
