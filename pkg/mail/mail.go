package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/telekom/mailshot/pkg/mailshot/config"
	"github.com/telekom/mailshot/pkg/metrics"
)

type Sender interface {
	// Send delivers msg in its own SMTP session. It returns nil only once the
	// relay has accepted the message for delivery.
	Send(ctx context.Context, msg *Message) error
	GetHost() string
	GetPort() int
}

type dialAndSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type sender struct {
	dialer  dialAndSender
	host    string
	port    int
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewSender returns an SMTP sender for cfg. With EncryptionSSL the session is
// TLS from the first byte; with EncryptionStartTLS the connection is upgraded
// when the relay offers STARTTLS.
func NewSender(cfg config.SMTP, password string, log *zap.SugaredLogger) Sender {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("mail")
	log.Debugw("Initializing mail sender", "host", cfg.Host, "port", cfg.Port, "encryption", cfg.Encryption, "user", cfg.Username)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, password)
	d.SSL = cfg.Encryption == config.EncryptionSSL
	d.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	if cfg.InsecureSkipVerify {
		log.Warnw("TLS certificate verification is disabled for the mail relay", "host", cfg.Host)
		d.TLSConfig.InsecureSkipVerify = true
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &sender{dialer: d, host: cfg.Host, port: cfg.Port, timeout: timeout, log: log}
}

func (s *sender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Debugw("Sending mail", "to", msg.To, "subject", msg.Subject, "attachments", len(msg.Attachments))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(msg.ToGomail())
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		// The session goroutine is abandoned; gomail offers no way to
		// interrupt it and it ends with the underlying connection.
		err = ctx.Err()
		if err == context.DeadlineExceeded {
			err = fmt.Errorf("%w after %s", ErrSendTimeout, s.timeout)
		}
	}
	metrics.MailSendDuration.WithLabelValues(s.host).Observe(time.Since(start).Seconds())

	if err != nil {
		reason := Classify(err)
		s.log.Warnw("Failed to send mail", "to", msg.To, "reason", reason, "error", err)
		metrics.MailSendFailure.WithLabelValues(s.host, string(reason)).Inc()
		return err
	}
	s.log.Infow("Mail sent", "to", msg.To)
	metrics.MailSendSuccess.WithLabelValues(s.host).Inc()
	return nil
}

func (s *sender) GetHost() string {
	return s.host
}

func (s *sender) GetPort() int {
	return s.port
}
