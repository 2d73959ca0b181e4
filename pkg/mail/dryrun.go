package mail

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DryRunSender records messages instead of delivering them.
type DryRunSender struct {
	host string
	port int
	log  *zap.SugaredLogger

	mu   sync.Mutex
	sent []*Message
}

func NewDryRunSender(host string, port int, log *zap.SugaredLogger) *DryRunSender {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DryRunSender{host: host, port: port, log: log.Named("dry-run")}
}

func (d *DryRunSender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.log.Infow("Dry run, mail not sent", "to", msg.To, "subject", msg.Subject, "attachments", len(msg.Attachments))
	d.mu.Lock()
	d.sent = append(d.sent, msg)
	d.mu.Unlock()
	return nil
}

// Sent returns the messages recorded so far.
func (d *DryRunSender) Sent() []*Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Message(nil), d.sent...)
}

func (d *DryRunSender) GetHost() string {
	return d.host
}

func (d *DryRunSender) GetPort() int {
	return d.port
}
