package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every mailshot collector. A dedicated registry keeps the Go
// runtime collectors out of the textfile written after a run.
var Registry = prometheus.NewRegistry()

var (
	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailshot_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailshot_mail_send_failure_total",
		Help: "Total number of failed mail sends grouped by failure reason",
	}, []string{"host", "reason"})
	MailSendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mailshot_mail_send_duration_seconds",
		Help:    "Duration of a single SMTP session (dial, auth, send, quit)",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"host"})
	MailAttachmentMissing = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mailshot_mail_attachment_missing_total",
		Help: "Total number of messages composed without their configured attachment",
	})

	// Campaign metrics
	CampaignContactsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mailshot_campaign_contacts_loaded",
		Help: "Number of contacts loaded by the last campaign run",
	})
	CampaignRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailshot_campaign_runs_total",
		Help: "Total number of campaign runs grouped by final status",
	}, []string{"status"})
	CampaignLastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mailshot_campaign_last_run_timestamp_seconds",
		Help: "Unix time at which the last campaign run finished",
	})
)

func init() {
	Registry.MustRegister(MailSendSuccess)
	Registry.MustRegister(MailSendFailure)
	Registry.MustRegister(MailSendDuration)
	Registry.MustRegister(MailAttachmentMissing)
	Registry.MustRegister(CampaignContactsLoaded)
	Registry.MustRegister(CampaignRuns)
	Registry.MustRegister(CampaignLastRunTimestamp)
}

// WriteTextfile writes the current state of Registry to path in the Prometheus
// text exposition format. The file is written atomically so a node-exporter
// textfile collector never reads a partial file.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
