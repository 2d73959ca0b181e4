package mail

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/textproto"
	"regexp"
	"strconv"
	"strings"
)

// ErrSendTimeout is returned when an SMTP session does not finish within the
// configured timeout.
var ErrSendTimeout = errors.New("smtp session timed out")

// FailureReason is the coarse cause of a failed delivery.
type FailureReason string

const (
	ReasonNone      FailureReason = ""
	ReasonTimeout   FailureReason = "timeout"
	ReasonAuth      FailureReason = "auth"
	ReasonTLS       FailureReason = "tls"
	ReasonNetwork   FailureReason = "network"
	ReasonRejected  FailureReason = "rejected"
	ReasonTemporary FailureReason = "temporary"
	ReasonCanceled  FailureReason = "canceled"
	ReasonCompose   FailureReason = "compose"
	ReasonUnknown   FailureReason = "unknown"
)

// gomail flattens SMTP errors into strings, so the reply code is recovered
// from the text when the typed error is gone.
var smtpReplyCode = regexp.MustCompile(`\b([45][0-9]{2})[ -]`)

// Classify maps a delivery error to a FailureReason.
func Classify(err error) FailureReason {
	if err == nil {
		return ReasonNone
	}
	if errors.Is(err, ErrSendTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return reasonForCode(tpErr.Code)
	}

	var certErr *tls.CertificateVerificationError
	var authorityErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) || errors.As(err, &recordErr) {
		return ReasonTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ReasonTimeout
		}
		return ReasonNetwork
	}

	msg := err.Error()
	if m := smtpReplyCode.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		return reasonForCode(code)
	}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "unencrypted connection"),
		strings.Contains(lower, "certificate"),
		strings.Contains(lower, "tls:"):
		return ReasonTLS
	case strings.Contains(lower, "auth"):
		return ReasonAuth
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "eof"):
		return ReasonNetwork
	}
	return ReasonUnknown
}

func reasonForCode(code int) FailureReason {
	switch {
	case code == 454 || code == 530 || code == 534 || code == 535 || code == 538:
		return ReasonAuth
	case code >= 500 && code < 600:
		return ReasonRejected
	case code >= 400 && code < 500:
		return ReasonTemporary
	}
	return ReasonUnknown
}
