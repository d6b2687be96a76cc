package diagnostics

import (
	"crypto/tls"
	"fmt"

	mail "gopkg.in/gomail.v2"
)

// FaultReporter is the ambient, optional §6 Port: Fault reporter.
type FaultReporter interface {
	SendFaultReport(reason string, snapshot HealthSnapshot, versions [3][16]byte) error
}

// EmailFaultReporter sends a one-shot report over SMTP when a boot fault
// latches, grounded on the reference pack's gomail.v2 usage
// (cmd/eda-ctl/main.go's alertMail).
type EmailFaultReporter struct {
	dialer *mail.Dialer
	from   string
	to     []string
}

// NewEmailFaultReporter builds a reporter dialing host:port with the given
// credentials.
func NewEmailFaultReporter(host string, port int, username, password, from string, to []string) *EmailFaultReporter {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	return &EmailFaultReporter{dialer: dialer, from: from, to: to}
}

// SendFaultReport emails the latched-fault reason, the last known
// HealthSnapshot, and the gathered software-version table (§4.9).
func (r *EmailFaultReporter) SendFaultReport(reason string, snap HealthSnapshot, versions [3][16]byte) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", r.from)
	msg.SetHeader("To", r.to...)
	msg.SetHeader("Subject", fmt.Sprintf("[afc004-iop] boot fault: %s", reason))
	msg.SetBody("text/plain", fmt.Sprintf(
		"device: %s\nreason: %s\ngroups: %+v\nversions: %x",
		snap.DeviceID, reason, snap.Groups, versions,
	))
	if err := r.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("diagnostics: send fault report: %w", err)
	}
	return nil
}

// NoopFaultReporter discards every report; used when no SMTP endpoint is
// configured.
type NoopFaultReporter struct{}

func (NoopFaultReporter) SendFaultReport(string, HealthSnapshot, [3][16]byte) error { return nil }
