package notify

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"medledger/core/scan"
)

// NotificationType represents who a notification is meant for.
type NotificationType string

const (
	NotifyAdmin    NotificationType = "admin"
	NotifyOperator NotificationType = "operator"
)

// Notification is one alert about the ledger's integrity or durability.
type Notification struct {
	Type       NotificationType
	Recipient  string
	Subject    string
	BlockIndex int // -1 when the alert is not about a specific block
	Reason     string
}

// Notifier delivers alerts. Delivery is best effort and never fails the caller.
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier writes alerts to the process log at warn level.
type LogNotifier struct {
	log       logrus.FieldLogger
	recipient string
}

func NewLogNotifier(logger logrus.FieldLogger, recipient string) *LogNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogNotifier{log: logger.WithField("module", "notify"), recipient: recipient}
}

func (n *LogNotifier) Notify(nt Notification) {
	if nt.Recipient == "" {
		nt.Recipient = n.recipient
	}
	n.log.WithFields(logrus.Fields{
		"to":          nt.Recipient,
		"type":        nt.Type,
		"block_index": nt.BlockIndex,
		"reason":      nt.Reason,
	}).Warn(nt.Subject)
}

// TamperAlerts turns tampering findings into one admin notification each.
func TamperAlerts(findings []scan.Finding) []Notification {
	out := make([]Notification, 0, len(findings))
	for _, f := range findings {
		out = append(out, Notification{
			Type:       NotifyAdmin,
			Subject:    fmt.Sprintf("Tampering detected at block %d", f.BlockIndex),
			BlockIndex: f.BlockIndex,
			Reason:     f.Reason,
		})
	}
	return out
}

// NotCommittedAlert reports a record whose hash was computed but never saved.
func NotCommittedAlert(hash string, err error) Notification {
	return Notification{
		Type:       NotifyOperator,
		Subject:    "Record computed but not committed",
		BlockIndex: -1,
		Reason:     fmt.Sprintf("hash %s: %v", hash, err),
	}
}
