// internal/notify/notifier.go
//
// Lead notification fan-out.
//
/*
Context
--------
When a lead lands, the admin is pinged over Telegram and email.
Delivery is best-effort: the intake path fires notifications in the
background and only logs failures, so a broken bot token or SMTP relay
never blocks a customer submission.
*/
package notify

import (
	"context"
	"html"
	"strings"

	"go.uber.org/zap"
)

// LeadEvent carries everything a notification message needs, already
// denormalized so senders never touch the database.
type LeadEvent struct {
	Email     string
	Phone     string
	PageURL   string
	UTM       string
	CreatedAt string

	ProviderName string

	OfferName      string
	PriceMonth     float64
	VCPU           int
	RAMGB          int
	DiskType       string
	DiskSizeGB     int
	CPUType        string
	CPUBrand       string
	CPUModel       string
	BandwidthMbps  int
	TrafficLimitTB float64
	Regions        []string
}

// Notifier delivers one lead notification.
type Notifier interface {
	NotifyLead(ctx context.Context, ev *LeadEvent) error
}

// Multi fans a lead out to every configured channel.  Each sender's
// error is logged and the rest still run.
type Multi []Notifier

func (m Multi) NotifyLead(ctx context.Context, ev *LeadEvent) error {
	var first error
	for _, n := range m {
		if err := n.NotifyLead(ctx, ev); err != nil {
			zap.S().Errorw("lead notification failed", "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func esc(s string) string { return html.EscapeString(s) }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func regionsLine(regions []string) string {
	if len(regions) == 0 {
		return "-"
	}
	return strings.Join(regions, ", ")
}
