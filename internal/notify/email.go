// internal/notify/email.go
//
// SMTP sender for lead notifications.

package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email sends lead notifications as an HTML table to the admin inbox
// over plain SMTP.
type Email struct {
	Host string
	Port int
	From string
	To   string

	// send overrides smtp.SendMail in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmail returns a sender targeting one SMTP relay.
func NewEmail(host string, port int, from, to string) *Email {
	return &Email{Host: host, Port: port, From: from, To: to, send: smtp.SendMail}
}

func (e *Email) NotifyLead(ctx context.Context, ev *LeadEvent) error {
	subject := fmt.Sprintf("Serverplace: новая заявка (%s)", orDash(ev.ProviderName))
	msg := buildMessage(e.From, e.To, subject, leadHTML(ev))

	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)
	done := make(chan error, 1)
	go func() { done <- e.send(addr, nil, e.From, []string{e.To}, msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("email: send: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("email: send: %w", ctx.Err())
	}

	zap.S().Infow("lead notification sent by email", "to", e.To)
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func leadHTML(ev *LeadEvent) string {
	row := func(label, value string) string {
		return `<tr><td style="padding:6px 12px;font-weight:bold;">` + label +
			`</td><td style="padding:6px 12px;">` + value + `</td></tr>`
	}
	sep := func(title string) string {
		return `<tr><td colspan="2" style="padding:12px;border-top:1px solid #ccc;"><strong>` +
			title + `</strong></td></tr>`
	}

	var b strings.Builder
	b.WriteString("<h2>Новая заявка на ServerPlace</h2>")
	b.WriteString(`<table style="border-collapse:collapse;font-family:Arial,sans-serif;">`)
	b.WriteString(row("Провайдер:", esc(orDash(ev.ProviderName))))
	b.WriteString(row("Тариф:", esc(orDash(ev.OfferName))))
	b.WriteString(row("Цена по акции:", fmt.Sprintf("%g ₽/мес", ev.PriceMonth)))
	b.WriteString(row("vCPU:", fmt.Sprintf("%d", ev.VCPU)))
	b.WriteString(row("RAM:", fmt.Sprintf("%d ГБ", ev.RAMGB)))
	b.WriteString(row("Диск:", fmt.Sprintf("%s %d ГБ", esc(orDash(ev.DiskType)), ev.DiskSizeGB)))
	b.WriteString(row("CPU:", esc(orDash(ev.CPUType))+" / "+esc(orDash(ev.CPUBrand))+" "+esc(ev.CPUModel)))
	b.WriteString(row("Канал:", fmt.Sprintf("%d Mbps", ev.BandwidthMbps)))
	b.WriteString(row("Трафик:", fmt.Sprintf("%g TB/мес", ev.TrafficLimitTB)))
	b.WriteString(row("Регион:", esc(regionsLine(ev.Regions))))
	b.WriteString(sep("Контакты клиента"))
	b.WriteString(row("Email:", esc(ev.Email)))
	b.WriteString(row("Телефон:", esc(ev.Phone)))
	b.WriteString(sep("Техническое"))
	b.WriteString(row("Дата:", esc(orDash(ev.CreatedAt))))
	b.WriteString(row("URL страницы:", esc(orDash(ev.PageURL))))
	b.WriteString(row("UTM:", esc(orDash(ev.UTM))))
	b.WriteString("</table>")
	return b.String()
}
