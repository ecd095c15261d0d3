// internal/notify/telegram.go
//
// Telegram Bot API sender.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Telegram posts lead notifications to one chat via the Bot API
// sendMessage method, HTML parse mode.
type Telegram struct {
	Token  string
	ChatID string

	// BaseURL overrides the Bot API endpoint in tests.
	BaseURL string
	Client  *http.Client
}

// NewTelegram returns a sender for the given bot token and chat.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		Token:   token,
		ChatID:  chatID,
		BaseURL: "https://api.telegram.org",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) NotifyLead(ctx context.Context, ev *LeadEvent) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                t.ChatID,
		Text:                  leadText(ev),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal: %w", err)
	}

	url := t.BaseURL + "/bot" + t.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("telegram: decode: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("telegram: api error: %s", out.Description)
	}

	zap.S().Infow("lead notification sent to telegram", "chat_id", t.ChatID)
	return nil
}

func leadText(ev *LeadEvent) string {
	return "🔔 <b>Новая заявка на ServerPlace</b>\n\n" +
		"<b>Провайдер:</b> " + esc(orDash(ev.ProviderName)) + "\n" +
		"<b>Тариф:</b> " + esc(orDash(ev.OfferName)) + "\n" +
		fmt.Sprintf("<b>Цена:</b> %g ₽/мес\n", ev.PriceMonth) +
		fmt.Sprintf("<b>vCPU:</b> %d | <b>RAM:</b> %d ГБ\n", ev.VCPU, ev.RAMGB) +
		fmt.Sprintf("<b>Диск:</b> %s %d ГБ\n", esc(orDash(ev.DiskType)), ev.DiskSizeGB) +
		"<b>CPU:</b> " + esc(orDash(ev.CPUType)) + " / " + esc(orDash(ev.CPUBrand)) + "\n" +
		fmt.Sprintf("<b>Канал:</b> %d Mbps\n", ev.BandwidthMbps) +
		fmt.Sprintf("<b>Трафик:</b> %g TB/мес\n\n", ev.TrafficLimitTB) +
		"👤 <b>Контакты клиента</b>\n" +
		"<b>Email:</b> " + esc(ev.Email) + "\n" +
		"<b>Телефон:</b> " + esc(ev.Phone) + "\n\n" +
		"📋 <b>Техническое</b>\n" +
		"<b>Дата:</b> " + esc(orDash(ev.CreatedAt)) + "\n" +
		"<b>Страница:</b> " + esc(orDash(ev.PageURL)) + "\n" +
		"<b>UTM:</b> " + esc(orDash(ev.UTM))
}
