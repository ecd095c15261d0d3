// internal/notify/notify_test.go
//
// Run: go test ./internal/notify -v

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() *LeadEvent {
	return &LeadEvent{
		Email:        "ivan@example.com",
		Phone:        "+7 900 000-00-00",
		PageURL:      "https://serverplace.su/configurator",
		UTM:          `{"utm_source":"yandex"}`,
		CreatedAt:    "2026-08-29T10:00:00Z",
		ProviderName: "CloudRu",
		OfferName:    "VPS <S>",
		PriceMonth:   290,
		VCPU:         2,
		RAMGB:        4,
		DiskType:     "nvme",
		DiskSizeGB:   40,
		CPUType:      "shared",
		CPUBrand:     "amd",
		Regions:      []string{"msk", "spb"},
	}
}

func TestTelegramSendsHTMLMessage(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("TOKEN", "127001153")
	tg.BaseURL = srv.URL

	require.NoError(t, tg.NotifyLead(context.Background(), sampleEvent()))
	assert.Equal(t, "127001153", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.True(t, got.DisableWebPagePreview)
	assert.Contains(t, got.Text, "Новая заявка")
	assert.Contains(t, got.Text, "ivan@example.com")
	// Offer names are user-ish data and must be HTML-escaped.
	assert.Contains(t, got.Text, "VPS &lt;S&gt;")
}

func TestTelegramAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegram("TOKEN", "0")
	tg.BaseURL = srv.URL

	err := tg.NotifyLead(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestEmailBuildsHTMLTable(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	e := NewEmail("localhost", 25, "noreply@serverplace.su", "admin@serverplace.su")
	e.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, e.NotifyLead(context.Background(), sampleEvent()))
	assert.Equal(t, "localhost:25", gotAddr)
	assert.Equal(t, "noreply@serverplace.su", gotFrom)
	assert.Equal(t, []string{"admin@serverplace.su"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Serverplace: новая заявка (CloudRu)")
	assert.Contains(t, msg, "Content-Type: text/html; charset=utf-8")
	assert.Contains(t, msg, "msk, spb")
	assert.Contains(t, msg, "+7 900 000-00-00")
}

func TestMultiRunsAllAndReturnsFirstError(t *testing.T) {
	calls := 0
	failing := notifierFunc(func(ctx context.Context, ev *LeadEvent) error {
		calls++
		return errors.New("boom")
	})
	ok := notifierFunc(func(ctx context.Context, ev *LeadEvent) error {
		calls++
		return nil
	})

	err := Multi{failing, ok}.NotifyLead(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "boom"))
	assert.Equal(t, 2, calls)
}

type notifierFunc func(ctx context.Context, ev *LeadEvent) error

func (f notifierFunc) NotifyLead(ctx context.Context, ev *LeadEvent) error { return f(ctx, ev) }
