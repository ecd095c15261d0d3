// internal/lead/intake_test.go
//
// Run: go test ./internal/lead -v

package lead

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverplace/serverplace/internal/notify"
	"github.com/serverplace/serverplace/internal/requestinfo"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

type captureNotifier struct {
	ch chan *notify.LeadEvent
}

func (c *captureNotifier) NotifyLead(ctx context.Context, ev *notify.LeadEvent) error {
	c.ch <- ev
	return nil
}

func TestSubmitInsertsAndNotifies(t *testing.T) {
	db, mock := newMockDB(t)
	cap := &captureNotifier{ch: make(chan *notify.LeadEvent, 1)}
	svc := NewIntake(db, cap)

	mock.ExpectExec(`INSERT INTO leads`).
		WillReturnResult(sqlmock.NewResult(7, 1))

	info := &requestinfo.Info{}
	info.UA.Raw = "Mozilla/5.0"
	info.UA.Browser = "Firefox"
	info.Geo.IP = net.ParseIP("203.0.113.9")
	info.Geo.CountryISO = "RU"

	res, err := svc.Submit(context.Background(), &Request{
		Email:   "ivan@example.com",
		Phone:   "+79000000000",
		PageURL: "/configurator",
		UTM:     map[string]any{"utm_source": "yandex"},
	}, info)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.EqualValues(t, 7, res.LeadID)
	assert.NotEmpty(t, res.Token)
	assert.Contains(t, res.Message, "Заявка отправлена")

	select {
	case ev := <-cap.ch:
		assert.Equal(t, "ivan@example.com", ev.Email)
		assert.Equal(t, "Не указан", ev.ProviderName)
		assert.Contains(t, ev.UTM, "yandex")
	case <-time.After(2 * time.Second):
		t.Fatal("notification never fired")
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitHoneypotPretendsSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	cap := &captureNotifier{ch: make(chan *notify.LeadEvent, 1)}
	svc := NewIntake(db, cap)

	res, err := svc.Submit(context.Background(), &Request{
		Email:    "bot@example.com",
		Phone:    "+70000000000",
		Honeypot: "gotcha",
	}, nil)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Zero(t, res.LeadID)
	assert.Empty(t, res.Token)

	// Nothing stored, nothing sent.
	require.NoError(t, mock.ExpectationsWereMet())
	select {
	case <-cap.ch:
		t.Fatal("honeypot lead must not notify")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubmitValidation(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewIntake(db, nil)

	cases := []struct {
		name string
		req  Request
		msg  string
	}{
		{"missing phone", Request{Email: "a@b.ru"}, "Email и телефон обязательны"},
		{"missing email", Request{Phone: "+79"}, "Email и телефон обязательны"},
		{"bad email", Request{Email: "not-an-email", Phone: "+79000000000"}, "Некорректный email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), &tc.req, nil)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.msg, verr.Msg)
		})
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	db, _ := newMockDB(t)
	err := UpdateStatus(context.Background(), db, 1, "archived")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusNew, StatusSent, StatusInWork, StatusClosed} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("deleted"))
}
