// internal/lead/intake.go
//
// Lead intake service.
//
/*
Context
--------
POST /api/leads lands here.  The flow is: honeypot check (bots get a
pretend success and nothing is stored), field validation, request
enrichment from the UA/geo middleware, insert, then a background
notification fan-out that never blocks or fails the response.
*/
package lead

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/serverplace/serverplace/internal/catalog"
	"github.com/serverplace/serverplace/internal/metrics"
	"github.com/serverplace/serverplace/internal/notify"
	"github.com/serverplace/serverplace/internal/requestinfo"
)

// ValidationError carries the user-facing message for a 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Request is the lead submission payload.
type Request struct {
	ProviderID     string         `json:"provider_id"`
	OfferID        string         `json:"offer_id"`
	ConfigSnapshot map[string]any `json:"config_snapshot"`
	Email          string         `json:"email"    validate:"required,email"`
	Phone          string         `json:"phone"    validate:"required,min=5"`
	UTM            map[string]any `json:"utm"`
	PageURL        string         `json:"page_url"`
	Referrer       string         `json:"referrer"`
	Honeypot       string         `json:"honeypot"`
}

// Result is the intake response body.
type Result struct {
	Success bool   `json:"success"`
	LeadID  int64  `json:"lead_id,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

// NotifyTimeout bounds the background notification fan-out.
const NotifyTimeout = 15 * time.Second

// Intake validates and records lead submissions.
type Intake struct {
	db       *sqlx.DB
	notifier notify.Notifier
	validate *validator.Validate
}

// NewIntake wires the intake service.  notifier may be nil when no
// channel is configured.
func NewIntake(db *sqlx.DB, notifier notify.Notifier) *Intake {
	return &Intake{db: db, notifier: notifier, validate: validator.New()}
}

// Submit processes one lead submission.  info may be nil when the
// request-info middleware is not mounted.
func (s *Intake) Submit(ctx context.Context, req *Request, info *requestinfo.Info) (*Result, error) {
	if req.Honeypot != "" {
		ip := ""
		if info != nil && info.Geo.IP != nil {
			ip = info.Geo.IP.String()
		}
		zap.S().Warnw("lead honeypot triggered", "ip", ip)
		metrics.LeadHoneypotTotal.Inc()
		return &Result{Success: true, Message: "Заявка отправлена"}, nil
	}

	if req.Email == "" || req.Phone == "" {
		return nil, &ValidationError{Msg: "Email и телефон обязательны"}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Msg: "Некорректный email"}
	}

	l := &Lead{
		Token:          uuid.NewString(),
		ConfigSnapshot: jsonText(req.ConfigSnapshot),
		Email:          req.Email,
		Phone:          req.Phone,
		UTM:            jsonText(req.UTM),
		PageURL:        req.PageURL,
		Referrer:       req.Referrer,
		Status:         StatusNew,
		CreatedAt:      time.Now(),
	}
	if req.ProviderID != "" {
		l.ProviderID = &req.ProviderID
	}
	if req.OfferID != "" {
		l.OfferID = &req.OfferID
	}
	if info != nil {
		l.UserAgent = info.UA.Raw
		l.UABrowser = info.UA.Browser
		l.UAOS = info.UA.OS
		l.UADevice = info.UA.Device
		l.UABot = info.UA.IsBot
		if info.Geo.IP != nil {
			l.IPAddress = info.Geo.IP.String()
		}
		l.CountryISO = info.Geo.CountryISO
		l.City = info.Geo.City
	}

	if err := Insert(ctx, s.db, l); err != nil {
		return nil, err
	}
	metrics.LeadTotal.Inc()
	zap.S().Infow("new lead", "id", l.ID, "email", l.Email, "provider_id", req.ProviderID)

	if s.notifier != nil {
		ev := s.buildEvent(ctx, l)
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), NotifyTimeout)
			defer cancel()
			if err := s.notifier.NotifyLead(nctx, ev); err != nil {
				zap.S().Errorw("lead notification failed", "lead_id", l.ID, "err", err)
			}
		}()
	}

	return &Result{
		Success: true,
		LeadID:  l.ID,
		Token:   l.Token,
		Message: "Заявка отправлена — ожидайте. Провайдер с вами свяжется.",
	}, nil
}

// buildEvent denormalizes provider and offer details for the
// notification text.  Lookups are best-effort.
func (s *Intake) buildEvent(ctx context.Context, l *Lead) *notify.LeadEvent {
	ev := &notify.LeadEvent{
		Email:        l.Email,
		Phone:        l.Phone,
		PageURL:      l.PageURL,
		UTM:          l.UTM,
		CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
		ProviderName: "Не указан",
		OfferName:    "Не указан",
	}

	if l.ProviderID != nil {
		if p, err := catalog.ProviderByID(ctx, s.db, *l.ProviderID); err == nil {
			ev.ProviderName = p.Name
		}
	}
	if l.OfferID != nil {
		if o, err := catalog.OfferByID(ctx, s.db, *l.OfferID); err == nil {
			ev.OfferName = o.Name
			ev.PriceMonth = o.PromoPriceMonth
			ev.VCPU = o.VCPU
			ev.RAMGB = o.RAMGB
			ev.DiskType = o.DiskSystemType
			ev.DiskSizeGB = o.DiskSystemSizeGB
			ev.CPUType = o.CPUType
			ev.CPUBrand = o.CPUBrand
			ev.CPUModel = o.CPUModel
			ev.BandwidthMbps = o.BandwidthMbps
			ev.TrafficLimitTB = o.TrafficLimitTB
			ev.Regions = o.Regions
		}
	}
	return ev
}

// jsonText serializes a free-form object for TEXT storage; nil maps
// become "{}" so the column never holds SQL NULL.
func jsonText(m map[string]any) string {
	if m == nil {
		m = map[string]any{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}
