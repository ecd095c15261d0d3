// cmd/seed/main.go
//
// Demo-data loader.
//
// Reads demo_data/*.json (regions, providers, offers, reviews,
// articles, faq) and upserts everything into the catalog DB.  Offer
// payloads use the nested feed format (resources / availability /
// links blocks) and are flattened into the offers table on the way in.
// Re-running is safe: rows are INSERT … ON DUPLICATE KEY UPDATE.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/serverplace/serverplace/internal/catalog"
	"github.com/serverplace/serverplace/internal/config"
	"github.com/serverplace/serverplace/internal/database"
	"github.com/serverplace/serverplace/internal/vault"
)

func main() {
	ctx := context.Background()

	var secrets config.Resolver
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx, log.Printf)
		if err != nil {
			log.Fatalf("connect vault: %v", err)
		}
		secrets = vc
	}

	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("connect catalog DB: %v", err)
	}
	defer db.Close()

	demoDir := filepath.Join(cfg.Paths.Root, "demo_data")
	log.Printf("[seed] загрузка demo-данных из %s", demoDir)

	if err := seedRegions(ctx, db, demoDir); err != nil {
		log.Fatalf("seed regions: %v", err)
	}
	if err := seedProviders(ctx, db, demoDir); err != nil {
		log.Fatalf("seed providers: %v", err)
	}
	if err := seedOffers(ctx, db, demoDir); err != nil {
		log.Fatalf("seed offers: %v", err)
	}
	if err := seedReviews(ctx, db, demoDir); err != nil {
		log.Fatalf("seed reviews: %v", err)
	}
	if err := seedContent(ctx, db, demoDir); err != nil {
		log.Fatalf("seed content: %v", err)
	}

	log.Println("[seed] готово")
}

func loadJSON(dir, name string, v any) error {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

/*──────────────────────────── regions ──────────────────────────────────────*/

func seedRegions(ctx context.Context, db *sqlx.DB, dir string) error {
	var regions []catalog.Region
	if err := loadJSON(dir, "regions.json", &regions); err != nil {
		return err
	}

	const q = `
	    INSERT INTO regions (id, name, country, city)
	    VALUES (?, ?, ?, ?)
	    ON DUPLICATE KEY UPDATE name = VALUES(name), country = VALUES(country), city = VALUES(city)`
	for _, r := range regions {
		if r.Country == "" {
			r.Country = "Россия"
		}
		if _, err := db.ExecContext(ctx, q, r.ID, r.Name, r.Country, r.City); err != nil {
			return fmt.Errorf("region %s: %w", r.ID, err)
		}
	}
	log.Printf("[seed] регионы: %d", len(regions))
	return nil
}

/*──────────────────────────── providers ────────────────────────────────────*/

type providerFeed struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	URL      string `json:"url"`
	LogoHint struct {
		Type string `json:"type"`
		Text string `json:"text"`
		Seed string `json:"seed"`
	} `json:"logo_hint"`
	Rating       float64  `json:"rating"`
	RatingCount  int      `json:"rating_count"`
	HasFreeTrial bool     `json:"has_free_trial"`
	TrialDays    int      `json:"trial_days"`
	Regions      []string `json:"regions"`
	CPUBrands    []string `json:"cpu_brands"`
	Support      struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"support"`
	Promo struct {
		Label           string  `json:"label"`
		DiscountPercent float64 `json:"discount_percent"`
		Until           string  `json:"until"`
	} `json:"promo"`
	AboutShort string   `json:"about_short"`
	Aliases    []string `json:"aliases"`
}

func seedProviders(ctx context.Context, db *sqlx.DB, dir string) error {
	var feed []providerFeed
	if err := loadJSON(dir, "providers.json", &feed); err != nil {
		return err
	}

	const q = `
	    INSERT INTO providers
	        (id, name, slug, url, logo_hint_type, logo_hint_text, logo_hint_seed,
	         rating, rating_count, has_free_trial, trial_days,
	         regions, cpu_brands, aliases, support_email, support_phone,
	         promo_label, promo_discount_percent, promo_until, about_short)
	    VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	    ON DUPLICATE KEY UPDATE
	        name = VALUES(name), url = VALUES(url), rating = VALUES(rating),
	        rating_count = VALUES(rating_count), has_free_trial = VALUES(has_free_trial),
	        trial_days = VALUES(trial_days), regions = VALUES(regions),
	        cpu_brands = VALUES(cpu_brands), aliases = VALUES(aliases),
	        support_email = VALUES(support_email), support_phone = VALUES(support_phone),
	        promo_label = VALUES(promo_label), promo_discount_percent = VALUES(promo_discount_percent),
	        promo_until = VALUES(promo_until), about_short = VALUES(about_short)`
	for _, p := range feed {
		logoType := p.LogoHint.Type
		if logoType == "" {
			logoType = "initials"
		}
		logoText := p.LogoHint.Text
		if logoText == "" && p.Name != "" {
			logoText = strings.ToUpper(p.Name[:min(2, len(p.Name))])
		}
		logoSeed := p.LogoHint.Seed
		if logoSeed == "" {
			logoSeed = p.Slug
		}

		_, err := db.ExecContext(ctx, q,
			p.ID, p.Name, p.Slug, p.URL, logoType, logoText, logoSeed,
			p.Rating, p.RatingCount, p.HasFreeTrial, p.TrialDays,
			jsonArr(p.Regions), jsonArr(p.CPUBrands), jsonArr(p.Aliases),
			p.Support.Email, p.Support.Phone,
			p.Promo.Label, p.Promo.DiscountPercent, p.Promo.Until, p.AboutShort)
		if err != nil {
			return fmt.Errorf("provider %s: %w", p.ID, err)
		}
	}
	log.Printf("[seed] провайдеры: %d", len(feed))
	return nil
}

/*──────────────────────────── offers ───────────────────────────────────────*/

type offerFeed struct {
	ID               string  `json:"id"`
	ProviderID       string  `json:"provider_id"`
	Name             string  `json:"name"`
	Billing          string  `json:"billing"`
	Currency         string  `json:"currency"`
	MarketPriceMonth float64 `json:"market_price_month"`
	PromoPriceMonth  float64 `json:"promo_price_month"`
	PromoLabel       string  `json:"promo_label"`
	Resources        struct {
		VCPU  int `json:"vcpu"`
		RAMGB int `json:"ram_gb"`
		CPU   struct {
			Type  string `json:"type"`
			Brand string `json:"brand"`
			Line  string `json:"line"`
			Model string `json:"model"`
		} `json:"cpu"`
		Disks   []catalog.Disk `json:"disks"`
		Network struct {
			BandwidthMbps  int     `json:"bandwidth_mbps"`
			TrafficLimitTB float64 `json:"traffic_limit_tb"`
		} `json:"network"`
		IPv4Included   bool    `json:"ipv4_included"`
		IPv6Included   bool    `json:"ipv6_included"`
		DDoSProtection bool    `json:"ddos_protection"`
		SLAPercent     float64 `json:"sla_percent"`
		Virtualization string  `json:"virtualization"`
	} `json:"resources"`
	ServiceType  string `json:"service_type"`
	Availability struct {
		Regions []string `json:"regions"`
		Pools   []string `json:"pools"`
	} `json:"availability"`
	FreeTrial struct {
		Available  bool   `json:"available"`
		Days       int    `json:"days"`
		Conditions string `json:"conditions"`
	} `json:"free_trial"`
	Links struct {
		OrderURL string `json:"order_url"`
		DocsURL  string `json:"docs_url"`
	} `json:"links"`
	UpdatedAt string `json:"updated_at"`
}

func seedOffers(ctx context.Context, db *sqlx.DB, dir string) error {
	var feed []offerFeed
	if err := loadJSON(dir, "offers.json", &feed); err != nil {
		return err
	}

	const q = `
	    INSERT INTO offers
	        (id, provider_id, name, billing, currency,
	         market_price_month, promo_price_month, promo_label,
	         vcpu, ram_gb, cpu_type, cpu_brand, cpu_line, cpu_model,
	         disk_system_type, disk_system_size_gb, disks_json,
	         bandwidth_mbps, traffic_limit_tb,
	         ipv4_included, ipv6_included, ddos_protection,
	         sla_percent, virtualization, service_type, regions, pools,
	         free_trial_available, free_trial_days, free_trial_conditions,
	         order_url, docs_url)
	    VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	    ON DUPLICATE KEY UPDATE
	        name = VALUES(name), market_price_month = VALUES(market_price_month),
	        promo_price_month = VALUES(promo_price_month), promo_label = VALUES(promo_label),
	        vcpu = VALUES(vcpu), ram_gb = VALUES(ram_gb),
	        cpu_type = VALUES(cpu_type), cpu_brand = VALUES(cpu_brand),
	        cpu_line = VALUES(cpu_line), cpu_model = VALUES(cpu_model),
	        disk_system_type = VALUES(disk_system_type),
	        disk_system_size_gb = VALUES(disk_system_size_gb), disks_json = VALUES(disks_json),
	        bandwidth_mbps = VALUES(bandwidth_mbps), traffic_limit_tb = VALUES(traffic_limit_tb),
	        ipv4_included = VALUES(ipv4_included), ipv6_included = VALUES(ipv6_included),
	        ddos_protection = VALUES(ddos_protection), sla_percent = VALUES(sla_percent),
	        virtualization = VALUES(virtualization), service_type = VALUES(service_type),
	        regions = VALUES(regions), pools = VALUES(pools),
	        free_trial_available = VALUES(free_trial_available),
	        free_trial_days = VALUES(free_trial_days),
	        free_trial_conditions = VALUES(free_trial_conditions),
	        order_url = VALUES(order_url), docs_url = VALUES(docs_url)`
	for _, o := range feed {
		res := o.Resources

		// The table keeps the system disk denormalized for filtering.
		sysType, sysSize := "ssd", 25
		for _, d := range res.Disks {
			if d.Role == "system" {
				sysType, sysSize = d.Type, d.SizeGB
				break
			}
		}

		disks, _ := json.Marshal(res.Disks)
		if res.Disks == nil {
			disks = []byte("[]")
		}
		billing := o.Billing
		if billing == "" {
			billing = "month"
		}
		currency := o.Currency
		if currency == "" {
			currency = "RUB"
		}
		serviceType := o.ServiceType
		if serviceType == "" {
			serviceType = "vps"
		}
		virt := res.Virtualization
		if virt == "" {
			virt = "KVM"
		}
		sla := res.SLAPercent
		if sla == 0 {
			sla = 99.9
		}

		_, err := db.ExecContext(ctx, q,
			o.ID, o.ProviderID, o.Name, billing, currency,
			o.MarketPriceMonth, o.PromoPriceMonth, o.PromoLabel,
			maxInt(res.VCPU, 1), maxInt(res.RAMGB, 1),
			res.CPU.Type, res.CPU.Brand, res.CPU.Line, res.CPU.Model,
			sysType, sysSize, string(disks),
			maxInt(res.Network.BandwidthMbps, 100), res.Network.TrafficLimitTB,
			res.IPv4Included, res.IPv6Included, res.DDoSProtection,
			sla, virt, serviceType,
			jsonArr(o.Availability.Regions), jsonArr(o.Availability.Pools),
			o.FreeTrial.Available, o.FreeTrial.Days, o.FreeTrial.Conditions,
			o.Links.OrderURL, o.Links.DocsURL)
		if err != nil {
			return fmt.Errorf("offer %s: %w", o.ID, err)
		}
	}
	log.Printf("[seed] офферы: %d", len(feed))
	return nil
}

/*──────────────────────────── reviews ──────────────────────────────────────*/

type reviewFeed struct {
	ID              string   `json:"id"`
	ProviderID      string   `json:"provider_id"`
	UserDisplayName string   `json:"user_display_name"`
	UserRole        string   `json:"user_role"`
	Rating          int      `json:"rating"`
	Title           string   `json:"title"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
	UseCase         string   `json:"use_case"`
	Text            string   `json:"text"`
	CreatedAt       string   `json:"created_at"`
	Verified        bool     `json:"verified"`
	Likes           int      `json:"likes"`
}

func seedReviews(ctx context.Context, db *sqlx.DB, dir string) error {
	var feed []reviewFeed
	if err := loadJSON(dir, "reviews.json", &feed); err != nil {
		return err
	}

	const q = `
	    INSERT INTO reviews
	        (id, provider_id, user_display_name, user_role,
	         rating, title, pros, cons, use_case, text, created_at, verified, likes)
	    VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	    ON DUPLICATE KEY UPDATE
	        rating = VALUES(rating), title = VALUES(title),
	        pros = VALUES(pros), cons = VALUES(cons),
	        use_case = VALUES(use_case), text = VALUES(text),
	        verified = VALUES(verified), likes = VALUES(likes)`
	for _, r := range feed {
		rating := r.Rating
		if rating == 0 {
			rating = 5
		}
		created := r.CreatedAt
		if created == "" {
			created = time.Now().Format("2006-01-02")
		}
		_, err := db.ExecContext(ctx, q,
			r.ID, r.ProviderID, r.UserDisplayName, r.UserRole,
			rating, r.Title, jsonArr(r.Pros), jsonArr(r.Cons),
			r.UseCase, r.Text, created, r.Verified, r.Likes)
		if err != nil {
			return fmt.Errorf("review %s: %w", r.ID, err)
		}
	}
	log.Printf("[seed] отзывы: %d", len(feed))
	return nil
}

/*──────────────────────────── content ──────────────────────────────────────*/

type articleFeed struct {
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Excerpt        string   `json:"excerpt"`
	ContentMD      string   `json:"content_md"`
	Tags           []string `json:"tags"`
	ReadingTimeMin int      `json:"reading_time_min"`
	PublishedAt    string   `json:"published_at"`
}

type faqFeed struct {
	Q string `json:"q"`
	A string `json:"a"`
}

func seedContent(ctx context.Context, db *sqlx.DB, dir string) error {
	const q = `
	    INSERT INTO content_pages
	        (type, slug, title, excerpt, content_md, tags, reading_time_min, published_at)
	    VALUES (?,?,?,?,?,?,?,?)
	    ON DUPLICATE KEY UPDATE
	        title = VALUES(title), excerpt = VALUES(excerpt),
	        content_md = VALUES(content_md), tags = VALUES(tags),
	        reading_time_min = VALUES(reading_time_min)`

	var articles []articleFeed
	if err := loadJSON(dir, "articles.json", &articles); err != nil {
		return err
	}
	for _, a := range articles {
		rt := a.ReadingTimeMin
		if rt == 0 {
			rt = 5
		}
		published := a.PublishedAt
		if published == "" {
			published = time.Now().Format("2006-01-02")
		}
		_, err := db.ExecContext(ctx, q,
			"article", a.Slug, a.Title, a.Excerpt, a.ContentMD,
			jsonArr(a.Tags), rt, published)
		if err != nil {
			return fmt.Errorf("article %s: %w", a.Slug, err)
		}
	}
	log.Printf("[seed] статьи: %d", len(articles))

	var faq []faqFeed
	if err := loadJSON(dir, "faq.json", &faq); err != nil {
		return err
	}
	for i, f := range faq {
		_, err := db.ExecContext(ctx, q,
			"faq", fmt.Sprintf("faq-%d", i), f.Q, "", f.A,
			"[]", 1, time.Now().Format("2006-01-02"))
		if err != nil {
			return fmt.Errorf("faq %d: %w", i, err)
		}
	}
	log.Printf("[seed] FAQ: %d", len(faq))
	return nil
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func jsonArr(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func maxInt(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}
