//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, client IP, and geolocation).  Lead intake
//  persists these alongside the inquiry, so the structs are inert: no
//  database handles, no large buffers, safe to log or JSON-encode.
//

package requestinfo

import (
	"context"
	"net"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA carries the parsed user-agent attributes stored with each lead.
type UA struct {
	Raw     string // entire User-Agent header
	Browser string // "Chrome", "Firefox", "Safari", …
	Version string // "125.0.6422"
	OS      string // "Windows", "Linux", "MacOSX", …
	Device  string // "Desktop", "Mobile", "Tablet", "Other"
	IsBot   bool
}

// Geo holds best-effort IP geolocation hints; empty when the GeoLite2
// database has no match or is not configured.
type Geo struct {
	IP         net.IP
	CountryISO string // "RU", "NL", "DE", …
	City       string
}

// Info is stored in the request context by the Enrich middleware.
type Info struct {
	UA  UA
	Geo Geo
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is a singleton MaxMind handle.  Concurrent reads are safe,
// which is all we ever perform.  It stays nil when no database path is
// configured; lookups then degrade to IP-only.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2-City database.  Call from main() before
// serving; an empty path disables geolocation without error.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

type ctxKey struct{}

// FromContext returns the pointer previously stored by Enrich, or nil
// if the middleware has not run.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(raw string) UA {
	u := surfer.Parse(raw)

	out := UA{
		Raw:     raw,
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version: versionToString(u.Browser.Version),
		OS:      strings.TrimPrefix(u.OS.Name.String(), "OS"),
		IsBot:   u.IsBot(),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		out.Device = "Desktop"
	case surfer.DeviceTablet:
		out.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		out.Device = "Mobile"
	default:
		out.Device = "Other"
	}
	return out
}

// versionToString renders a semantic version in dotted form while
// trimming trailing zeros, e.g. 17.0.0 → "17", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	}
	if v.Minor != 0 {
		return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	}
	return strconv.Itoa(v.Major)
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	if geoReader == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := geoReader.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
