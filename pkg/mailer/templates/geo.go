package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Geo is an IP geolocation lookup result.
type Geo struct {
	City     string
	Region   string // state/province
	Country  string
	Timezone string
}

type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (Geo, error)
}

func FormatGeo(g Geo) string {
	var parts []string
	for _, s := range []string{g.City, g.Region, g.Country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// IPAPIResolver implements GeoResolver using ip-api.com
type IPAPIResolver struct {
	Client  *http.Client
	BaseURL string
}

func (r IPAPIResolver) Lookup(ctx context.Context, ip string) (Geo, error) {
	ip = strings.TrimSpace(ip)
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Geo{}, fmt.Errorf("invalid ip %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() {
		return Geo{}, fmt.Errorf("non-routable ip %q", ip)
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	base := r.BaseURL
	if base == "" {
		base = "http://ip-api.com"
	}

	url := fmt.Sprintf("%s/json/%s?fields=status,message,country,regionName,city,timezone", strings.TrimSuffix(base, "/"), ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Geo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Geo{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Status     string `json:"status"`
		Message    string `json:"message"`
		Country    string `json:"country"`
		RegionName string `json:"regionName"`
		City       string `json:"city"`
		Timezone   string `json:"timezone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Geo{}, err
	}
	if !strings.EqualFold(body.Status, "success") {
		return Geo{}, fmt.Errorf("geo lookup failed: %s", body.Message)
	}
	return Geo{City: body.City, Region: body.RegionName, Country: body.Country, Timezone: body.Timezone}, nil
}

// LocalizeTimes rewrites Time and ExpiresAtText in the recipient's timezone when the IP resolves.
// It also fills Location if the producer left it empty.
func LocalizeTimes(ctx context.Context, resolver GeoResolver, data map[string]any) {
	if resolver == nil || data == nil {
		return
	}
	ip, _ := data["IP"].(string)
	if strings.TrimSpace(ip) == "" {
		return
	}
	g, err := resolver.Lookup(ctx, ip)
	if err != nil {
		return
	}
	if loc, _ := data["Location"].(string); loc == "" {
		data["Location"] = FormatGeo(g)
	}
	if strings.TrimSpace(g.Timezone) == "" {
		return
	}
	zone, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return
	}
	if t, ok := parseTime(data["ExpiresAt"]); ok {
		data["ExpiresAtText"] = t.In(zone).Format("02 January 2006, 15:04 MST")
	}
	if t, ok := parseTime(data["TimeAt"]); ok {
		data["Time"] = t.In(zone).Format("02 January 2006, 15:04 MST")
	}
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}
