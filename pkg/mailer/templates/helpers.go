package templates

import (
	"context"
	"strings"
	"time"

	"github.com/oksasatya/storefront-account/config"
)

const timeLayout = "02 January 2006, 15:04"

type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format(timeLayout)
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format(timeLayout)
	}
}

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		d.ExpiresInMinutes = int(dur.Minutes())
	}
}

func WithGeoFromIP(ctx context.Context, r GeoResolver, ip string) Option {
	return func(d *EmailData) {
		if r == nil || strings.TrimSpace(ip) == "" {
			return
		}
		if g, err := r.Lookup(ctx, ip); err == nil {
			if loc := FormatGeo(g); loc != "" {
				d.Location = loc
			}
		}
	}
}

// NewCodeEmailData fills branding from cfg and the action link for typ, then applies opts.
func NewCodeEmailData(cfg *config.Config, typ, name, email, code string, opts ...Option) map[string]any {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
		Code:           code,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
	}
	switch typ {
	case VerifyEmail:
		d.ActionURL = cfg.VerifyEmailURL
	case ResetPassword:
		d.ActionURL = cfg.ResetPassURL
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
