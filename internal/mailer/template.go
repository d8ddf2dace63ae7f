// internal/mailer/template.go
//
// FormRelayer – HTML email wrappers.
//
// Context
//   Notification emails share one inner fragment (the field table) wrapped
//   in a named chrome: default, plain, modern, corporate, dark, or custom.
//   An unknown name silently falls back to default so a typo in settings
//   degrades the styling, not the delivery.  The custom wrapper is
//   admin-supplied HTML with a handful of placeholders.
//
//------------------------------------------------------------------------------

package mailer

import (
	"fmt"
	"html"
	"strings"

	"github.com/formrelayer/formrelayer/internal/settings"
)

// wrapHTML renders the inner fragment inside the named template.
func wrapHTML(name, inner, subject string, eff settings.Effective) string {
	switch name {
	case "plain":
		return fmt.Sprintf(`<html><body style="font-family:sans-serif;color:#333">%s</body></html>`, inner)

	case "modern":
		return fmt.Sprintf(`<html><body style="margin:0;background:#f4f6f8;font-family:sans-serif">
<div style="max-width:600px;margin:32px auto;background:#fff;border-radius:12px;overflow:hidden;box-shadow:0 1px 4px rgba(0,0,0,.08)">
%s<div style="background:%s;height:6px"></div>
<div style="padding:32px">%s</div>
</div></body></html>`, logoBlock(eff), eff.PrimaryColor, inner)

	case "corporate":
		return fmt.Sprintf(`<html><body style="margin:0;background:#fff;font-family:Georgia,serif;color:#222">
<div style="max-width:640px;margin:0 auto;border-top:4px solid %s">
%s<div style="padding:24px;border-bottom:1px solid #ddd"><strong>%s</strong></div>
<div style="padding:24px">%s</div>
<div style="padding:16px 24px;font-size:12px;color:#888">%s</div>
</div></body></html>`, eff.PrimaryColor, logoBlock(eff),
			html.EscapeString(eff.SiteName), inner, html.EscapeString(eff.SiteURL))

	case "dark":
		return fmt.Sprintf(`<html><body style="margin:0;background:#15171a;font-family:sans-serif;color:#e6e6e6">
<div style="max-width:600px;margin:32px auto;background:#1f2226;border-radius:8px;padding:32px">
%s%s
</div></body></html>`, logoBlock(eff), inner)

	case "custom":
		if eff.CustomEmailHTML != "" {
			out := strings.ReplaceAll(eff.CustomEmailHTML, "{all_fields}", inner)
			out = strings.ReplaceAll(out, "{subject}", html.EscapeString(subject))
			out = strings.ReplaceAll(out, "{site_name}", html.EscapeString(eff.SiteName))
			return out
		}
		fallthrough

	default: // "default" and anything unrecognized
		return fmt.Sprintf(`<html><body style="margin:0;background:#f0f0f1;font-family:sans-serif;color:#1d2327">
<div style="max-width:600px;margin:24px auto;background:#fff;border:1px solid #dcdcde">
%s<div style="background:%s;color:#fff;padding:16px 24px;font-size:18px">%s</div>
<div style="padding:24px">%s</div>
</div></body></html>`, logoBlock(eff), eff.PrimaryColor, html.EscapeString(subject), inner)
	}
}

// logoBlock returns an image block when a logo URL is configured.
func logoBlock(eff settings.Effective) string {
	if eff.EmailLogoURL == "" {
		return ""
	}
	return fmt.Sprintf(`<div style="padding:16px 24px;text-align:center"><img src="%s" alt="%s" style="max-height:48px"></div>`,
		html.EscapeString(eff.EmailLogoURL), html.EscapeString(eff.SiteName))
}
