// internal/settings/settings.go
//
// FormRelayer – layered settings resolution.
//
// Context
//   Site-wide defaults live in the `setting` key/value table; forms may
//   override a subset of them.  Every consumer (submission processor,
//   mailer, renderer) works from one Effective view produced by Resolve,
//   which applies the layers as a pure function:
//
//       form override  →  global value  →  hard-coded fallback
//
//   Keeping resolution in one place avoids the scattered
//   lookup-or-lookup-or-literal chains that otherwise grow around per-form
//   customization.
//
//------------------------------------------------------------------------------

package settings

// Global is the site-wide configuration kept in the setting table.  Zero
// values mean "unset"; Resolve falls through to the hard-coded defaults.
type Global struct {
	SiteName       string
	SiteURL        string
	RecipientEmail string
	FromAddress    string
	FromName       string

	SuccessMessage string
	ButtonText     string

	AutoReply        bool
	AutoReplySubject string
	AutoReplyMessage string

	EmailTemplate string // default, plain, modern, corporate, dark, custom
	EmailLogoURL  string

	RecaptchaSiteKey   string
	RecaptchaSecret    string
	RecaptchaThreshold float64

	HoneypotEnabled bool
	GDPREnabled     bool
	GDPRRequired    bool
	GDPRText        string

	RateLimitCount  int
	RateLimitWindow int // seconds

	PrimaryColor string
	ButtonColor  string
}

// Overrides is the per-form layer.  String zero values and nil pointers mean
// "inherit"; pointer fields exist where false must be distinguishable from
// unset.
type Overrides struct {
	RecipientEmail string `json:"email,omitempty"`
	ButtonText     string `json:"button_text,omitempty"`
	SuccessMessage string `json:"success_message,omitempty"`
	RedirectURL    string `json:"redirect_url,omitempty"`

	AutoReply        *bool  `json:"auto_reply,omitempty"`
	AutoReplySubject string `json:"auto_reply_subject,omitempty"`
	AutoReplyMessage string `json:"auto_reply_message,omitempty"`

	EmailTemplate   string `json:"email_template,omitempty"`
	CustomEmailHTML string `json:"custom_email_html,omitempty"`

	PrimaryColor string `json:"primary_color,omitempty"`
	ButtonColor  string `json:"button_color,omitempty"`
}

// Effective is the fully resolved view handed to the pipeline and mailer.
type Effective struct {
	SiteName       string
	SiteURL        string
	RecipientEmail string
	FromAddress    string
	FromName       string

	SuccessMessage string
	ButtonText     string
	RedirectURL    string

	AutoReply        bool
	AutoReplySubject string
	AutoReplyMessage string

	EmailTemplate   string
	CustomEmailHTML string
	EmailLogoURL    string

	RecaptchaSiteKey   string
	RecaptchaSecret    string
	RecaptchaThreshold float64

	HoneypotEnabled bool
	GDPREnabled     bool
	GDPRRequired    bool
	GDPRText        string

	RateLimitCount  int
	RateLimitWindow int

	PrimaryColor string
	ButtonColor  string
}

// Hard-coded last-resort defaults.
const (
	defaultSuccessMessage = "Thank you! Your message has been sent."
	defaultButtonText     = "Send"
	defaultAutoReplySubj  = "Thank you for contacting {site_name}"
	defaultAutoReplyBody  = "Hi {name},\n\nWe received your message and will get back to you soon.\n\n{site_name}"
	defaultGDPRText       = "I consent to this site storing my submitted information."
	defaultPrimaryColor   = "#2271b1"
	defaultButtonColor    = "#2271b1"
	defaultRateLimit      = 5
	defaultRateWindow     = 60 // seconds
	defaultThreshold      = 0.5
)

// Resolve merges the three layers.  It never touches storage; both inputs
// are plain values, which keeps the function trivially testable.
func Resolve(o Overrides, g Global) Effective {
	e := Effective{
		SiteName:        g.SiteName,
		SiteURL:         g.SiteURL,
		FromAddress:     g.FromAddress,
		FromName:        g.FromName,
		EmailLogoURL:    g.EmailLogoURL,
		RedirectURL:     o.RedirectURL,
		CustomEmailHTML: o.CustomEmailHTML,

		RecaptchaSiteKey:   g.RecaptchaSiteKey,
		RecaptchaSecret:    g.RecaptchaSecret,
		RecaptchaThreshold: g.RecaptchaThreshold,

		HoneypotEnabled: g.HoneypotEnabled,
		GDPREnabled:     g.GDPREnabled,
		GDPRRequired:    g.GDPRRequired,

		RateLimitCount:  g.RateLimitCount,
		RateLimitWindow: g.RateLimitWindow,
	}

	e.RecipientEmail = firstOf(o.RecipientEmail, g.RecipientEmail)
	e.SuccessMessage = firstOf(o.SuccessMessage, g.SuccessMessage, defaultSuccessMessage)
	e.ButtonText = firstOf(o.ButtonText, g.ButtonText, defaultButtonText)

	if o.AutoReply != nil {
		e.AutoReply = *o.AutoReply
	} else {
		e.AutoReply = g.AutoReply
	}
	e.AutoReplySubject = firstOf(o.AutoReplySubject, g.AutoReplySubject, defaultAutoReplySubj)
	e.AutoReplyMessage = firstOf(o.AutoReplyMessage, g.AutoReplyMessage, defaultAutoReplyBody)

	e.EmailTemplate = firstOf(o.EmailTemplate, g.EmailTemplate, "default")
	e.GDPRText = firstOf(g.GDPRText, defaultGDPRText)
	e.PrimaryColor = firstOf(o.PrimaryColor, g.PrimaryColor, defaultPrimaryColor)
	e.ButtonColor = firstOf(o.ButtonColor, g.ButtonColor, defaultButtonColor)

	if e.RecaptchaThreshold == 0 {
		e.RecaptchaThreshold = defaultThreshold
	}
	if e.RateLimitCount == 0 {
		e.RateLimitCount = defaultRateLimit
	}
	if e.RateLimitWindow == 0 {
		e.RateLimitWindow = defaultRateWindow
	}

	return e
}

// firstOf returns the first non-empty string.
func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
