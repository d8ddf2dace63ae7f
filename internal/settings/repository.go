// internal/settings/repository.go
//
// Key/value persistence for global settings.
//
// Context
//   Globals live in a two-column `setting` table so new keys never require a
//   migration.  Load materializes every row into the typed Global struct;
//   Save upserts only the keys it knows about.  Unknown rows are preserved,
//   which lets operators park values for features that ship later.
//
//------------------------------------------------------------------------------

package settings

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// Repository wraps the setting table.
type Repository struct {
	db *sqlx.DB
}

// NewRepository returns a settings repository bound to db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Load reads all rows and populates a Global.  Missing keys stay at their
// zero values; Resolve supplies the fallbacks.
func (r *Repository) Load(ctx context.Context) (Global, error) {
	const q = `SELECT name, value FROM setting`

	rows, err := r.db.QueryxContext(ctx, q)
	if err != nil {
		return Global{}, err
	}
	defer rows.Close()

	kv := make(map[string]string, 32)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Global{}, err
		}
		kv[name] = value
	}
	if err := rows.Err(); err != nil {
		return Global{}, err
	}

	return fromMap(kv), nil
}

// Save upserts every known key from g.
func (r *Repository) Save(ctx context.Context, g Global) error {
	const q = `
        INSERT INTO setting (name, value) VALUES (?, ?)
        ON DUPLICATE KEY UPDATE value = VALUES(value)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for name, value := range toMap(g) {
		if _, err := tx.ExecContext(ctx, q, name, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Key names.  Stable; they appear in exports and operator tooling.
const (
	keySiteName       = "site_name"
	keySiteURL        = "site_url"
	keyRecipient      = "recipient_email"
	keyFromAddress    = "from_address"
	keyFromName       = "from_name"
	keySuccessMsg     = "success_message"
	keyButtonText     = "button_text"
	keyAutoReply      = "auto_reply"
	keyAutoReplySubj  = "auto_reply_subject"
	keyAutoReplyMsg   = "auto_reply_message"
	keyEmailTemplate  = "email_template"
	keyEmailLogo      = "email_logo_url"
	keyRecapSite      = "recaptcha_site_key"
	keyRecapSecret    = "recaptcha_secret"
	keyRecapThreshold = "recaptcha_threshold"
	keyHoneypot       = "honeypot_enabled"
	keyGDPREnabled    = "gdpr_enabled"
	keyGDPRRequired   = "gdpr_required"
	keyGDPRText       = "gdpr_text"
	keyRateCount      = "rate_limit_count"
	keyRateWindow     = "rate_limit_window"
	keyPrimaryColor   = "primary_color"
	keyButtonColor    = "button_color"
)

func fromMap(kv map[string]string) Global {
	b := func(k string) bool {
		v, _ := strconv.ParseBool(kv[k])
		return v
	}
	i := func(k string) int {
		v, _ := strconv.Atoi(kv[k])
		return v
	}
	f := func(k string) float64 {
		v, _ := strconv.ParseFloat(kv[k], 64)
		return v
	}

	return Global{
		SiteName:       kv[keySiteName],
		SiteURL:        kv[keySiteURL],
		RecipientEmail: kv[keyRecipient],
		FromAddress:    kv[keyFromAddress],
		FromName:       kv[keyFromName],

		SuccessMessage: kv[keySuccessMsg],
		ButtonText:     kv[keyButtonText],

		AutoReply:        b(keyAutoReply),
		AutoReplySubject: kv[keyAutoReplySubj],
		AutoReplyMessage: kv[keyAutoReplyMsg],

		EmailTemplate: kv[keyEmailTemplate],
		EmailLogoURL:  kv[keyEmailLogo],

		RecaptchaSiteKey:   kv[keyRecapSite],
		RecaptchaSecret:    kv[keyRecapSecret],
		RecaptchaThreshold: f(keyRecapThreshold),

		HoneypotEnabled: b(keyHoneypot),
		GDPREnabled:     b(keyGDPREnabled),
		GDPRRequired:    b(keyGDPRRequired),
		GDPRText:        kv[keyGDPRText],

		RateLimitCount:  i(keyRateCount),
		RateLimitWindow: i(keyRateWindow),

		PrimaryColor: kv[keyPrimaryColor],
		ButtonColor:  kv[keyButtonColor],
	}
}

func toMap(g Global) map[string]string {
	return map[string]string{
		keySiteName:       g.SiteName,
		keySiteURL:        g.SiteURL,
		keyRecipient:      g.RecipientEmail,
		keyFromAddress:    g.FromAddress,
		keyFromName:       g.FromName,
		keySuccessMsg:     g.SuccessMessage,
		keyButtonText:     g.ButtonText,
		keyAutoReply:      strconv.FormatBool(g.AutoReply),
		keyAutoReplySubj:  g.AutoReplySubject,
		keyAutoReplyMsg:   g.AutoReplyMessage,
		keyEmailTemplate:  g.EmailTemplate,
		keyEmailLogo:      g.EmailLogoURL,
		keyRecapSite:      g.RecaptchaSiteKey,
		keyRecapSecret:    g.RecaptchaSecret,
		keyRecapThreshold: strconv.FormatFloat(g.RecaptchaThreshold, 'f', -1, 64),
		keyHoneypot:       strconv.FormatBool(g.HoneypotEnabled),
		keyGDPREnabled:    strconv.FormatBool(g.GDPREnabled),
		keyGDPRRequired:   strconv.FormatBool(g.GDPRRequired),
		keyGDPRText:       g.GDPRText,
		keyRateCount:      strconv.Itoa(g.RateLimitCount),
		keyRateWindow:     strconv.Itoa(g.RateLimitWindow),
		keyPrimaryColor:   g.PrimaryColor,
		keyButtonColor:    g.ButtonColor,
	}
}
