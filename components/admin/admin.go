// components/admin/admin.go
//
// FormRelayer – admin component: the builder UI and its API.
//
// Context
//   Everything here sits behind the bearer-token middleware.  The component
//   serves the single-page builder (embedded HTML + JS) and a JSON API the
//   builder talks to:
//
//     GET    /                          builder page
//     GET    /assets/builder.js         builder logic
//     GET    /api/forms                 list forms with unread counts
//     POST   /api/forms                 create (optionally from a template)
//     GET    /api/forms/{id}            fetch one form
//     PUT    /api/forms/{id}            save title, status, fields, settings
//     DELETE /api/forms/{id}            move to trash
//     POST   /api/forms/{id}/template   replace fields from a template
//     POST   /api/preview               render posted fields (sandboxed doc)
//     GET    /api/forms/{id}/export     single-form export file
//     GET    /api/export                whole-site export file
//     POST   /api/import                import an export file
//     GET    /api/forms/{id}/submissions  paged submission list
//     GET    /api/submissions/{id}      one submission
//     POST   /api/submissions/{id}/read flip the read flag
//     GET    /api/settings              site-wide settings
//     PUT    /api/settings              save site-wide settings
//     GET    /api/templates             template catalog
//
//   Writes that change a form invalidate its cache entry so the public
//   surface picks the change up immediately.
//
//------------------------------------------------------------------------------

package admin

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/formrelayer/formrelayer/internal/component"
	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/importexport"
	"github.com/formrelayer/formrelayer/internal/middleware"
	"github.com/formrelayer/formrelayer/internal/render"
	"github.com/formrelayer/formrelayer/internal/schema"
	"github.com/formrelayer/formrelayer/internal/settings"
	"github.com/formrelayer/formrelayer/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets/builder.js
var builderJS []byte

const maxImportBytes = 4 << 20 // export files are small; 4 MB is generous

// Admin is the builder component.
type Admin struct {
	deps component.Deps
}

func init() {
	component.Register(&Admin{})

	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	view.RegisterSource("admin", sub)
}

func (c *Admin) Name() string      { return "admin" }
func (c *Admin) MountPath() string { return "/admin" }

// Init receives shared services at boot.
func (c *Admin) Init(deps component.Deps) error {
	c.deps = deps
	return nil
}

// Routes mounts the builder page and API behind token auth.
func (c *Admin) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.AdminAuth(c.deps.Config.Admin.Token))

	r.Get("/", c.getBuilderPage)
	r.Get("/assets/builder.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(builderJS)
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/forms", c.listForms)
		api.Post("/forms", c.createForm)
		api.Get("/forms/{id}", c.getForm)
		api.Put("/forms/{id}", c.saveForm)
		api.Delete("/forms/{id}", c.trashForm)
		api.Post("/forms/{id}/template", c.applyTemplate)
		api.Post("/preview", c.preview)

		api.Get("/forms/{id}/export", c.exportForm)
		api.Get("/export", c.exportAll)
		api.Post("/import", c.importForms)

		api.Get("/forms/{id}/submissions", c.listSubmissions)
		api.Get("/submissions/{id}", c.getSubmission)
		api.Post("/submissions/{id}/read", c.setSubmissionRead)

		api.Get("/settings", c.getSettings)
		api.Put("/settings", c.putSettings)
		api.Get("/templates", c.listTemplates)
	})
	return r
}

// -----------------------------------------------------------------------------
// Builder page
// -----------------------------------------------------------------------------

func (c *Admin) getBuilderPage(w http.ResponseWriter, r *http.Request) {
	if err := view.Render(w, "admin", "builder", nil, view.CacheDefault); err != nil {
		zap.S().Errorw("builder page template failed", "err", err)
	}
}

// -----------------------------------------------------------------------------
// Forms CRUD
// -----------------------------------------------------------------------------

// formSummary is the list-view projection.
type formSummary struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Fields    int    `json:"field_count"`
	Unread    int    `json:"unread"`
	UpdatedAt string `json:"updated_at"`
}

func (c *Admin) listForms(w http.ResponseWriter, r *http.Request) {
	forms, err := c.deps.Forms.List(r.Context(), r.URL.Query().Get("trashed") == "1")
	if err != nil {
		c.fail(w, err)
		return
	}

	out := make([]formSummary, 0, len(forms))
	for _, f := range forms {
		unread, err := c.deps.Submissions.UnreadCount(r.Context(), f.ID)
		if err != nil {
			c.fail(w, err)
			return
		}
		out = append(out, formSummary{
			ID: f.ID, Slug: f.Slug, Title: f.Title, Status: f.Status,
			Fields: len(f.Fields), Unread: unread,
			UpdatedAt: f.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *Admin) createForm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "unreadable request body")
		return
	}
	if req.Template == "" {
		req.Template = "blank"
	}

	f, err := form.NewFromTemplate(req.Template, req.Title)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if _, err := c.deps.Forms.Create(r.Context(), f); err != nil {
		c.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, formJSON(f))
}

func (c *Admin) getForm(w http.ResponseWriter, r *http.Request) {
	f, ok := c.loadForm(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, formJSON(f))
}

// savePayload is what the builder sends on every explicit save.
type savePayload struct {
	Title    string             `json:"title"`
	Status   string             `json:"status"`
	Fields   []schema.Field     `json:"fields"`
	Settings settings.Overrides `json:"settings"`
}

func (c *Admin) saveForm(w http.ResponseWriter, r *http.Request) {
	f, ok := c.loadForm(w, r)
	if !ok {
		return
	}

	var req savePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "unreadable request body")
		return
	}
	if req.Title != "" {
		f.Title = req.Title
	}
	switch req.Status {
	case "", f.Status:
	case form.StatusDraft, form.StatusPublished:
		f.Status = req.Status
	default:
		badRequest(w, fmt.Sprintf("invalid status %q", req.Status))
		return
	}

	schema.Normalize(req.Fields)
	f.Fields = req.Fields
	f.Settings = req.Settings

	if err := c.deps.Forms.Update(r.Context(), f); err != nil {
		if errors.Is(err, form.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		badRequest(w, err.Error())
		return
	}
	c.deps.FormCache.Invalidate(f.Slug)
	writeJSON(w, http.StatusOK, formJSON(f))
}

func (c *Admin) trashForm(w http.ResponseWriter, r *http.Request) {
	f, ok := c.loadForm(w, r)
	if !ok {
		return
	}
	if err := c.deps.Forms.Trash(r.Context(), f.ID); err != nil {
		c.fail(w, err)
		return
	}
	c.deps.FormCache.Invalidate(f.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// applyTemplate replaces a form's fields with a template's bundle.  The
// builder asks for confirmation first; the server just does it.
func (c *Admin) applyTemplate(w http.ResponseWriter, r *http.Request) {
	f, ok := c.loadForm(w, r)
	if !ok {
		return
	}
	var req struct {
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "unreadable request body")
		return
	}

	fresh, err := form.NewFromTemplate(req.Template, f.Title)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	f.Fields = fresh.Fields
	if err := c.deps.Forms.Update(r.Context(), f); err != nil {
		c.fail(w, err)
		return
	}
	c.deps.FormCache.Invalidate(f.Slug)
	writeJSON(w, http.StatusOK, formJSON(f))
}

// preview renders posted fields as a standalone document for the builder's
// sandboxed iframe.  Nothing is persisted.
func (c *Admin) preview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fields []schema.Field `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "unreadable request body")
		return
	}
	schema.Normalize(req.Fields)

	fieldsHTML, err := render.Fields(req.Fields, render.ModePreview)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><style>%s
body { font-family: sans-serif; margin: 16px; }</style></head>
<body>%s<script>%s</script></body></html>`,
		render.FormCSS, fieldsHTML, render.ConditionalJS)
}

// -----------------------------------------------------------------------------
// Import / export
// -----------------------------------------------------------------------------

func (c *Admin) exportForm(w http.ResponseWriter, r *http.Request) {
	f, ok := c.loadForm(w, r)
	if !ok {
		return
	}
	env, err := importexport.ExportForm(f)
	if err != nil {
		c.fail(w, err)
		return
	}
	downloadJSON(w, fmt.Sprintf("form-%s.json", f.Slug), env)
}

func (c *Admin) exportAll(w http.ResponseWriter, r *http.Request) {
	forms, err := c.deps.Forms.List(r.Context(), false)
	if err != nil {
		c.fail(w, err)
		return
	}
	env, err := importexport.ExportAll(forms, c.deps.Config.HTTP.BaseURL)
	if err != nil {
		c.fail(w, err)
		return
	}
	downloadJSON(w, "formrelayer-export.json", env)
}

func (c *Admin) importForms(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		badRequest(w, "unreadable request body")
		return
	}
	res, err := importexport.Import(r.Context(), c.deps.Forms, raw)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// Submissions
// -----------------------------------------------------------------------------

func (c *Admin) listSubmissions(w http.ResponseWriter, r *http.Request) {
	f, ok := c.loadForm(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	const perPage = 50

	subs, err := c.deps.Submissions.ListByForm(r.Context(), f.ID, perPage, (page-1)*perPage)
	if err != nil {
		c.fail(w, err)
		return
	}
	unread, err := c.deps.Submissions.UnreadCount(r.Context(), f.ID)
	if err != nil {
		c.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"unread":      unread,
		"page":        page,
	})
}

func (c *Admin) getSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid submission id")
		return
	}
	s, err := c.deps.Submissions.ByID(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (c *Admin) setSubmissionRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid submission id")
		return
	}
	var req struct {
		Read bool `json:"read"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "unreadable request body")
		return
	}
	if err := c.deps.Submissions.SetRead(r.Context(), id, req.Read); err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// Settings and templates
// -----------------------------------------------------------------------------

func (c *Admin) getSettings(w http.ResponseWriter, r *http.Request) {
	g, err := c.deps.Settings.Load(r.Context())
	if err != nil {
		c.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (c *Admin) putSettings(w http.ResponseWriter, r *http.Request) {
	var g settings.Global
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		badRequest(w, "unreadable request body")
		return
	}
	if err := c.deps.Settings.Save(r.Context(), g); err != nil {
		c.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (c *Admin) listTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, form.Templates())
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// loadForm resolves {id} and writes the error response on failure.
func (c *Admin) loadForm(w http.ResponseWriter, r *http.Request) (*form.Form, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid form id")
		return nil, false
	}
	f, err := c.deps.Forms.ByID(r.Context(), id)
	if errors.Is(err, form.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		c.fail(w, err)
		return nil, false
	}
	return f, true
}

// formJSON is the full-form projection the builder edits.
func formJSON(f *form.Form) map[string]any {
	return map[string]any{
		"id":       f.ID,
		"slug":     f.Slug,
		"title":    f.Title,
		"status":   f.Status,
		"fields":   f.Fields,
		"settings": f.Settings,
	}
}

func (c *Admin) fail(w http.ResponseWriter, err error) {
	zap.S().Errorw("admin api failure", "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func downloadJSON(w http.ResponseWriter, filename string, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
