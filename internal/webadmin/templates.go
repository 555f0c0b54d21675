// ABOUTME: Template rendering functions for the console
// ABOUTME: Loads templates from the embedded filesystem with the console's helper funcs

package webadmin

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/assets"
	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/forms"
)

// Template data types
type loginData struct {
	Title      string
	Error      string
	SignInLink string
}

type navItem struct {
	Label  string
	Href   string
	Active bool
}

// pageData is shared by every page inside a shell.
type pageData struct {
	Title     string
	User      *auth.Identity
	CSRFToken string
	Nav       []navItem
}

// tablePageData is a page whose body is one lazily loaded table.
type tablePageData struct {
	pageData
	TableID  string
	TableURL string
	Filters  []filterGroup
	Campaign *api.Campaign
	Back     string
}

// filterGroup is a row of filter links above a table.
type filterGroup struct {
	Label   string
	Options []filterOption
}

type filterOption struct {
	Label  string
	URL    string
	Active bool
}

type profilePageData struct {
	pageData
	Profile profileFormData
}

type profileFormData struct {
	Form      *forms.ProfileForm
	Errors    forms.FieldErrors
	Role      string
	Error     string
	CSRFToken string
}

type dashboardData struct {
	pageData
}

type dashboardStats struct {
	Campaigns       int
	AvailableUnits  int
	PendingRequests int
	Errors          []string
}

type helpTopic struct {
	Slug   string
	Title  string
	Active bool
}

type helpPageData struct {
	pageData
	Topics  []helpTopic
	Content template.HTML
}

// navFor returns the sidebar for a role with active marking the current page.
func navFor(role auth.Role, active string) []navItem {
	var items []navItem
	if role == auth.RoleAdmin {
		items = []navItem{
			{Label: "Dashboard", Href: "/admin/"},
			{Label: "Campaigns", Href: "/admin/campaigns"},
			{Label: "Blood Stock", Href: "/admin/blood-stock"},
			{Label: "Profile", Href: "/admin/profile"},
			{Label: "Help", Href: "/help"},
		}
	} else {
		items = []navItem{
			{Label: "Campaigns", Href: "/staff/"},
			{Label: "Donations", Href: "/staff/donations"},
			{Label: "Blood Unit Management", Href: "/staff/blood-units"},
			{Label: "Blood Unit History", Href: "/staff/blood-unit-history"},
			{Label: "Profile", Href: "/staff/profile"},
			{Label: "Help", Href: "/help"},
		}
	}
	for i := range items {
		items[i].Active = items[i].Href == active
	}
	return items
}

// newPageData prepares the shell data and makes sure a CSRF cookie exists.
func (c *Console) newPageData(w http.ResponseWriter, r *http.Request, title, active string) pageData {
	id := identity(r)
	_, csrfToken := c.ensureCSRFToken(w, r)
	return pageData{
		Title:     title,
		User:      id,
		CSRFToken: csrfToken,
		Nav:       navFor(id.Role, active),
	}
}

func (c *Console) funcs() template.FuncMap {
	return template.FuncMap{
		"label": func(v any) string { return api.Label(fmt.Sprint(v)) },
		"date":  func(v any) string { return api.DateOnly(fmt.Sprint(v)) },
		"num":   func(n int) string { return c.printer.Sprintf("%d", n) },
		"badge": statusBadge,
		"when":  func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
		"asset": assets.Path,
	}
}

// statusBadge picks the badge style for any status value. Unknown values
// get the neutral style.
func statusBadge(v any) string {
	switch fmt.Sprint(v) {
	case "active", "available", "completed":
		return "badge badge-ok"
	case "not_started", "pending":
		return "badge badge-wait"
	case "ended", "rejected", "expired", "damaged":
		return "badge badge-bad"
	case "used":
		return "badge badge-muted"
	default:
		return "badge"
	}
}

// renderPage renders a full page: the base layout, the page file and all partials.
func (c *Console) renderPage(w http.ResponseWriter, status int, page string, data any) {
	tmpl := template.Must(template.New("base.html").Funcs(c.funcs()).ParseFS(templateFS,
		"templates/base.html",
		"templates/"+page,
		"templates/partials/*.html",
	))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		c.logger.Error("failed to render page", "page", page, "error", err)
	}
}

// renderPartial renders one named partial for an htmx swap.
func (c *Console) renderPartial(w http.ResponseWriter, status int, name string, data any) {
	tmpl := template.Must(template.New(name).Funcs(c.funcs()).ParseFS(templateFS, "templates/partials/*.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		c.logger.Error("failed to render partial", "partial", name, "error", err)
	}
}

func (c *Console) renderLogin(w http.ResponseWriter, status int, errMsg string) {
	tmpl := template.Must(template.New("login.html").Funcs(c.funcs()).ParseFS(templateFS, "templates/login.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := loginData{
		Title:      "Sign in",
		Error:      errMsg,
		SignInLink: c.signInLink(),
	}
	if err := tmpl.Execute(w, data); err != nil {
		c.logger.Error("failed to render login page", "error", err)
	}
}
