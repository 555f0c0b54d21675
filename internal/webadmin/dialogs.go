// ABOUTME: Single page-level dialog filled by GET /dialogs/{kind}/{id}
// ABOUTME: Each kind loads its record, pre-populates its form and declares who may open it

package webadmin

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/forms"
)

// dialogData holds data for the dialog partial
type dialogData struct {
	Kind      string
	Title     string
	Error     string // detail fetch failure; the dialog offers no submit
	CSRFToken string

	// Submit and Method are where the form goes; empty for read-only dialogs.
	Submit string
	Method string

	Form        any
	Errors      forms.FieldErrors
	Record      any
	Staff       *api.StaffProfile
	Options     []string
	Description template.HTML
}

type dialogSpec struct {
	roles []auth.Role
	load  func(c *Console, ctx context.Context, subject, id string) dialogData
}

var (
	everyone  = []auth.Role{auth.RoleAdmin, auth.RoleStaff, auth.RoleDoctor}
	staffOnly = []auth.Role{auth.RoleStaff, auth.RoleDoctor}
	adminOnly = []auth.Role{auth.RoleAdmin}
)

var dialogs = map[string]dialogSpec{
	"create-campaign":   {roles: adminOnly, load: (*Console).createCampaignDialog},
	"edit-campaign":     {roles: adminOnly, load: (*Console).editCampaignDialog},
	"view-campaign":     {roles: everyone, load: (*Console).viewCampaignDialog},
	"view-donation":     {roles: staffOnly, load: (*Console).viewDonationDialog},
	"update-status":     {roles: staffOnly, load: (*Console).updateStatusDialog},
	"create-blood-unit": {roles: staffOnly, load: (*Console).createBloodUnitDialog},
	"view-blood-unit":   {roles: everyone, load: (*Console).viewBloodUnitDialog},
	"update-blood-unit": {roles: staffOnly, load: (*Console).updateBloodUnitDialog},
	"view-action":       {roles: staffOnly, load: (*Console).viewActionDialog},
}

// handleDialog renders the dialog for kind and the selected record id
func (c *Console) handleDialog(w http.ResponseWriter, r *http.Request) {
	kind, id := r.PathValue("kind"), r.PathValue("id")
	spec, ok := dialogs[kind]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !slices.Contains(spec.roles, identity(r).Role) {
		http.Error(w, "role not permitted", http.StatusForbidden)
		return
	}

	r, csrfToken := c.ensureCSRFToken(w, r)
	data := spec.load(c, r.Context(), scope(r), id)
	data.Kind = kind
	data.CSRFToken = csrfToken
	if data.Error != "" {
		c.logger.Warn("dialog load failed", "kind", kind, "id", id, "error", data.Error)
	}
	c.renderDialog(w, http.StatusOK, data)
}

func (c *Console) renderDialog(w http.ResponseWriter, status int, data dialogData) {
	c.renderPartial(w, status, "dialog", data)
}

func failedDialog(title string, err error) dialogData {
	return dialogData{Title: title, Error: api.Message(err)}
}

func campaignStatusOptions() []string {
	out := make([]string, len(api.CampaignStatuses))
	for i, s := range api.CampaignStatuses {
		out[i] = string(s)
	}
	return out
}

func bloodUnitStatusOptions() []string {
	out := make([]string, len(api.BloodUnitStatuses))
	for i, s := range api.BloodUnitStatuses {
		out[i] = string(s)
	}
	return out
}

// campaignFormDialog is shared by create, edit and their failed submits.
func campaignFormDialog(id string, form *forms.CampaignForm, errs forms.FieldErrors) dialogData {
	d := dialogData{
		Kind:    "create-campaign",
		Title:   "Create Campaign",
		Submit:  "/campaigns",
		Method:  "post",
		Form:    form,
		Errors:  errs,
		Options: campaignStatusOptions(),
	}
	if id != "" {
		d.Kind = "edit-campaign"
		d.Title = "Edit Campaign"
		d.Submit = "/campaigns/" + id
		d.Method = "patch"
	}
	return d
}

func (c *Console) createCampaignDialog(_ context.Context, _, _ string) dialogData {
	return campaignFormDialog("", forms.NewCampaignForm(), nil)
}

func (c *Console) editCampaignDialog(ctx context.Context, subject, id string) dialogData {
	campaign, err := c.getCampaign(ctx, subject, id)
	if err != nil {
		return failedDialog("Edit Campaign", err)
	}
	return campaignFormDialog(id, forms.CampaignFormFrom(*campaign), nil)
}

func (c *Console) viewCampaignDialog(ctx context.Context, subject, id string) dialogData {
	campaign, err := c.getCampaign(ctx, subject, id)
	if err != nil {
		return failedDialog("Campaign", err)
	}
	return dialogData{
		Title:       campaign.Name,
		Record:      campaign,
		Description: c.markdown(campaign.Description),
	}
}

// markdown renders a campaign description. goldmark drops raw HTML by default.
func (c *Console) markdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		c.logger.Error("failed to convert markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func (c *Console) viewDonationDialog(ctx context.Context, subject, id string) dialogData {
	donation, err := c.getDonation(ctx, subject, id)
	if err != nil {
		return failedDialog("Donation Request", err)
	}
	return dialogData{Title: "Donation Request", Record: donation}
}

func statusFormDialog(id string, form *forms.DonationStatusForm, errs forms.FieldErrors) dialogData {
	return dialogData{
		Kind:    "update-status",
		Title:   "Update Status",
		Submit:  "/donation-requests/" + id + "/status",
		Method:  "patch",
		Form:    form,
		Errors:  errs,
		Options: []string{string(api.DonationCompleted), string(api.DonationRejected)},
	}
}

func (c *Console) updateStatusDialog(ctx context.Context, subject, id string) dialogData {
	donation, err := c.getDonation(ctx, subject, id)
	if err != nil {
		return failedDialog("Update Status", err)
	}
	d := statusFormDialog(id, forms.DonationStatusFormFrom(*donation), nil)
	d.Record = donation
	return d
}

func bloodUnitCreateDialog(form *forms.BloodUnitCreateForm, errs forms.FieldErrors) dialogData {
	return dialogData{
		Kind:    "create-blood-unit",
		Title:   "Create Blood Unit",
		Submit:  "/blood-units",
		Method:  "post",
		Form:    form,
		Errors:  errs,
		Options: bloodUnitStatusOptions(),
	}
}

// createBloodUnitDialog opens from a donation request; id is the request.
func (c *Console) createBloodUnitDialog(ctx context.Context, subject, id string) dialogData {
	donation, err := c.getDonation(ctx, subject, id)
	if err != nil {
		return failedDialog("Create Blood Unit", err)
	}
	donor := donation.Donor
	form := forms.NewBloodUnitCreateForm(donor.ID, donor.FullName())
	if group, rh, ok := splitBloodType(donor.BloodType); ok {
		form = form.WithBloodType(group, rh)
	}
	return bloodUnitCreateDialog(form, nil)
}

// splitBloodType splits "AB+" into "AB" and "+".
func splitBloodType(bt string) (group, rh string, ok bool) {
	bt = strings.TrimSpace(bt)
	if len(bt) < 2 {
		return "", "", false
	}
	rh = bt[len(bt)-1:]
	if rh != "+" && rh != "-" {
		return "", "", false
	}
	return bt[:len(bt)-1], rh, true
}

func (c *Console) viewBloodUnitDialog(ctx context.Context, subject, id string) dialogData {
	unit, err := c.getUnit(ctx, subject, id)
	if err != nil {
		return failedDialog("Blood Unit", err)
	}
	return dialogData{Title: "Blood Unit " + unit.BloodType(), Record: unit}
}

func bloodUnitUpdateDialog(id string, form *forms.BloodUnitUpdateForm, errs forms.FieldErrors) dialogData {
	return dialogData{
		Kind:    "update-blood-unit",
		Title:   "Update Blood Unit",
		Submit:  "/blood-units/" + id,
		Method:  "patch",
		Form:    form,
		Errors:  errs,
		Options: bloodUnitStatusOptions(),
	}
}

// updateBloodUnitDialog loads the unit and the staff profile concurrently.
func (c *Console) updateBloodUnitDialog(ctx context.Context, subject, id string) dialogData {
	var (
		unit    *api.BloodUnit
		profile *api.StaffProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		unit, err = c.getUnit(gctx, subject, id)
		return err
	})
	g.Go(func() (err error) {
		profile, err = c.me(gctx, subject)
		return err
	})
	if err := g.Wait(); err != nil {
		return failedDialog("Update Blood Unit", err)
	}

	d := bloodUnitUpdateDialog(id, forms.BloodUnitUpdateFormFrom(*unit, *profile), nil)
	d.Record = unit
	d.Staff = profile
	return d
}

// viewActionDialog loads the action and the staff profile concurrently.
func (c *Console) viewActionDialog(ctx context.Context, subject, id string) dialogData {
	var (
		action  *api.BloodUnitAction
		profile *api.StaffProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		action, err = c.getAction(gctx, subject, id)
		return err
	})
	g.Go(func() (err error) {
		profile, err = c.me(gctx, subject)
		return err
	})
	if err := g.Wait(); err != nil {
		return failedDialog("Blood Unit Action", err)
	}
	return dialogData{Title: action.Action.Display(), Record: action, Staff: profile}
}
