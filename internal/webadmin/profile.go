// ABOUTME: Staff profile page and PATCH /profile handler
// ABOUTME: Shows the signed-in member's backend profile and saves name changes

package webadmin

import (
	"context"
	"net/http"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/forms"
	"github.com/2389/bloodlink-console/internal/query"
	"github.com/2389/bloodlink-console/internal/store"
)

// handleProfilePage renders the profile page for either shell
func (c *Console) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	active := "/staff/profile"
	if identity(r).IsAdmin() {
		active = "/admin/profile"
	}
	data := profilePageData{pageData: c.newPageData(w, r, "Profile", active)}
	data.Profile.CSRFToken = data.CSRFToken

	profile, err := c.me(r.Context(), scope(r))
	if err != nil {
		c.logger.Error("failed to load profile", "error", err)
		data.Profile.Error = api.Message(err)
	} else {
		data.Profile.Form = forms.ProfileFormFrom(*profile)
		data.Profile.Role = profile.Role
	}
	c.renderPage(w, http.StatusOK, "profile.html", data)
}

// handleProfileUpdate saves the profile form and re-renders it
func (c *Console) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	form := forms.BindProfile(r.PostForm)
	view := profileFormData{Form: form, Role: r.PostForm.Get("role")}
	if cookie, err := r.Cookie(CSRFCookieName); err == nil {
		view.CSRFToken = cookie.Value
	}

	if errs := form.Validate(); errs != nil {
		view.Errors = errs
		c.renderPartial(w, http.StatusUnprocessableEntity, "profile_form", view)
		return
	}

	var updated *api.StaffProfile
	patch := form.Payload()
	ok := c.apply(w, r, change{
		mutation: query.Mutation{
			Name: "profile.update",
			// actions embed the staff member's name
			Invalidates: []query.Key{profileKey, actionsKey},
			Run: func(ctx context.Context) (err error) {
				updated, err = c.backend.Staff.UpdateMe(ctx, patch)
				return err
			},
		},
		success:  "Profile updated successfully",
		failure:  "Failed to update profile",
		keepOpen: true,
		activity: func() store.ActivityEntry {
			return store.ActivityEntry{
				Action:     store.ActivityProfileUpdate,
				TargetType: "profile",
				TargetID:   updated.ID,
				Summary:    "Renamed to " + updated.FullName(),
			}
		},
	})
	if !ok {
		return
	}

	view.Form = forms.ProfileFormFrom(*updated)
	view.Role = updated.Role
	c.renderPartial(w, http.StatusOK, "profile_form", view)
}
