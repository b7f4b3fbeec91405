package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"volunteerconnect/internal/application/orchestrators"
	"volunteerconnect/internal/application/projections"
	"volunteerconnect/internal/domain/record"
	"volunteerconnect/internal/page"
)

// Inline messages shown above a rejected form.
const (
	msgInvalidLogin   = "Invalid username or password."
	msgFormHasErrors  = "Form contains errors, please correct before submitting."
	msgMessageSent    = "Thanks for sending a message!"
	msgContactMissing = "That contact no longer exists."
)

// fieldMessages explains each field check to the person filling the form.
var fieldMessages = map[string]string{
	"fullName":      "Full name is required.",
	"contactNumber": "Contact number must be in the form ###-###-####.",
	"emailAddress":  "Email address must look like name@example.com.",
	"subject":       "Subject is required.",
	"message":       "Message is required.",
	"preferredRole": "Preferred role is required.",
}

// formError turns a validation failure into its inline message.
func formError(err error) string {
	var ve *record.ValidationError
	if errors.As(err, &ve) {
		if msg, ok := fieldMessages[ve.Field]; ok {
			return msg
		}
	}
	return msgFormHasErrors
}

// formValues copies the named fields out of a parsed form.
func formValues(r *http.Request, fields ...string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f] = r.PostFormValue(f)
	}
	return out
}

// redirectTo answers a form post by sending the browser to fragment.
func redirectTo(w http.ResponseWriter, r *http.Request, fragment string) {
	http.Redirect(w, r, pageURL(fragment), http.StatusSeeOther)
}

// handleLogin checks the login form against the roster.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	tab, err := a.tabFor(r)
	if err != nil {
		internalError(w, err)
		return
	}

	_, err = orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		UserName: r.PostFormValue("userName"),
		Password: r.PostFormValue("password"),
	}, orchestrators.LoginDeps{
		Assets:   a.fetcher,
		Registry: tab.Users,
		Roster:   a.roster,
		Session:  tab.Session,
		Timer:    tab.Guard,
	})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		tab.SetFlash(Flash{
			Error:  msgInvalidLogin,
			Form:   formValues(r, "userName"),
			Target: page.Login.Path(),
		})
		redirectTo(w, r, page.Login.Path())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	redirectTo(w, r, page.ContactList.Path())
}

// handleLogout clears the session identity.
func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	tab, err := a.tabFor(r)
	if err != nil {
		internalError(w, err)
		return
	}
	if err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutDeps{
		Session: tab.Session,
		Timer:   tab.Guard,
	}); err != nil {
		internalError(w, err)
		return
	}
	redirectTo(w, r, page.Login.Path())
}

// guardedTab returns the tab of a logged-in request. Anyone else is sent to
// the login page and ok is false.
func (a *App) guardedTab(w http.ResponseWriter, r *http.Request) (*Tab, bool) {
	tab, err := a.tabFor(r)
	if err != nil {
		internalError(w, err)
		return nil, false
	}
	if !tab.Guard.LoggedIn(r.Context()) {
		slog.Info("auth_event", "event", "unauthorized", "path", r.URL.Path)
		redirectTo(w, r, page.Login.Path())
		return nil, false
	}
	tab.activity(r.Context())
	return tab, true
}

func contactInput(r *http.Request) orchestrators.ContactInput {
	return orchestrators.ContactInput{
		FullName:      r.PostFormValue("fullName"),
		ContactNumber: r.PostFormValue("contactNumber"),
		EmailAddress:  r.PostFormValue("emailAddress"),
	}
}

var contactFields = []string{"fullName", "contactNumber", "emailAddress"}

// handleAddContact stores a new contact in the device's local storage.
func (a *App) handleAddContact(w http.ResponseWriter, r *http.Request) {
	tab, ok := a.guardedTab(w, r)
	if !ok {
		return
	}
	_, err := orchestrators.ExecuteAddContact(r.Context(), contactInput(r), orchestrators.ContactDeps{
		Store: tab.Local,
		Now:   a.now,
	})
	if errors.Is(err, record.ErrValidation) {
		tab.SetFlash(Flash{Error: formError(err), Form: formValues(r, contactFields...), Target: page.Edit.Path()})
		redirectTo(w, r, page.Edit.Path()+projections.AddHash)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	redirectTo(w, r, page.ContactList.Path())
}

// handleEditContact replaces the contact stored under {key}.
func (a *App) handleEditContact(w http.ResponseWriter, r *http.Request) {
	tab, ok := a.guardedTab(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	err := orchestrators.ExecuteEditContact(r.Context(), key, contactInput(r), orchestrators.ContactDeps{
		Store: tab.Local,
		Now:   a.now,
	})
	switch {
	case errors.Is(err, record.ErrValidation):
		tab.SetFlash(Flash{Error: formError(err), Form: formValues(r, contactFields...), Target: page.Edit.Path()})
		redirectTo(w, r, fmt.Sprintf("%s#%s", page.Edit.Path(), key))
	case errors.Is(err, record.ErrNotFound):
		tab.SetFlash(Flash{Error: msgContactMissing, Target: page.ContactList.Path()})
		redirectTo(w, r, page.ContactList.Path())
	case err != nil:
		internalError(w, err)
	default:
		redirectTo(w, r, page.ContactList.Path())
	}
}

// handleDeleteContact removes {key}; deleting a missing contact is not an error.
func (a *App) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	tab, ok := a.guardedTab(w, r)
	if !ok {
		return
	}
	err := orchestrators.ExecuteDeleteContact(r.Context(), chi.URLParam(r, "key"), orchestrators.ContactDeps{
		Store: tab.Local,
		Now:   a.now,
	})
	if err != nil && !errors.Is(err, record.ErrNotFound) {
		internalError(w, err)
		return
	}
	redirectTo(w, r, page.ContactList.Path())
}

// signUpReturn is where a sign-up form sends the browser back to.
func signUpReturn(r *http.Request) page.Kind {
	if r.PostFormValue("from") == page.Opportunities.Path() {
		return page.Opportunities
	}
	return page.SignUp
}

// handleSignUp stores a volunteer sign-up and sends the confirmation emails.
func (a *App) handleSignUp(w http.ResponseWriter, r *http.Request) {
	tab, err := a.tabFor(r)
	if err != nil {
		internalError(w, err)
		return
	}
	back := signUpReturn(r)
	input := orchestrators.SignUpInput{
		FullName:      r.PostFormValue("fullName"),
		EmailAddress:  r.PostFormValue("emailAddress"),
		PreferredRole: r.PostFormValue("preferredRole"),
		Opportunity:   r.PostFormValue("opportunity"),
	}
	_, err = orchestrators.ExecuteSignUp(r.Context(), input, orchestrators.SignUpDeps{
		Store:  tab.Local,
		Sender: a.opts.Sender,
		Inbox:  a.opts.Inbox,
		Now:    a.now,
	})
	if errors.Is(err, record.ErrValidation) {
		tab.SetFlash(Flash{
			Error:  formError(err),
			Form:   formValues(r, "fullName", "emailAddress", "preferredRole", "opportunity"),
			Target: back.Path(),
		})
		redirectTo(w, r, back.Path())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	tab.SetFlash(Flash{
		Success: fmt.Sprintf("Thank you for signing up, %s! A confirmation is on its way to %s.", input.FullName, input.EmailAddress),
		Target:  back.Path(),
	})
	redirectTo(w, r, back.Path())
}

// handleSendMessage stores a contact-form message and forwards it to the inbox.
func (a *App) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	tab, err := a.tabFor(r)
	if err != nil {
		internalError(w, err)
		return
	}
	_, err = orchestrators.ExecuteSendMessage(r.Context(), orchestrators.SendMessageInput{
		FullName:     r.PostFormValue("fullName"),
		EmailAddress: r.PostFormValue("emailAddress"),
		Subject:      r.PostFormValue("subject"),
		Message:      r.PostFormValue("message"),
	}, orchestrators.SendMessageDeps{
		Store:  tab.Local,
		Sender: a.opts.Sender,
		Inbox:  a.opts.Inbox,
		Now:    a.now,
	})
	if errors.Is(err, record.ErrValidation) {
		tab.SetFlash(Flash{
			Error:  formError(err),
			Form:   formValues(r, "fullName", "emailAddress", "subject", "message"),
			Target: page.Contact.Path(),
		})
		redirectTo(w, r, page.Contact.Path())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	tab.SetFlash(Flash{Success: msgMessageSent, Target: page.Contact.Path()})
	redirectTo(w, r, page.Contact.Path())
}
