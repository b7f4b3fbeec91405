package web

import (
	"context"
	"errors"
	"log/slog"

	"volunteerconnect/internal/application/listutil"
	"volunteerconnect/internal/application/projections"
	"volunteerconnect/internal/domain/record"
	"volunteerconnect/internal/page"
)

// loader prepares the data a page fragment renders with.
type loader func(ctx context.Context, v view, flash *Flash, hash string) (any, error)

// errNavigated tells render that the loader moved the tab to another page.
var errNavigated = errors.New("navigated away")

// registerPages gives t one descriptor per page kind.
// Fragments are first rendered with no data when spliced in; the display
// callbacks below re-render them with their data.
func (a *App) registerPages(t *Tab) {
	render := func(kind page.Kind, load loader) page.DisplayFunc {
		return func(ctx context.Context, hash string) error {
			v := viewFrom(ctx)
			flash := v.flashFor(kind.Path())
			var data any
			if load != nil {
				var err error
				data, err = load(ctx, v, flash, hash)
				if errors.Is(err, errNavigated) {
					return nil
				}
				if err != nil {
					return err
				}
			}
			return t.Doc.Render(pageData{Flash: flash, Data: data})
		}
	}
	guarded := func(kind page.Kind, load loader) page.DisplayFunc {
		display := render(kind, load)
		return func(ctx context.Context, hash string) error {
			if !t.Guard.Check(ctx) {
				return nil
			}
			return display(ctx, hash)
		}
	}

	t.Pages.Register(page.New(page.Home, render(page.Home, nil)))
	t.Pages.Register(page.New(page.About, render(page.About, nil)))
	t.Pages.Register(page.New(page.Opportunities, render(page.Opportunities, a.loadOpportunities)))
	t.Pages.Register(page.New(page.Events, render(page.Events, a.loadEvents)))
	t.Pages.Register(page.New(page.Contact, render(page.Contact, loadMessageForm)))
	t.Pages.Register(page.New(page.ContactList, guarded(page.ContactList, func(ctx context.Context, v view, _ *Flash, _ string) (any, error) {
		return projections.QueryGetContactList(ctx,
			projections.GetContactListQuery{Params: listutil.ParseParams(v.query)},
			projections.GetContactListDeps{Store: t.Local},
		)
	})))
	t.Pages.Register(page.New(page.Edit, guarded(page.Edit, func(ctx context.Context, _ view, flash *Flash, hash string) (any, error) {
		form, err := projections.QueryGetContactForm(ctx, hash, projections.GetContactFormDeps{Store: t.Local})
		if errors.Is(err, record.ErrNotFound) {
			slog.Info("contact_missing", "tab", t.ID, "hash", hash)
			if err := t.Router.NavigateTo(ctx, page.ContactList, ""); err != nil {
				return nil, err
			}
			return nil, errNavigated
		}
		if err != nil {
			return nil, err
		}
		form.FullName = formValue(flash, "fullName", form.FullName)
		form.ContactNumber = formValue(flash, "contactNumber", form.ContactNumber)
		form.EmailAddress = formValue(flash, "emailAddress", form.EmailAddress)
		return form, nil
	})))
	t.Pages.Register(page.New(page.SignUp, render(page.SignUp, func(_ context.Context, v view, flash *Flash, _ string) (any, error) {
		return newSignUpForm(flash, page.SignUp, v.query.Get("opportunity")), nil
	})))
	t.Pages.Register(page.New(page.SignUpList, guarded(page.SignUpList, func(ctx context.Context, v view, _ *Flash, _ string) (any, error) {
		return projections.QueryGetSignUpList(ctx,
			projections.GetSignUpListQuery{Params: listutil.ParseParams(v.query)},
			projections.GetSignUpListDeps{Store: t.Local},
		)
	})))
	t.Pages.Register(page.New(page.Donate, render(page.Donate, nil)))
	t.Pages.Register(page.New(page.Login, render(page.Login, func(_ context.Context, _ view, flash *Flash, _ string) (any, error) {
		return loginForm{UserName: formValue(flash, "userName", "")}, nil
	})))
	t.Pages.Register(page.New(page.NotFound, render(page.NotFound, nil)))
}

// formValue returns the flashed value of field, or fallback when none was flashed.
func formValue(flash *Flash, field, fallback string) string {
	if flash == nil {
		return fallback
	}
	if v, ok := flash.Form[field]; ok {
		return v
	}
	return fallback
}

type loginForm struct {
	UserName string
}

type messageForm struct {
	FullName     string
	EmailAddress string
	Subject      string
	Message      string
}

func loadMessageForm(_ context.Context, _ view, flash *Flash, _ string) (any, error) {
	return messageForm{
		FullName:     formValue(flash, "fullName", ""),
		EmailAddress: formValue(flash, "emailAddress", ""),
		Subject:      formValue(flash, "subject", ""),
		Message:      formValue(flash, "message", ""),
	}, nil
}

// signUpForm is the volunteer sign-up form, shown standalone and under each opportunity.
type signUpForm struct {
	FullName      string
	EmailAddress  string
	PreferredRole string
	Opportunity   string
	From          string // page to return to after submitting
}

func newSignUpForm(flash *Flash, from page.Kind, opportunity string) signUpForm {
	return signUpForm{
		FullName:      formValue(flash, "fullName", ""),
		EmailAddress:  formValue(flash, "emailAddress", ""),
		PreferredRole: formValue(flash, "preferredRole", ""),
		Opportunity:   formValue(flash, "opportunity", opportunity),
		From:          from.Path(),
	}
}

// opportunitiesPage is what the opportunities page renders.
type opportunitiesPage struct {
	Cards []projections.OpportunityCard
	Form  signUpForm
}

func (a *App) loadOpportunities(_ context.Context, v view, flash *Flash, _ string) (any, error) {
	return opportunitiesPage{
		Cards: projections.QueryGetOpportunities(v.now, projections.GetOpportunitiesDeps{Catalog: a.opts.Catalog}),
		Form:  newSignUpForm(flash, page.Opportunities, ""),
	}, nil
}

func (a *App) loadEvents(_ context.Context, v view, _ *Flash, hash string) (any, error) {
	return projections.QueryGetCalendarMonth(
		projections.GetCalendarMonthQuery{Hash: hash, Hidden: projections.ParseHidden(v.query), Now: v.now},
		projections.GetCalendarMonthDeps{Catalog: a.opts.Catalog},
	), nil
}
