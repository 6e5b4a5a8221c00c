package site

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/dom"
)

// ErrMissingFields is returned by Submit when a required field is blank.
var ErrMissingFields = errors.New("site: name, email and phone are required")

// LeadCreator submits a new lead.
type LeadCreator interface {
	CreateLead(ctx context.Context, in api.NewLead) (*api.Lead, error)
}

// RegistrationForm posts the contact form as a new lead.
type RegistrationForm struct {
	rt    Runtime
	leads LeadCreator
	tr    Translator
	form  dom.Element
	regs  dom.Group
	log   *zap.Logger
}

var _ Component = (*RegistrationForm)(nil)

func NewRegistrationForm(rt Runtime, leads LeadCreator, tr Translator) *RegistrationForm {
	return &RegistrationForm{rt: rt, leads: leads, tr: tr, log: rt.logger("registration")}
}

func (f *RegistrationForm) Mount() bool {
	f.Unmount()
	form := f.rt.Doc.Query(".registration-form")
	if form == nil || f.leads == nil {
		return false
	}
	f.form = form
	f.regs.Add(form.On(dom.Submit, func(ev dom.Event) {
		ev.PreventDefault()
		f.rt.spawn(func() { _ = f.Submit(f.rt.ctx()) })
	}))
	return true
}

func (f *RegistrationForm) Unmount() {
	f.regs.Detach()
	f.form = nil
}

func (f *RegistrationForm) field(name string) string {
	el := f.form.Query(`[name="` + name + `"]`)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Value())
}

// Submit sends the form. The submit button is disabled while the request is
// in flight and restored afterwards whatever the outcome.
func (f *RegistrationForm) Submit(ctx context.Context) error {
	if f.form == nil {
		return ErrNoTarget
	}
	lead := api.NewLead{
		Name:            f.field("name"),
		Email:           f.field("email"),
		Phone:           f.field("phone"),
		Message:         f.field("message"),
		ProductInterest: f.field("productInterest"),
		Source:          api.DefaultSource,
		Status:          api.StatusNew,
	}
	if lead.Name == "" || lead.Email == "" || lead.Phone == "" {
		f.rt.Doc.Alert(label(f.tr, "form.required", "Please fill in your name, email and phone."))
		return ErrMissingFields
	}

	if button := f.form.Query(`[type="submit"]`); button != nil {
		original := button.Text()
		button.SetDisabled(true)
		button.SetText(label(f.tr, "form.sending", "Sending..."))
		defer func() {
			button.SetText(original)
			button.SetDisabled(false)
		}()
	}

	if _, err := f.leads.CreateLead(ctx, lead); err != nil {
		f.log.Warn("create lead failed", zap.Error(err))
		f.rt.Doc.Alert(f.failureMessage(err))
		return err
	}

	f.rt.Doc.Alert(label(f.tr, "form.success", "Thank you! We will be in touch soon."))
	f.form.Reset()
	return nil
}

func (f *RegistrationForm) failureMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return label(f.tr, "form.error", "Something went wrong. Please try again.")
}
