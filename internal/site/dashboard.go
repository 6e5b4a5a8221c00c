package site

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/dom"
	"finitefield.org/heara-web/internal/format"
)

const dashboardColumns = 6

var statusColors = map[api.LeadStatus]string{
	api.StatusNew:       "#3b82f6",
	api.StatusContacted: "#f59e0b",
	api.StatusConverted: "#10b981",
	api.StatusClosed:    "#6b7280",
}

// StatusColor returns the badge color of status.
func StatusColor(status api.LeadStatus) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return statusColors[api.StatusClosed]
}

// LeadManager lists leads and changes their status.
type LeadManager interface {
	ListLeads(ctx context.Context, filter api.LeadFilter) ([]api.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status api.LeadStatus) (*api.Lead, error)
}

// AdminDashboard renders the leads table of the admin page. Status changes
// are sent as chosen; the service decides which transitions are legal.
type AdminDashboard struct {
	rt     Runtime
	leads  LeadManager
	tr     Translator
	body   dom.Element
	filter dom.Element
	last   []api.Lead
	regs   dom.Group
	rows   dom.Group
	log    *zap.Logger
}

var _ Component = (*AdminDashboard)(nil)

func NewAdminDashboard(rt Runtime, leads LeadManager, tr Translator) *AdminDashboard {
	return &AdminDashboard{rt: rt, leads: leads, tr: tr, log: rt.logger("dashboard")}
}

// Mount binds to #leads-table and starts the first fetch.
func (d *AdminDashboard) Mount() bool {
	d.Unmount()
	table := d.rt.Doc.ByID("leads-table")
	if table == nil || d.leads == nil {
		return false
	}
	body := table.Query("tbody")
	if body == nil {
		return false
	}
	d.body = body

	if filter := d.rt.Doc.ByID("lead-status-filter"); filter != nil {
		d.filter = filter
		d.regs.Add(filter.On(dom.Change, func(dom.Event) {
			d.rt.spawn(func() { _ = d.FetchLeads(d.rt.ctx()) })
		}))
	}

	d.rt.spawn(func() { _ = d.FetchLeads(d.rt.ctx()) })
	return true
}

func (d *AdminDashboard) Unmount() {
	d.regs.Detach()
	d.rows.Detach()
	d.body, d.filter = nil, nil
}

// FetchLeads loads the leads and renders them newest first.
func (d *AdminDashboard) FetchLeads(ctx context.Context) error {
	if d.body == nil {
		return ErrNoTarget
	}

	var filter api.LeadFilter
	if d.filter != nil {
		if status := api.LeadStatus(d.filter.Value()); status.Valid() {
			filter.Status = status
		}
	}

	leads, err := d.leads.ListLeads(ctx, filter)
	if err != nil {
		d.log.Warn("fetch leads failed", zap.Error(err))
		d.rows.Detach()
		d.body.Clear()
		d.body.Append(d.messageRow("error-row", label(d.tr, "admin.load_error", "Failed to load leads.")))
		return err
	}

	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt.Time)
	})
	d.last = leads
	d.render()
	return nil
}

// Rerender redraws the last fetched leads, e.g. after a locale switch.
func (d *AdminDashboard) Rerender() {
	if d.body == nil || d.last == nil {
		return
	}
	d.render()
}

// UpdateStatus sends the new status and reloads the table on success. On
// failure the user is alerted and the table is left as it was.
func (d *AdminDashboard) UpdateStatus(ctx context.Context, id string, status api.LeadStatus) error {
	if _, err := d.leads.UpdateLeadStatus(ctx, id, status); err != nil {
		d.log.Warn("update lead status failed",
			zap.String("lead_id", id),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		msg := label(d.tr, "admin.update_error", "Failed to update lead status.")
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message() != "" {
			msg += " " + apiErr.Message()
		}
		d.rt.Doc.Alert(msg)
		return err
	}
	return d.FetchLeads(ctx)
}

func (d *AdminDashboard) render() {
	d.rows.Detach()
	d.body.Clear()
	if len(d.last) == 0 {
		d.body.Append(d.messageRow("empty-row", label(d.tr, "admin.empty", "No leads yet.")))
		return
	}
	for _, lead := range d.last {
		d.body.Append(d.row(lead))
	}
}

func (d *AdminDashboard) row(lead api.Lead) dom.Element {
	doc := d.rt.Doc
	tr := doc.Create("tr")
	tr.SetAttr("data-lead-id", lead.ID)

	for _, text := range []string{
		format.Date(lead.CreatedAt.Time, langOf(d.tr)),
		lead.Name,
		lead.Email,
		lead.Phone,
	} {
		td := doc.Create("td")
		td.SetText(text)
		tr.Append(td)
	}

	badgeCell := doc.Create("td")
	badge := doc.Create("span")
	badge.AddClass("status-badge", "status-"+string(lead.Status))
	badge.SetStyle("background-color", StatusColor(lead.Status))
	badge.SetText(d.statusLabel(lead.Status))
	badgeCell.Append(badge)
	tr.Append(badgeCell)

	selectCell := doc.Create("td")
	sel := doc.Create("select")
	sel.AddClass("status-select")
	sel.SetAttr("aria-label", label(d.tr, "admin.columns.status", "Status"))
	statuses := api.Statuses()
	if !lead.Status.Valid() && lead.Status != "" {
		statuses = append(statuses, lead.Status)
	}
	for _, status := range statuses {
		opt := doc.Create("option")
		opt.SetAttr("value", string(status))
		opt.SetText(d.statusLabel(status))
		if status == lead.Status {
			opt.SetAttr("selected", "selected")
		}
		sel.Append(opt)
	}
	id := lead.ID
	d.rows.Add(sel.On(dom.Change, func(dom.Event) {
		status := api.LeadStatus(sel.Value())
		d.rt.spawn(func() { _ = d.UpdateStatus(d.rt.ctx(), id, status) })
	}))
	selectCell.Append(sel)
	tr.Append(selectCell)
	return tr
}

func (d *AdminDashboard) messageRow(class, text string) dom.Element {
	tr := d.rt.Doc.Create("tr")
	td := d.rt.Doc.Create("td")
	td.SetAttr("colspan", strconv.Itoa(dashboardColumns))
	td.AddClass(class)
	td.SetText(text)
	tr.Append(td)
	return tr
}

func (d *AdminDashboard) statusLabel(status api.LeadStatus) string {
	return label(d.tr, "status."+string(status), string(status))
}
