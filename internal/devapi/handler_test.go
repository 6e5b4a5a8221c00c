package devapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/platform/idempotency"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T, store *Store, opts ...HandlerOption) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api", NewHandler(store, opts...).Routes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func seededStore() *Store {
	s := NewStore(WithClock(func() time.Time { return fixedNow }))
	s.Seed()
	return s
}

func newClient(t *testing.T, srv *httptest.Server, opts ...api.Option) *api.Client {
	t.Helper()
	c, err := api.NewClient(srv.URL, srv.Client(), opts...)
	require.NoError(t, err)
	return c
}

func TestProductsEndpoints(t *testing.T) {
	srv := newServer(t, seededStore())
	client := newClient(t, srv)
	ctx := context.Background()

	products, err := client.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "He-Ara Mark 3", products[0].Name)
	require.Equal(t, 349.0, products[1].Price)
	require.Contains(t, products[1].Features, "Matte Finish")

	p, err := client.GetProduct(ctx, "mark-3-black")
	require.NoError(t, err)
	require.Equal(t, "black", p.Color)

	_, err = client.GetProduct(ctx, "mark-9")
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "Product not found", apiErr.Detail)
}

func TestListLeadsFilters(t *testing.T) {
	srv := newServer(t, seededStore())
	client := newClient(t, srv)
	ctx := context.Background()

	all, err := client.ListLeads(ctx, api.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "David Biton", all[0].Name)

	closed, err := client.ListLeads(ctx, api.LeadFilter{Status: api.StatusClosed})
	require.NoError(t, err)
	require.Len(t, closed, 1)
	require.Equal(t, api.StatusClosed, closed[0].Status)

	recent, err := client.ListLeads(ctx, api.LeadFilter{Since: fixedNow.Add(-72 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, recent, 2)

	older, err := client.ListLeads(ctx, api.LeadFilter{Until: fixedNow.Add(-5 * 24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, older, 2)
}

func TestListLeadsRejectsBadQuery(t *testing.T) {
	srv := newServer(t, seededStore())

	resp, err := srv.Client().Get(srv.URL + "/api/leads?status=archived&start_date=yesterday")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body struct {
		Detail string   `json:"detail"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Validation Error", body.Detail)
	require.Len(t, body.Errors, 2)
	require.Equal(t, "start_date: invalid datetime format", body.Errors[1])
}

func TestCreateLeadDefaultsAndValidation(t *testing.T) {
	store := NewStore(WithClock(func() time.Time { return fixedNow }))
	srv := newServer(t, store)
	client := newClient(t, srv)
	ctx := context.Background()

	lead, err := client.CreateLead(ctx, api.NewLead{
		Name:            "Israel Israeli",
		Email:           "israel@example.com",
		Phone:           "050-1234567",
		ProductInterest: "mark-3-white",
	})
	require.NoError(t, err)
	require.Equal(t, api.StatusNew, lead.Status)
	require.Equal(t, api.DefaultSource, lead.Source)
	require.Equal(t, fixedNow, lead.CreatedAt.Time)
	_, err = ulid.ParseStrict(lead.ID)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	_, err = client.CreateLead(ctx, api.NewLead{Name: "I", Email: "not-an-email", Phone: "123"})
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, []string{
		"name: ensure this value has at least 2 characters",
		"email: value is not a valid email address",
		"phone: ensure this value has at least 9 characters",
	}, apiErr.Errors)
	require.Equal(t, 1, store.Len())
}

func TestCreateLeadMissingFields(t *testing.T) {
	srv := newServer(t, NewStore())

	resp, err := srv.Client().Post(srv.URL+"/api/leads", "application/json", bytes.NewBufferString(`{"name":"Dana Levi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, []string{"email: field required", "phone: field required"}, body.Errors)
}

func TestCreateLeadReplaysIdempotentRequest(t *testing.T) {
	store := NewStore()
	srv := newServer(t, store, WithIdempotency(idempotency.NewMemoryStore()))
	client := newClient(t, srv, api.WithIdempotencyKeys(func() string { return "same-key" }))
	ctx := context.Background()

	in := api.NewLead{Name: "Dana Levi", Email: "dana@example.com", Phone: "052-9876543"}
	first, err := client.CreateLead(ctx, in)
	require.NoError(t, err)
	second, err := client.CreateLead(ctx, in)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, store.Len())
}

func TestLeadByIDErrors(t *testing.T) {
	srv := newServer(t, seededStore())
	client := newClient(t, srv)
	ctx := context.Background()

	tests := []struct {
		name   string
		id     string
		status int
		detail string
	}{
		{name: "malformed", id: "not-a-ulid", status: http.StatusBadRequest, detail: "Invalid ID format"},
		{name: "unknown", id: ulid.Make().String(), status: http.StatusNotFound, detail: "Lead not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.GetLead(ctx, tc.id)
			var apiErr *api.Error
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tc.status, apiErr.Status)
			require.Equal(t, tc.detail, apiErr.Detail)

			_, err = client.UpdateLeadStatus(ctx, tc.id, api.StatusClosed)
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tc.status, apiErr.Status)
		})
	}
}

func TestUpdateLeadStatus(t *testing.T) {
	later := fixedNow.Add(time.Hour)
	now := fixedNow
	store := NewStore(WithClock(func() time.Time { return now }))
	store.Seed()
	srv := newServer(t, store)
	client := newClient(t, srv)
	ctx := context.Background()

	leads, err := client.ListLeads(ctx, api.LeadFilter{Status: api.StatusNew})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	id := leads[0].ID

	now = later
	updated, err := client.UpdateLeadStatus(ctx, id, api.StatusContacted)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, api.StatusContacted, updated.Status)
	require.Equal(t, later, updated.UpdatedAt.Time)
	require.Equal(t, "Yossi Cohen", updated.Name)

	_, err = client.UpdateLeadStatus(ctx, id, "archived")
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)

	got, err := client.GetLead(ctx, id)
	require.NoError(t, err)
	require.Equal(t, api.StatusContacted, got.Status)
}

func TestUpdateLeadEmptyBodyLeavesLead(t *testing.T) {
	store := seededStore()
	lead := store.Leads(api.LeadFilter{Status: api.StatusClosed})[0]

	got, err := store.UpdateLead(lead.ID, api.LeadUpdate{})
	require.NoError(t, err)
	require.Equal(t, lead, got)
}
