package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/conf"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/datastore"
)

// newTestController wires a controller over an in-memory store
func newTestController(t *testing.T) (*Controller, *datastore.SQLiteStore) {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = ":memory:"

	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	e := echo.New()
	controller, err := New(e, store, settings, nil)
	require.NoError(t, err)
	t.Cleanup(controller.Shutdown)

	return controller, store
}

// seedAPICustomer inserts a customer with a couple of sites for handler tests
func seedAPICustomer(t *testing.T, store *datastore.SQLiteStore, name string, siteNames ...string) *datastore.Customer {
	t.Helper()
	ctx := context.Background()

	customer := &datastore.Customer{Name: name}
	require.NoError(t, store.CreateCustomer(ctx, customer))
	for _, siteName := range siteNames {
		site := &datastore.Site{CustomerID: customer.ID, Name: siteName}
		require.NoError(t, store.CreateSite(ctx, site))
	}
	return customer
}

func doRequest(c *Controller, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandleSearchSites_EmptyStoreReturnsEmptyArray(t *testing.T) {
	t.Parallel()
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodGet, "/api/sites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String(), "no results is an empty array, not null")
}

func TestHandleSearchSites_FullCatalogAndFilters(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)
	ctx := context.Background()

	acme := seedAPICustomer(t, store, "Acme Well Co.", "North Field", "South Ridge")
	seedAPICustomer(t, store, "Bravo Farms", "Alpha Flat")

	sites, err := store.SitesForCustomer(ctx, acme.ID)
	require.NoError(t, err)
	var southRidge datastore.SiteRef
	for _, s := range sites {
		if s.Name == "South Ridge" {
			southRidge = s
		}
	}
	require.NotZero(t, southRidge.ID)
	require.NoError(t, store.CreateJob(ctx, &datastore.Job{
		SiteID: southRidge.ID, JobNumber: "25001", Category: "Drilling",
	}))

	rec := doRequest(controller, http.MethodGet, "/api/sites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var results []datastore.SiteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "North Field", results[0].Name, "ordered by customer then site name")
	assert.Equal(t, "Acme Well Co.", results[0].Customer)

	rec = doRequest(controller, http.MethodGet, "/api/sites?category=Drilling", "")
	require.Equal(t, http.StatusOK, rec.Code)
	results = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "South Ridge", results[0].Name)

	rec = doRequest(controller, http.MethodGet, "/api/sites?q=bravo&customer=Bravo+Farms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	results = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Alpha Flat", results[0].Name)
}

func TestHandleCustomerList(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)

	seedAPICustomer(t, store, "Zeta Ranch")
	seedAPICustomer(t, store, "Alpha Dairy")

	rec := doRequest(controller, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var refs []datastore.CustomerRef
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refs))
	require.Len(t, refs, 2)
	assert.Equal(t, "Alpha Dairy", refs[0].Name)
	assert.Equal(t, "Zeta Ranch", refs[1].Name)
}

func TestHandleSitesForCustomer(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)

	customer := seedAPICustomer(t, store, "Grant Vineyards", "Sluice Box", "Bedrock Bend")

	target := "/api/sites_for?customer_id=" + strconv.FormatUint(uint64(customer.ID), 10)
	rec := doRequest(controller, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var refs []datastore.SiteRef
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refs))
	require.Len(t, refs, 2)
	assert.Equal(t, "Bedrock Bend", refs[0].Name)
	assert.Equal(t, "Sluice Box", refs[1].Name)
}

func TestHandleSitesForCustomer_BlankAndMalformedIDs(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)
	seedAPICustomer(t, store, "Grant Vineyards", "Sluice Box")

	for _, target := range []string{
		"/api/sites_for",
		"/api/sites_for?customer_id=",
		"/api/sites_for?customer_id=abc",
		"/api/sites_for?customer_id=-3",
		"/api/sites_for?customer_id=999999",
	} {
		rec := doRequest(controller, http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.JSONEq(t, "[]", rec.Body.String(), target)
	}
}

func TestHandleJobsForSite_NumericOrder(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)
	ctx := context.Background()

	customer := seedAPICustomer(t, store, "Jackson Farms", "Quartz Ridge")
	sites, err := store.SitesForCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, sites, 1)

	for _, number := range []string{"25002", "900", "25001"} {
		require.NoError(t, store.CreateJob(ctx, &datastore.Job{
			SiteID: sites[0].ID, JobNumber: number, Category: "Ag",
		}))
	}

	target := "/api/jobs_for?site_id=" + strconv.FormatUint(uint64(sites[0].ID), 10)
	rec := doRequest(controller, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var refs []datastore.JobRef
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refs))
	require.Len(t, refs, 3)
	assert.Equal(t, "900", refs[0].JobNumber)
	assert.Equal(t, "25001", refs[1].JobNumber)
	assert.Equal(t, "25002", refs[2].JobNumber)
}

func TestHandleJobsForSite_BlankID(t *testing.T) {
	t.Parallel()
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodGet, "/api/jobs_for", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleCreateSite_Success(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)
	customer := seedAPICustomer(t, store, "Monroe Orchards")

	body := `{"customer_id": ` + strconv.FormatUint(uint64(customer.ID), 10) +
		`, "name": "New Well Pad", "description": "east block", "latitude": 39.91, "longitude": -122.04}`
	rec := doRequest(controller, http.MethodPost, "/api/site_create", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CreateSiteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	require.NotZero(t, resp.SiteID)

	site, err := store.GetSite(context.Background(), resp.SiteID)
	require.NoError(t, err)
	assert.Equal(t, "New Well Pad", site.Name)
	assert.Equal(t, customer.ID, site.CustomerID)
	assert.InDelta(t, 39.91, site.Latitude, 1e-9)
}

func TestHandleCreateSite_StringTypedFields(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)
	customer := seedAPICustomer(t, store, "Adams Dairy")

	// form-driven clients send everything as strings
	body := `{"customer_id": "` + strconv.FormatUint(uint64(customer.ID), 10) +
		`", "name": "String Pad", "latitude": "40.01", "longitude": "-121.95"}`
	rec := doRequest(controller, http.MethodPost, "/api/site_create", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CreateSiteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	site, err := store.GetSite(context.Background(), resp.SiteID)
	require.NoError(t, err)
	assert.InDelta(t, 40.01, site.Latitude, 1e-9)
	assert.InDelta(t, -121.95, site.Longitude, 1e-9)
}

func TestHandleCreateSite_MissingCoordinatesDefaultToZero(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)
	customer := seedAPICustomer(t, store, "Lincoln Farms")

	body := `{"customer_id": ` + strconv.FormatUint(uint64(customer.ID), 10) + `, "name": "Bare Pad"}`
	rec := doRequest(controller, http.MethodPost, "/api/site_create", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CreateSiteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	site, err := store.GetSite(context.Background(), resp.SiteID)
	require.NoError(t, err)
	assert.Zero(t, site.Latitude)
	assert.Zero(t, site.Longitude)
}

func TestHandleCreateSite_MissingFields(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)
	customer := seedAPICustomer(t, store, "Reagan Ranch")

	cases := []struct {
		name string
		body string
	}{
		{"no customer_id", `{"name": "Pad"}`},
		{"blank name", `{"customer_id": ` + strconv.FormatUint(uint64(customer.ID), 10) + `, "name": "   "}`},
		{"no name", `{"customer_id": ` + strconv.FormatUint(uint64(customer.ID), 10) + `}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(controller, http.MethodPost, "/api/site_create", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "missing required fields", resp.Message)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.NotEmpty(t, resp.CorrelationID)
		})
	}
}

func TestHandleCreateSite_BadPayload(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)
	customer := seedAPICustomer(t, store, "Kennedy Cattle Co.")
	id := strconv.FormatUint(uint64(customer.ID), 10)

	cases := []struct {
		name string
		body string
	}{
		{"non-numeric customer_id", `{"customer_id": "abc", "name": "Pad"}`},
		{"fractional customer_id", `{"customer_id": 1.5, "name": "Pad"}`},
		{"boolean customer_id", `{"customer_id": true, "name": "Pad"}`},
		{"non-numeric latitude", `{"customer_id": ` + id + `, "name": "Pad", "latitude": "north"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(controller, http.MethodPost, "/api/site_create", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "bad payload", resp.Message)
		})
	}
}

func TestHandleCreateSite_UnknownCustomer(t *testing.T) {
	t.Parallel()
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodPost, "/api/site_create", `{"customer_id": 4242, "name": "Orphan Pad"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "customer not found", resp.Message)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHandleCreateSite_MalformedJSON(t *testing.T) {
	t.Parallel()
	controller, _ := newTestController(t)

	rec := doRequest(controller, http.MethodPost, "/api/site_create", `{"customer_id": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSite_InvalidatesSelectorCache(t *testing.T) {
	t.Parallel()
	controller, store := newTestController(t)
	customer := seedAPICustomer(t, store, "Jefferson Orchards", "Old Pad")
	id := strconv.FormatUint(uint64(customer.ID), 10)

	// warm the cache
	rec := doRequest(controller, http.MethodGet, "/api/sites_for?customer_id="+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var refs []datastore.SiteRef
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refs))
	require.Len(t, refs, 1)

	rec = doRequest(controller, http.MethodPost, "/api/site_create",
		`{"customer_id": `+id+`, "name": "Fresh Pad"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// the new site must show up without waiting for the cache TTL
	rec = doRequest(controller, http.MethodGet, "/api/sites_for?customer_id="+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	refs = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refs))
	require.Len(t, refs, 2)
	assert.Equal(t, "Fresh Pad", refs[0].Name)
	assert.Equal(t, "Old Pad", refs[1].Name)
}

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 50 {
		id := generateCorrelationID()
		assert.Len(t, id, 8)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1, "ids must not collide constantly")
}

func TestParseSelectorID(t *testing.T) {
	t.Parallel()

	id, ok := parseSelectorID(" 42 ")
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"", "  ", "abc", "-1", "1.5"} {
		_, ok := parseSelectorID(raw)
		assert.False(t, ok, "input %q", raw)
	}
}
