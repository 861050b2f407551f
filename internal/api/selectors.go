// selectors.go: endpoints backing the cascading selector widgets
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/datastore"
)

const customerListCacheKey = "customers"

// HandleCustomerList returns all customers as {id, name} pairs ordered by name.
func (c *Controller) HandleCustomerList(ctx echo.Context) error {
	if cached, found := c.selectorCache.Get(customerListCacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	refs, err := c.DS.CustomerList(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list customers", http.StatusInternalServerError)
	}

	c.selectorCache.SetDefault(customerListCacheKey, refs)
	return ctx.JSON(http.StatusOK, refs)
}

// HandleSitesForCustomer returns the sites owned by the customer named in
// the customer_id query parameter. A blank, malformed or unknown id yields
// an empty array, never an error: the widget treats all three as "show
// nothing".
func (c *Controller) HandleSitesForCustomer(ctx echo.Context) error {
	customerID, ok := parseSelectorID(ctx.QueryParam("customer_id"))
	if !ok {
		return ctx.JSON(http.StatusOK, []datastore.SiteRef{})
	}

	cacheKey := sitesForCacheKey(customerID)
	if cached, found := c.selectorCache.Get(cacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	refs, err := c.DS.SitesForCustomer(ctx.Request().Context(), customerID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list sites", http.StatusInternalServerError)
	}

	c.selectorCache.SetDefault(cacheKey, refs)
	return ctx.JSON(http.StatusOK, refs)
}

// HandleJobsForSite returns the jobs at the site named in the site_id query
// parameter as {id, job_number} pairs in numeric job number order. Same
// empty-on-missing-input contract as HandleSitesForCustomer.
func (c *Controller) HandleJobsForSite(ctx echo.Context) error {
	siteID, ok := parseSelectorID(ctx.QueryParam("site_id"))
	if !ok {
		return ctx.JSON(http.StatusOK, []datastore.JobRef{})
	}

	cacheKey := jobsForCacheKey(siteID)
	if cached, found := c.selectorCache.Get(cacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	refs, err := c.DS.JobsForSite(ctx.Request().Context(), siteID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list jobs", http.StatusInternalServerError)
	}

	c.selectorCache.SetDefault(cacheKey, refs)
	return ctx.JSON(http.StatusOK, refs)
}

// parseSelectorID parses a selector parent id, reporting false for blank or
// malformed input.
func parseSelectorID(raw string) (uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func sitesForCacheKey(customerID uint) string {
	return "sites_for:" + strconv.FormatUint(uint64(customerID), 10)
}

func jobsForCacheKey(siteID uint) string {
	return "jobs_for:" + strconv.FormatUint(uint64(siteID), 10)
}
