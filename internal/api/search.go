package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/datastore"
)

// HandleSearchSites processes filtered site search requests.
// All query parameters are optional; blank values apply no predicate, so a
// bare request returns the full site catalog.
func (c *Controller) HandleSearchSites(ctx echo.Context) error {
	filters := &datastore.SiteFilters{
		Query:    strings.TrimSpace(ctx.QueryParam("q")),
		Customer: strings.TrimSpace(ctx.QueryParam("customer")),
		Category: strings.TrimSpace(ctx.QueryParam("category")),
		SiteID:   strings.TrimSpace(ctx.QueryParam("site_id")),
	}

	results, err := c.DS.SearchSites(ctx.Request().Context(), filters)
	if c.metrics != nil {
		c.metrics.ObserveStoreQuery("search_sites", err)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Search failed", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, results)
}
