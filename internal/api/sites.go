// sites.go: site creation endpoint
package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/datastore"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/errors"
)

// CreateSiteRequest is the payload for POST /api/site_create.
// CustomerID and the coordinates are typed any because form-driven clients
// send them as strings while API clients send JSON numbers.
type CreateSiteRequest struct {
	CustomerID  any    `json:"customer_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Latitude    any    `json:"latitude"`
	Longitude   any    `json:"longitude"`
}

// CreateSiteResponse acknowledges a created site with its generated id
type CreateSiteResponse struct {
	OK     bool `json:"ok"`
	SiteID uint `json:"site_id"`
}

// HandleCreateSite validates and inserts a new site under an existing
// customer. Validation failures map to 400, an unknown customer to 404.
// Duplicate site names under the same customer are permitted; only
// customers enforce name uniqueness.
func (c *Controller) HandleCreateSite(ctx echo.Context) error {
	var req CreateSiteRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request format", http.StatusBadRequest)
	}

	name := strings.TrimSpace(req.Name)
	if req.CustomerID == nil || name == "" {
		err := errors.Newf("customer_id and name are required").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
		return c.HandleError(ctx, err, "missing required fields", http.StatusBadRequest)
	}

	customerID, err := parseRecordID(req.CustomerID)
	if err != nil {
		return c.HandleError(ctx, badPayload("customer_id", err), "bad payload", http.StatusBadRequest)
	}
	latitude, err := parseCoordinate(req.Latitude)
	if err != nil {
		return c.HandleError(ctx, badPayload("latitude", err), "bad payload", http.StatusBadRequest)
	}
	longitude, err := parseCoordinate(req.Longitude)
	if err != nil {
		return c.HandleError(ctx, badPayload("longitude", err), "bad payload", http.StatusBadRequest)
	}

	reqCtx := ctx.Request().Context()

	// the referenced parent must exist before the child row is inserted
	if _, err := c.DS.GetCustomer(reqCtx, customerID); err != nil {
		return c.HandleError(ctx, err, "customer not found", http.StatusNotFound)
	}

	site := &datastore.Site{
		CustomerID:  customerID,
		Name:        name,
		Description: req.Description,
		Latitude:    latitude,
		Longitude:   longitude,
	}
	err = c.DS.CreateSite(reqCtx, site)
	if c.metrics != nil {
		c.metrics.ObserveStoreQuery("create_site", err)
	}
	if err != nil {
		return c.HandleError(ctx, err, "Failed to create site", http.StatusInternalServerError)
	}

	// drop the cached selector list so the new site shows up immediately
	c.selectorCache.Delete(sitesForCacheKey(customerID))

	c.Debug("created site %d under customer %d", site.ID, customerID)
	return ctx.JSON(http.StatusOK, CreateSiteResponse{OK: true, SiteID: site.ID})
}

// parseRecordID coerces a JSON number or numeric string into a record id
func parseRecordID(v any) (uint, error) {
	switch value := v.(type) {
	case float64:
		if value < 0 || value != math.Trunc(value) {
			return 0, errors.Newf("value %v is not a whole non-negative number", value).Build()
		}
		return uint(value), nil
	case string:
		id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
		if err != nil {
			return 0, err
		}
		return uint(id), nil
	default:
		return 0, errors.Newf("unsupported id type %T", v).Build()
	}
}

// parseCoordinate coerces a JSON number or numeric string into a coordinate,
// defaulting to 0.0 when absent.
func parseCoordinate(v any) (float64, error) {
	switch value := v.(type) {
	case nil:
		return 0.0, nil
	case float64:
		return value, nil
	case string:
		if strings.TrimSpace(value) == "" {
			return 0.0, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	default:
		return 0, errors.Newf("unsupported coordinate type %T", v).Build()
	}
}

func badPayload(field string, err error) error {
	return errors.Newf("parsing %s: %w", field, err).
		Component("api").
		Category(errors.CategoryValidation).
		Context("field", field).
		Build()
}
