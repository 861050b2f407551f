// internal/api/api.go
package api

import (
	"crypto/rand"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/conf"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/datastore"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/errors"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/logging"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/observability"
)

// selector responses are cheap to rebuild, so the cache is short-lived
const selectorCacheTTL = 30 * time.Second

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings

	logger         *log.Logger
	apiLogger      *slog.Logger // Structured logger for API operations
	apiLoggerClose func() error // Function to close the log file
	selectorCache  *cache.Cache // Cache for selector query responses
	metrics        *observability.Metrics
	startTime      time.Time
}

// New creates a new API controller, registers all routes on the given echo
// instance, and returns the controller.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, metrics *observability.Metrics) (*Controller, error) {
	c := &Controller{
		Echo:          e,
		DS:            ds,
		Settings:      settings,
		logger:        log.New(os.Stderr, "api: ", log.LstdFlags),
		selectorCache: cache.New(selectorCacheTTL, 2*selectorCacheTTL),
		metrics:       metrics,
		startTime:     time.Now(),
	}

	if settings.WebServer.Log.Enabled {
		apiLogger, closeFunc, err := logging.NewFileLogger(settings.WebServer.Log.Path, "api", slog.LevelInfo)
		if err != nil {
			return nil, fmt.Errorf("initializing API log file: %w", err)
		}
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeFunc
	} else {
		c.apiLogger = logging.ForService("api")
	}

	c.Group = e.Group("/api")
	c.Group.Use(c.LoggingMiddleware())
	c.initRoutes()

	return c, nil
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Echo.GET("/healthz", c.Healthz)
	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}

	c.Group.GET("/sites", c.HandleSearchSites)
	c.Group.GET("/customers", c.HandleCustomerList)
	c.Group.GET("/sites_for", c.HandleSitesForCustomer)
	c.Group.GET("/jobs_for", c.HandleJobsForSite)
	c.Group.POST("/site_create", c.HandleCreateSite)
}

// Healthz answers liveness probes with a bare ok
func (c *Controller) Healthz(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "ok")
}

// LoggingMiddleware creates a middleware function that logs API requests and
// records request metrics.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			// Process the request
			err := next(ctx)

			req := ctx.Request()
			res := ctx.Response()
			elapsed := time.Since(start)

			if c.metrics != nil {
				c.metrics.ObserveHTTPRequest(req.Method, ctx.Path(), strconv.Itoa(res.Status), elapsed)
			}

			// Skip logging if apiLogger is not initialized
			if c.apiLogger == nil {
				return err
			}

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("query", req.URL.RawQuery),
				slog.Int("status", res.Status),
				slog.String("ip", ctx.RealIP()),
				slog.String("user_agent", req.UserAgent()),
				slog.Int64("latency_ms", elapsed.Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}

			c.apiLogger.LogAttrs(req.Context(), slog.LevelInfo, "API Request", attrs...)

			return err
		}
	}
}

// Shutdown performs cleanup of resources used by the API controller.
// This should be called when the application is shutting down.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Printf("Error closing API log file: %v", err)
		}
	}
	if c.selectorCache != nil {
		c.selectorCache.Flush()
	}
	c.Debug("API Controller shutting down")
}

// ErrorResponse is the error envelope returned by all endpoints
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	correlationID := generateCorrelationID()

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message // Use message as error if no error object is provided
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// generateCorrelationID creates a unique identifier for error tracking using
// cryptographic randomness for uniqueness across all platforms.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a default ID if crypto/rand fails
		return "ERR-RAND"
	}

	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response.
// Validation and not-found categories in the error chain override the given
// status code so service-level errors always map to 400/404.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	switch {
	case errors.IsValidation(err):
		code = http.StatusBadRequest
	case errors.IsNotFound(err):
		code = http.StatusNotFound
	}

	errorResp := NewErrorResponse(err, message, code)
	ip := ctx.RealIP()

	c.logger.Printf("API Error [%s] from %s: %s: %v", errorResp.CorrelationID, ip, message, err)

	if c.apiLogger != nil {
		var errorStr string
		if err != nil {
			errorStr = err.Error()
		} else {
			errorStr = message
		}

		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", errorStr,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ip,
		)
	}

	return ctx.JSON(code, errorResp)
}

// Debug logs debug messages when debug mode is enabled
func (c *Controller) Debug(format string, v ...any) {
	if c.Settings.WebServer.Debug {
		msg := fmt.Sprintf(format, v...)
		c.logger.Printf("[DEBUG] %s", msg)

		if c.apiLogger != nil {
			c.apiLogger.Debug(msg)
		}
	}
}
