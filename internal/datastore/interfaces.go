// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/conf"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/errors"
)

// Interface abstracts the underlying database implementation and defines the
// operations available against the record store.
type Interface interface {
	Open() error
	Close() error
	GetCustomer(ctx context.Context, id uint) (*Customer, error)
	GetSite(ctx context.Context, id uint) (*Site, error)
	GetJob(ctx context.Context, id uint) (*Job, error)
	CustomerList(ctx context.Context) ([]CustomerRef, error)
	SitesForCustomer(ctx context.Context, customerID uint) ([]SiteRef, error)
	JobsForSite(ctx context.Context, siteID uint) ([]JobRef, error)
	NotesForJob(ctx context.Context, jobID uint) ([]JobNote, error)
	SearchSites(ctx context.Context, filters *SiteFilters) ([]SiteResult, error)
	CreateCustomer(ctx context.Context, customer *Customer) error
	CreateSite(ctx context.Context, site *Site) error
	CreateJob(ctx context.Context, job *Job) error
	CreateJobNote(ctx context.Context, note *JobNote) error
	CountCustomers(ctx context.Context) (int64, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new store instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	default:
		// SQLite is the fallback so a zero-value config still works
		return &SQLiteStore{
			Settings: settings,
		}
	}
}

// GetCustomer retrieves a customer by its ID.
func (ds *DataStore) GetCustomer(ctx context.Context, id uint) (*Customer, error) {
	var customer Customer
	if err := ds.DB.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, ds.recordError(err, "customer", id)
	}
	return &customer, nil
}

// GetSite retrieves a site by its ID.
func (ds *DataStore) GetSite(ctx context.Context, id uint) (*Site, error) {
	var site Site
	if err := ds.DB.WithContext(ctx).First(&site, id).Error; err != nil {
		return nil, ds.recordError(err, "site", id)
	}
	return &site, nil
}

// GetJob retrieves a job by its ID.
func (ds *DataStore) GetJob(ctx context.Context, id uint) (*Job, error) {
	var job Job
	if err := ds.DB.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, ds.recordError(err, "job", id)
	}
	return &job, nil
}

// CustomerList retrieves all customers as selector refs, ordered by name.
func (ds *DataStore) CustomerList(ctx context.Context) ([]CustomerRef, error) {
	refs := []CustomerRef{}
	err := ds.DB.WithContext(ctx).Model(&Customer{}).
		Select("id", "name").
		Order("name").
		Scan(&refs).Error
	if err != nil {
		return nil, ds.queryError(err, "listing customers")
	}
	return refs, nil
}

// SitesForCustomer retrieves the sites owned by a customer, ordered by name.
// An unknown customer ID yields an empty slice, never an error, because a
// selector widget cannot distinguish "no customer selected" from "customer
// has no sites".
func (ds *DataStore) SitesForCustomer(ctx context.Context, customerID uint) ([]SiteRef, error) {
	refs := []SiteRef{}
	err := ds.DB.WithContext(ctx).Model(&Site{}).
		Select("id", "name").
		Where("customer_id = ?", customerID).
		Order("name").
		Scan(&refs).Error
	if err != nil {
		return nil, ds.queryError(err, "listing sites for customer")
	}
	return refs, nil
}

// JobsForSite retrieves the jobs performed at a site in numeric job number
// order. Same empty-on-unknown-ID contract as SitesForCustomer.
func (ds *DataStore) JobsForSite(ctx context.Context, siteID uint) ([]JobRef, error) {
	refs := []JobRef{}
	err := ds.DB.WithContext(ctx).Model(&Job{}).
		Select("id", "job_number").
		Where("site_id = ?", siteID).
		Order(ds.jobNumberOrder()).
		Scan(&refs).Error
	if err != nil {
		return nil, ds.queryError(err, "listing jobs for site")
	}
	return refs, nil
}

// NotesForJob retrieves the field notes for a job ordered by creation time.
func (ds *DataStore) NotesForJob(ctx context.Context, jobID uint) ([]JobNote, error) {
	notes := []JobNote{}
	err := ds.DB.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at").
		Find(&notes).Error
	if err != nil {
		return nil, ds.queryError(err, "listing notes for job")
	}
	return notes, nil
}

// CreateCustomer inserts a new customer row with a generated ID.
func (ds *DataStore) CreateCustomer(ctx context.Context, customer *Customer) error {
	if err := ds.DB.WithContext(ctx).Create(customer).Error; err != nil {
		return ds.queryError(err, "creating customer")
	}
	return nil
}

// CreateSite inserts a new site row with a generated ID.
func (ds *DataStore) CreateSite(ctx context.Context, site *Site) error {
	if err := ds.DB.WithContext(ctx).Create(site).Error; err != nil {
		return ds.queryError(err, "creating site")
	}
	return nil
}

// CreateJob inserts a new job row with a generated ID.
func (ds *DataStore) CreateJob(ctx context.Context, job *Job) error {
	if err := ds.DB.WithContext(ctx).Create(job).Error; err != nil {
		return ds.queryError(err, "creating job")
	}
	return nil
}

// CreateJobNote inserts a new job note row with a generated ID.
func (ds *DataStore) CreateJobNote(ctx context.Context, note *JobNote) error {
	if err := ds.DB.WithContext(ctx).Create(note).Error; err != nil {
		return ds.queryError(err, "creating job note")
	}
	return nil
}

// CountCustomers returns the number of customer rows.
func (ds *DataStore) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	if err := ds.DB.WithContext(ctx).Model(&Customer{}).Count(&count).Error; err != nil {
		return 0, ds.queryError(err, "counting customers")
	}
	return count, nil
}

// jobNumberOrder returns the database-specific ORDER BY fragment for numeric
// job number ordering. Job numbers are stored as text; non-numeric values
// cast to zero and fall back to the lexicographic tiebreaker.
func (ds *DataStore) jobNumberOrder() string {
	switch ds.DB.Dialector.Name() {
	case "mysql":
		return "CAST(job_number AS SIGNED), job_number"
	default:
		return "CAST(job_number AS INTEGER), job_number"
	}
}

// recordError maps a point-lookup failure to a categorized error.
func (ds *DataStore) recordError(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Newf("%s %d not found", entity, id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Context("entity", entity).
			Context("id", id).
			Build()
	}
	return errors.Newf("getting %s %d: %w", entity, id, err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()
}

// queryError wraps a scan or insert failure as a database error.
func (ds *DataStore) queryError(err error, operation string) error {
	return errors.Newf("%s: %w", operation, err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()
}

// performAutoMigration automates database migrations with error handling.
// This is the explicit schema setup step; it runs once from Open, never as
// an import-time side effect.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Customer{}, &Site{}, &Job{}, &JobNote{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
