// search.go: dynamic filtered site search across the record hierarchy
package datastore

import (
	"context"
)

// SiteFilters provides the optional criteria for a site search.
// A blank field means the corresponding predicate is not applied; the zero
// value returns the full catalog.
type SiteFilters struct {
	// Query is a free-text token matched as a case-insensitive substring
	// against customer name, site name and description, job number and
	// description, and job note bodies.
	Query string

	// Customer is an exact match against the customer name, not the ID.
	// A name with no exact match (including case) silently matches zero rows.
	Customer string

	// Category is an exact match against the job category. Because jobs are
	// left-joined, a site with no jobs never satisfies a category filter.
	Category string

	// SiteID is an exact match against the site ID, kept as a first-class
	// filter for compatibility with older search clients.
	SiteID string
}

// IsZero reports whether no filter field is set.
func (f *SiteFilters) IsZero() bool {
	return f == nil || (f.Query == "" && f.Customer == "" && f.Category == "" && f.SiteID == "")
}

// SearchSites returns the sites matching the conjunction of the supplied
// filters, each augmented with its owning customer's name. Results are
// deduplicated by site ID and ordered by (customer name, site name).
//
// Predicates are composed conditionally and every value is passed as a bound
// parameter; filter input never reaches the query text. The job note clause
// is a correlated EXISTS rather than a join so a site with several matching
// notes still produces a single row.
func (ds *DataStore) SearchSites(ctx context.Context, filters *SiteFilters) ([]SiteResult, error) {
	results := []SiteResult{}

	query := ds.DB.WithContext(ctx).Table("sites").
		Select("DISTINCT sites.id, sites.customer_id, sites.name, sites.description, sites.latitude, sites.longitude, customers.name AS customer").
		Joins("JOIN customers ON customers.id = sites.customer_id").
		Joins("LEFT JOIN jobs ON jobs.site_id = sites.id")

	if filters != nil {
		if filters.SiteID != "" {
			query = query.Where("sites.id = ?", filters.SiteID)
		}
		if filters.Customer != "" {
			query = query.Where("customers.name = ?", filters.Customer)
		}
		if filters.Category != "" {
			query = query.Where("jobs.category = ?", filters.Category)
		}
		if filters.Query != "" {
			like := "%" + filters.Query + "%"
			query = query.Where(
				"(customers.name LIKE ? OR sites.name LIKE ? OR sites.description LIKE ?"+
					" OR jobs.job_number LIKE ? OR jobs.description LIKE ?"+
					" OR EXISTS (SELECT 1 FROM job_notes"+
					" JOIN jobs AS note_jobs ON note_jobs.id = job_notes.job_id"+
					" WHERE note_jobs.site_id = sites.id AND job_notes.body LIKE ?))",
				like, like, like, like, like, like)
		}
	}

	err := query.Order("customers.name, sites.name").Scan(&results).Error
	if err != nil {
		return nil, ds.queryError(err, "searching sites")
	}
	return results, nil
}
