// model.go this code defines the data model for the application
package datastore

// Customer represents a well-drilling account holder
type Customer struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"uniqueIndex:idx_customers_name;not null" json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Notes   string `gorm:"type:text" json:"notes"`

	Sites []Site `gorm:"foreignKey:CustomerID" json:"-"`
}

// Site represents a physical well or drilling location owned by one Customer
type Site struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	CustomerID  uint    `gorm:"index:idx_sites_customer;not null" json:"customer_id"`
	Name        string  `gorm:"index:idx_sites_name" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	Jobs []Job `gorm:"foreignKey:SiteID" json:"-"`
}

// Job represents a discrete work order performed at a Site.
// JobNumber is intended to be unique but is not enforced as a constraint,
// and Status is {Scheduled, In Progress, Complete} by convention only.
type Job struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	SiteID           uint    `gorm:"index:idx_jobs_site;not null" json:"site_id"`
	JobNumber        string  `gorm:"index:idx_jobs_number" json:"job_number"`
	Category         string  `gorm:"index:idx_jobs_category" json:"category"`
	Description      string  `gorm:"type:text" json:"description"`
	DepthFt          float64 `json:"depth_ft"`
	CasingDiameterIn float64 `json:"casing_diameter_in"`
	PumpHP           float64 `gorm:"column:pump_hp" json:"pump_hp"`
	FlowRateGPM      float64 `gorm:"column:flow_rate_gpm" json:"flow_rate_gpm"`
	StaticLevelFt    float64 `json:"static_level_ft"`
	DrawdownFt       float64 `json:"drawdown_ft"`
	InstallDate      string  `json:"install_date"`
	Status           string  `json:"status"`

	Notes []JobNote `gorm:"foreignKey:JobID" json:"-"`
}

// JobNote represents a timestamped field log entry attached to a Job.
// CreatedAt is stored as a string-sortable timestamp, append-only.
type JobNote struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	JobID     uint   `gorm:"index:idx_job_notes_job;not null" json:"job_id"`
	Body      string `gorm:"type:text" json:"body"`
	CreatedAt string `gorm:"autoCreateTime:false" json:"created_at"`
}

// CustomerRef is the customer projection used by selector widgets
type CustomerRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// SiteRef is the site projection used by selector widgets
type SiteRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// JobRef is the job projection used by selector widgets
type JobRef struct {
	ID        uint   `json:"id"`
	JobNumber string `json:"job_number"`
}

// SiteResult is a site search row augmented with the owning customer's name
type SiteResult struct {
	ID          uint    `json:"id"`
	CustomerID  uint    `json:"customer_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Customer    string  `json:"customer"`
}
