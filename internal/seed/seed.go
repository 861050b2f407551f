// Package seed populates an empty record store with demonstration data
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/datastore"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/errors"
	"github.com/RustycyberShackleford/WellAtlas3.0/internal/logging"
)

// randSeed keeps the generated catalog deterministic across runs
const randSeed = 42

// firstJobNumber is the starting point for sequential job numbers
const firstJobNumber = 25001

var lastNames = []string{
	"Washington", "Adams", "Jefferson", "Madison", "Monroe", "Jackson",
	"Lincoln", "Grant", "Roosevelt", "Kennedy", "Reagan", "Clinton",
	"Obama", "Trump", "Biden",
}

var suffixes = []string{
	" Farms", " Ranch", " Dairy", " Cattle Co.", " Orchards", " Vineyards",
}

var siteNames = []string{
	"Mother Lode", "Prospector's Claim", "Stamp Mill", "Ore Vein", "Pay Dirt",
	"Hydraulic Pit", "Tailings Pile", "Mine Shaft", "Pan Creek", "Drift Tunnel",
	"Headframe", "Sluice Box", "Bedrock Bend", "Quartz Ridge", "Assay Flats",
	"Nugget Gulch", "Pickaxe Point", "Rocker Reach", "Gold Pan Flat", "Tailrace Trail",
}

var jobCategories = []string{"Domestic", "Drilling", "Ag", "Electrical"}
var jobStatuses = []string{"Scheduled", "In Progress", "Complete"}

var depthChoices = []float64{160, 200, 240, 280, 320, 360, 400}
var casingChoices = []float64{4, 6, 8}
var pumpChoices = []float64{3, 5, 7.5, 10, 15}
var flowChoices = []float64{20, 30, 40, 55, 70}
var staticChoices = []float64{25, 35, 45, 55, 65}
var drawdownChoices = []float64{6, 10, 14, 18, 22}

// SeedIfEmpty populates the store with the demonstration catalog when the
// customers table is empty, and is a no-op otherwise.
func SeedIfEmpty(ctx context.Context, store datastore.Interface) error {
	logger := logging.ForService("seed")
	if logger == nil {
		logger = slog.Default()
	}

	count, err := store.CountCustomers(ctx)
	if err != nil {
		return errors.Newf("checking for existing records: %w", err).
			Component("seed").
			Category(errors.CategorySeed).
			Build()
	}
	if count > 0 {
		logger.Debug("record store already populated, skipping seed", "customers", count)
		return nil
	}

	r := rand.New(rand.NewSource(randSeed))
	jobNumber := firstJobNumber
	today := time.Now()

	customers := customerNames(r)
	siteCount, jobCount, noteCount := 0, 0, 0

	for _, name := range customers {
		customer := &datastore.Customer{
			Name:    name,
			Address: fmt.Sprintf("%d County Rd, North State, CA", 120+r.Intn(780)),
			Phone:   fmt.Sprintf("(530) %d-%d", 200+r.Intn(800), 1000+r.Intn(9000)),
			Email:   fmt.Sprintf("office@%s.example", strings.ToLower(strings.Fields(name)[0])),
			Notes:   "Account: net-30; contact via main line. Water use: irrigation & domestic. Priority: seasonal.",
		}
		if err := store.CreateCustomer(ctx, customer); err != nil {
			return seedError(err, "customer", name)
		}

		for _, siteName := range sampleSiteNames(r, 5) {
			lat := 39.9 + (r.Float64()-0.5)*0.7
			lon := -122.0 + (r.Float64()-0.5)*0.7
			site := &datastore.Site{
				CustomerID:  customer.ID,
				Name:        siteName,
				Description: fmt.Sprintf("%s block; access via farm road; soils: alluvium/gravel. Power nearby; backflow required.", siteName),
				Latitude:    lat,
				Longitude:   lon,
			}
			if err := store.CreateSite(ctx, site); err != nil {
				return seedError(err, "site", siteName)
			}
			siteCount++

			// 1-2 jobs per site
			for range 1 + r.Intn(2) {
				job := buildJob(r, site.ID, jobNumber, today)
				if err := store.CreateJob(ctx, job); err != nil {
					return seedError(err, "job", job.JobNumber)
				}
				jobCount++

				for _, note := range buildNotes(r, job, lat, lon, today) {
					if err := store.CreateJobNote(ctx, note); err != nil {
						return seedError(err, "job note", job.JobNumber)
					}
					noteCount++
				}
				jobNumber++
			}
		}
	}

	logger.Info("seeded demonstration data",
		"customers", len(customers),
		"sites", siteCount,
		"jobs", jobCount,
		"notes", noteCount)
	return nil
}

// customerNames builds a list of up to 20 unique, believable ag customer
// names, always including a Trump entry.
func customerNames(r *rand.Rand) []string {
	used := make(map[string]bool)
	names := []string{}
	for _, ln := range lastNames {
		// try two variants per last name to build a decent list
		for range 2 {
			name := ln + suffixes[r.Intn(len(suffixes))]
			if used[name] {
				continue
			}
			used[name] = true
			names = append(names, name)
		}
		if len(names) >= 20 {
			break
		}
	}
	if len(names) > 20 {
		names = names[:20]
	}
	hasTrump := false
	for _, n := range names {
		if strings.Contains(n, "Trump") {
			hasTrump = true
			break
		}
	}
	if !hasTrump {
		if len(names) >= 20 {
			names[len(names)-1] = "Trump Ranch"
		} else {
			names = append(names, "Trump Ranch")
		}
	}
	return names
}

// sampleSiteNames picks n distinct site names
func sampleSiteNames(r *rand.Rand, n int) []string {
	perm := r.Perm(len(siteNames))
	picked := make([]string, 0, n)
	for _, idx := range perm[:n] {
		picked = append(picked, siteNames[idx])
	}
	return picked
}

func buildJob(r *rand.Rand, siteID uint, jobNumber int, today time.Time) *datastore.Job {
	category := jobCategories[r.Intn(len(jobCategories))]
	depth := depthChoices[r.Intn(len(depthChoices))]
	casing := casingChoices[r.Intn(len(casingChoices))]
	pump := pumpChoices[r.Intn(len(pumpChoices))]
	flow := flowChoices[r.Intn(len(flowChoices))]
	static := staticChoices[r.Intn(len(staticChoices))]
	drawdown := drawdownChoices[r.Intn(len(drawdownChoices))]

	description := fmt.Sprintf(
		"%s scope: drill to ~%.0f ft, set %.0f in steel casing with screens per sieve; "+
			"install %g HP pump; expected yield %.0f GPM. Static %.0f ft, drawdown %.0f ft. "+
			"Deliverables: as-built, GPS, pump curve, bacteriological test, start-up checklist.",
		category, depth, casing, pump, flow, static, drawdown)

	return &datastore.Job{
		SiteID:           siteID,
		JobNumber:        fmt.Sprintf("%d", jobNumber),
		Category:         category,
		Description:      description,
		DepthFt:          depth,
		CasingDiameterIn: casing,
		PumpHP:           pump,
		FlowRateGPM:      flow,
		StaticLevelFt:    static,
		DrawdownFt:       drawdown,
		InstallDate:      today.Format("2006-01-02"),
		Status:           jobStatuses[r.Intn(len(jobStatuses))],
	}
}

// buildNotes generates the eight field log entries for a job at 90 minute
// intervals starting 07:30.
func buildNotes(r *rand.Rand, job *datastore.Job, lat, lon float64, today time.Time) []*datastore.JobNote {
	pilotDepth := job.DepthFt
	if job.DepthFt > 80 {
		pilotDepth = 80 + float64(r.Intn(int(job.DepthFt)-79))
	}

	bodies := []string{
		fmt.Sprintf("Kickoff with owner; easements confirmed; utility locates requested. GPS %.5f, %.5f.", lat, lon),
		fmt.Sprintf("MOB complete; rig set; pilot advanced to %.0f ft. Cuttings: sandy gravel; occasional clay seams.", pilotDepth),
		fmt.Sprintf("Casing %.0f in set; annular seal placed; screens matched to gradation.", job.CasingDiameterIn),
		"Development: surge + airlift; turbidity trending down; conductivity stable.",
		fmt.Sprintf("Pump %g HP installed; drop pipe schedule 40; electrical insulation tested (megger OK).", job.PumpHP),
		fmt.Sprintf("Step test up to %.0f GPM; constant-rate 6h at duty flow; static %.0f ft; drawdown %.0f ft.",
			job.FlowRateGPM, job.StaticLevelFt, job.DrawdownFt),
		"Panel verification: voltage within spec; pressure switch & VFD settings recorded.",
		"Disinfection & flush complete; bacteriological sample submitted to lab; as-built drafted.",
	}

	start := time.Date(today.Year(), today.Month(), today.Day(), 7, 30, 0, 0, today.Location())
	notes := make([]*datastore.JobNote, 0, len(bodies))
	for i, body := range bodies {
		stamp := start.Add(time.Duration(i) * 90 * time.Minute)
		notes = append(notes, &datastore.JobNote{
			JobID:     job.ID,
			Body:      body,
			CreatedAt: stamp.Format("2006-01-02 15:04:05"),
		})
	}
	return notes
}

func seedError(err error, entity, name string) error {
	return errors.Newf("seeding %s %q: %w", entity, name, err).
		Component("seed").
		Category(errors.CategorySeed).
		Build()
}
