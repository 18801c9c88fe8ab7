//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-scetl/internal/logging"
)

// SourceHeader is the DataCo export header written by the generator, in the
// export's own spelling.
var SourceHeader = []string{
	"Customer Id", "Customer Fname", "Customer Lname", "Customer Segment",
	"Customer City", "Customer State", "Customer Country",
	"Product Card Id", "Product Name", "Category Name", "Department Name", "Product Price",
	"Market", "Order Region", "Order Country", "Order City",
	"Order Id", "Order Item Id", "order date (DateOrders)", "shipping date (DateOrders)",
	"Shipping Mode", "Days for shipment (scheduled)", "Days for shipping (real)",
	"Delivery Status", "Order Status", "Benefit per order", "Sales",
	"Order Item Quantity", "Late_delivery_risk",
}

// Column positions in SourceHeader that the generator rewrites.
const (
	fieldProductPrice = 11
)

// SourceDateLayout is the timestamp layout of the DataCo export.
const SourceDateLayout = "1/2/2006 15:04"

// SampleConfig configures synthetic source generation.
type SampleConfig struct {
	// Rows is the number of data rows written, duplicates and malformed
	// rows included.
	Rows int

	// Seed makes the output reproducible. Zero picks a random seed.
	Seed uint64

	// DuplicateRate is the probability a row repeats the previous row's
	// order item id.
	DuplicateRate float64

	// MalformedRate is the probability a row carries an unparseable price.
	MalformedRate float64
}

// SampleStats describes a generated file.
type SampleStats struct {
	Rows       int
	Orders     int
	Duplicates int
	Malformed  int
}

type shippingMode struct {
	name          string
	scheduledDays int
}

var shippingModes = []shippingMode{
	{"Standard Class", 4},
	{"Second Class", 2},
	{"First Class", 1},
	{"Same Day", 0},
}

var shippingModeWeights = []int{60, 20, 15, 5}

var orderStatuses = []string{
	"COMPLETE", "PENDING", "CLOSED", "PENDING_PAYMENT", "PROCESSING",
	"SUSPECTED_FRAUD", "ON_HOLD", "CANCELED", "PAYMENT_REVIEW",
}

var orderStatusWeights = []int{33, 11, 11, 22, 12, 2, 5, 2, 2}

var segments = []string{"Consumer", "Corporate", "Home Office"}

var segmentWeights = []int{52, 30, 18}

type region struct {
	market    string
	name      string
	countries []string
}

var regions = []region{
	{"LATAM", "Central America", []string{"México", "Guatemala", "Honduras"}},
	{"LATAM", "South America", []string{"Brasil", "Argentina", "Colombia"}},
	{"LATAM", "Caribbean", []string{"Cuba", "República Dominicana"}},
	{"Europe", "Western Europe", []string{"Francia", "Alemania", "Países Bajos"}},
	{"Europe", "Northern Europe", []string{"Reino Unido", "Suecia"}},
	{"Europe", "Southern Europe", []string{"Italia", "España"}},
	{"Pacific Asia", "Southeast Asia", []string{"Indonesia", "Filipinas"}},
	{"Pacific Asia", "Oceania", []string{"Australia", "Nueva Zelanda"}},
	{"Pacific Asia", "Eastern Asia", []string{"China", "Japón"}},
	{"USCA", "US Center", []string{"Estados Unidos"}},
	{"USCA", "West of USA", []string{"Estados Unidos"}},
	{"USCA", "East of USA", []string{"Estados Unidos"}},
	{"USCA", "Canada", []string{"Canada"}},
	{"Africa", "West Africa", []string{"Nigeria", "Ghana"}},
	{"Africa", "North Africa", []string{"Egipto", "Marruecos"}},
}

var departments = []struct {
	department string
	categories []string
}{
	{"Fitness", []string{"Cleats", "Fitness Accessories"}},
	{"Apparel", []string{"Men's Footwear", "Women's Apparel"}},
	{"Golf", []string{"Golf Balls", "Golf Gloves"}},
	{"Outdoors", []string{"Camping & Hiking", "Fishing"}},
	{"Fan Shop", []string{"Indoor/Outdoor Games", "Water Sports"}},
	{"Technology", []string{"Electronics", "Computers"}},
}

// sampleStart and sampleEnd bound generated order dates.
var (
	sampleStart = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	sampleEnd   = time.Date(2017, 12, 31, 0, 0, 0, 0, time.UTC)
)

type sampleCustomer struct {
	id                                 int
	firstName, lastName, segment, city string
	state, country                     string
}

type sampleProduct struct {
	id                         int
	name, category, department string
	price                      float64
}

type sampleLocation struct {
	market, region, country, city string
}

// sampleGenerator holds the entity pools for one generated file.
type sampleGenerator struct {
	f         *Faker
	cfg       SampleConfig
	customers []sampleCustomer
	products  []sampleProduct
	locations []sampleLocation
}

func newSampleGenerator(cfg SampleConfig) *sampleGenerator {
	f := NewFaker()
	if cfg.Seed != 0 {
		f = NewFakerWithSeed(cfg.Seed)
	}
	g := &sampleGenerator{f: f, cfg: cfg}

	nCustomers := max(cfg.Rows/8, 1)
	for i := 1; i <= nCustomers; i++ {
		g.customers = append(g.customers, sampleCustomer{
			id:        i,
			firstName: f.FirstName(),
			lastName:  f.LastName(),
			segment:   ChooseWeighted(f, segments, segmentWeights),
			city:      f.City(),
			state:     f.State(),
			country:   ChooseWeighted(f, []string{"EE. UU.", "Puerto Rico"}, []int{60, 40}),
		})
	}

	nProducts := min(max(cfg.Rows/20, 1), 120)
	for i := 1; i <= nProducts; i++ {
		dept := Choose(f, departments)
		g.products = append(g.products, sampleProduct{
			id:         1000 + i,
			name:       f.ProductName(),
			category:   Choose(f, dept.categories),
			department: dept.department,
			price:      f.Price(5, 500),
		})
	}

	nLocations := min(max(cfg.Rows/10, 1), 200)
	for i := 0; i < nLocations; i++ {
		r := Choose(f, regions)
		g.locations = append(g.locations, sampleLocation{
			market:  r.market,
			region:  r.name,
			country: Choose(f, r.countries),
			city:    f.City(),
		})
	}

	return g
}

// WriteSample writes a header and cfg.Rows synthetic rows to w.
func WriteSample(w io.Writer, cfg SampleConfig) (SampleStats, error) {
	if cfg.Rows < 0 {
		return SampleStats{}, fmt.Errorf("rows must not be negative")
	}

	g := newSampleGenerator(cfg)
	cw := csv.NewWriter(w)
	if err := cw.Write(SourceHeader); err != nil {
		return SampleStats{}, err
	}

	var (
		stats      SampleStats
		orderID    int
		itemID     int
		itemsLeft  int
		prev       []string
		prevBad    bool
		customer   sampleCustomer
		location   sampleLocation
		orderDate  time.Time
		mode       shippingMode
		status     string
		actualDays int
	)

	for stats.Rows < cfg.Rows {
		// Malformed rows are never repeated
		if prev != nil && !prevBad && g.f.Chance(cfg.DuplicateRate) {
			if err := cw.Write(prev); err != nil {
				return stats, err
			}
			stats.Rows++
			stats.Duplicates++
			continue
		}

		if itemsLeft == 0 {
			orderID++
			stats.Orders++
			itemsLeft = g.f.Int(1, 5)
			customer = Choose(g.f, g.customers)
			location = Choose(g.f, g.locations)
			orderDate = g.f.DateRange(sampleStart, sampleEnd).Truncate(time.Minute)
			mode = ChooseWeighted(g.f, shippingModes, shippingModeWeights)
			status = ChooseWeighted(g.f, orderStatuses, orderStatusWeights)
			actualDays = max(mode.scheduledDays+g.f.Int(-1, 3), 0)
		}
		itemsLeft--
		itemID++

		product := Choose(g.f, g.products)
		qty := g.f.Int(1, 5)
		sales := round2(product.price * float64(qty))
		benefit := round2(sales * g.f.Float64(-0.3, 0.4))

		lateRisk := 0
		if actualDays > mode.scheduledDays {
			lateRisk = 1
		}

		record := []string{
			strconv.Itoa(customer.id), customer.firstName, customer.lastName, customer.segment,
			customer.city, customer.state, customer.country,
			strconv.Itoa(product.id), product.name, product.category, product.department, formatMoney(product.price),
			location.market, location.region, location.country, location.city,
			strconv.Itoa(orderID), strconv.Itoa(itemID),
			orderDate.Format(SourceDateLayout),
			orderDate.AddDate(0, 0, actualDays).Format(SourceDateLayout),
			mode.name, strconv.Itoa(mode.scheduledDays), strconv.Itoa(actualDays),
			deliveryStatus(status, actualDays, mode.scheduledDays), status,
			formatMoney(benefit), formatMoney(sales), strconv.Itoa(qty), strconv.Itoa(lateRisk),
		}

		prevBad = g.f.Chance(cfg.MalformedRate)
		if prevBad {
			record[fieldProductPrice] = "n/a"
			stats.Malformed++
		}

		if err := cw.Write(record); err != nil {
			return stats, err
		}
		prev = record
		stats.Rows++
	}

	cw.Flush()
	return stats, cw.Error()
}

// WriteSampleFile writes a sample to path, creating parent directories.
func WriteSampleFile(path string, cfg SampleConfig) (stats SampleStats, err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return SampleStats{}, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return SampleStats{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	stats, err = WriteSample(f, cfg)
	if err != nil {
		return stats, err
	}

	logging.Info().
		Str("file", path).
		Int("rows", stats.Rows).
		Int("orders", stats.Orders).
		Int("duplicates", stats.Duplicates).
		Int("malformed", stats.Malformed).
		Msg("Sample written")
	return stats, nil
}

func deliveryStatus(orderStatus string, actual, scheduled int) string {
	switch {
	case orderStatus == "CANCELED" || orderStatus == "SUSPECTED_FRAUD":
		return "Shipping canceled"
	case actual > scheduled:
		return "Late delivery"
	case actual < scheduled:
		return "Advance shipping"
	default:
		return "Shipping on time"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
