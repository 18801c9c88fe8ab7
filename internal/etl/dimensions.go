//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"slices"

	"github.com/pgEdge/pgedge-scetl/internal/model"
)

// Builder accumulates unique dimension entities for one run.
//
// The first record seen for a natural key wins: later records with the same
// key resolve to the stored identifier and never overwrite its attributes.
// A Builder is not safe for concurrent use.
type Builder struct {
	customers    map[int64]int
	customerRows []model.Customer
	products     map[int64]int
	productRows  []model.Product
	locations    map[model.LocationKey]int
	locationRows []model.Location
	nextLocation int64
	conflicts    map[model.Dimension]int
}

// NewBuilder returns an empty Builder. Location identifiers start at 1.
func NewBuilder() *Builder {
	return &Builder{
		customers:    make(map[int64]int),
		products:     make(map[int64]int),
		locations:    make(map[model.LocationKey]int),
		nextLocation: 1,
		conflicts:    make(map[model.Dimension]int),
	}
}

// ResolveCustomer returns the identifier for c, which is its source
// customer_id.
func (b *Builder) ResolveCustomer(c model.Customer) int64 {
	if i, ok := b.customers[c.CustomerID]; ok {
		if b.customerRows[i] != c {
			b.conflicts[model.DimCustomer]++
		}
		return b.customerRows[i].CustomerID
	}
	b.customers[c.CustomerID] = len(b.customerRows)
	b.customerRows = append(b.customerRows, c)
	return c.CustomerID
}

// ResolveProduct returns the identifier for p, which is its source
// product_card_id.
func (b *Builder) ResolveProduct(p model.Product) int64 {
	if i, ok := b.products[p.ProductCardID]; ok {
		if b.productRows[i] != p {
			b.conflicts[model.DimProduct]++
		}
		return b.productRows[i].ProductCardID
	}
	b.products[p.ProductCardID] = len(b.productRows)
	b.productRows = append(b.productRows, p)
	return p.ProductCardID
}

// ResolveLocation returns the surrogate identifier for key, assigning the
// next counter value the first time the key is seen.
func (b *Builder) ResolveLocation(key model.LocationKey) int64 {
	if i, ok := b.locations[key]; ok {
		return b.locationRows[i].LocationID
	}
	loc := model.Location{LocationID: b.nextLocation, LocationKey: key}
	b.nextLocation++
	b.locations[key] = len(b.locationRows)
	b.locationRows = append(b.locationRows, loc)
	return loc.LocationID
}

// Customers returns a copy of the customer rows in first-encounter order.
func (b *Builder) Customers() []model.Customer {
	return slices.Clone(b.customerRows)
}

// Products returns a copy of the product rows in first-encounter order.
func (b *Builder) Products() []model.Product {
	return slices.Clone(b.productRows)
}

// Locations returns a copy of the location rows in first-encounter order.
func (b *Builder) Locations() []model.Location {
	return slices.Clone(b.locationRows)
}

// Rows returns the column values of every row of dim, in first-encounter
// order.
func (b *Builder) Rows(dim model.Dimension) [][]any {
	var rows [][]any
	switch dim {
	case model.DimCustomer:
		rows = make([][]any, len(b.customerRows))
		for i, c := range b.customerRows {
			rows[i] = c.Values()
		}
	case model.DimProduct:
		rows = make([][]any, len(b.productRows))
		for i, p := range b.productRows {
			rows[i] = p.Values()
		}
	case model.DimLocation:
		rows = make([][]any, len(b.locationRows))
		for i, l := range b.locationRows {
			rows[i] = l.Values()
		}
	}
	return rows
}

// Count returns the number of distinct entities of dim.
func (b *Builder) Count(dim model.Dimension) int {
	switch dim {
	case model.DimCustomer:
		return len(b.customerRows)
	case model.DimProduct:
		return len(b.productRows)
	case model.DimLocation:
		return len(b.locationRows)
	}
	return 0
}

// Conflicts returns how many records presented attributes that differ from
// the stored first-seen entity of dim.
func (b *Builder) Conflicts(dim model.Dimension) int {
	return b.conflicts[dim]
}
