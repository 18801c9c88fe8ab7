//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-scetl/internal/model"
)

func TestResolveCustomerFirstSeenWins(t *testing.T) {
	b := NewBuilder()

	first := model.Customer{CustomerID: 1, FirstName: "Mary", LastName: "Smith"}
	later := model.Customer{CustomerID: 1, FirstName: "Mary", LastName: "Jones"}
	other := model.Customer{CustomerID: 2, FirstName: "Ann", LastName: "Lee"}

	assert.Equal(t, int64(1), b.ResolveCustomer(first))
	assert.Equal(t, int64(1), b.ResolveCustomer(later))
	assert.Equal(t, int64(1), b.ResolveCustomer(first))
	assert.Equal(t, int64(2), b.ResolveCustomer(other))

	require.Len(t, b.Customers(), 2)
	assert.Equal(t, "Smith", b.Customers()[0].LastName)
	assert.Equal(t, 2, b.Count(model.DimCustomer))

	// Only the record with different attributes counts as a conflict
	assert.Equal(t, 1, b.Conflicts(model.DimCustomer))
	assert.Equal(t, 0, b.Conflicts(model.DimProduct))
}

func TestResolveProduct(t *testing.T) {
	b := NewBuilder()

	p := model.Product{ProductCardID: 1360, Name: "Smart watch", Price: 327.75}
	assert.Equal(t, int64(1360), b.ResolveProduct(p))

	repriced := p
	repriced.Price = 299.99
	assert.Equal(t, int64(1360), b.ResolveProduct(repriced))

	require.Len(t, b.Products(), 1)
	assert.Equal(t, 327.75, b.Products()[0].Price)
	assert.Equal(t, 1, b.Conflicts(model.DimProduct))
}

func TestResolveLocationCounter(t *testing.T) {
	b := NewBuilder()

	bekasi := model.LocationKey{Market: "Pacific Asia", Region: "Southeast Asia", Country: "Indonesia", City: "Bekasi"}
	paris := model.LocationKey{Market: "Europe", Region: "Western Europe", Country: "Francia", City: "Paris"}
	// Same city name in a different country is a different location
	parisTX := model.LocationKey{Market: "USCA", Region: "US Center", Country: "Estados Unidos", City: "Paris"}

	assert.Equal(t, int64(1), b.ResolveLocation(bekasi))
	assert.Equal(t, int64(2), b.ResolveLocation(paris))
	assert.Equal(t, int64(1), b.ResolveLocation(bekasi))
	assert.Equal(t, int64(3), b.ResolveLocation(parisTX))

	locs := b.Locations()
	require.Len(t, locs, 3)
	assert.Equal(t, model.Location{LocationID: 1, LocationKey: bekasi}, locs[0])
	assert.Equal(t, model.Location{LocationID: 2, LocationKey: paris}, locs[1])
	assert.Equal(t, model.Location{LocationID: 3, LocationKey: parisTX}, locs[2])
}

func TestResolveLocationDeterministic(t *testing.T) {
	keys := []model.LocationKey{
		{Market: "LATAM", Region: "Caribbean", Country: "Cuba", City: "La Habana"},
		{Market: "Europe", Region: "Northern Europe", Country: "Suecia", City: "Malmo"},
		{Market: "LATAM", Region: "Caribbean", Country: "Cuba", City: "La Habana"},
		{Market: "Africa", Region: "West Africa", Country: "Ghana", City: "Accra"},
	}

	run := func() []int64 {
		b := NewBuilder()
		ids := make([]int64, len(keys))
		for i, k := range keys {
			ids[i] = b.ResolveLocation(k)
		}
		return ids
	}

	first := run()
	assert.Equal(t, []int64{1, 2, 1, 3}, first)
	assert.Equal(t, first, run())
}

func TestBuilderRows(t *testing.T) {
	b := NewBuilder()
	b.ResolveCustomer(model.Customer{CustomerID: 9, FirstName: "Zed"})
	b.ResolveCustomer(model.Customer{CustomerID: 3, FirstName: "Amy"})
	b.ResolveLocation(model.LocationKey{Market: "LATAM", City: "Lima"})

	rows := b.Rows(model.DimCustomer)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(9), rows[0][0])
	assert.Equal(t, int64(3), rows[1][0])
	assert.Len(t, rows[0], len(model.DimCustomer.Columns()))

	locRows := b.Rows(model.DimLocation)
	require.Len(t, locRows, 1)
	assert.Equal(t, []any{int64(1), "LATAM", "", "", "Lima"}, locRows[0])

	assert.Empty(t, b.Rows(model.DimProduct))
}

func TestBuilderAccessorsReturnCopies(t *testing.T) {
	b := NewBuilder()
	b.ResolveCustomer(model.Customer{CustomerID: 1, FirstName: "Mary", LastName: "Smith"})
	b.ResolveProduct(model.Product{ProductCardID: 1360, Name: "Smart watch"})
	b.ResolveLocation(model.LocationKey{Market: "LATAM", City: "Lima"})

	b.Customers()[0].LastName = "Changed"
	b.Products()[0].Name = "Changed"
	b.Locations()[0].City = "Changed"

	assert.Equal(t, "Smith", b.Rows(model.DimCustomer)[0][2])
	assert.Equal(t, "Smart watch", b.Rows(model.DimProduct)[0][1])
	assert.Equal(t, "Lima", b.Rows(model.DimLocation)[0][4])
	assert.Equal(t, 0, b.Conflicts(model.DimCustomer))
}
