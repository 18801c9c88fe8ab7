//-------------------------------------------------------------------------
//
// pgEdge Supply Chain ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import "github.com/pgEdge/pgedge-scetl/internal/model"

// Assembler emits one fact row per order line item and keeps order_item_id
// unique across the run.
type Assembler struct {
	seen  map[int64]struct{}
	facts []model.OrderLineItem
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{seen: make(map[int64]struct{})}
}

// Contains reports whether a fact with the given order_item_id has already
// been assembled.
func (a *Assembler) Contains(orderItemID int64) bool {
	_, ok := a.seen[orderItemID]
	return ok
}

// Assemble builds the fact row for row using the resolved dimension
// identifiers. A repeated order_item_id yields *DuplicateKeyError and the
// previously assembled row is left untouched.
func (a *Assembler) Assemble(row model.NormalizedRow, customerID, productID, locationID int64) (model.OrderLineItem, error) {
	o := row.Order
	if a.Contains(o.OrderItemID) {
		return model.OrderLineItem{}, &DuplicateKeyError{Line: row.Line, Key: o.OrderItemID}
	}

	fact := model.OrderLineItem{
		OrderID:          o.OrderID,
		OrderItemID:      o.OrderItemID,
		CustomerID:       customerID,
		ProductCardID:    productID,
		LocationID:       locationID,
		OrderDate:        o.OrderDate,
		ShippingDate:     o.ShippingDate,
		ShippingMode:     o.ShippingMode,
		DaysScheduled:    o.DaysScheduled,
		DaysReal:         o.DaysReal,
		DeliveryStatus:   o.DeliveryStatus,
		OrderStatus:      o.OrderStatus,
		BenefitPerOrder:  o.BenefitPerOrder,
		SalesAmount:      o.SalesAmount,
		OrderQuantity:    o.OrderQuantity,
		LateDeliveryRisk: o.LateDeliveryRisk,
	}
	a.seen[o.OrderItemID] = struct{}{}
	a.facts = append(a.facts, fact)
	return fact, nil
}

// Facts returns the assembled fact rows in input order.
func (a *Assembler) Facts() []model.OrderLineItem {
	return a.facts
}
