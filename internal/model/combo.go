package model

// Product is a concession item from the product catalog.  Soft
// deleted rows are filtered at the repository boundary and never
// reach this struct.
type Product struct {
    ID         uint64 // products.id
    Name       string // products.name
    PriceCents int64  // products.price_cents
}

// ComboItem is one line of a session's combo selection.  The unit
// price is snapshotted from the catalog when the selection is made
// and never re-read, so a mid-checkout catalog price change cannot
// drift the total.
type ComboItem struct {
    ProductID      uint64 // session_items.product_id
    Quantity       uint32 // session_items.quantity
    UnitPriceCents int64  // session_items.unit_price_cents (snapshot)
}
