// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketIssuedEvent is published when a checkout session settles.
// It carries the full fulfillment contract so the external
// ticket-issuance step never has to query the booking database.
type TicketIssuedEvent struct {
    OrderID         string          `json:"order_id"`
    SessionToken    string          `json:"session_token"`
    SlotID          uint64          `json:"slot_id"`
    SeatIDs         []uint64        `json:"seat_ids"`
    ComboItems      []TicketCombo   `json:"combo_items"`
    GrandTotalCents int64           `json:"grand_total_cents"`
    SettledAt       string          `json:"settled_at"`
}

// TicketCombo is one concession line of a settled order.
type TicketCombo struct {
    ProductID      uint64 `json:"product_id"`
    Quantity       uint32 `json:"quantity"`
    UnitPriceCents int64  `json:"unit_price_cents"`
}
