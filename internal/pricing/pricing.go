// Package pricing computes checkout totals.  Every function here is
// pure: same inputs, same breakdown, no side effects.  All monetary
// values are integers in the smallest currency unit; percentage math
// is carried in exact integer arithmetic and rounded half-up exactly
// once per derived amount, never per line item.
package pricing

import (
    "time"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

// Breakdown is the result of a total computation.  When a promotion
// was supplied but could not be applied, RejectReason carries the
// human-readable reason and DiscountCents is zero; this is not an
// error condition.
type Breakdown struct {
    SeatSubtotalCents  int64  `json:"seat_subtotal_cents"`
    ComboSubtotalCents int64  `json:"combo_subtotal_cents"`
    PreDiscountCents   int64  `json:"pre_discount_cents"`
    DiscountCents      int64  `json:"discount_cents"`
    GrandTotalCents    int64  `json:"grand_total_cents"`
    PromotionApplied   bool   `json:"promotion_applied"`
    RejectReason       string `json:"promotion_rejected,omitempty"`
}

// ComputeTotal prices the given seats and combo items against the
// slot's base price and applies the promotion if it passes
// validation.  Seat multipliers are integer percents, so the seat
// subtotal is summed as base*pct and divided by 100 with a single
// half-up rounding at the end.
func ComputeTotal(slot model.Slot, seats []model.Seat, items []model.ComboItem, promo *model.Promotion, now time.Time) Breakdown {
    var seatPct int64
    for _, s := range seats {
        seatPct += slot.BasePriceCents * s.MultiplierPct
    }
    seatSubtotal := roundHalfUp(seatPct, 100)

    var comboSubtotal int64
    for _, it := range items {
        comboSubtotal += it.UnitPriceCents * int64(it.Quantity)
    }

    b := Breakdown{
        SeatSubtotalCents:  seatSubtotal,
        ComboSubtotalCents: comboSubtotal,
        PreDiscountCents:   seatSubtotal + comboSubtotal,
    }

    if promo != nil {
        if reason := ValidatePromotion(promo, b.PreDiscountCents, slot, now); reason != "" {
            b.RejectReason = reason
        } else {
            b.DiscountCents = discountFor(promo, b.PreDiscountCents)
            b.PromotionApplied = true
        }
    }

    b.GrandTotalCents = b.PreDiscountCents - b.DiscountCents
    return b
}

// discountFor computes the discount for an already-validated
// promotion.  Percentage discounts are capped at MaxDiscountCents
// when set; fixed discounts never exceed the pre-discount total, so
// the grand total can never go negative.
func discountFor(p *model.Promotion, preDiscountCents int64) int64 {
    switch p.DiscountType {
    case model.DiscountPercentage:
        d := roundHalfUp(preDiscountCents*p.Value, 100)
        if p.MaxDiscountCents != nil && d > *p.MaxDiscountCents {
            d = *p.MaxDiscountCents
        }
        return d
    case model.DiscountFixedAmount:
        if p.Value > preDiscountCents {
            return preDiscountCents
        }
        return p.Value
    }
    return 0
}

// roundHalfUp divides num by den rounding half away from zero for
// non-negative numerators.  den must be positive.
func roundHalfUp(num, den int64) int64 {
    return (num + den/2) / den
}
