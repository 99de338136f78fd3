package model

import "time"

// Promotion discount types.
const (
    DiscountPercentage  = "percentage"
    DiscountFixedAmount = "fixed_amount"
)

// Promotion applicability scopes.  A scoped promotion only applies
// to slots of the referenced movie or cinema.
const (
    ScopeAll    = "ALL"
    ScopeMovie  = "MOVIE"
    ScopeCinema = "CINEMA"
)

// Promotion is owned by the promotion store; this core only reads
// it.  Whether a promotion is expired is derived from EndsAt at read
// time; the stored row is never mutated on read.
//
// Fields:
//  ID               – primary key identifier.
//  Code             – customer-facing promotion code.
//  DiscountType     – percentage or fixed_amount.
//  Value            – percent (for percentage) or amount in cents
//                     (for fixed_amount).
//  MaxDiscountCents – optional cap on percentage discounts; nil = no cap.
//  MinOrderCents    – minimum pre-discount total required.
//  StartsAt, EndsAt – validity window.
//  DaysOfWeek       – comma-separated weekday numbers (0=Sunday);
//                     empty means every day.
//  UsageLimit       – maximum redemptions; 0 means unlimited.
//  UsageCount       – redemptions so far.
//  Scope            – one of the Scope* constants above.
//  ScopeRefID       – movie or cinema id the scope restricts to.
type Promotion struct {
    ID               uint64    // promotions.id
    Code             string    // promotions.code
    DiscountType     string    // promotions.discount_type
    Value            int64     // promotions.value
    MaxDiscountCents *int64    // promotions.max_discount_cents (nullable)
    MinOrderCents    int64     // promotions.min_order_cents
    StartsAt         time.Time // promotions.starts_at
    EndsAt           time.Time // promotions.ends_at
    DaysOfWeek       string    // promotions.days_of_week
    UsageLimit       uint32    // promotions.usage_limit
    UsageCount       uint32    // promotions.usage_count
    Scope            string    // promotions.applicable_scope
    ScopeRefID       *uint64   // promotions.scope_ref_id (nullable)
}
