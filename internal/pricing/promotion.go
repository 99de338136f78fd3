package pricing

import (
    "strconv"
    "strings"
    "time"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

// Promotion rejection reasons.  These surface verbatim in the quote
// breakdown, so keep them customer readable.
const (
    RejectBelowMinimum  = "below minimum order amount"
    RejectNotStarted    = "promotion not yet active"
    RejectExpired       = "promotion expired"
    RejectWrongDay      = "promotion not valid on this day"
    RejectUsageExceeded = "promotion usage limit exhausted"
    RejectWrongMovie    = "promotion not applicable to this movie"
    RejectWrongCinema   = "promotion not applicable to this cinema"
)

// ValidatePromotion returns an empty string when the promotion can
// be applied to an order with the given pre-discount total for the
// given slot, and a rejection reason otherwise.  Expiry is derived
// from the stored window at read time; the promotion row itself is
// never mutated here.
func ValidatePromotion(p *model.Promotion, preDiscountCents int64, slot model.Slot, now time.Time) string {
    if now.Before(p.StartsAt) {
        return RejectNotStarted
    }
    if now.After(p.EndsAt) {
        return RejectExpired
    }
    if !validOnDay(p.DaysOfWeek, now.Weekday()) {
        return RejectWrongDay
    }
    if p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit {
        return RejectUsageExceeded
    }
    switch p.Scope {
    case model.ScopeMovie:
        if p.ScopeRefID == nil || *p.ScopeRefID != slot.MovieID {
            return RejectWrongMovie
        }
    case model.ScopeCinema:
        if p.ScopeRefID == nil || *p.ScopeRefID != slot.CinemaID {
            return RejectWrongCinema
        }
    }
    if preDiscountCents < p.MinOrderCents {
        return RejectBelowMinimum
    }
    return ""
}

// validOnDay checks a comma-separated weekday list (0=Sunday).  An
// empty list means the promotion runs every day.
func validOnDay(days string, d time.Weekday) bool {
    days = strings.TrimSpace(days)
    if days == "" {
        return true
    }
    for _, part := range strings.Split(days, ",") {
        n, err := strconv.Atoi(strings.TrimSpace(part))
        if err != nil {
            continue
        }
        if time.Weekday(n) == d {
            return true
        }
    }
    return false
}
