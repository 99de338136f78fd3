package pricing

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

func i64(v int64) *int64 { return &v }
func u64(v uint64) *uint64 { return &v }

// wideOpen returns a promotion valid for any order at the given time.
func wideOpen(now time.Time) model.Promotion {
    return model.Promotion{
        Code:         "TEST",
        DiscountType: model.DiscountPercentage,
        Value:        10,
        StartsAt:     now.Add(-24 * time.Hour),
        EndsAt:       now.Add(24 * time.Hour),
        Scope:        model.ScopeAll,
    }
}

func TestComputeTotalCappedPercentage(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    slot := model.Slot{BasePriceCents: 100_000}
    seats := []model.Seat{
        {ID: 1, MultiplierPct: 150},
        {ID: 2, MultiplierPct: 150},
    }
    promo := wideOpen(now)
    promo.MaxDiscountCents = i64(20_000)

    b := ComputeTotal(slot, seats, nil, &promo, now)

    assert.Equal(t, int64(300_000), b.SeatSubtotalCents)
    assert.Equal(t, int64(300_000), b.PreDiscountCents)
    assert.True(t, b.PromotionApplied)
    assert.Equal(t, int64(20_000), b.DiscountCents, "10%% of 300000 is 30000 but must be capped at 20000")
    assert.Equal(t, int64(280_000), b.GrandTotalCents)
}

func TestComputeTotalDeterministic(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    slot := model.Slot{BasePriceCents: 90_000}
    seats := []model.Seat{{MultiplierPct: 125}, {MultiplierPct: 100}}
    items := []model.ComboItem{{ProductID: 7, Quantity: 2, UnitPriceCents: 45_000}}
    promo := wideOpen(now)

    first := ComputeTotal(slot, seats, items, &promo, now)
    for i := 0; i < 10; i++ {
        assert.Equal(t, first, ComputeTotal(slot, seats, items, &promo, now))
    }
    assert.Equal(t, int64(202_500), first.SeatSubtotalCents)
    assert.Equal(t, int64(90_000), first.ComboSubtotalCents)
}

func TestComputeTotalRoundsOnceHalfUp(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    // 3 seats at 1.11x of 33: exact sum is 3*33*111 = 10989, /100 = 109.89 -> 110.
    // Rounding per seat (36.63 -> 37 each) would give 111 instead.
    slot := model.Slot{BasePriceCents: 33}
    seats := []model.Seat{{MultiplierPct: 111}, {MultiplierPct: 111}, {MultiplierPct: 111}}

    b := ComputeTotal(slot, seats, nil, nil, now)
    assert.Equal(t, int64(110), b.SeatSubtotalCents)
}

func TestComputeTotalFixedDiscountNeverNegative(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    slot := model.Slot{BasePriceCents: 10_000}
    seats := []model.Seat{{MultiplierPct: 100}}
    promo := wideOpen(now)
    promo.DiscountType = model.DiscountFixedAmount
    promo.Value = 50_000

    b := ComputeTotal(slot, seats, nil, &promo, now)
    assert.True(t, b.PromotionApplied)
    assert.Equal(t, int64(10_000), b.DiscountCents)
    assert.Equal(t, int64(0), b.GrandTotalCents)
}

func TestComputeTotalNoPromotion(t *testing.T) {
    now := time.Now().UTC()
    slot := model.Slot{BasePriceCents: 100_000}
    b := ComputeTotal(slot, []model.Seat{{MultiplierPct: 100}}, nil, nil, now)
    assert.False(t, b.PromotionApplied)
    assert.Empty(t, b.RejectReason)
    assert.Equal(t, int64(100_000), b.GrandTotalCents)
}

func TestValidatePromotionRejections(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // a Monday
    slot := model.Slot{MovieID: 5, CinemaID: 9, BasePriceCents: 100_000}

    cases := []struct {
        name   string
        mutate func(*model.Promotion)
        total  int64
        want   string
    }{
        {"not started", func(p *model.Promotion) { p.StartsAt = now.Add(time.Hour) }, 100_000, RejectNotStarted},
        {"expired", func(p *model.Promotion) { p.EndsAt = now.Add(-time.Hour) }, 100_000, RejectExpired},
        {"wrong day", func(p *model.Promotion) { p.DaysOfWeek = "0,6" }, 100_000, RejectWrongDay},
        {"usage exhausted", func(p *model.Promotion) { p.UsageLimit = 3; p.UsageCount = 3 }, 100_000, RejectUsageExceeded},
        {"wrong movie", func(p *model.Promotion) { p.Scope = model.ScopeMovie; p.ScopeRefID = u64(6) }, 100_000, RejectWrongMovie},
        {"wrong cinema", func(p *model.Promotion) { p.Scope = model.ScopeCinema; p.ScopeRefID = u64(1) }, 100_000, RejectWrongCinema},
        {"below minimum", func(p *model.Promotion) { p.MinOrderCents = 200_000 }, 100_000, RejectBelowMinimum},
        {"matching movie scope", func(p *model.Promotion) { p.Scope = model.ScopeMovie; p.ScopeRefID = u64(5) }, 100_000, ""},
        {"monday allowed", func(p *model.Promotion) { p.DaysOfWeek = "1,2" }, 100_000, ""},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            p := wideOpen(now)
            tc.mutate(&p)
            assert.Equal(t, tc.want, ValidatePromotion(&p, tc.total, slot, now))
        })
    }
}

func TestRejectedPromotionStillPricesOrder(t *testing.T) {
    now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
    slot := model.Slot{BasePriceCents: 50_000}
    promo := wideOpen(now)
    promo.MinOrderCents = 1_000_000

    b := ComputeTotal(slot, []model.Seat{{MultiplierPct: 100}}, nil, &promo, now)
    assert.False(t, b.PromotionApplied)
    assert.Equal(t, RejectBelowMinimum, b.RejectReason)
    assert.Equal(t, int64(0), b.DiscountCents)
    assert.Equal(t, int64(50_000), b.GrandTotalCents)
}
