package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

// PromotionRepo reads promotion rows from the promotion store.
// Soft-deleted rows are filtered here at the repository boundary.
// Expiry is NOT filtered here: it is derived from the dates at read
// time by the pricing package, so reads never mutate stored status.
type PromotionRepo struct {
    db *sql.DB
}

// NewPromotionRepo returns a PromotionRepo bound to the provided database.
func NewPromotionRepo(db *sql.DB) *PromotionRepo { return &PromotionRepo{db: db} }

const promotionColumns = `id, code, discount_type, value, max_discount_cents, min_order_cents,
       starts_at, ends_at, days_of_week, usage_limit, usage_count, applicable_scope, scope_ref_id`

func scanPromotion(row *sql.Row) (*model.Promotion, error) {
    var p model.Promotion
    var maxDiscount sql.NullInt64
    var scopeRef sql.NullInt64
    err := row.Scan(&p.ID, &p.Code, &p.DiscountType, &p.Value, &maxDiscount, &p.MinOrderCents,
        &p.StartsAt, &p.EndsAt, &p.DaysOfWeek, &p.UsageLimit, &p.UsageCount, &p.Scope, &scopeRef)
    if err != nil {
        return nil, err
    }
    if maxDiscount.Valid {
        v := maxDiscount.Int64
        p.MaxDiscountCents = &v
    }
    if scopeRef.Valid {
        v := uint64(scopeRef.Int64)
        p.ScopeRefID = &v
    }
    return &p, nil
}

// GetByCode loads a promotion by its customer-facing code.  Returns
// ErrPromotionNotFound for unknown or soft-deleted codes.
func (r *PromotionRepo) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
    p, err := scanPromotion(r.db.QueryRowContext(ctx,
        `SELECT `+promotionColumns+` FROM promotions WHERE code = ? AND is_deleted = 0`, code))
    if err == sql.ErrNoRows {
        return nil, ErrPromotionNotFound
    }
    return p, err
}

// GetByCodeTx is GetByCode inside an existing transaction.
func (r *PromotionRepo) GetByCodeTx(ctx context.Context, tx *sql.Tx, code string) (*model.Promotion, error) {
    p, err := scanPromotion(tx.QueryRowContext(ctx,
        `SELECT `+promotionColumns+` FROM promotions WHERE code = ? AND is_deleted = 0`, code))
    if err == sql.ErrNoRows {
        return nil, ErrPromotionNotFound
    }
    return p, err
}

// IncrementUsageTx bumps the redemption counter as a side effect of
// a successful settlement.  Mutating usage is the promotion store's
// responsibility; this is the single place the core invokes it.
func (r *PromotionRepo) IncrementUsageTx(ctx context.Context, tx *sql.Tx, code string) error {
    const q = `UPDATE promotions SET usage_count = usage_count + 1 WHERE code = ? AND is_deleted = 0`
    _, err := tx.ExecContext(ctx, q, code)
    return err
}
