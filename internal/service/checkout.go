package service

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/iliyamo/cinema-booking-core/internal/gateway"
    "github.com/iliyamo/cinema-booking-core/internal/model"
    "github.com/iliyamo/cinema-booking-core/internal/pricing"
    "github.com/iliyamo/cinema-booking-core/internal/repository"
    "github.com/iliyamo/cinema-booking-core/internal/utils"
)

// ErrInvalidState is returned when an operation does not apply to
// the session's current state, e.g. changing the combo selection
// after the total has been frozen.
var ErrInvalidState = errors.New("operation not valid in current session state")

// ItemSelection is one requested combo line, before the unit price
// snapshot is taken.
type ItemSelection struct {
    ProductID uint64 `json:"product_id"`
    Quantity  uint32 `json:"quantity"`
}

// HoldResult is returned when a hold and its checkout session are
// created.
type HoldResult struct {
    SessionToken string    `json:"session_token"`
    SeatIDs      []uint64  `json:"seat_ids"`
    ExpiresAt    time.Time `json:"expires_at"`
}

// CheckoutService orchestrates the selection half of a purchase:
// hold creation, combo and promotion selection, quoting, and the
// handoff to the payment gateway.  Every mutation that must be
// atomic (seat statuses, the slot counter, hold and session rows)
// runs inside one database transaction.
type CheckoutService struct {
    Slots    *repository.SlotRepo
    Seats    *repository.SeatRepo
    Holds    *repository.HoldRepo
    Sessions *repository.SessionRepo
    Products *repository.ProductRepo
    Promos   *repository.PromotionRepo
    Payments *repository.PaymentRepo
    HoldMgr  *HoldManager
    Gateway  *gateway.Client
}

// CreateHold claims the requested seats for a new checkout session.
// The whole claim is atomic: expired holds on the slot are swept
// first, then every seat is flipped AVAILABLE→HELD in one guarded
// update scoped to the slot's room.  If any seat is held by another
// session, sold, broken, or belongs to a different room, nothing is
// changed and ErrSeatUnavailable is returned.
func (s *CheckoutService) CreateHold(ctx context.Context, slotID, userID uint64, seatIDs []uint64) (*HoldResult, error) {
    tx, err := s.Slots.DB().BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    slot, err := s.Slots.GetByIDTx(ctx, tx, slotID)
    if err != nil {
        return nil, err
    }
    if err := s.HoldMgr.SweepSlotTx(ctx, tx, slotID); err != nil {
        return nil, err
    }

    affected, err := s.Seats.ClaimTx(ctx, tx, slot.RoomID, seatIDs)
    if err != nil {
        return nil, err
    }
    if affected != int64(len(seatIDs)) {
        return nil, repository.ErrSeatUnavailable
    }
    ok, err := s.Slots.DecrementEmptySeatsTx(ctx, tx, slotID, len(seatIDs))
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, repository.ErrSeatUnavailable
    }

    token, err := utils.NewSessionToken()
    if err != nil {
        return nil, err
    }
    expiresAt := time.Now().UTC().Add(model.HoldTTL)
    hold := &model.Hold{
        SlotID:       slotID,
        SessionToken: token,
        Status:       model.HoldActive,
        ExpiresAt:    expiresAt,
    }
    if err := s.Holds.CreateTx(ctx, tx, hold, seatIDs); err != nil {
        return nil, err
    }
    sess := &model.CheckoutSession{
        Token:    token,
        SlotID:   slotID,
        UserID:   userID,
        State:    model.SessionSelecting,
        Deadline: expiresAt,
    }
    if err := s.Sessions.CreateTx(ctx, tx, sess); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return &HoldResult{SessionToken: token, SeatIDs: seatIDs, ExpiresAt: expiresAt}, nil
}

// ExtendHold is supported as a strict no-op: it confirms the session
// is still within its original deadline and returns that deadline.
// The 300-second window is never lengthened.
func (s *CheckoutService) ExtendHold(ctx context.Context, token string) (time.Time, error) {
    deadline, err := s.Sessions.Deadline(ctx, token)
    if err != nil {
        return time.Time{}, err
    }
    if !deadline.After(time.Now().UTC()) {
        return time.Time{}, repository.ErrHoldExpired
    }
    return deadline, nil
}

// Cancel terminates a session on explicit customer action and
// releases its hold synchronously.  Calling it on an already
// terminal session is a no-op.
func (s *CheckoutService) Cancel(ctx context.Context, token string) error {
    tx, err := s.Sessions.DB().BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    sess, err := s.Sessions.GetByTokenTx(ctx, tx, token)
    if err != nil {
        return err
    }
    if sess.Terminal() {
        return nil // second cancel, or a callback/sweep got there first
    }
    won, err := s.Sessions.TransitionTx(ctx, tx, token, sess.State, model.SessionCancelled, false)
    if err != nil {
        return err
    }
    if won {
        if _, _, err := s.HoldMgr.TakeoverTx(ctx, tx, token, model.HoldReleased); err != nil {
            return err
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// SetItems replaces the session's combo selection, snapshotting the
// current catalog unit price of every product.  Only allowed while
// the session is SELECTING and not past its deadline.
func (s *CheckoutService) SetItems(ctx context.Context, token string, selections []ItemSelection) error {
    sess, err := s.Sessions.GetByToken(ctx, token)
    if err != nil {
        return err
    }
    if err := requireSelecting(sess); err != nil {
        return err
    }

    ids := make([]uint64, 0, len(selections))
    for _, sel := range selections {
        ids = append(ids, sel.ProductID)
    }
    products, err := s.Products.GetByIDs(ctx, ids)
    if err != nil {
        return err
    }
    items := make([]model.ComboItem, 0, len(selections))
    for _, sel := range selections {
        p, ok := products[sel.ProductID]
        if !ok {
            return repository.ErrProductNotFound
        }
        items = append(items, model.ComboItem{
            ProductID:      sel.ProductID,
            Quantity:       sel.Quantity,
            UnitPriceCents: p.PriceCents,
        })
    }

    tx, err := s.Sessions.DB().BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := s.Sessions.ReplaceItemsTx(ctx, tx, token, items); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// ApplyPromotion attaches a promotion code to the session.  The code
// must exist, but applicability (window, minimum, scope, usage) is
// evaluated at quote and pay time, so a promotion that becomes
// invalid before payment is simply not applied.
func (s *CheckoutService) ApplyPromotion(ctx context.Context, token, code string) error {
    sess, err := s.Sessions.GetByToken(ctx, token)
    if err != nil {
        return err
    }
    if err := requireSelecting(sess); err != nil {
        return err
    }
    if _, err := s.Promos.GetByCode(ctx, code); err != nil {
        return err
    }

    tx, err := s.Sessions.DB().BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    won, err := s.Sessions.SetPromoCodeTx(ctx, tx, token, &code)
    if err != nil {
        return err
    }
    if !won {
        return ErrInvalidState
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Quote computes the current price breakdown for a live session.
// The result is informational; the authoritative total is the one
// frozen by Pay.
func (s *CheckoutService) Quote(ctx context.Context, token string) (pricing.Breakdown, error) {
    tx, err := s.Sessions.DB().BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
    if err != nil {
        return pricing.Breakdown{}, err
    }
    defer func() { _ = tx.Rollback() }()

    sess, err := s.Sessions.GetByTokenTx(ctx, tx, token)
    if err != nil {
        return pricing.Breakdown{}, err
    }
    if !sess.Deadline.After(time.Now().UTC()) {
        return pricing.Breakdown{}, repository.ErrSessionExpired
    }
    return s.breakdownTx(ctx, tx, sess)
}

// Pay freezes the session total, creates the payment transaction and
// returns the signed gateway redirect URL.  The hold must be durably
// visible before the redirect is issued, which the SELECTING→
// AWAITING_PAYMENT compare-and-swap (with its deadline predicate)
// guarantees: an expired or already-frozen session never reaches the
// gateway.
func (s *CheckoutService) Pay(ctx context.Context, token, clientIP, bankCode string) (string, error) {
    tx, err := s.Sessions.DB().BeginTx(ctx, nil)
    if err != nil {
        return "", err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    sess, err := s.Sessions.GetByTokenTx(ctx, tx, token)
    if err != nil {
        return "", err
    }
    if sess.State != model.SessionSelecting {
        return "", ErrInvalidState
    }

    // The client's displayed total is untrusted; recompute from the
    // stored hold, snapshots and promotion before freezing.
    breakdown, err := s.breakdownTx(ctx, tx, sess)
    if err != nil {
        return "", err
    }

    orderID := utils.NewOrderID()
    won, err := s.Sessions.FreezeForPaymentTx(ctx, tx, token, breakdown.GrandTotalCents, orderID)
    if err != nil {
        return "", err
    }
    if !won {
        if !sess.Deadline.After(time.Now().UTC()) {
            return "", repository.ErrSessionExpired
        }
        return "", ErrInvalidState
    }

    payURL, canonical := s.Gateway.BuildPaymentURL(gateway.PaymentRequest{
        OrderID:     orderID,
        AmountCents: breakdown.GrandTotalCents,
        OrderInfo:   fmt.Sprintf("Ticket order %s", orderID),
        ClientIP:    clientIP,
        BankCode:    bankCode,
        CreatedAt:   time.Now().UTC(),
    })
    payment := &model.PaymentTransaction{
        OrderID:       orderID,
        SessionToken:  token,
        AmountCents:   breakdown.GrandTotalCents,
        RequestParams: canonical,
        Status:        model.PaymentPending,
    }
    if err := s.Payments.CreateTx(ctx, tx, payment); err != nil {
        return "", err
    }

    if err := tx.Commit(); err != nil {
        return "", err
    }
    committed = true
    return payURL, nil
}

// breakdownTx prices the session from its hold seats, item snapshots
// and promotion, all read within the supplied transaction.
func (s *CheckoutService) breakdownTx(ctx context.Context, tx *sql.Tx, sess *model.CheckoutSession) (pricing.Breakdown, error) {
    slotRec, err := s.Slots.GetByIDTx(ctx, tx, sess.SlotID)
    if err != nil {
        return pricing.Breakdown{}, err
    }
    slot := model.Slot{
        ID:             slotRec.ID,
        MovieID:        slotRec.MovieID,
        CinemaID:       slotRec.CinemaID,
        RoomID:         slotRec.RoomID,
        BasePriceCents: slotRec.BasePriceCents,
        EmptySeats:     slotRec.EmptySeats,
    }

    hold, err := s.Holds.GetBySessionTx(ctx, tx, sess.Token)
    if err != nil {
        return pricing.Breakdown{}, err
    }
    seatIDs, err := s.Holds.SeatIDsTx(ctx, tx, hold.ID)
    if err != nil {
        return pricing.Breakdown{}, err
    }
    seats, err := s.Seats.GetByIDsTx(ctx, tx, seatIDs)
    if err != nil {
        return pricing.Breakdown{}, err
    }
    items, err := s.Sessions.ItemsByTokenTx(ctx, tx, sess.Token)
    if err != nil {
        return pricing.Breakdown{}, err
    }

    var promo *model.Promotion
    if sess.PromoCode != nil {
        promo, err = s.Promos.GetByCodeTx(ctx, tx, *sess.PromoCode)
        if err == repository.ErrPromotionNotFound {
            promo = nil // soft-deleted since selection; price without it
        } else if err != nil {
            return pricing.Breakdown{}, err
        }
    }

    return pricing.ComputeTotal(slot, seats, items, promo, time.Now().UTC()), nil
}

// requireSelecting rejects mutations on sessions that are frozen,
// terminal, or past their deadline.
func requireSelecting(sess *model.CheckoutSession) error {
    if sess.State != model.SessionSelecting {
        return ErrInvalidState
    }
    if !sess.Deadline.After(time.Now().UTC()) {
        return repository.ErrSessionExpired
    }
    return nil
}
