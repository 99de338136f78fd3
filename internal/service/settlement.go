package service

import (
    "context"
    "database/sql"
    "log"
    "time"

    "github.com/iliyamo/cinema-booking-core/internal/gateway"
    "github.com/iliyamo/cinema-booking-core/internal/model"
    "github.com/iliyamo/cinema-booking-core/internal/queue"
    "github.com/iliyamo/cinema-booking-core/internal/repository"
)

// Callback dispositions recorded in the audit trail.  Every inbound
// callback gets exactly one row, whatever happens to it afterwards.
const (
    dispositionSettled   = "settled"
    dispositionFailed    = "failed"
    dispositionDuplicate = "duplicate"
    dispositionLate      = "late"
    dispositionUnknown   = "unknown_order"
    dispositionBadAmount = "amount_mismatch"
)

// SettlementService applies signature-verified gateway callbacks to
// checkout sessions and runs the hold expiry sweep.  Both paths race
// against each other and against explicit cancels; every outcome is
// decided by a compare-and-swap on the session row, so each callback
// has side effects at most once no matter how many times the gateway
// retries it.
type SettlementService struct {
    Sessions  *repository.SessionRepo
    Payments  *repository.PaymentRepo
    Promos    *repository.PromotionRepo
    HoldMgr   *HoldManager
    Publisher TicketPublisher
}

// Apply processes one verified callback.  The signature has already
// been checked by the caller; Apply decides whether the callback
// settles the session, fails it, or is a duplicate/late/unknown
// arrival that only gets audited.  A nil return means the gateway
// should be acknowledged with the success code, which includes
// duplicates: re-acking a callback we have already absorbed stops
// the gateway from retrying forever.
func (s *SettlementService) Apply(ctx context.Context, res gateway.CallbackResult, rawQuery string) error {
    disposition, event, err := s.applyTx(ctx, res)

    // The audit row is written outside the settlement transaction so
    // it survives even when finalization rolls back.
    if auditErr := s.Payments.RecordCallback(ctx, res.OrderID, rawQuery, disposition, time.Now().UTC()); auditErr != nil {
        log.Printf("settlement: audit write failed for order %s: %v", res.OrderID, auditErr)
    }
    if err != nil {
        return err
    }
    if event != nil {
        // Fire and forget: the session is already settled and the
        // broker being down must not fail the acknowledgement.
        if pubErr := s.Publisher.PublishTicketIssued(ctx, *event); pubErr != nil {
            log.Printf("settlement: ticket event publish failed for order %s: %v", res.OrderID, pubErr)
        }
    }
    return nil
}

func (s *SettlementService) applyTx(ctx context.Context, res gateway.CallbackResult) (string, *queue.TicketIssuedEvent, error) {
    tx, err := s.Sessions.DB().BeginTx(ctx, nil)
    if err != nil {
        return dispositionUnknown, nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    sess, err := s.Sessions.GetByOrderIDTx(ctx, tx, res.OrderID)
    if err == repository.ErrSessionNotFound {
        return dispositionUnknown, nil, nil
    }
    if err != nil {
        return dispositionUnknown, nil, err
    }

    payment, err := s.Payments.GetByOrderIDTx(ctx, tx, res.OrderID)
    if err == sql.ErrNoRows {
        return dispositionUnknown, nil, nil
    }
    if err != nil {
        return dispositionUnknown, nil, err
    }
    if res.AmountCents != payment.AmountCents {
        // A signed callback with the wrong amount is suspicious; the
        // payment stays pending for the sweep to expire naturally.
        log.Printf("settlement: amount mismatch for order %s: got %d, expected %d",
            res.OrderID, res.AmountCents, payment.AmountCents)
        return dispositionBadAmount, nil, nil
    }

    if !res.Success() {
        won, err := s.Sessions.TransitionTx(ctx, tx, sess.Token,
            model.SessionAwaitingPayment, model.SessionFailed, false)
        if err != nil {
            return dispositionFailed, nil, err
        }
        if !won {
            return dispositionDuplicate, nil, nil
        }
        if _, err := s.Payments.FinalizeTx(ctx, tx, res.OrderID,
            res.ResponseCode, res.TxnNo, res.BankCode, res.CardType, model.PaymentFailed); err != nil {
            return dispositionFailed, nil, err
        }
        if _, _, err := s.HoldMgr.TakeoverTx(ctx, tx, sess.Token, model.HoldReleased); err != nil {
            return dispositionFailed, nil, err
        }
        if err := tx.Commit(); err != nil {
            return dispositionFailed, nil, err
        }
        committed = true
        return dispositionFailed, nil, nil
    }

    // Success callback.  The deadline predicate makes a late success
    // lose the CAS even before the sweeper has expired the session.
    won, err := s.Sessions.TransitionTx(ctx, tx, sess.Token,
        model.SessionAwaitingPayment, model.SessionSettled, true)
    if err != nil {
        return dispositionSettled, nil, err
    }
    if !won {
        if sess.Terminal() {
            return dispositionDuplicate, nil, nil
        }
        return dispositionLate, nil, nil
    }
    if _, err := s.Payments.FinalizeTx(ctx, tx, res.OrderID,
        res.ResponseCode, res.TxnNo, res.BankCode, res.CardType, model.PaymentSuccess); err != nil {
        return dispositionSettled, nil, err
    }
    seatIDs, _, err := s.HoldMgr.TakeoverTx(ctx, tx, sess.Token, model.HoldConsumed)
    if err != nil {
        return dispositionSettled, nil, err
    }
    if sess.PromoCode != nil {
        if err := s.Promos.IncrementUsageTx(ctx, tx, *sess.PromoCode); err != nil {
            return dispositionSettled, nil, err
        }
    }
    items, err := s.Sessions.ItemsByTokenTx(ctx, tx, sess.Token)
    if err != nil {
        return dispositionSettled, nil, err
    }

    if err := tx.Commit(); err != nil {
        return dispositionSettled, nil, err
    }
    committed = true

    combos := make([]queue.TicketCombo, 0, len(items))
    for _, it := range items {
        combos = append(combos, queue.TicketCombo{
            ProductID:      it.ProductID,
            Quantity:       it.Quantity,
            UnitPriceCents: it.UnitPriceCents,
        })
    }
    event := &queue.TicketIssuedEvent{
        OrderID:         res.OrderID,
        SessionToken:    sess.Token,
        SlotID:          sess.SlotID,
        SeatIDs:         seatIDs,
        ComboItems:      combos,
        GrandTotalCents: payment.AmountCents,
        SettledAt:       time.Now().UTC().Format(time.RFC3339),
    }
    return dispositionSettled, event, nil
}

// Sweep expires due holds in batches.  Each hold is handled in its
// own transaction so one poisoned row cannot stall the whole sweep;
// the session transition tries both live states because a hold can
// lapse while selecting or while waiting at the gateway.
func (s *SettlementService) Sweep(ctx context.Context, limit int) (int, error) {
    due, err := s.HoldMgr.Holds.DueHolds(ctx, limit)
    if err != nil {
        return 0, err
    }
    swept := 0
    for _, h := range due {
        if err := s.sweepOne(ctx, h.SessionToken); err != nil {
            log.Printf("settlement: sweep failed for session %s: %v", h.SessionToken, err)
            continue
        }
        swept++
    }
    return swept, nil
}

func (s *SettlementService) sweepOne(ctx context.Context, token string) error {
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

    if _, _, err := s.HoldMgr.TakeoverTx(ctx, tx, token, model.HoldExpired); err != nil {
        return err
    }
    for _, from := range []string{model.SessionSelecting, model.SessionAwaitingPayment} {
        won, err := s.Sessions.TransitionTx(ctx, tx, token, from, model.SessionExpired, false)
        if err != nil {
            return err
        }
        if won {
            break
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
