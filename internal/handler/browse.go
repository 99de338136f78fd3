package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-core/internal/repository"
    "github.com/iliyamo/cinema-booking-core/internal/service"
)

// BrowseHandler serves the public seat-map endpoint.  Expired holds
// on the slot are swept before reading, so the returned statuses are
// never stale because of a lapsed hold.
type BrowseHandler struct {
    SlotRepo *repository.SlotRepo
    SeatRepo *repository.SeatRepo
    HoldMgr  *service.HoldManager
}

// SeatView is one seat in the public seat-map response.
type SeatView struct {
    ID            uint64 `json:"id"`
    RowLabel      string `json:"row_label"`
    SeatNumber    uint32 `json:"seat_number"`
    SeatTypeID    uint64 `json:"seat_type_id"`
    MultiplierPct int64  `json:"multiplier_pct"`
    Status        string `json:"status"`
}

// GetSlotSeats handles GET /v1/slots/:id/seats.  It returns every
// seat of the slot's room with its current status and the slot's
// empty-seat counter, after expiring any overdue holds.
func (h *BrowseHandler) GetSlotSeats(c echo.Context) error {
    slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || slotID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }
    ctx := c.Request().Context()

    tx, err := h.SlotRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if _, err := h.SlotRepo.GetByIDTx(ctx, tx, slotID); err != nil {
        return writeServiceError(c, err)
    }
    if err := h.HoldMgr.SweepSlotTx(ctx, tx, slotID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cleanup expired holds"})
    }
    // Re-read after the sweep so the counter reflects freed seats.
    slot, err := h.SlotRepo.GetByIDTx(ctx, tx, slotID)
    if err != nil {
        return writeServiceError(c, err)
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    seats, err := h.SeatRepo.ListByRoom(ctx, slot.RoomID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]SeatView, 0, len(seats))
    for _, s := range seats {
        out = append(out, SeatView{
            ID:            s.ID,
            RowLabel:      s.RowLabel,
            SeatNumber:    s.SeatNumber,
            SeatTypeID:    s.SeatTypeID,
            MultiplierPct: s.MultiplierPct,
            Status:        s.Status,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "slot_id":     slot.ID,
        "empty_seats": slot.EmptySeats,
        "items":       out,
    })
}
