package model

import "time"

// Payment statuses.  A payment is finalized exactly once by the
// first valid callback carrying its order id.
const (
    PaymentPending = "PENDING"
    PaymentSuccess = "SUCCESS"
    PaymentFailed  = "FAILED"
)

// PaymentTransaction records one outbound payment attempt.  The
// order id doubles as the gateway's transaction reference and is
// unique across all payments.
//
// Fields:
//  ID            – primary key identifier.
//  OrderID       – unique transaction reference sent to the gateway.
//  SessionToken  – checkout session the payment belongs to.
//  AmountCents   – frozen amount in the smallest currency unit.
//  RequestParams – canonical signed query string sent outbound,
//                  kept for audit and dispute handling.
//  ResponseCode  – gateway response code; nil until a callback lands.
//  GatewayTxnNo  – gateway's own transaction number.
//  BankCode      – bank / card-type tag reported by the gateway.
//  CardType      – card scheme reported by the gateway.
//  Status        – one of the Payment* constants above.
//  CreatedAt     – creation timestamp.
//  FinalizedAt   – when the first valid callback was applied.
type PaymentTransaction struct {
    ID            uint64     // payments.id
    OrderID       string     // payments.order_id
    SessionToken  string     // payments.session_token
    AmountCents   int64      // payments.amount_cents
    RequestParams string     // payments.request_params
    ResponseCode  *string    // payments.response_code (nullable)
    GatewayTxnNo  *string    // payments.gateway_txn_no (nullable)
    BankCode      *string    // payments.bank_code (nullable)
    CardType      *string    // payments.card_type (nullable)
    Status        string     // payments.status
    CreatedAt     time.Time  // payments.created_at
    FinalizedAt   *time.Time // payments.finalized_at (nullable)
}
