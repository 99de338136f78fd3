// Package gateway builds outbound signed redirect requests for the
// card payment gateway and verifies inbound signed callbacks.  The
// field names, the minor-unit amount convention and the timestamp
// format are dictated by the gateway and must match byte for byte.
//
// Signing protocol: drop empty parameters, sort the rest by key
// byte-wise ascending, URL-encode each key and value, join as
// k1=v1&k2=v2, HMAC-SHA512 the canonical string with the shared
// secret and hex-encode the digest.  The exact same canonicalization
// runs on both the signing and the verification side; applying the
// encoding on one side only is the classic integration bug.
package gateway

import (
    "crypto/hmac"
    "crypto/sha512"
    "encoding/hex"
    "errors"
    "net/url"
    "strconv"
    "strings"
    "time"
)

// Gateway parameter names.
const (
    paramVersion    = "vnp_Version"
    paramCommand    = "vnp_Command"
    paramTmnCode    = "vnp_TmnCode"
    paramLocale     = "vnp_Locale"
    paramCurrCode   = "vnp_CurrCode"
    paramTxnRef     = "vnp_TxnRef"
    paramOrderInfo  = "vnp_OrderInfo"
    paramOrderType  = "vnp_OrderType"
    paramAmount     = "vnp_Amount"
    paramReturnURL  = "vnp_ReturnUrl"
    paramIPAddr     = "vnp_IpAddr"
    paramCreateDate = "vnp_CreateDate"
    paramBankCode   = "vnp_BankCode"

    paramSecureHash     = "vnp_SecureHash"
    paramSecureHashType = "vnp_SecureHashType"

    paramResponseCode  = "vnp_ResponseCode"
    paramTransactionNo = "vnp_TransactionNo"
    paramCardType      = "vnp_CardType"
)

// createDateLayout is the gateway's yyyyMMddHHmmss timestamp format.
const createDateLayout = "20060102150405"

// ErrSignatureInvalid is returned when a callback's signature does
// not match the recomputed HMAC.  It is a security failure: callers
// must log it and never finalize a session from such a callback.
var ErrSignatureInvalid = errors.New("gateway signature invalid")

// Config carries the merchant credentials and fixed protocol values
// agreed with the gateway.
type Config struct {
    BaseURL   string // gateway payment endpoint
    TmnCode   string // merchant code issued by the gateway
    Secret    string // shared HMAC secret
    Version   string // protocol version, e.g. "2.1.0"
    Locale    string // ui locale, e.g. "vn"
    Currency  string // currency code, e.g. "VND"
    OrderType string // gateway order category code
    ReturnURL string // absolute URL the gateway redirects back to
}

// Client signs outbound requests and verifies inbound callbacks.
type Client struct {
    cfg Config
}

// New returns a Client for the given merchant configuration.
func New(cfg Config) *Client { return &Client{cfg: cfg} }

// PaymentRequest describes one outbound payment redirect.
type PaymentRequest struct {
    OrderID     string    // unique transaction reference
    AmountCents int64     // amount in the smallest currency unit
    OrderInfo   string    // order description shown at the gateway
    ClientIP    string    // caller IP forwarded to the gateway
    BankCode    string    // optional preselected bank, may be empty
    CreatedAt   time.Time // request creation time
}

// BuildPaymentURL constructs the signed redirect URL for a payment
// request.  It returns the full URL and the canonical signed query
// string, which callers persist for audit.  The wire amount is the
// order amount multiplied by 100 per the gateway's hundredths
// convention.
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, string) {
    params := map[string]string{
        paramVersion:    c.cfg.Version,
        paramCommand:    "pay",
        paramTmnCode:    c.cfg.TmnCode,
        paramLocale:     c.cfg.Locale,
        paramCurrCode:   c.cfg.Currency,
        paramTxnRef:     req.OrderID,
        paramOrderInfo:  req.OrderInfo,
        paramOrderType:  c.cfg.OrderType,
        paramAmount:     strconv.FormatInt(req.AmountCents*100, 10),
        paramReturnURL:  c.cfg.ReturnURL,
        paramIPAddr:     req.ClientIP,
        paramCreateDate: req.CreatedAt.Format(createDateLayout),
        paramBankCode:   req.BankCode,
    }
    canonical := canonicalize(params)
    sig := c.sign(canonical)
    return c.cfg.BaseURL + "?" + canonical + "&" + paramSecureHash + "=" + sig, canonical
}

// CallbackResult is the parsed, signature-verified content of an
// inbound gateway callback.
type CallbackResult struct {
    OrderID      string // vnp_TxnRef
    ResponseCode string // vnp_ResponseCode
    TxnNo        string // vnp_TransactionNo
    BankCode     string // vnp_BankCode
    CardType     string // vnp_CardType
    AmountCents  int64  // vnp_Amount divided back by 100
}

// Success reports whether the gateway approved the payment.  A valid
// signature with a non-success code is a business failure, not a
// security failure.
func (r CallbackResult) Success() bool { return r.ResponseCode == ResponseCodeSuccess }

// VerifyCallback checks the signature over the full inbound query
// parameter set and parses the result.  The signature fields are
// removed before re-signing.  Comparison is constant time.  On
// signature mismatch it returns ErrSignatureInvalid and callers must
// not trust any parsed field.
func (c *Client) VerifyCallback(query url.Values) (CallbackResult, error) {
    received := query.Get(paramSecureHash)
    if received == "" {
        return CallbackResult{}, ErrSignatureInvalid
    }

    params := make(map[string]string, len(query))
    for k := range query {
        if k == paramSecureHash || k == paramSecureHashType {
            continue
        }
        params[k] = query.Get(k)
    }
    expected := c.sign(canonicalize(params))
    if !hmac.Equal([]byte(expected), []byte(strings.ToLower(received))) {
        return CallbackResult{}, ErrSignatureInvalid
    }

    res := CallbackResult{
        OrderID:      query.Get(paramTxnRef),
        ResponseCode: query.Get(paramResponseCode),
        TxnNo:        query.Get(paramTransactionNo),
        BankCode:     query.Get(paramBankCode),
        CardType:     query.Get(paramCardType),
    }
    if raw := query.Get(paramAmount); raw != "" {
        if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
            res.AmountCents = n / 100
        }
    }
    return res, nil
}

// sign computes the hex-encoded HMAC-SHA512 of the canonical string.
func (c *Client) sign(canonical string) string {
    mac := hmac.New(sha512.New, []byte(c.cfg.Secret))
    mac.Write([]byte(canonical))
    return hex.EncodeToString(mac.Sum(nil))
}

// canonicalize drops empty values and renders the remaining
// parameters as a URL-encoded query string sorted by key byte-wise
// ascending.  url.Values.Encode provides exactly those semantics and
// is used on both the signing and verification paths.
func canonicalize(params map[string]string) string {
    v := url.Values{}
    for k, val := range params {
        if val == "" {
            continue
        }
        v.Set(k, val)
    }
    return v.Encode()
}
