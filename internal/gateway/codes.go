package gateway

// ResponseCodeSuccess is the gateway's documented success code.
const ResponseCodeSuccess = "00"

// responseReasons maps every documented non-success response code to
// its user-facing failure reason.  The table is part of the external
// gateway contract; do not edit wording without a contract change.
var responseReasons = map[string]string{
    "07": "transaction suspected of fraud",
    "09": "card or account not registered for online payment",
    "10": "card or account authentication failed more than 3 times",
    "11": "payment window timed out",
    "12": "card or account is locked",
    "13": "wrong one-time password entered",
    "24": "customer cancelled the transaction",
    "51": "insufficient funds",
    "65": "daily transaction limit exceeded",
    "75": "issuing bank under maintenance",
    "79": "wrong payment password entered too many times",
    "99": "other gateway error",
}

// ReasonFor returns the user-facing reason for a non-success
// response code.  Unknown codes fall back to the generic reason so a
// new gateway code never leaks raw digits to customers.
func ReasonFor(code string) string {
    if r, ok := responseReasons[code]; ok {
        return r
    }
    return responseReasons["99"]
}
