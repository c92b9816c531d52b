package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shieldpool/proof-gateway/types"
)

// ErrorKind is the machine-readable class of a validation failure.
type ErrorKind string

const (
	KindMalformedRequest   ErrorKind = "MalformedRequest"
	KindMissingField       ErrorKind = "MissingField"
	KindInvalidFieldType   ErrorKind = "InvalidFieldType"
	KindConstraintViolated ErrorKind = "ConstraintViolated"
)

// Error is a typed validation failure. Field is set for field-level kinds.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %q)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

var requiredIntFields = []string{"pool_id", "user_balance", "withdrawal_amount", "pool_liquidity"}

// ProofRequest parses raw request bytes and checks presence and type of every
// required field, then the business-rule bounds between them. No side effects.
func ProofRequest(raw []byte) (*types.ProofRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &Error{Kind: KindMalformedRequest, Message: "request body is not valid JSON"}
	}

	addrRaw, ok := fields["user_address"]
	if !ok {
		return nil, &Error{Kind: KindMissingField, Field: "user_address", Message: "required field is absent"}
	}
	var addr string
	if err := json.Unmarshal(addrRaw, &addr); err != nil || strings.TrimSpace(addr) == "" {
		return nil, &Error{Kind: KindInvalidFieldType, Field: "user_address", Message: "expected a non-empty string"}
	}

	req := &types.ProofRequest{UserAddress: addr}
	for _, name := range requiredIntFields {
		fieldRaw, ok := fields[name]
		if !ok {
			return nil, &Error{Kind: KindMissingField, Field: name, Message: "required field is absent"}
		}
		v, err := parseNonNegativeInt(fieldRaw)
		if err != nil {
			return nil, &Error{Kind: KindInvalidFieldType, Field: name, Message: err.Error()}
		}
		switch name {
		case "pool_id":
			req.PoolID = v
		case "user_balance":
			req.UserBalance = v
		case "withdrawal_amount":
			req.WithdrawalAmount = v
		case "pool_liquidity":
			req.PoolLiquidity = v
		}
	}

	if req.WithdrawalAmount > req.UserBalance {
		return nil, &Error{
			Kind:    KindConstraintViolated,
			Field:   "withdrawal_amount",
			Message: "withdrawal_amount exceeds user_balance",
		}
	}
	if req.PoolLiquidity < req.WithdrawalAmount {
		return nil, &Error{
			Kind:    KindConstraintViolated,
			Field:   "pool_liquidity",
			Message: "pool_liquidity is less than withdrawal_amount",
		}
	}

	return req, nil
}

// parseNonNegativeInt accepts a JSON number or a decimal string. Floats,
// negatives and anything non-numeric are rejected.
func parseNonNegativeInt(raw json.RawMessage) (int64, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		// The demo clients send numeric strings, so coerce those too.
		var s string
		if strErr := json.Unmarshal(raw, &s); strErr != nil {
			return 0, fmt.Errorf("expected a non-negative integer")
		}
		num = json.Number(strings.TrimSpace(s))
	}

	v, err := strconv.ParseInt(num.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected a non-negative integer")
	}
	if v < 0 {
		return 0, fmt.Errorf("negative values are not allowed")
	}
	return v, nil
}
