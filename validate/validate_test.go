package validate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func validBody() string {
	return `{"user_address":"7fUAJdStEuGbc3sSbvUriMxdCfBAK9iQEUBBKE8X6PLi","pool_id":3,"user_balance":1000,"withdrawal_amount":250,"pool_liquidity":50000}`
}

func TestProofRequestValid(t *testing.T) {
	req, err := ProofRequest([]byte(validBody()))
	require.NoError(t, err)
	require.Equal(t, "7fUAJdStEuGbc3sSbvUriMxdCfBAK9iQEUBBKE8X6PLi", req.UserAddress)
	require.Equal(t, int64(3), req.PoolID)
	require.Equal(t, int64(1000), req.UserBalance)
	require.Equal(t, int64(250), req.WithdrawalAmount)
	require.Equal(t, int64(50000), req.PoolLiquidity)
}

func TestProofRequestMalformedJSON(t *testing.T) {
	_, err := ProofRequest([]byte(`{"user_address": `))
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, KindMalformedRequest, vErr.Kind)
}

func TestProofRequestMissingFields(t *testing.T) {
	fields := []string{"user_address", "pool_id", "user_balance", "withdrawal_amount", "pool_liquidity"}
	for _, missing := range fields {
		t.Run(missing, func(t *testing.T) {
			body := "{"
			first := true
			for _, name := range fields {
				if name == missing {
					continue
				}
				if !first {
					body += ","
				}
				first = false
				if name == "user_address" {
					body += `"user_address":"addr1"`
				} else {
					body += fmt.Sprintf("%q:100", name)
				}
			}
			body += "}"

			_, err := ProofRequest([]byte(body))
			var vErr *Error
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, KindMissingField, vErr.Kind)
			require.Equal(t, missing, vErr.Field)
		})
	}
}

func TestProofRequestInvalidTypes(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"address not a string", `{"user_address":42,"pool_id":1,"user_balance":10,"withdrawal_amount":5,"pool_liquidity":10}`, "user_address"},
		{"address empty", `{"user_address":"  ","pool_id":1,"user_balance":10,"withdrawal_amount":5,"pool_liquidity":10}`, "user_address"},
		{"pool_id non-numeric", `{"user_address":"a","pool_id":"abc","user_balance":10,"withdrawal_amount":5,"pool_liquidity":10}`, "pool_id"},
		{"pool_id float", `{"user_address":"a","pool_id":1.5,"user_balance":10,"withdrawal_amount":5,"pool_liquidity":10}`, "pool_id"},
		{"balance negative", `{"user_address":"a","pool_id":1,"user_balance":-10,"withdrawal_amount":5,"pool_liquidity":10}`, "user_balance"},
		{"amount boolean", `{"user_address":"a","pool_id":1,"user_balance":10,"withdrawal_amount":true,"pool_liquidity":10}`, "withdrawal_amount"},
		{"liquidity null", `{"user_address":"a","pool_id":1,"user_balance":10,"withdrawal_amount":5,"pool_liquidity":null}`, "pool_liquidity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ProofRequest([]byte(tc.body))
			var vErr *Error
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, KindInvalidFieldType, vErr.Kind)
			require.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestProofRequestNumericStringsCoerced(t *testing.T) {
	body := `{"user_address":"a","pool_id":"7","user_balance":"100","withdrawal_amount":"40","pool_liquidity":"500"}`
	req, err := ProofRequest([]byte(body))
	require.NoError(t, err)
	require.Equal(t, int64(7), req.PoolID)
	require.Equal(t, int64(40), req.WithdrawalAmount)
}

func TestProofRequestWithdrawalExceedsBalance(t *testing.T) {
	body := `{"user_address":"a","pool_id":1,"user_balance":100,"withdrawal_amount":101,"pool_liquidity":500}`
	_, err := ProofRequest([]byte(body))
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, KindConstraintViolated, vErr.Kind)
	require.Equal(t, "withdrawal_amount", vErr.Field)
}

func TestProofRequestLiquidityBelowWithdrawal(t *testing.T) {
	body := `{"user_address":"a","pool_id":1,"user_balance":100,"withdrawal_amount":80,"pool_liquidity":50}`
	_, err := ProofRequest([]byte(body))
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, KindConstraintViolated, vErr.Kind)
	require.Equal(t, "pool_liquidity", vErr.Field)
}
