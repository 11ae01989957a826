package solana

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const LamportsPerSOL = 1_000_000_000

// Service exposes one method per supported Solana JSON-RPC query. Methods
// never return Go errors; failures are reported in the response envelope.
type Service struct {
	caller Caller
}

func NewService(caller Caller) *Service {
	return &Service{caller: caller}
}

// LamportsToSOL converts exactly and rounds once to the nearest float64.
func LamportsToSOL(lamports uint64) float64 {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9).InexactFloat64()
}
