package gasprice

import (
	"math/big"

	"github.com/umbracle/ethgo"
)

// DefaultGasPrice is the price returned when no oracle has an answer
var DefaultGasPrice = ethgo.Gwei(1)

// Oracle supplies the gas price seen by the GASPRICE opcode
type Oracle interface {
	// GasPrice returns the current price, false when the oracle has none
	GasPrice() (*big.Int, bool)
}

var _ Oracle = (*Fixed)(nil)

// Fixed always answers with the same price
type Fixed struct {
	price *big.Int
}

// NewFixed creates an oracle for price. A nil price makes the oracle empty.
func NewFixed(price *big.Int) *Fixed {
	if price == nil {
		return &Fixed{}
	}

	return &Fixed{price: new(big.Int).Set(price)}
}

func (f *Fixed) GasPrice() (*big.Int, bool) {
	if f.price == nil {
		return nil, false
	}

	return new(big.Int).Set(f.price), true
}

// Select returns the price of the oracle, DefaultGasPrice when the oracle
// is nil or has no price
func Select(oracle Oracle) *big.Int {
	if oracle != nil {
		if price, ok := oracle.GasPrice(); ok && price != nil {
			return price
		}
	}

	return new(big.Int).Set(DefaultGasPrice)
}
