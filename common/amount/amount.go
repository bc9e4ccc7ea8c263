// Copyright 2026 The go-tze Authors
// This file is part of the go-tze library.
//
// The go-tze library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-tze library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-tze library. If not, see <http://www.gnu.org/licenses/>.

// Package amount implements the non-negative zatoshi amount carried by TZE
// outputs.
package amount

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// Coin is the number of zatoshis in one ZEC.
	Coin int64 = 100_000_000

	// MaxMoney is the largest amount that can exist, in zatoshis.
	MaxMoney int64 = 21_000_000 * Coin
)

var (
	// ErrNegative is returned when constructing an amount from a negative value.
	ErrNegative = errors.New("amount: negative value")

	// ErrOutOfRange is returned when a value exceeds MaxMoney.
	ErrOutOfRange = errors.New("amount: value exceeds MaxMoney")
)

// Amount is a non-negative number of zatoshis, bounded above by MaxMoney.
// The zero value is a valid amount of zero.
type Amount struct {
	v int64
}

// New checks that v lies in [0, MaxMoney] and returns it as an Amount.
func New(v int64) (Amount, error) {
	if v < 0 {
		return Amount{}, fmt.Errorf("%w: %d", ErrNegative, v)
	}
	if v > MaxMoney {
		return Amount{}, fmt.Errorf("%w: %d", ErrOutOfRange, v)
	}
	return Amount{v}, nil
}

// MustNew is like New but panics on invalid input. It is intended for
// constants and tests.
func MustNew(v int64) Amount {
	a, err := New(v)
	if err != nil {
		panic(err)
	}
	return a
}

// Int64 returns the amount in zatoshis.
func (a Amount) Int64() int64 { return a.v }

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool { return a.v == 0 }

// Add returns a+b, failing if the sum exceeds MaxMoney. Both operands are at
// most MaxMoney, so the int64 addition itself cannot overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	return New(a.v + b.v)
}

// Sum adds up all amounts, failing on the first partial sum above MaxMoney.
func Sum(amounts ...Amount) (Amount, error) {
	var (
		total Amount
		err   error
	)
	for _, a := range amounts {
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// String formats the amount in zatoshis.
func (a Amount) String() string {
	return strconv.FormatInt(a.v, 10)
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, enforcing the same range
// as New.
func (a *Amount) UnmarshalText(input []byte) error {
	v, err := strconv.ParseInt(string(input), 10, 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	dec, err := New(v)
	if err != nil {
		return err
	}
	*a = dec
	return nil
}
