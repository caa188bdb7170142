// Package element tracks the resource counters collected from mines and
// clouds and spent on firing and crafting.
package element

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrInsufficient is returned when a cost exceeds what is available. It is an
// expected outcome, not a fault.
var ErrInsufficient = errors.New("insufficient resources")

// Counter is one element's amount and the time it last changed.
type Counter struct {
	Value     int     `msgpack:"value"`
	UpdatedAt float64 `msgpack:"updated_at"`
}

// Cost maps element symbols to required amounts.
type Cost map[string]int

// String renders the cost in symbol order, e.g. "H2O1".
func (c Cost) String() string {
	var b strings.Builder
	for _, sym := range slices.Sorted(maps.Keys(c)) {
		fmt.Fprintf(&b, "%s%d", sym, c[sym])
	}
	return b.String()
}

// Counters maps element symbols to counters. No value ever goes negative.
type Counters struct {
	values map[string]*Counter
}

func NewCounters() *Counters {
	return &Counters{values: make(map[string]*Counter)}
}

// Add increases symbol by amount at time now. Non-positive amounts are
// ignored.
func (c *Counters) Add(symbol string, amount int, now float64) {
	if amount <= 0 {
		return
	}
	counter, ok := c.values[symbol]
	if !ok {
		counter = &Counter{}
		c.values[symbol] = counter
	}
	counter.Value += amount
	counter.UpdatedAt = now
}

func (c *Counters) Get(symbol string) int {
	if counter, ok := c.values[symbol]; ok {
		return counter.Value
	}
	return 0
}

// Has reports whether every amount in cost is available.
func (c *Counters) Has(cost Cost) bool {
	for sym, amount := range cost {
		if amount > 0 && c.Get(sym) < amount {
			return false
		}
	}
	return true
}

// Consume subtracts cost if all of it is available. Otherwise nothing
// changes and the error wraps ErrInsufficient.
func (c *Counters) Consume(cost Cost, now float64) error {
	for _, sym := range slices.Sorted(maps.Keys(cost)) {
		if need := cost[sym]; need > 0 && c.Get(sym) < need {
			return fmt.Errorf("%w: need %d %s, have %d", ErrInsufficient, need, sym, c.Get(sym))
		}
	}

	for sym, amount := range cost {
		if amount <= 0 {
			continue
		}
		counter := c.values[sym]
		counter.Value -= amount
		counter.UpdatedAt = now
	}
	return nil
}

// Symbols lists every symbol seen so far, sorted.
func (c *Counters) Symbols() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// Snapshot copies the counters.
func (c *Counters) Snapshot() map[string]Counter {
	out := make(map[string]Counter, len(c.values))
	for sym, counter := range c.values {
		out[sym] = *counter
	}
	return out
}
