// Package arith registers the elementary arithmetic operators: add, sub,
// mul, div, and neg. Each accepts plain numbers, quantities, or a mix; the
// engine passes all values through opaquely.
package arith

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/calcgrid/internal/quantity"
	"github.com/vk/calcgrid/internal/registry"
)

// ErrBadOperand indicates an argument that is neither numeric nor a
// quantity.
var ErrBadOperand = errors.New("arith: operand is not a number or quantity")

// ErrDivByZero indicates scalar division by zero.
var ErrDivByZero = errors.New("arith: division by zero")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the arithmetic operators with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("add", opAdd)
	r.Register("sub", opSub)
	r.Register("mul", opMul)
	r.Register("div", opDiv)
	r.Register("neg", opNeg)
}

// asFloat coerces the numeric types a recipe or caller can produce.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// fold reduces the call's arguments left to right with the scalar op f and
// its quantity counterparts.
func fold(call *registry.Call, opName string, f func(x, y float64) float64) (any, error) {
	if len(call.Args) == 0 {
		return nil, fmt.Errorf("%s: no arguments", opName)
	}
	acc := call.Args[0]
	for _, arg := range call.Args[1:] {
		var err error
		acc, err = combine(opName, acc, arg, f)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func combine(opName string, a, b any, f func(x, y float64) float64) (any, error) {
	aq, aIsQ := a.(*quantity.Quantity)
	bq, bIsQ := b.(*quantity.Quantity)
	af, aIsN := asFloat(a)
	bf, bIsN := asFloat(b)

	switch {
	case aIsQ && bIsQ:
		return quantity.Apply2(aq.Name(), aq, bq, f)
	case aIsQ && bIsN:
		return mapCells(aq, func(x float64) float64 { return f(x, bf) }), nil
	case aIsN && bIsQ:
		return mapCells(bq, func(y float64) float64 { return f(af, y) }), nil
	case aIsN && bIsN:
		return f(af, bf), nil
	}
	bad := a
	if aIsQ || aIsN {
		bad = b
	}
	return nil, fmt.Errorf("%w: %s got %T", ErrBadOperand, opName, bad)
}

func mapCells(q *quantity.Quantity, f func(float64) float64) *quantity.Quantity {
	// Scale-then-shift would lose generality; rebuild from records instead.
	recs := q.Records()
	for i := range recs {
		recs[i].Value = f(recs[i].Value)
	}
	out, _ := quantity.New(q.Name(), q.Units(), q.Dims(), recs)
	return out
}

func opAdd(_ context.Context, call *registry.Call) (any, error) {
	return fold(call, "add", func(x, y float64) float64 { return x + y })
}

func opSub(_ context.Context, call *registry.Call) (any, error) {
	return fold(call, "sub", func(x, y float64) float64 { return x - y })
}

func opMul(_ context.Context, call *registry.Call) (any, error) {
	return fold(call, "mul", func(x, y float64) float64 { return x * y })
}

func opDiv(_ context.Context, call *registry.Call) (any, error) {
	// Every scalar divisor is checked up front, whatever the dividend is.
	// Quantity divisors are not: their sparse cells make zero denominators
	// intrinsic, and the result carries the Infs for the caller to see.
	for _, arg := range call.Args[1:] {
		if f, isN := asFloat(arg); isN && f == 0 {
			return nil, ErrDivByZero
		}
	}
	return fold(call, "div", func(x, y float64) float64 { return x / y })
}

func opNeg(_ context.Context, call *registry.Call) (any, error) {
	if len(call.Args) != 1 {
		return nil, fmt.Errorf("neg: want 1 argument, got %d", len(call.Args))
	}
	return combine("neg", -1.0, call.Args[0], func(x, y float64) float64 { return x * y })
}
