// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import "math"

// MathSum implements `Math/sum`: the arithmetic sum of a [*List] of
// [Number]. Non-Number items are skipped.
func MathSum(l *List) Number {
	var sum Number
	for _, item := range l.Items {
		if n, ok := item.Value.(Number); ok {
			sum += n
		}
	}
	return sum
}

// MathMin implements `Math/min`: the smallest value, or [Unplugged] for
// an empty list (callers must consume this via WHEN per the postfix `?`
// discipline, §4.3).
func MathMin(l *List) Value {
	return mathExtreme(l, func(a, b Number) bool { return a < b })
}

// MathMax implements `Math/max`.
func MathMax(l *List) Value {
	return mathExtreme(l, func(a, b Number) bool { return a > b })
}

func mathExtreme(l *List, better func(a, b Number) bool) Value {
	var best Number
	found := false
	for _, item := range l.Items {
		n, ok := item.Value.(Number)
		if !ok {
			continue
		}
		if !found || better(n, best) {
			best, found = n, true
		}
	}
	if !found {
		return Unplugged{}
	}
	return best
}

// MathAbs implements `Math/abs`.
func MathAbs(n Number) Number {
	return Number(math.Abs(float64(n)))
}

// MathFloor implements `Math/floor`.
func MathFloor(n Number) Number {
	return Number(math.Floor(float64(n)))
}

// MathCeil implements `Math/ceil`.
func MathCeil(n Number) Number {
	return Number(math.Ceil(float64(n)))
}

// MathRound implements `Math/round`.
func MathRound(n Number) Number {
	return Number(math.Round(float64(n)))
}
