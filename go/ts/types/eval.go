/*
Copyright 2025 The Timescale Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package types

// Eval evaluates a registered operator over two constant values at plan
// time. It refuses (ok=false) whenever the result could depend on
// execution-time session state: stable operators with calendar-bearing
// intervals, and month-bearing intervals in general, are never folded.
func Eval(op OpID, left, right Datum) (Datum, bool) {
	o, ok := operators[op]
	if !ok {
		return nil, false
	}

	if o.Strategy != StrategyInvalid {
		l, lok := left.(int64)
		r, rok := right.(int64)
		if !lok || !rok {
			return nil, false
		}
		return compare(o.Strategy, l, r), true
	}

	switch o.ID {
	case OpInt4Pl, OpInt8Pl:
		l, lok := left.(int64)
		r, rok := right.(int64)
		if !lok || !rok {
			return nil, false
		}
		return l + r, true
	case OpTimestampPlInterval:
		l, lok := left.(int64)
		iv, rok := right.(Interval)
		if !lok || !rok || iv.Months != 0 {
			return nil, false
		}
		// timestamp has no time zone, so a day is always 24 hours
		return l + int64(iv.Days)*USecsPerDay + iv.Micros, true
	case OpTimestampTzPlInterval:
		l, lok := left.(int64)
		iv, rok := right.(Interval)
		if !lok || !rok || !iv.IsTimeOnly() {
			return nil, false
		}
		return l + iv.Micros, true
	case OpDatePlInterval:
		l, lok := left.(int64)
		iv, rok := right.(Interval)
		if !lok || !rok || iv.Months != 0 {
			return nil, false
		}
		return (l+int64(iv.Days))*USecsPerDay + iv.Micros, true
	}
	return nil, false
}

func compare(s Strategy, l, r int64) bool {
	switch s {
	case StrategyLess:
		return l < r
	case StrategyLessEqual:
		return l <= r
	case StrategyEqual:
		return l == r
	case StrategyGreaterEqual:
		return l >= r
	case StrategyGreater:
		return l > r
	}
	return false
}

// EvalCast applies a built-in cast function to a constant value.
func EvalCast(f FuncID, v Datum) (Datum, bool) {
	switch f {
	case FuncCastTimestampToDate:
		micros, ok := v.(int64)
		if !ok {
			return nil, false
		}
		days := micros / USecsPerDay
		if micros%USecsPerDay < 0 {
			days--
		}
		return days, true
	case FuncCastInt4ToInt8:
		n, ok := v.(int64)
		return n, ok
	default:
		return nil, false
	}
}

// TimeBucket returns the lower bound of the width-sized bucket containing
// value, aligned to the epoch origin. This is the integer bucketing
// function semantics: the result is always <= value.
func TimeBucket(width, value int64) int64 {
	if width <= 0 {
		return value
	}
	rem := value % width
	if rem < 0 {
		rem += width
	}
	return value - rem
}
