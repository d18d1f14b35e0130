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

// Package types models the small slice of the host type system the
// planner extension needs: type identities, constant values, interval
// arithmetic, and the operator registrations used to classify and
// rewrite comparisons.
package types

// TypeID identifies a host data type.
type TypeID int32

const (
	TypeInvalid TypeID = iota
	TypeBool
	TypeInt4
	TypeInt8
	TypeDate
	TypeTimestamp
	TypeTimestampTz
	TypeInterval
	TypeInt4Array
	TypeRecord
)

func (t TypeID) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt4:
		return "int4"
	case TypeInt8:
		return "int8"
	case TypeDate:
		return "date"
	case TypeTimestamp:
		return "timestamp"
	case TypeTimestampTz:
		return "timestamptz"
	case TypeInterval:
		return "interval"
	case TypeInt4Array:
		return "int4[]"
	case TypeRecord:
		return "record"
	default:
		return "invalid"
	}
}

// OpID identifies an operator registration.
type OpID int32

// OpInvalid is the zero OpID; no operator is registered under it.
const OpInvalid OpID = 0

// FuncID identifies a function. Identities for catalog-defined functions
// (bucketing functions, the chunks_in marker) are assigned by the catalog;
// the ids below are built-in cast functions.
type FuncID int32

// FuncInvalid is the zero FuncID.
const FuncInvalid FuncID = 0

// Built-in cast functions. Kept far away from the catalog-assigned range.
const (
	FuncCastTimestampToDate FuncID = 9001 + iota
	FuncCastInt4ToInt8
)

// Datum is a constant value. Concrete representations:
//
//	int64     - int4, int8, timestamp/timestamptz (microseconds since
//	            the epoch), date (days since the epoch)
//	bool      - bool
//	Interval  - interval
//	[]int64   - int4[]
type Datum any

// USecsPerDay converts a day count into microseconds at the fixed
// 24-hour day used by bucket arithmetic.
const USecsPerDay int64 = 24 * 60 * 60 * 1000000

// Interval mirrors the host interval representation: months and days are
// kept separate from the sub-day time component because their length in
// microseconds depends on the calendar and, for days, the time zone.
type Interval struct {
	Months int32
	Days   int32
	Micros int64
}

// IsTimeOnly reports whether the interval has neither day nor month
// components and can therefore be evaluated eagerly in any time zone.
func (iv Interval) IsTimeOnly() bool {
	return iv.Months == 0 && iv.Days == 0
}

// NormalizeDays folds the day component into the time component at a
// fixed 24 hours per day. Only valid when the caller has established that
// the fixed conversion is safe for its use of the result.
func (iv Interval) NormalizeDays() Interval {
	return Interval{
		Months: iv.Months,
		Days:   0,
		Micros: iv.Micros + int64(iv.Days)*USecsPerDay,
	}
}
