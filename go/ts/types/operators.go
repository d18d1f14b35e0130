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

// Strategy is the position of a comparison operator within its type's
// default ordering family.
type Strategy int

const (
	StrategyInvalid Strategy = iota
	StrategyLess
	StrategyLessEqual
	StrategyEqual
	StrategyGreaterEqual
	StrategyGreater
)

func (s Strategy) String() string {
	switch s {
	case StrategyLess:
		return "<"
	case StrategyLessEqual:
		return "<="
	case StrategyEqual:
		return "="
	case StrategyGreaterEqual:
		return ">="
	case StrategyGreater:
		return ">"
	default:
		return "?"
	}
}

// Family is a default btree ordering family. Comparison operators are
// classified against the family of the column type, so int4 and int8
// comparisons share one family the way the host's integer_ops does.
type Family int

const (
	FamilyInvalid Family = iota
	FamilyInteger
	FamilyDatetime
)

// TypeFamily returns the default ordering family of a type.
func TypeFamily(t TypeID) Family {
	switch t {
	case TypeInt4, TypeInt8:
		return FamilyInteger
	case TypeDate, TypeTimestamp, TypeTimestampTz:
		return FamilyDatetime
	default:
		return FamilyInvalid
	}
}

// Comparison operators.
const (
	OpIntLt OpID = iota + 1
	OpIntLe
	OpIntEq
	OpIntGe
	OpIntGt

	OpTimestampTzLt
	OpTimestampTzLe
	OpTimestampTzEq
	OpTimestampTzGe
	OpTimestampTzGt

	OpTimestampLt
	OpTimestampLe
	OpTimestampEq
	OpTimestampGe
	OpTimestampGt

	OpDateLt
	OpDateLe
	OpDateEq
	OpDateGe
	OpDateGt
)

// Addition operators.
const (
	OpInt4Pl OpID = iota + 100
	OpInt8Pl
	OpTimestampPlInterval
	OpTimestampTzPlInterval
	OpDatePlInterval
)

// Operator describes one operator registration.
type Operator struct {
	ID         OpID
	Name       string
	Left       TypeID
	Right      TypeID
	Result     TypeID
	Family     Family
	Strategy   Strategy
	Commutator OpID

	// Immutable operators may be evaluated over constants at plan time.
	// Stable operators (timestamptz + interval) depend on session state
	// and must be deferred to execution.
	Immutable bool
}

var operators = map[OpID]Operator{}

func register(op Operator) {
	operators[op.ID] = op
}

func registerComparisons(base OpID, family Family, operand TypeID) {
	strategies := [...]Strategy{StrategyLess, StrategyLessEqual, StrategyEqual, StrategyGreaterEqual, StrategyGreater}
	// commutator pairs up < with >, <= with >=, and = with itself
	commutators := [...]OpID{base + 4, base + 3, base + 2, base + 1, base + 0}
	for i, s := range strategies {
		register(Operator{
			ID:         base + OpID(i),
			Name:       s.String(),
			Left:       operand,
			Right:      operand,
			Result:     TypeBool,
			Family:     family,
			Strategy:   s,
			Commutator: commutators[i],
			Immutable:  true,
		})
	}
}

func init() {
	registerComparisons(OpIntLt, FamilyInteger, TypeInt8)
	registerComparisons(OpTimestampTzLt, FamilyDatetime, TypeTimestampTz)
	registerComparisons(OpTimestampLt, FamilyDatetime, TypeTimestamp)
	registerComparisons(OpDateLt, FamilyDatetime, TypeDate)

	register(Operator{ID: OpInt4Pl, Name: "+", Left: TypeInt4, Right: TypeInt4, Result: TypeInt4, Immutable: true})
	register(Operator{ID: OpInt8Pl, Name: "+", Left: TypeInt8, Right: TypeInt8, Result: TypeInt8, Immutable: true})
	register(Operator{ID: OpTimestampPlInterval, Name: "+", Left: TypeTimestamp, Right: TypeInterval, Result: TypeTimestamp, Immutable: true})
	register(Operator{ID: OpTimestampTzPlInterval, Name: "+", Left: TypeTimestampTz, Right: TypeInterval, Result: TypeTimestampTz, Immutable: false})
	// date + interval widens to timestamp, forcing callers that need a
	// date back to insert a cast
	register(Operator{ID: OpDatePlInterval, Name: "+", Left: TypeDate, Right: TypeInterval, Result: TypeTimestamp, Immutable: true})
}

// Lookup returns the registration for op.
func Lookup(op OpID) (Operator, bool) {
	o, ok := operators[op]
	return o, ok
}

// OrderingStrategy classifies op within the default ordering family of
// columnType. StrategyInvalid means op does not order that type.
func OrderingStrategy(op OpID, columnType TypeID) Strategy {
	o, ok := operators[op]
	if !ok || o.Family == FamilyInvalid || o.Family != TypeFamily(columnType) {
		return StrategyInvalid
	}
	return o.Strategy
}

// Commutator returns the operator that expresses `b op a` when op
// expresses `a op b`.
func Commutator(op OpID) (OpID, bool) {
	o, ok := operators[op]
	if !ok || o.Commutator == OpInvalid {
		return OpInvalid, false
	}
	return o.Commutator, true
}

// ComparisonOperator returns the comparison operator for columnType with
// the given strategy. An exact operand match wins; otherwise any operator
// of the type's ordering family serves, the way int4 comparisons resolve
// to the integer family's int8 operators.
func ComparisonOperator(columnType TypeID, s Strategy) (OpID, bool) {
	var fallback OpID
	for _, o := range operators {
		if o.Strategy != s || o.Family == FamilyInvalid || o.Family != TypeFamily(columnType) {
			continue
		}
		if o.Left == columnType {
			return o.ID, true
		}
		fallback = o.ID
	}
	return fallback, fallback != OpInvalid
}

// AdditionOperator returns the "+" operator registered for the operand
// type pair, if any.
func AdditionOperator(left, right TypeID) (Operator, bool) {
	for _, o := range operators {
		if o.Name == "+" && o.Left == left && o.Right == right {
			return o, true
		}
	}
	return Operator{}, false
}

// CastFunc returns the cast function from one type to another, if one is
// registered.
func CastFunc(from, to TypeID) (FuncID, bool) {
	switch {
	case from == TypeTimestamp && to == TypeDate:
		return FuncCastTimestampToDate, true
	case from == TypeInt4 && to == TypeInt8:
		return FuncCastInt4ToInt8, true
	default:
		return FuncInvalid, false
	}
}

// CastResult returns the result type of a built-in cast function.
func CastResult(f FuncID) (TypeID, bool) {
	switch f {
	case FuncCastTimestampToDate:
		return TypeDate, true
	case FuncCastInt4ToInt8:
		return TypeInt8, true
	default:
		return TypeInvalid, false
	}
}
