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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderingStrategy(t *testing.T) {
	tcases := []struct {
		op       OpID
		typ      TypeID
		expected Strategy
	}{
		{OpIntLt, TypeInt8, StrategyLess},
		{OpIntLt, TypeInt4, StrategyLess},
		{OpIntGe, TypeInt8, StrategyGreaterEqual},
		{OpTimestampTzGt, TypeTimestampTz, StrategyGreater},
		{OpTimestampTzGt, TypeTimestamp, StrategyGreater},
		// integer comparison does not order datetime types
		{OpIntLt, TypeTimestampTz, StrategyInvalid},
		{OpTimestampTzLt, TypeInt8, StrategyInvalid},
		// arithmetic operators carry no ordering strategy
		{OpInt8Pl, TypeInt8, StrategyInvalid},
	}
	for _, tc := range tcases {
		assert.Equal(t, tc.expected, OrderingStrategy(tc.op, tc.typ), "op %d over %s", tc.op, tc.typ)
	}
}

func TestCommutator(t *testing.T) {
	pairs := map[OpID]OpID{
		OpIntLt: OpIntGt,
		OpIntLe: OpIntGe,
		OpIntEq: OpIntEq,
		OpIntGe: OpIntLe,
		OpIntGt: OpIntLt,
	}
	for op, expected := range pairs {
		commuted, ok := Commutator(op)
		require.True(t, ok)
		assert.Equal(t, expected, commuted)
	}

	_, ok := Commutator(OpInt8Pl)
	assert.False(t, ok, "addition has no commutator registration")
	_, ok = Commutator(OpID(9999))
	assert.False(t, ok)
}

func TestAdditionOperator(t *testing.T) {
	op, ok := AdditionOperator(TypeInt8, TypeInt8)
	require.True(t, ok)
	assert.Equal(t, TypeInt8, op.Result)
	assert.True(t, op.Immutable)

	op, ok = AdditionOperator(TypeTimestampTz, TypeInterval)
	require.True(t, ok)
	assert.Equal(t, TypeTimestampTz, op.Result)
	assert.False(t, op.Immutable, "timestamptz + interval is stable, not immutable")

	op, ok = AdditionOperator(TypeDate, TypeInterval)
	require.True(t, ok)
	assert.Equal(t, TypeTimestamp, op.Result, "date + interval widens to timestamp")

	_, ok = AdditionOperator(TypeBool, TypeInterval)
	assert.False(t, ok)
}

func TestCastFunc(t *testing.T) {
	f, ok := CastFunc(TypeTimestamp, TypeDate)
	require.True(t, ok)
	res, ok := CastResult(f)
	require.True(t, ok)
	assert.Equal(t, TypeDate, res)

	_, ok = CastFunc(TypeInterval, TypeDate)
	assert.False(t, ok)
}

func TestComparisonOperator(t *testing.T) {
	op, ok := ComparisonOperator(TypeInt4, StrategyGreater)
	require.True(t, ok)
	assert.Equal(t, OpIntGt, op)

	op, ok = ComparisonOperator(TypeDate, StrategyLessEqual)
	require.True(t, ok)
	assert.Equal(t, OpDateLe, op)

	_, ok = ComparisonOperator(TypeInterval, StrategyLess)
	assert.False(t, ok, "interval has no default ordering family here")
}
