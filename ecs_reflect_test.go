package lightborne

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcsReflect_SliceRoundTrip(t *testing.T) {
	column := reflectSliceMake(reflect.TypeOf(Activatable{}))
	require.IsType(t, []Activatable{}, column)

	for i := 0; i < 3; i++ {
		column = reflectSliceAppend(column, reflect.ValueOf(Activatable{Key: GroupKey{ID: int32(i)}}))
	}
	reflectSliceSet(column, 1, reflect.ValueOf(Activatable{Key: GroupKey{Color: LightRed, ID: 7}, Active: true}))

	typed := column.([]Activatable)
	require.Len(t, typed, 3)
	assert.Equal(t, int32(0), typed[0].Key.ID)
	assert.Equal(t, GroupKey{Color: LightRed, ID: 7}, typed[1].Key)
	assert.True(t, typed[1].Active)

	got := reflectSliceGet(column, 1)
	assert.True(t, got.CanAddr(), "column elements must be addressable for GetComponent")
	got.Addr().Interface().(*Activatable).Active = false
	assert.False(t, typed[1].Active)
}

func TestEcsReflect_Panics(t *testing.T) {
	ints := []int{1, 2, 3}

	assert.Panics(t, func() { reflectSliceGet(ints, 10) }, "out of bounds get")
	assert.Panics(t, func() { reflectSliceSet(ints, 0, reflect.ValueOf("x")) }, "type mismatch set")
	assert.Panics(t, func() { reflectSliceAppend(ints, reflect.ValueOf(1.5)) }, "type mismatch append")
}
