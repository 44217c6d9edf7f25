package deque

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Deque = (*ArrDeque)(nil)

func TestNewArrDeque_Capacity(t *testing.T) {
	assert.Equal(t, 8, NewArrDeque(1).Capacity())
	assert.Equal(t, 16, NewArrDeque(9).Capacity())
	assert.Equal(t, 64, NewArrDeque(64).Capacity())
	assert.Equal(t, 8, NewArrDeque(0).Capacity())
}

func TestArrDeque_BothEnds(t *testing.T) {
	d := NewArrDeque(8)
	d.AddLast(2)
	d.AddLast(3)
	d.AddFirst(1)
	d.AddFirst(0)

	assert.Equal(t, []float64{0, 1, 2, 3}, d.Values())
	assert.Equal(t, 4, d.Size())

	d.Set(1, 10)
	assert.Equal(t, 10.0, d.Get(1))

	assert.Equal(t, 3.0, d.RemoveLast())
	assert.Equal(t, 0.0, d.RemoveFirst())
	assert.Equal(t, []float64{10, 2}, d.Values())
}

func TestArrDeque_WrapAround(t *testing.T) {
	d := NewArrDeque(8)
	for i := 0; i < 20; i++ {
		d.Push(float64(i))
	}
	require.True(t, d.IsFull())
	assert.Equal(t, []float64{12, 13, 14, 15, 16, 17, 18, 19}, d.Values())
	assert.Equal(t, 19.0, d.Last())
	assert.Equal(t, 12.0, d.Get(0))
}

func TestArrDeque_Panics(t *testing.T) {
	d := NewArrDeque(8)
	assert.True(t, d.IsEmpty())
	assert.Panics(t, func() { d.RemoveFirst() })
	assert.Panics(t, func() { d.Get(0) })
	for i := 0; i < 8; i++ {
		d.AddFirst(1)
	}
	assert.Panics(t, func() { d.AddLast(1) })
	assert.Panics(t, func() { d.AddFirst(1) })
}

func TestArrDeque_Traverse(t *testing.T) {
	d := NewArrDeque(8)
	for i := 0; i < 5; i++ {
		d.AddLast(float64(i))
	}
	sum := 0.0
	d.Traverse(func(i int, v float64) {
		assert.Equal(t, float64(i), v)
		sum += v
	})
	assert.Equal(t, 10.0, sum)
}

func BenchmarkArrDeque_AddFirst(b *testing.B) {
	d := NewArrDeque(4000)
	for i := 0; i < b.N; i++ {
		d.AddFirst(1000)
		d.RemoveFirst()
	}
}

func BenchmarkArrDeque_Push(b *testing.B) {
	d := NewArrDeque(64)
	for i := 0; i < b.N; i++ {
		d.Push(float64(i))
	}
}
