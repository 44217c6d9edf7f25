// Package deque is a fixed capacity double ended queue of float64 values,
// used to keep the most recent solver residuals.
package deque

type Deque interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的数值, 0 is the front
	Get(i int) float64

	Set(i int, v float64)

	// 正向遍历
	Traverse(f func(i int, v float64))

	// Values copies the queue front to back.
	Values() []float64

	AddLast(v float64)

	RemoveLast() float64

	AddFirst(v float64)

	RemoveFirst() float64

	IsFull() bool

	IsEmpty() bool
}
