package deque

// 数组大小基数
const base = 8

// ArrDeque is a ring buffer. Adding to a full deque panics, callers that keep
// a sliding window remove from the other end first (see Push).
type ArrDeque struct {
	arr   []float64
	start int
	size  int
}

// NewArrDeque rounds capacity up to a multiple of 8.
func NewArrDeque(capacity int) *ArrDeque {
	if capacity <= 0 {
		capacity = base
	}
	if remainder := capacity % base; remainder != 0 {
		capacity = capacity - remainder + base
	}
	return &ArrDeque{arr: make([]float64, capacity)}
}

func (ad *ArrDeque) Size() int {
	return ad.size
}

func (ad *ArrDeque) Capacity() int {
	return len(ad.arr)
}

func (ad *ArrDeque) index(i int) int {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	return (ad.start + i) % len(ad.arr)
}

func (ad *ArrDeque) Get(i int) float64 {
	return ad.arr[ad.index(i)]
}

func (ad *ArrDeque) Set(i int, v float64) {
	ad.arr[ad.index(i)] = v
}

func (ad *ArrDeque) Traverse(f func(i int, v float64)) {
	for i := 0; i < ad.size; i++ {
		f(i, ad.arr[(ad.start+i)%len(ad.arr)])
	}
}

func (ad *ArrDeque) Values() []float64 {
	out := make([]float64, ad.size)
	ad.Traverse(func(i int, v float64) {
		out[i] = v
	})
	return out
}

func (ad *ArrDeque) AddLast(v float64) {
	if ad.IsFull() {
		panic("deque is full")
	}
	ad.arr[(ad.start+ad.size)%len(ad.arr)] = v
	ad.size++
}

func (ad *ArrDeque) RemoveLast() float64 {
	if ad.IsEmpty() {
		panic("deque is empty")
	}
	v := ad.Get(ad.size - 1)
	ad.size--
	return v
}

func (ad *ArrDeque) AddFirst(v float64) {
	if ad.IsFull() {
		panic("deque is full")
	}
	ad.start = (ad.start - 1 + len(ad.arr)) % len(ad.arr)
	ad.arr[ad.start] = v
	ad.size++
}

func (ad *ArrDeque) RemoveFirst() float64 {
	if ad.IsEmpty() {
		panic("deque is empty")
	}
	v := ad.arr[ad.start]
	ad.start = (ad.start + 1) % len(ad.arr)
	ad.size--
	return v
}

// Push appends v, dropping the oldest value when full.
func (ad *ArrDeque) Push(v float64) {
	if ad.IsFull() {
		ad.RemoveFirst()
	}
	ad.AddLast(v)
}

// Last is the most recently added value, 0 when empty.
func (ad *ArrDeque) Last() float64 {
	if ad.IsEmpty() {
		return 0
	}
	return ad.Get(ad.size - 1)
}

func (ad *ArrDeque) IsFull() bool {
	return ad.size == len(ad.arr)
}

func (ad *ArrDeque) IsEmpty() bool {
	return ad.size == 0
}
