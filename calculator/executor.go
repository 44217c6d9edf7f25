package calculator

import (
	"sync"
	"time"
)

// executor runs a range of independent lines on a fixed pool of workers.
type executor interface {
	run()
	dispatchTask(first, last int, f func(line int)) time.Duration
	stop()
}

type task struct {
	start int
	end   int
	f     func(line int)
}

// 基于切片任务分配
type executorBaseOnSlice struct {
	workers      int
	dispatchChan chan task
	doneSoFar    chan struct{}
	once         sync.Once
}

func newExecutorBaseOnSlice(workers int) *executorBaseOnSlice {
	return &executorBaseOnSlice{
		workers:      workers,
		dispatchChan: make(chan task, 2*workers),
		doneSoFar:    make(chan struct{}, 2*workers),
	}
}

func (e *executorBaseOnSlice) run() {
	for i := 0; i < e.workers; i++ {
		go func() {
			for t := range e.dispatchChan {
				for line := t.start; line < t.end; line++ {
					t.f(line)
				}
				e.doneSoFar <- struct{}{}
			}
		}()
	}
}

// dispatchTask splits [first, last) into about two chunks per worker and
// blocks until every chunk is done.
func (e *executorBaseOnSlice) dispatchTask(first, last int, f func(line int)) time.Duration {
	start := time.Now()
	total := last - first
	if total <= 0 {
		return 0
	}
	size := total / (2 * e.workers)
	if size == 0 {
		size = 1
	}

	tasks := 0
	go func() {
		for s := first; s < last; s += size {
			end := s + size
			if end > last {
				end = last
			}
			e.dispatchChan <- task{start: s, end: end, f: f}
		}
	}()
	for s := first; s < last; s += size {
		tasks++
	}
	for i := 0; i < tasks; i++ {
		<-e.doneSoFar
	}
	return time.Since(start)
}

func (e *executorBaseOnSlice) stop() {
	e.once.Do(func() { close(e.dispatchChan) })
}

// 直接调度, 单线程遍历
type executorInline struct{}

func (executorInline) run() {}

func (executorInline) dispatchTask(first, last int, f func(line int)) time.Duration {
	start := time.Now()
	for line := first; line < last; line++ {
		f(line)
	}
	return time.Since(start)
}

func (executorInline) stop() {}

func newExecutor(workers int) executor {
	if workers <= 1 {
		return executorInline{}
	}
	e := newExecutorBaseOnSlice(workers)
	e.run()
	return e
}
