package calculator

import (
	"sync"
)

// Reporter receives progress, status and diagnostic messages. Calls must not
// block the pipeline.
type Reporter interface {
	Progress(percent int)
	Status(text string)
	Debug(msg string)
}

type nopReporter struct{}

func (nopReporter) Progress(int)  {}
func (nopReporter) Status(string) {}
func (nopReporter) Debug(string)  {}

// CalcHub fans pipeline messages out on buffered channels. A full channel
// drops the message.
type CalcHub struct {
	ProgressChan chan int
	StatusChan   chan string
	DebugChan    chan string

	// 计算结束
	Done chan struct{}
	once sync.Once
}

func NewCalcHub() *CalcHub {
	return &CalcHub{
		ProgressChan: make(chan int, 32),
		StatusChan:   make(chan string, 32),
		DebugChan:    make(chan string, 256),
		Done:         make(chan struct{}),
	}
}

// Progress clamps percent to [0,100].
func (ch *CalcHub) Progress(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	select {
	case ch.ProgressChan <- percent:
	default:
	}
}

func (ch *CalcHub) Status(text string) {
	select {
	case ch.StatusChan <- text:
	default:
	}
}

func (ch *CalcHub) Debug(msg string) {
	select {
	case ch.DebugChan <- msg:
	default:
	}
}

// StopSignal marks the end of a run, safe to call more than once.
func (ch *CalcHub) StopSignal() {
	ch.once.Do(func() { close(ch.Done) })
}
