package game

import "time"

// Timer is a pending callback that can be cancelled. *time.Timer
// satisfies it.
type Timer interface {
	Stop() bool
}

// Clock is the source of time for turn clocks and challenge windows.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock uses the wall clock.
func RealClock() Clock {
	return realClock{}
}
