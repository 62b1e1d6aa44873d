package services

import "time"

// Clock supplies the current time to the services. All elapsed-time math is
// done against a timestamp taken once per operation, so tests can drive the
// billing engine with fixed instants instead of sleeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock returns a Clock backed by time.Now.
func NewRealClock() Clock { return realClock{} }
