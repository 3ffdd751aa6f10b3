package storage

import "errors"

var (
	ErrNoAward  = errors.New("no award found")
	ErrNoRatio  = errors.New("earn ratio not cached")
	ErrLockHeld = errors.New("award lock already held")
)
