package lightborne

import "errors"

var (
	ErrInvalidLevel  = errors.New("invalid level")
	ErrInvalidConfig = errors.New("invalid config")
	ErrLevelNotFound = errors.New("level not found")
)
