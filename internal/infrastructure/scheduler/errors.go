package scheduler

import "errors"

var (
	// ErrInvalidSchedule is returned when a cron expression cannot be parsed
	ErrInvalidSchedule = errors.New("invalid backup schedule")

	// ErrAlreadyRunning is returned when a backup is requested while one is in flight
	ErrAlreadyRunning = errors.New("backup already in progress")
)
