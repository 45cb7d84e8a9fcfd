package repo

import "errors"

// ErrLockNotHeld — pg_advisory_unlock вернул false: сессия не держала лок.
var ErrLockNotHeld = errors.New("advisory lock not held")
