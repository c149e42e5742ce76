package application

import "sync"

// employeeLocks serialises commands per employee id. Two concurrent StartTask
// calls for the same employee must not both observe "no open entry"; the
// critical section wraps the whole find-close-insert sequence. Locks for
// distinct employees are independent.
type employeeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEmployeeLocks() *employeeLocks {
	return &employeeLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the mutex for the given employee and returns the release
// function. Lock entries are retained for the employee's tenure; the map only
// grows with the active workforce.
func (l *employeeLocks) Acquire(employeeID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[employeeID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[employeeID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
