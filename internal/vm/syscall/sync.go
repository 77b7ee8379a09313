package syscall

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/snowlang/snow/internal/vm"
)

type mutexEntry struct{ mu sync.Mutex }

type condEntry struct {
	cond *sync.Cond
	mu   *sync.Mutex
}

// semEntry is a counting semaphore implemented over a buffered channel;
// WAIT with a timeout races the channel receive against a timer, per §5's
// "a pending interrupt on a blocking syscall is mapped to a handler-
// defined error return."
type semEntry struct {
	tokens chan struct{}
}

// rwlockEntry tracks which side is held alongside the RWMutex itself:
// UNLOCK has no id-only way to tell read from write apart, and calling the
// wrong Unlock method on an RWMutex is not just a panic but an unrecoverable
// runtime fatal when readers are active, so the mode must be tracked rather
// than guessed.
type rwlockEntry struct {
	mu      sync.RWMutex
	writer  int32
	readers int32
}

func registerSyncHandlers(t *Table) {
	t.register("MUTEX_NEW", func(t *Table, args []vm.Value) (vm.Value, error) {
		return int64(t.Mutexes.Add(&mutexEntry{})), nil
	})
	t.register("LOCK", func(t *Table, args []vm.Value) (vm.Value, error) {
		m, err := getMutex(t, args, 0)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		return int64(0), nil
	})
	t.register("TRYLOCK", func(t *Table, args []vm.Value) (vm.Value, error) {
		m, err := getMutex(t, args, 0)
		if err != nil {
			return nil, err
		}
		if m.mu.TryLock() {
			return int64(1), nil
		}
		return int64(0), nil
	})
	t.register("UNLOCK", func(t *Table, args []vm.Value) (vm.Value, error) {
		m, err := getMutex(t, args, 0)
		if err != nil {
			return nil, err
		}
		m.mu.Unlock()
		return int64(0), nil
	})

	t.register("COND_NEW", func(t *Table, args []vm.Value) (vm.Value, error) {
		mid, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		m, err := getMutexByID(t, int(mid))
		if err != nil {
			return nil, err
		}
		return int64(t.Conds.Add(&condEntry{cond: sync.NewCond(&m.mu), mu: &m.mu})), nil
	})
	t.register("COND_WAIT", func(t *Table, args []vm.Value) (vm.Value, error) {
		c, err := getCond(t, args, 0)
		if err != nil {
			return nil, err
		}
		c.cond.Wait() // atomically releases c.mu and reacquires it on wake
		return int64(0), nil
	})
	t.register("SIGNAL", func(t *Table, args []vm.Value) (vm.Value, error) {
		c, err := getCond(t, args, 0)
		if err != nil {
			return nil, err
		}
		c.cond.Signal()
		return int64(0), nil
	})
	t.register("BROADCAST", func(t *Table, args []vm.Value) (vm.Value, error) {
		c, err := getCond(t, args, 0)
		if err != nil {
			return nil, err
		}
		c.cond.Broadcast()
		return int64(0), nil
	})

	t.register("SEM_NEW", func(t *Table, args []vm.Value) (vm.Value, error) {
		initial, err := argInt(args, 0)
		if err != nil {
			return nil, err
		}
		s := &semEntry{tokens: make(chan struct{}, 1<<20)}
		for i := int64(0); i < initial; i++ {
			s.tokens <- struct{}{}
		}
		return int64(t.Sems.Add(s)), nil
	})
	t.register("SEM_WAIT", func(t *Table, args []vm.Value) (vm.Value, error) {
		s, err := getSem(t, args, 0)
		if err != nil {
			return nil, err
		}
		timeoutMs, _ := argInt(args, 1)
		if timeoutMs < 0 {
			<-s.tokens
			return int64(0), nil
		}
		if timeoutMs == 0 {
			select {
			case <-s.tokens:
				return int64(0), nil
			default:
				t.setErrno(ErrTimeout)
				return int64(-1), nil
			}
		}
		select {
		case <-s.tokens:
			return int64(0), nil
		case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
			t.setErrno(ErrTimeout)
			return int64(-1), nil
		}
	})
	t.register("SEM_POST", func(t *Table, args []vm.Value) (vm.Value, error) {
		s, err := getSem(t, args, 0)
		if err != nil {
			return nil, err
		}
		select {
		case s.tokens <- struct{}{}:
		default:
		}
		return int64(0), nil
	})

	t.register("RWLOCK_NEW", func(t *Table, args []vm.Value) (vm.Value, error) {
		return int64(t.RWLocks.Add(&rwlockEntry{})), nil
	})
	t.register("RLOCK", func(t *Table, args []vm.Value) (vm.Value, error) {
		l, err := getRWLock(t, args, 0)
		if err != nil {
			return nil, err
		}
		l.mu.RLock()
		atomic.AddInt32(&l.readers, 1)
		return int64(0), nil
	})
	t.register("WLOCK", func(t *Table, args []vm.Value) (vm.Value, error) {
		l, err := getRWLock(t, args, 0)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		atomic.StoreInt32(&l.writer, 1)
		return int64(0), nil
	})
	// RWLOCK_UNLOCK releases the write side if held, else the read side;
	// the mode is tracked in rwlockEntry rather than guessed, since an
	// RWMutex.Unlock() called while only read-locked is an unrecoverable
	// runtime fatal, not a catchable panic.
	t.register("RWLOCK_UNLOCK", func(t *Table, args []vm.Value) (vm.Value, error) {
		l, err := getRWLock(t, args, 0)
		if err != nil {
			return nil, err
		}
		if atomic.CompareAndSwapInt32(&l.writer, 1, 0) {
			l.mu.Unlock()
			return int64(0), nil
		}
		if atomic.AddInt32(&l.readers, -1) >= 0 {
			l.mu.RUnlock()
			return int64(0), nil
		}
		atomic.AddInt32(&l.readers, 1)
		t.setErrno(ErrInvalidArgument)
		return int64(-1), nil
	})
}

func getMutex(t *Table, args []vm.Value, idx int) (*mutexEntry, error) {
	id, err := argInt(args, idx)
	if err != nil {
		return nil, err
	}
	return getMutexByID(t, int(id))
}

func getMutexByID(t *Table, id int) (*mutexEntry, error) {
	v, ok := t.Mutexes.Get(id)
	if !ok {
		return nil, errNotFound("mutex", id)
	}
	return v.(*mutexEntry), nil
}

func getCond(t *Table, args []vm.Value, idx int) (*condEntry, error) {
	id, err := argInt(args, idx)
	if err != nil {
		return nil, err
	}
	v, ok := t.Conds.Get(int(id))
	if !ok {
		return nil, errNotFound("cond", int(id))
	}
	return v.(*condEntry), nil
}

func getSem(t *Table, args []vm.Value, idx int) (*semEntry, error) {
	id, err := argInt(args, idx)
	if err != nil {
		return nil, err
	}
	v, ok := t.Sems.Get(int(id))
	if !ok {
		return nil, errNotFound("sem", int(id))
	}
	return v.(*semEntry), nil
}

func getRWLock(t *Table, args []vm.Value, idx int) (*rwlockEntry, error) {
	id, err := argInt(args, idx)
	if err != nil {
		return nil, err
	}
	v, ok := t.RWLocks.Get(int(id))
	if !ok {
		return nil, errNotFound("rwlock", int(id))
	}
	return v.(*rwlockEntry), nil
}
