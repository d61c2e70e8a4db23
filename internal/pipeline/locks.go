package pipeline

import (
	"context"
	"sync"
)

// pathLocks serializes items that write the same output files. Entries are
// dropped once nobody holds or waits on them.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	held chan struct{}
	refs int
}

// acquire blocks until key is free or ctx is done. The returned func
// releases the lock.
func (l *pathLocks) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*pathLock)
	}
	pl := l.locks[key]
	if pl == nil {
		pl = &pathLock{held: make(chan struct{}, 1)}
		l.locks[key] = pl
	}
	pl.refs++
	l.mu.Unlock()

	select {
	case pl.held <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, pl)
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-pl.held
			l.drop(key, pl)
		})
	}, nil
}

func (l *pathLocks) drop(key string, pl *pathLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pl.refs--
	if pl.refs == 0 {
		delete(l.locks, key)
	}
}
