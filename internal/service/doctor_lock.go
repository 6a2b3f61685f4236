package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrDoctorBusy is returned when another booking for the same doctor holds the lock.
var ErrDoctorBusy = errors.New("another booking for this doctor is in progress")

const (
	doctorLockKeyPrefix  = "booking:lock:doctor:"
	lockRetryInterval    = 25 * time.Millisecond
	mutexCleanupInterval = 10 * time.Minute
	mutexStaleThreshold  = 10 * time.Minute
)

// DoctorLocker serializes the check-then-save section of bookings per doctor.
type DoctorLocker interface {
	Lock(ctx context.Context, doctorID uuid.UUID) (unlock func(), err error)
}

// NoopLocker never blocks. Concurrent bookings for overlapping slots may both
// pass the availability check.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}

// releaseLockScript deletes the lock only if it still holds our token, so an
// expired lease taken over by another node is left alone.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisDoctorLocker takes a per-doctor lease in Redis (SET NX PX) guarded by a
// local mutex, so requests in one process queue up before contending in Redis.
//
// Lock ordering: local mutex first, then the Redis lease.
type RedisDoctorLocker struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
	wait        time.Duration

	doctorMu sync.Map // map[uuid.UUID]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64
}

// NewRedisDoctorLocker starts a background goroutine that evicts idle local
// mutexes. Call Stop during shutdown.
func NewRedisDoctorLocker(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *RedisDoctorLocker {
	l := &RedisDoctorLocker{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
		wait:        ttl,
		stopChan:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

func (l *RedisDoctorLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("Doctor locker stopped")
	}
}

// Lock blocks until the doctor's lease is acquired, ctx is done, or the wait
// budget (one lease TTL) runs out, in which case ErrDoctorBusy is returned.
func (l *RedisDoctorLocker) Lock(ctx context.Context, doctorID uuid.UUID) (func(), error) {
	mt := l.doctorMutex(doctorID)
	if !l.lockLocal(ctx, mt) {
		return nil, ErrDoctorBusy
	}

	key := doctorLockKeyPrefix + doctorID.String()
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.redisClient.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			mt.mu.Unlock()
			l.log.Warnf("Failed to acquire lock for doctor %s: %+v", doctorID, err)
			return nil, fmt.Errorf("acquire doctor lock %s: %w", doctorID, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			mt.mu.Unlock()
			return nil, ErrDoctorBusy
		}
		select {
		case <-ctx.Done():
			mt.mu.Unlock()
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			// release with a fresh context: the request one may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseLockScript.Run(releaseCtx, l.redisClient, []string{key}, token).Err(); err != nil {
				l.log.Warnf("Failed to release lock for doctor %s: %+v", doctorID, err)
			}
			mt.mu.Unlock()
		})
	}
	return unlock, nil
}

func (l *RedisDoctorLocker) lockLocal(ctx context.Context, mt *mutexWithTimestamp) bool {
	deadline := time.Now().Add(l.wait)
	for !mt.mu.TryLock() {
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(lockRetryInterval):
		}
	}
	return true
}

func (l *RedisDoctorLocker) doctorMutex(doctorID uuid.UUID) *mutexWithTimestamp {
	v, _ := l.doctorMu.LoadOrStore(doctorID, &mutexWithTimestamp{})
	mt := v.(*mutexWithTimestamp)
	mt.lastUsed.Store(time.Now().Unix())
	return mt
}

func (l *RedisDoctorLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanupStaleMutexes(time.Now().Add(-mutexStaleThreshold))
		}
	}
}

// cleanupStaleMutexes drops mutexes unused since cutoff. lastUsed is read
// under the lock so a concurrent Lock cannot lose its mutex.
func (l *RedisDoctorLocker) cleanupStaleMutexes(cutoff time.Time) int {
	var cleaned int
	l.doctorMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoff.Unix() {
				l.doctorMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d idle doctor mutexes", cleaned)
	}
	return cleaned
}
