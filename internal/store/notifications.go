package store

import (
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// DefaultNotificationDuration is used when a notification has no duration
const DefaultNotificationDuration = 5 * time.Second

// NotificationsState is a point-in-time copy of the queue
type NotificationsState struct {
	Notifications []domain.Notification `json:"notifications"`
}

// Notifications is a transient queue of toasts. Each entry removes itself
// after its duration unless it is dismissed first. Nothing is persisted.
type Notifications struct {
	Observable

	mu              sync.Mutex
	items           []domain.Notification
	timers          map[string]*time.Timer
	defaultDuration time.Duration
	closed          bool
	newID           func() string
}

// NewNotifications creates an empty queue. A defaultDuration <= 0 selects
// DefaultNotificationDuration.
func NewNotifications(defaultDuration time.Duration) *Notifications {
	if defaultDuration <= 0 {
		defaultDuration = DefaultNotificationDuration
	}
	return &Notifications{
		items:           []domain.Notification{},
		timers:          make(map[string]*time.Timer),
		defaultDuration: defaultDuration,
		newID: func() string {
			return "notification-" + uuid.NewString()
		},
	}
}

// AddNotification enqueues n under a fresh id and schedules its expiry.
// The assigned id is returned.
func (q *Notifications) AddNotification(n domain.Notification) string {
	n.ID = q.newID()

	duration := q.defaultDuration
	if n.Duration > 0 {
		duration = time.Duration(n.Duration) * time.Millisecond
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return n.ID
	}
	q.items = append(q.items, n)
	id := n.ID
	q.timers[id] = time.AfterFunc(duration, func() {
		q.expire(id)
	})
	q.mu.Unlock()

	q.notify()
	return n.ID
}

// RemoveNotification dismisses id immediately; unknown ids are ignored
func (q *Notifications) RemoveNotification(id string) {
	q.mu.Lock()
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	removed := q.removeLocked(id)
	q.mu.Unlock()

	if removed {
		q.notify()
	}
}

// ClearNotifications empties the queue and cancels pending expiries
func (q *Notifications) ClearNotifications() {
	q.mu.Lock()
	q.stopTimersLocked()
	q.items = []domain.Notification{}
	q.mu.Unlock()

	q.notify()
}

// Close cancels pending expiries and rejects further notifications
func (q *Notifications) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.stopTimersLocked()
}

// Items returns a copy of the queue in insertion order
func (q *Notifications) Items() []domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Snapshot returns the queue state
func (q *Notifications) Snapshot() NotificationsState {
	return NotificationsState{Notifications: q.Items()}
}

// expire runs on the timer goroutine. The entry may already be gone after a
// manual dismissal, in which case nothing happens.
func (q *Notifications) expire(id string) {
	q.mu.Lock()
	delete(q.timers, id)
	removed := q.removeLocked(id)
	q.mu.Unlock()

	if removed {
		q.notify()
	}
}

func (q *Notifications) removeLocked(id string) bool {
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Notifications) stopTimersLocked() {
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
}
