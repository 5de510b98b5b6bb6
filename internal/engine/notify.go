package engine

import (
	"sync"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

// UnlockEvent is published when a user completes a topic for the first time.
type UnlockEvent struct {
	UserID         string             `json:"userId"`
	Topic          curriculum.Topic   `json:"topic"`
	NewlyAvailable []curriculum.Topic `json:"newlyAvailable"`
	At             time.Time          `json:"at"`
}

type subscriber struct {
	id int
	fn func(UnlockEvent)
}

type observers struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber
}

func (o *observers) add(fn func(UnlockEvent)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, subscriber{id: id, fn: fn})
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, s := range o.subs {
				if s.id == id {
					o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// publish calls every subscriber synchronously, outside the lock.
func (o *observers) publish(ev UnlockEvent) {
	o.mu.RLock()
	subs := make([]subscriber, len(o.subs))
	copy(subs, o.subs)
	o.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
