package core

import "sync/atomic"

// Entity identifies a combat participant (attacker or target)
type Entity uint64

// NilEntity is the zero value, never allocated
const NilEntity Entity = 0

// EntityAllocator hands out unique entity IDs
// Safe for concurrent use
type EntityAllocator struct {
	next atomic.Uint64
}

func NewEntityAllocator() *EntityAllocator {
	return &EntityAllocator{}
}

// Next returns a fresh entity ID, starting at 1
func (a *EntityAllocator) Next() Entity {
	return Entity(a.next.Add(1))
}
