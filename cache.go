package labelwire

import "sync"

// slot holds one registration's instance within one container. Its mutex
// is held for the whole construction so concurrent resolvers of the same
// registration wait for the first one instead of building their own.
type slot struct {
	mu    sync.Mutex
	done  bool
	value any
}

// instanceCache maps registrations to their slots for a single container.
type instanceCache struct {
	mu    sync.Mutex
	slots map[*Registration]*slot
}

func newInstanceCache() *instanceCache {
	return &instanceCache{slots: make(map[*Registration]*slot)}
}

func (ic *instanceCache) slot(reg *Registration) *slot {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	s, ok := ic.slots[reg]
	if !ok {
		s = &slot{}
		ic.slots[reg] = s
	}
	return s
}

// getOrCreate returns the cached instance for reg, calling create on a miss.
// A failed create leaves the slot empty so a later resolution retries.
func (ic *instanceCache) getOrCreate(reg *Registration, create func() (any, error)) (any, bool, error) {
	s := ic.slot(reg)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return s.value, true, nil
	}
	v, err := create()
	if err != nil {
		return nil, false, err
	}
	s.value = v
	s.done = true
	return v, false, nil
}
