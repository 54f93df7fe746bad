package cache

import "errors"

// GetAllPresent validates every key before touching the cache, then looks
// each one up in order. Duplicate keys are looked up (and counted) each time.
func (c *cache[K, V]) GetAllPresent(keys []K) (ReadOnlyMap[K, V], error) {
	if err := c.check.keys(keys); err != nil {
		return ReadOnlyMap[K, V]{}, err
	}
	if c.closed.Load() {
		return ReadOnlyMap[K, V]{}, ErrClosed
	}

	now := c.now()
	found := make(map[K]V, len(keys))
	var ns notes[K, V]
	for _, k := range keys {
		if v, ok := c.shardFor(k).get(k, now, &ns); ok {
			found[k] = v
		}
	}
	c.dispatch(ns)
	return ReadOnlyMap[K, V]{m: found}, nil
}

// PutAll validates the whole batch first; a nil entry fails it with no
// effect. Writer vetoes affect only their own key and are joined.
func (c *cache[K, V]) PutAll(entries map[K]V) error {
	if err := c.check.entries(entries); err != nil {
		return err
	}
	if c.closed.Load() {
		return ErrClosed
	}

	now := c.now()
	var (
		ns   notes[K, V]
		errs []error
	)
	for k, v := range entries {
		if err := c.shardFor(k).put(k, v, now, &ns); err != nil {
			errs = append(errs, err)
		}
	}
	c.dispatch(ns)
	c.reportSize()
	return errors.Join(errs...)
}

func (c *cache[K, V]) InvalidateKeys(keys []K) error {
	if err := c.check.keys(keys); err != nil {
		return err
	}
	if c.closed.Load() {
		return ErrClosed
	}

	now := c.now()
	var (
		ns   notes[K, V]
		errs []error
	)
	for _, k := range keys {
		if err := c.shardFor(k).remove(k, now, &ns); err != nil {
			errs = append(errs, err)
		}
	}
	c.dispatch(ns)
	c.reportSize()
	return errors.Join(errs...)
}

func (c *cache[K, V]) InvalidateAll() error {
	if c.closed.Load() {
		return ErrClosed
	}

	var (
		ns   notes[K, V]
		errs []error
	)
	for _, s := range c.shards {
		if err := s.clear(&ns); err != nil {
			errs = append(errs, err)
		}
	}
	c.dispatch(ns)
	c.reportSize()
	return errors.Join(errs...)
}
