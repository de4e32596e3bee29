package report

import "sync"

// LRUStore is an in-memory LRU cache that delegates to a backing Store on miss.
type LRUStore struct {
	mu   sync.Mutex
	cap  int
	back Store

	// Doubly-linked list for LRU ordering (most recent at head).
	head, tail *lruEntry
	items      map[string]*lruEntry
}

type lruEntry struct {
	key    string
	record *SessionRecord
	prev   *lruEntry
	next   *lruEntry
}

// NewLRUStore creates an LRU cache with the given capacity that delegates
// to back on cache misses. Capacity must be >= 1.
func NewLRUStore(cap int, back Store) *LRUStore {
	if cap < 1 {
		cap = 1
	}
	return &LRUStore{
		cap:   cap,
		back:  back,
		items: make(map[string]*lruEntry, cap),
	}
}

// Save writes the record to the backing store and, once that succeeds,
// caches it as most recently used.
func (s *LRUStore) Save(record *SessionRecord) error {
	if err := s.back.Save(record); err != nil {
		return err
	}
	s.mu.Lock()
	s.put(record)
	s.mu.Unlock()
	return nil
}

// Load checks the LRU cache first. On miss, loads from the backing store
// and promotes the record into the cache.
func (s *LRUStore) Load(runID string) (*SessionRecord, error) {
	s.mu.Lock()
	if e, ok := s.items[runID]; ok {
		s.moveToFront(e)
		r := e.record
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()

	record, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.put(record)
	s.mu.Unlock()
	return record, nil
}

// Recent returns the IDs of cached runs, most recent first.
func (s *LRUStore) Recent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.items))
	for e := s.head; e != nil; e = e.next {
		ids = append(ids, e.key)
	}
	return ids
}

// put inserts or refreshes record. Callers hold mu.
func (s *LRUStore) put(record *SessionRecord) {
	if e, ok := s.items[record.ID]; ok {
		e.record = record
		s.moveToFront(e)
		return
	}
	e := &lruEntry{key: record.ID, record: record}
	s.items[record.ID] = e
	s.pushFront(e)
	if len(s.items) > s.cap {
		s.evict()
	}
}

func (s *LRUStore) pushFront(e *lruEntry) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *LRUStore) moveToFront(e *lruEntry) {
	if s.head == e {
		return
	}
	s.remove(e)
	s.pushFront(e)
}

func (s *LRUStore) remove(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (s *LRUStore) evict() {
	if s.tail == nil {
		return
	}
	e := s.tail
	s.remove(e)
	delete(s.items, e.key)
}
