package presence

// Store abstracts the record map so a shared backend could replace the
// in-process one in a multi-node deployment. Implementations do not
// need to be thread-safe: the tracker serializes every access under its
// own lock.
type Store interface {
	Get(key Key) (*Record, bool)
	Put(key Key, rec *Record)
	ForEach(fn func(key Key, rec *Record))
}

// MemoryStore is the default process-local store. State does not
// survive a restart.
type MemoryStore struct {
	records map[Key]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Key]*Record)}
}

func (s *MemoryStore) Get(key Key) (*Record, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

func (s *MemoryStore) Put(key Key, rec *Record) {
	s.records[key] = rec
}

func (s *MemoryStore) ForEach(fn func(key Key, rec *Record)) {
	for key, rec := range s.records {
		fn(key, rec)
	}
}
