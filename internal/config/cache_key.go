package config

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PapersSlot returns the cache slot holding the serialized paper list.
func (r *CacheKeyStruct) PapersSlot() string {
	return "edu:papers"
}

// StudentsSlot returns the cache slot holding the serialized student roster.
func (r *CacheKeyStruct) StudentsSlot() string {
	return "edu:students"
}

// SubmissionsSlot returns the cache slot holding the serialized submission list.
func (r *CacheKeyStruct) SubmissionsSlot() string {
	return "edu:submissions"
}

// InstructorsSlot returns the cache slot holding the serialized instructor list.
// Used for offline credential checks only.
func (r *CacheKeyStruct) InstructorsSlot() string {
	return "edu:instructors"
}

// ReconcileQueue returns the queue of pending remote writes awaiting retry.
func (r *CacheKeyStruct) ReconcileQueue() string {
	return "edu:reconcile_queue"
}

var CacheKey = NewCacheKeyStruct()
