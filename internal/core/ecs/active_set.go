package ecs

// ActiveSet is a sparse/dense set of live entity IDs, the payload-free
// sibling of ComponentArray. Not safe for concurrent use; World guards it.
type ActiveSet struct {
	dense  []EntityID
	sparse []int32
}

func NewActiveSet() *ActiveSet {
	return &ActiveSet{
		dense:  make([]EntityID, 0, 256),
		sparse: make([]int32, 0, 256),
	}
}

func (s *ActiveSet) Insert(id EntityID) {
	if id == NullEntity || s.Contains(id) {
		return
	}
	for int(id) >= len(s.sparse) {
		s.sparse = append(s.sparse, invalidIndex)
	}
	s.sparse[id] = int32(len(s.dense))
	s.dense = append(s.dense, id)
}

// Erase removes id. Returns false if id was not in the set.
func (s *ActiveSet) Erase(id EntityID) bool {
	if !s.Contains(id) {
		return false
	}
	idx := s.sparse[id]
	last := int32(len(s.dense) - 1)
	moved := s.dense[last]
	s.dense[idx] = moved
	s.sparse[moved] = idx
	s.dense = s.dense[:last]
	s.sparse[id] = invalidIndex
	return true
}

func (s *ActiveSet) Contains(id EntityID) bool {
	if id == NullEntity || int(id) >= len(s.sparse) {
		return false
	}
	return s.sparse[id] != invalidIndex
}

func (s *ActiveSet) Len() int { return len(s.dense) }
