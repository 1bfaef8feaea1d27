package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type patchRecord struct {
	Response PatchResponse
	Data     []byte
}

// PatchStore keeps patched containers in memory until they are deleted or
// pushed out by newer patches.
type PatchStore struct {
	mu      sync.Mutex
	max     int
	order   []string
	patches map[string]*patchRecord
}

// NewPatchStore returns a store holding at most limit patches. limit <= 0 means
// no limit.
func NewPatchStore(limit int) *PatchStore {
	return &PatchStore{
		max:     limit,
		patches: make(map[string]*patchRecord),
	}
}

func (s *PatchStore) Create(resp PatchResponse, data []byte, now time.Time) PatchResponse {
	resp.ID = newPatchID()
	resp.Object = "patch"
	resp.CreatedAt = now.Unix()
	resp.Size = len(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches[resp.ID] = &patchRecord{Response: resp, Data: data}
	s.order = append(s.order, resp.ID)
	for s.max > 0 && len(s.order) > s.max {
		delete(s.patches, s.order[0])
		s.order = s.order[1:]
	}
	return resp
}

func (s *PatchStore) Get(id string) (*patchRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.patches[id]
	return rec, ok
}

func (s *PatchStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patches[id]; !ok {
		return false
	}
	delete(s.patches, id)
	for i, have := range s.order {
		if have == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *PatchStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.patches)
}

func newPatchID() string {
	return "patch_" + uuid.NewString()
}
