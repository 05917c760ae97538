package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"crewport/pkg/types"
)

// In-memory stores back the unit tests and keep local development possible
// without postgres. They enforce the same uniqueness and cascade rules the
// schema does.

var (
	_ CrewStore     = (*MemoryCrewStore)(nil)
	_ StaffStore    = (*MemoryStaffStore)(nil)
	_ DocumentStore = (*MemoryDocumentStore)(nil)
	_ AdminStore    = (*MemoryAdminStore)(nil)
)

type MemoryCrewStore struct {
	mu     sync.RWMutex
	nextID int64
	crew   map[int64]types.CrewMember

	// docs is wired by NewMemoryStores so DeleteCrew can cascade.
	docs *MemoryDocumentStore
}

type MemoryStaffStore struct {
	mu     sync.RWMutex
	nextID int64
	staff  map[int64]types.StaffMember
}

type MemoryDocumentStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]types.CrewDocument
}

type MemoryAdminStore struct {
	mu     sync.RWMutex
	nextID int64
	admins map[int64]types.Admin
}

// NewMemoryStores builds the full in-memory store set with the crew/document
// cascade wired up.
func NewMemoryStores() (*MemoryCrewStore, *MemoryStaffStore, *MemoryDocumentStore, *MemoryAdminStore) {
	docs := NewMemoryDocumentStore()
	crew := NewMemoryCrewStore(docs)
	return crew, NewMemoryStaffStore(), docs, NewMemoryAdminStore()
}

func NewMemoryCrewStore(docs *MemoryDocumentStore) *MemoryCrewStore {
	return &MemoryCrewStore{crew: make(map[int64]types.CrewMember), docs: docs}
}

func NewMemoryStaffStore() *MemoryStaffStore {
	return &MemoryStaffStore{staff: make(map[int64]types.StaffMember)}
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[int64]types.CrewDocument)}
}

func NewMemoryAdminStore() *MemoryAdminStore {
	return &MemoryAdminStore{admins: make(map[int64]types.Admin)}
}

func (s *MemoryCrewStore) CreateCrew(_ context.Context, m *types.CrewMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.crew {
		if existing.Passport == m.Passport {
			return types.ErrPassportInUse
		}
	}

	now := time.Now().UTC()
	s.nextID++
	m.ID = s.nextID
	m.CreatedAt = now
	m.UpdatedAt = now
	s.crew[m.ID] = *m
	return nil
}

func (s *MemoryCrewStore) CrewByID(_ context.Context, id int64) (*types.CrewMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.crew[id]; ok {
		return &m, nil
	}
	return nil, types.ErrCrewNotFound
}

func (s *MemoryCrewStore) CrewByPassport(_ context.Context, passport string) (*types.CrewMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.crew {
		if m.Passport == passport {
			m := m
			return &m, nil
		}
	}
	return nil, types.ErrCrewNotFound
}

func (s *MemoryCrewStore) SearchCrew(_ context.Context, filter CrewFilter) ([]*types.CrewMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.CrewMember, 0)
	needle := strings.ToLower(filter.Search)
	for _, m := range s.crew {
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(m.Name), needle) &&
			!strings.Contains(strings.ToLower(m.Passport), needle) &&
			!strings.Contains(strings.ToLower(m.Rank), needle) {
			continue
		}
		m := m
		out = append(out, &m)
	}

	sortCrewNewestFirst(out)
	return out, nil
}

func (s *MemoryCrewStore) RecentCrew(ctx context.Context, limit uint64) ([]*types.CrewMember, error) {
	out, err := s.SearchCrew(ctx, CrewFilter{})
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryCrewStore) CountCrew(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.crew), nil
}

func (s *MemoryCrewStore) CountCrewByStatus(_ context.Context, status types.ReviewStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.crew {
		if m.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *MemoryCrewStore) SetProfileToken(_ context.Context, crewID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, m := range s.crew {
		if id != crewID && m.ProfileToken != nil && *m.ProfileToken == token {
			return types.ErrProfileTokenInUse
		}
	}

	m, ok := s.crew[crewID]
	if !ok {
		return types.ErrCrewNotFound
	}

	if m.ProfileToken != nil {
		return types.ErrProfileTokenSet
	}

	m.ProfileToken = &token
	s.crew[crewID] = m
	return nil
}

func (s *MemoryCrewStore) UpdateCrewReview(_ context.Context, crewID int64, status types.ReviewStatus, notes string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.crew[crewID]
	if !ok {
		return types.ErrCrewNotFound
	}

	m.Status = status
	if notes == "" {
		m.AdminNotes = nil
	} else {
		m.AdminNotes = &notes
	}
	m.UpdatedAt = updatedAt
	s.crew[crewID] = m
	return nil
}

func (s *MemoryCrewStore) UpdateCrewScreening(_ context.Context, crewID int64, status types.ReviewStatus, notes string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.crew[crewID]
	if !ok {
		return types.ErrCrewNotFound
	}

	m.Status = status
	if notes == "" {
		m.ScreeningNotes = nil
	} else {
		m.ScreeningNotes = &notes
	}
	m.UpdatedAt = updatedAt
	s.crew[crewID] = m
	return nil
}

func (s *MemoryCrewStore) TouchCrew(_ context.Context, crewID int64, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.crew[crewID]
	if !ok {
		return types.ErrCrewNotFound
	}

	m.UpdatedAt = updatedAt
	s.crew[crewID] = m
	return nil
}

func (s *MemoryCrewStore) DeleteCrew(_ context.Context, crewID int64) error {
	s.mu.Lock()
	delete(s.crew, crewID)
	s.mu.Unlock()

	if s.docs != nil {
		s.docs.deleteByCrew(crewID)
	}
	return nil
}

func (s *MemoryStaffStore) CreateStaff(_ context.Context, m *types.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.nextID++
	m.ID = s.nextID
	m.CreatedAt = now
	m.UpdatedAt = now
	s.staff[m.ID] = *m
	return nil
}

func (s *MemoryStaffStore) StaffByID(_ context.Context, id int64) (*types.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.staff[id]; ok {
		return &m, nil
	}
	return nil, types.ErrStaffNotFound
}

func (s *MemoryStaffStore) SearchStaff(_ context.Context, filter StaffFilter) ([]*types.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.StaffMember, 0)
	needle := strings.ToLower(filter.Search)
	for _, m := range s.staff {
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(m.FullName), needle) &&
			!strings.Contains(strings.ToLower(m.PositionApplying), needle) &&
			!strings.Contains(strings.ToLower(m.Department), needle) {
			continue
		}
		m := m
		out = append(out, &m)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStaffStore) RecentStaff(ctx context.Context, limit uint64) ([]*types.StaffMember, error) {
	out, err := s.SearchStaff(ctx, StaffFilter{})
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStaffStore) CountStaff(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.staff), nil
}

func (s *MemoryStaffStore) CountStaffByStatus(_ context.Context, status types.ReviewStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.staff {
		if m.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStaffStore) UpdateStaffReview(_ context.Context, staffID int64, status types.ReviewStatus, notes string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.staff[staffID]
	if !ok {
		return types.ErrStaffNotFound
	}

	m.Status = status
	if notes == "" {
		m.AdminNotes = nil
	} else {
		m.AdminNotes = &notes
	}
	m.UpdatedAt = updatedAt
	s.staff[staffID] = m
	return nil
}

func (s *MemoryDocumentStore) CreateDocument(_ context.Context, d *types.CrewDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	d.ID = s.nextID
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	s.docs[d.ID] = *d
	return nil
}

func (s *MemoryDocumentStore) DocumentByID(_ context.Context, id int64) (*types.CrewDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.docs[id]; ok {
		return &d, nil
	}
	return nil, types.ErrDocumentNotFound
}

func (s *MemoryDocumentStore) DocumentsByCrew(_ context.Context, crewID int64) ([]*types.CrewDocument, error) {
	return s.selectWhere(func(d *types.CrewDocument) bool {
		return d.CrewID == crewID
	}), nil
}

func (s *MemoryDocumentStore) DocumentsByCrewAndType(_ context.Context, crewID int64, docType types.DocumentType) ([]*types.CrewDocument, error) {
	return s.selectWhere(func(d *types.CrewDocument) bool {
		return d.CrewID == crewID && d.DocumentType == docType
	}), nil
}

func (s *MemoryDocumentStore) DocumentsByCrewAndCategory(_ context.Context, crewID int64, category types.DocumentCategory) ([]*types.CrewDocument, error) {
	return s.selectWhere(func(d *types.CrewDocument) bool {
		return d.CrewID == crewID && d.DocumentCategory == category
	}), nil
}

func (s *MemoryDocumentStore) selectWhere(match func(*types.CrewDocument) bool) []*types.CrewDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.CrewDocument, 0)
	for _, d := range s.docs {
		d := d
		if match(&d) {
			out = append(out, &d)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

func (s *MemoryDocumentStore) deleteByCrew(crewID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, d := range s.docs {
		if d.CrewID == crewID {
			delete(s.docs, id)
		}
	}
}

func (s *MemoryAdminStore) CreateAdmin(_ context.Context, a *types.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.admins {
		if existing.Username == a.Username {
			existing.PasswordHash = a.PasswordHash
			s.admins[id] = existing
			a.ID = id
			return nil
		}
	}

	s.nextID++
	a.ID = s.nextID
	a.CreatedAt = time.Now().UTC()
	s.admins[a.ID] = *a
	return nil
}

func (s *MemoryAdminStore) AdminByID(_ context.Context, id int64) (*types.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.admins[id]; ok {
		return &a, nil
	}
	return nil, types.ErrAdminNotFound
}

func (s *MemoryAdminStore) AdminByUsername(_ context.Context, username string) (*types.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.admins {
		if a.Username == username {
			a := a
			return &a, nil
		}
	}
	return nil, types.ErrAdminNotFound
}

func sortCrewNewestFirst(crew []*types.CrewMember) {
	sort.Slice(crew, func(i, j int) bool {
		if crew[i].CreatedAt.Equal(crew[j].CreatedAt) {
			return crew[i].ID > crew[j].ID
		}
		return crew[i].CreatedAt.After(crew[j].CreatedAt)
	})
}
