package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/community-amenities/internal/model"
	"github.com/iliyamo/community-amenities/internal/queue"
	"github.com/iliyamo/community-amenities/internal/repository"
)

type fakeDirectory struct {
	amenities map[uint64]*model.Amenity
}

func (d *fakeDirectory) GetByID(_ context.Context, id uint64) (*model.Amenity, error) {
	a, ok := d.amenities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// fakeStore serializes admissions on one mutex, standing in for the
// amenity row lock.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Reservation
	dir    *fakeDirectory
}

func newFakeStore(dir *fakeDirectory) *fakeStore {
	return &fakeStore{rows: map[uint64]*model.Reservation{}, dir: dir}
}

type fakeAdmission struct {
	s         *fakeStore
	amenityID uint64
	date      model.Date
}

func (a *fakeAdmission) ListActive(context.Context) ([]model.Reservation, error) {
	return a.s.activeLocked(a.amenityID, a.date), nil
}

func (a *fakeAdmission) Insert(_ context.Context, res *model.Reservation) error {
	a.s.nextID++
	res.ID = a.s.nextID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	a.s.rows[res.ID] = &cp
	return nil
}

func (s *fakeStore) Admit(ctx context.Context, amenityID uint64, date model.Date, fn func(context.Context, repository.Admission) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dir.amenities[amenityID]; !ok {
		return repository.ErrNotFound
	}
	return fn(ctx, &fakeAdmission{s: s, amenityID: amenityID, date: date})
}

func (s *fakeStore) activeLocked(amenityID uint64, date model.Date) []model.Reservation {
	var out []model.Reservation
	for _, r := range s.rows {
		if r.AmenityID == amenityID && r.Date == date && r.Status.Holds() {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *fakeStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id uint64, status model.ReservationStatus) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.Status = status
	cp := *r
	return &cp, nil
}

func (s *fakeStore) ListActive(_ context.Context, amenityID uint64, date model.Date) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(amenityID, date), nil
}

func (s *fakeStore) List(_ context.Context, f repository.ReservationFilter) ([]model.Reservation, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Reservation
	for _, r := range s.rows {
		if f.RequesterID != 0 && r.RequesterID != f.RequesterID {
			continue
		}
		if f.AmenityID != 0 && r.AmenityID != f.AmenityID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	from := (f.Page - 1) * f.Limit
	if from > total {
		from = total
	}
	to := from + f.Limit
	if to > total {
		to = total
	}
	return all[from:to], total, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
