package engine

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/unxversal/pointgate/internal/model"
)

// Store holds the authoritative engine state. It is not safe for concurrent
// use on its own; the Engine serializes every access behind its lock.
type Store struct {
	users   map[common.Address]*model.UserState
	parents map[common.Address]common.Address

	// weekPoints is the per-(week, user) snapshot of week_points_total,
	// rewritten on every change including referral credits. It is the
	// single source of truth for point queries and board rebuilds.
	weekPoints map[int64]map[common.Address]int64

	boards map[int64]*Leaderboard
	hists  map[int64]*Histogram
}

func NewStore() *Store {
	return &Store{
		users:      make(map[common.Address]*model.UserState),
		parents:    make(map[common.Address]common.Address),
		weekPoints: make(map[int64]map[common.Address]int64),
		boards:     make(map[int64]*Leaderboard),
		hists:      make(map[int64]*Histogram),
	}
}

// GetOrCreate loads a user record, lazily creating it at the sentinel day.
func (s *Store) GetOrCreate(addr common.Address) *model.UserState {
	if u, ok := s.users[addr]; ok {
		return u
	}
	u := model.NewUserState(addr)
	s.users[addr] = u
	return u
}

// Put installs a restored record, replacing any existing one.
func (s *Store) Put(u *model.UserState) {
	s.users[u.Address] = u
}

// Get returns the record and whether it exists.
func (s *Store) Get(addr common.Address) (*model.UserState, bool) {
	u, ok := s.users[addr]
	return u, ok
}

// Parent returns the referral parent edge for a child, if bound.
func (s *Store) Parent(child common.Address) (common.Address, bool) {
	p, ok := s.parents[child]
	return p, ok
}

// SetParent records the immutable child -> parent edge.
func (s *Store) SetParent(child, parent common.Address) {
	s.parents[child] = parent
}

// SetWeekPoints writes the per-(week, user) snapshot.
func (s *Store) SetWeekPoints(week int64, user common.Address, total int64) {
	m, ok := s.weekPoints[week]
	if !ok {
		m = make(map[common.Address]int64)
		s.weekPoints[week] = m
	}
	m[user] = total
}

// HasWeek reports whether the week has any in-memory snapshot.
func (s *Store) HasWeek(week int64) bool {
	_, ok := s.weekPoints[week]
	return ok
}

// WeekPoints reads the snapshot; absent users have 0 points.
func (s *Store) WeekPoints(week int64, user common.Address) int64 {
	if m, ok := s.weekPoints[week]; ok {
		return m[user]
	}
	return 0
}

// BoardFor returns the week's leaderboard, creating it with size k on first
// touch. A week keeps the K it was created with even if params change later.
func (s *Store) BoardFor(week int64, k int) *Leaderboard {
	if b, ok := s.boards[week]; ok {
		return b
	}
	b := NewLeaderboard(k)
	s.boards[week] = b
	return b
}

// Board returns the week's leaderboard if any updates have touched it.
func (s *Store) Board(week int64) (*Leaderboard, bool) {
	b, ok := s.boards[week]
	return b, ok
}

// HistFor returns the week's histogram, creating it from edges on first
// touch (the week keeps a copy of the edges it was created with).
func (s *Store) HistFor(week int64, edges []int64) *Histogram {
	if h, ok := s.hists[week]; ok {
		return h
	}
	h := NewHistogram(edges)
	s.hists[week] = h
	return h
}

// Hist returns the week's histogram if it exists.
func (s *Store) Hist(week int64) (*Histogram, bool) {
	h, ok := s.hists[week]
	return h, ok
}
