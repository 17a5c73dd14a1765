// Package session keeps per-user dialog state in memory.
package session

import (
	"strconv"
	"time"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/flow"
	"github.com/patrickmn/go-cache"
)

// Kind is the mode a user is currently in
type Kind int

const (
	KindNone Kind = iota
	KindFlow
	KindAssistant
)

func (k Kind) String() string {
	switch k {
	case KindFlow:
		return "flow"
	case KindAssistant:
		return "assistant"
	default:
		return "none"
	}
}

// FlowSession is an in-progress pricing dialog
type FlowSession struct {
	Variant   string
	Values    flow.Values
	StartedAt time.Time
	UpdatedAt time.Time
}

func (s *FlowSession) clone() *FlowSession {
	c := *s
	c.Values = s.Values.Clone()
	return &c
}

// Config controls session expiry
type Config struct {
	FlowTTL         time.Duration
	AssistantTTL    time.Duration
	CleanupInterval time.Duration
	HistoryLimit    int // Stored assistant turns; zero keeps everything
}

// Store holds flow and assistant sessions keyed by user id.
// Callers serialize work for one user with Lock; reads and writes are safe
// without it but may interleave.
type Store struct {
	flows      *cache.Cache
	assistants *cache.Cache
	locks      *keyedMutex
	cfg        Config
	now        func() time.Time
}

func NewStore(cfg Config) *Store {
	return &Store{
		flows:      cache.New(cfg.FlowTTL, cfg.CleanupInterval),
		assistants: cache.New(cfg.AssistantTTL, cfg.CleanupInterval),
		locks:      newKeyedMutex(),
		cfg:        cfg,
		now:        time.Now,
	}
}

// Lock acquires the per-user lock and returns its release function
func (s *Store) Lock(userID int64) (unlock func()) {
	return s.locks.Lock(userID)
}

// Kind reports which session the user currently has
func (s *Store) Kind(userID int64) Kind {
	if _, ok := s.flows.Get(key(userID)); ok {
		return KindFlow
	}
	if _, ok := s.assistants.Get(key(userID)); ok {
		return KindAssistant
	}
	return KindNone
}

// Flow returns a copy of the user's flow session
func (s *Store) Flow(userID int64) (*FlowSession, bool) {
	v, ok := s.flows.Get(key(userID))
	if !ok {
		return nil, false
	}
	return v.(*FlowSession).clone(), true
}

// StartFlow replaces whatever the user had with an empty flow session
func (s *Store) StartFlow(userID int64, variant string) *FlowSession {
	now := s.now()
	fs := &FlowSession{
		Variant:   variant,
		Values:    flow.Values{},
		StartedAt: now,
		UpdatedAt: now,
	}

	s.assistants.Delete(key(userID))
	s.flows.SetDefault(key(userID), fs)

	return fs.clone()
}

// SaveFlow stores the session and refreshes its expiry
func (s *Store) SaveFlow(userID int64, fs *FlowSession) {
	stored := fs.clone()
	stored.UpdatedAt = s.now()
	s.flows.SetDefault(key(userID), stored)
}

// DeleteFlow removes the flow session, reporting whether one existed
func (s *Store) DeleteFlow(userID int64) bool {
	k := key(userID)
	if _, ok := s.flows.Get(k); !ok {
		return false
	}
	s.flows.Delete(k)
	return true
}

// Assistant returns a copy of the stored conversation turns
func (s *Store) Assistant(userID int64) []entity.Turn {
	v, ok := s.assistants.Get(key(userID))
	if !ok {
		return nil
	}
	turns := v.([]entity.Turn)
	out := make([]entity.Turn, len(turns))
	copy(out, turns)
	return out
}

// AppendTurns adds turns to the assistant history, dropping the oldest beyond the limit
func (s *Store) AppendTurns(userID int64, turns ...entity.Turn) {
	history := append(s.Assistant(userID), turns...)
	if limit := s.cfg.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	s.assistants.SetDefault(key(userID), history)
}

// Counts returns the number of live flow and assistant sessions
func (s *Store) Counts() (flows, assistants int) {
	return s.flows.ItemCount(), s.assistants.ItemCount()
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
