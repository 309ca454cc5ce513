package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"money-mate/internal/jobs"
	"money-mate/internal/models"
	"money-mate/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errBoom = errors.New("boom")

// memDB is an in-memory stand-in for Postgres. WithinTransaction snapshots
// state and restores it when fn fails.
type memDB struct {
	mu sync.Mutex

	users        map[uuid.UUID]models.User
	messages     []models.Message
	claims       map[uuid.UUID]uuid.UUID
	claimedAt    map[uuid.UUID]time.Time
	transactions []models.Transaction

	findExistingCalls  int
	referenceCalls     int
	messageInsertCalls int

	failMessageInsertOn int // 1-based call number, 0 = never
	failTxInsert        error
	failExists          error

	// rejectTx fails any transaction insert containing a matching row, the
	// way a column constraint would.
	rejectTx func(*models.Transaction) bool
}

func newMemDB() *memDB {
	return &memDB{
		users:     make(map[uuid.UUID]models.User),
		claims:    make(map[uuid.UUID]uuid.UUID),
		claimedAt: make(map[uuid.UUID]time.Time),
	}
}

func (db *memDB) addUser() uuid.UUID {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := uuid.New()
	db.users[id] = models.User{ID: id, Username: id.String()[:8]}
	return id
}

type snapshot struct {
	users        map[uuid.UUID]models.User
	messages     []models.Message
	claims       map[uuid.UUID]uuid.UUID
	claimedAt    map[uuid.UUID]time.Time
	transactions []models.Transaction
}

func (db *memDB) snapshot() snapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := snapshot{
		users:        make(map[uuid.UUID]models.User, len(db.users)),
		messages:     append([]models.Message(nil), db.messages...),
		claims:       make(map[uuid.UUID]uuid.UUID, len(db.claims)),
		claimedAt:    make(map[uuid.UUID]time.Time, len(db.claimedAt)),
		transactions: append([]models.Transaction(nil), db.transactions...),
	}
	for k, v := range db.users {
		s.users[k] = v
	}
	for k, v := range db.claims {
		s.claims[k] = v
	}
	for k, v := range db.claimedAt {
		s.claimedAt[k] = v
	}
	return s
}

func (db *memDB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users, db.messages, db.claims, db.claimedAt, db.transactions = s.users, s.messages, s.claims, s.claimedAt, s.transactions
}

func (db *memDB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := db.snapshot()
	if err := fn(ctx); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

func (db *memDB) messageCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.messages)
}

func (db *memDB) transactionList() []models.Transaction {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]models.Transaction(nil), db.transactions...)
}

func (db *memDB) messageList() []models.Message {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]models.Message(nil), db.messages...)
}

type memMessages struct{ db *memDB }

func (s memMessages) FindExisting(_ context.Context, userID uuid.UUID, keys []models.MessageKey) (map[models.MessageKey]bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.findExistingCalls++

	wanted := make(map[models.MessageKey]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	out := make(map[models.MessageKey]bool)
	for _, m := range s.db.messages {
		if m.UserID == userID && wanted[m.Key()] {
			out[m.Key()] = true
		}
	}
	return out, nil
}

func (s memMessages) InsertBatch(_ context.Context, messages []*models.Message) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.messageInsertCalls++
	if s.db.failMessageInsertOn == s.db.messageInsertCalls {
		return 0, errBoom
	}

	var n int64
	for _, m := range messages {
		dup := false
		for _, e := range s.db.messages {
			if e.UserID == m.UserID && e.Key() == m.Key() {
				dup = true
				break
			}
		}
		if !dup {
			s.db.messages = append(s.db.messages, *m)
			n++
		}
	}
	return n, nil
}

func (s memMessages) sortedIndexes() []int {
	idx := make([]int, len(s.db.messages))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.db.messages[idx[a]].ReceivedAt.Before(s.db.messages[idx[b]].ReceivedAt)
	})
	return idx
}

func (s memMessages) Claim(_ context.Context, p repository.ClaimParams) ([]*models.Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*models.Message
	for _, i := range s.sortedIndexes() {
		if len(out) >= p.Limit {
			break
		}
		m := s.db.messages[i]
		if m.Processed || (p.UserID != nil && m.UserID != *p.UserID) {
			continue
		}
		if _, claimed := s.db.claims[m.ID]; claimed && !s.db.claimedAt[m.ID].Before(p.StaleBefore) {
			continue
		}
		s.db.claims[m.ID] = p.Token
		s.db.claimedAt[m.ID] = time.Now().UTC()
		c := m
		out = append(out, &c)
	}
	return out, nil
}

func (s memMessages) Release(_ context.Context, token uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, t := range s.db.claims {
		if t == token {
			delete(s.db.claims, id)
			delete(s.db.claimedAt, id)
		}
	}
	return nil
}

func (s memMessages) MarkProcessed(_ context.Context, p repository.MarkParams) ([]uuid.UUID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(p.IDs))
	for _, id := range p.IDs {
		wanted[id] = true
	}
	var marked []uuid.UUID
	for i := range s.db.messages {
		m := &s.db.messages[i]
		if !wanted[m.ID] || m.Processed {
			continue
		}
		if p.Claim != nil && s.db.claims[m.ID] != *p.Claim {
			continue
		}
		if p.UserID != nil && m.UserID != *p.UserID {
			continue
		}
		m.Processed = true
		if p.Category != nil {
			c := *p.Category
			m.Category = &c
		}
		delete(s.db.claims, m.ID)
		delete(s.db.claimedAt, m.ID)
		marked = append(marked, m.ID)
	}
	return marked, nil
}

func (s memMessages) Owners(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make(map[uuid.UUID]uuid.UUID)
	for _, m := range s.db.messages {
		if wanted[m.ID] {
			out[m.ID] = m.UserID
		}
	}
	return out, nil
}

func (s memMessages) ListUnprocessed(_ context.Context, limit int, userID *uuid.UUID) ([]*models.Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*models.Message
	for _, i := range s.sortedIndexes() {
		m := s.db.messages[i]
		if m.Processed || (userID != nil && m.UserID != *userID) {
			continue
		}
		if len(out) >= limit {
			break
		}
		c := m
		out = append(out, &c)
	}
	return out, nil
}

func (s memMessages) Count(_ context.Context, userID *uuid.UUID, onlyProcessed bool) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var n int64
	for _, m := range s.db.messages {
		if userID != nil && m.UserID != *userID {
			continue
		}
		if onlyProcessed && !m.Processed {
			continue
		}
		n++
	}
	return n, nil
}

type memTransactions struct{ db *memDB }

func (s memTransactions) InsertBatch(_ context.Context, transactions []*models.Transaction) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failTxInsert != nil {
		return 0, s.db.failTxInsert
	}
	if s.db.rejectTx != nil {
		for _, t := range transactions {
			if s.db.rejectTx(t) {
				return 0, errBoom
			}
		}
	}

	var n int64
	for _, t := range transactions {
		dup := false
		if t.ReferenceID != nil {
			for _, e := range s.db.transactions {
				if e.UserID == t.UserID && e.ReferenceID != nil && *e.ReferenceID == *t.ReferenceID {
					dup = true
					break
				}
			}
		}
		if !dup {
			s.db.transactions = append(s.db.transactions, *t)
			n++
		}
	}
	return n, nil
}

func (s memTransactions) ExistingReferences(_ context.Context, keys []models.ReferenceKey) (map[models.ReferenceKey]bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.referenceCalls++

	out := make(map[models.ReferenceKey]bool)
	for _, k := range keys {
		for _, e := range s.db.transactions {
			if e.UserID == k.UserID && e.ReferenceID != nil && *e.ReferenceID == k.ReferenceID {
				out[k] = true
			}
		}
	}
	return out, nil
}

func (s memTransactions) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*models.Transaction
	for i := len(s.db.transactions) - 1; i >= 0; i-- {
		t := s.db.transactions[i]
		if t.UserID == userID {
			out = append(out, &t)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Date.After(out[b].Date) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memUsers struct{ db *memDB }

func (s memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s memUsers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failExists != nil {
		return false, s.db.failExists
	}
	_, ok := s.db.users[id]
	return ok, nil
}

func (s memUsers) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok || (u.BalanceAt != nil && u.BalanceAt.After(at)) {
		return nil
	}
	u.AccountBalance = decimal.NewNullDecimal(balance)
	u.BalanceAt = &at
	s.db.users[id] = u
	return nil
}

type stubCategorizer struct{ category string }

func (c stubCategorizer) Categorize(context.Context, string) string {
	if c.category == "" {
		return models.SpendingOthers
	}
	return c.category
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []*jobs.ProcessMessagesJob
	err  error
}

func (p *recordingPublisher) PublishProcessMessages(_ context.Context, job *jobs.ProcessMessagesJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []*jobs.ProcessMessagesJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*jobs.ProcessMessagesJob(nil), p.jobs...)
}
