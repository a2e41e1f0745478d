package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adboardhq/adboard/internal/models"
)

// In-memory repository implementations. They back the server when no
// database is configured and the service tests. Values are copied on
// write and read so callers never share storage state.

// InMemoryUserRepo stores users in maps keyed by id, email, and phone.
type InMemoryUserRepo struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string
	byPhone map[string]string
}

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

func (r *InMemoryUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	r.byEmail[u.Email] = u.ID
	r.byPhone[u.Phone] = u.ID
	return nil
}

func (r *InMemoryUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *InMemoryUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byPhone[phone]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *InMemoryUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

// memEntry pairs a stored value with an insertion sequence so listings
// can break created_at ties deterministically.
type memEntry[T any] struct {
	val *T
	seq int64
}

func paginate[T any](entries []memEntry[T], createdAt func(*T) time.Time, page Page) ([]*T, int64) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		at, bt := createdAt(a.val), createdAt(b.val)
		if !at.Equal(bt) {
			return at.After(bt)
		}
		return a.seq > b.seq
	})
	total := int64(len(entries))
	offset := page.Offset()
	if offset >= len(entries) {
		return []*T{}, total
	}
	end := offset + page.Size
	if end > len(entries) {
		end = len(entries)
	}
	out := make([]*T, 0, end-offset)
	for _, e := range entries[offset:end] {
		cp := *e.val
		out = append(out, &cp)
	}
	return out, total
}

// InMemoryAccountRepo stores ad accounts keyed by id.
type InMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]*models.AdAccount
	seqs     map[string]int64
	nextSeq  int64
}

func NewInMemoryAccountRepo() *InMemoryAccountRepo {
	return &InMemoryAccountRepo{
		accounts: make(map[string]*models.AdAccount),
		seqs:     make(map[string]int64),
	}
}

func (r *InMemoryAccountRepo) Create(_ context.Context, a *models.AdAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.ID] = &cp
	r.nextSeq++
	r.seqs[a.ID] = r.nextSeq
	return nil
}

func (r *InMemoryAccountRepo) GetByID(_ context.Context, id, userID string) (*models.AdAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.accounts[id]; ok && a.UserID == userID {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryAccountRepo) List(_ context.Context, userID string, f models.AccountFilter, page Page) ([]*models.AdAccount, int64, error) {
	r.mu.RLock()
	entries := make([]memEntry[models.AdAccount], 0, len(r.accounts))
	for id, a := range r.accounts {
		if a.UserID != userID {
			continue
		}
		if f.Platform != "" && a.Platform != f.Platform {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		entries = append(entries, memEntry[models.AdAccount]{val: a, seq: r.seqs[id]})
	}
	r.mu.RUnlock()
	out, total := paginate(entries, func(a *models.AdAccount) time.Time {
		return a.CreatedAt
	}, page)
	return out, total, nil
}

func (r *InMemoryAccountRepo) Update(_ context.Context, a *models.AdAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *InMemoryAccountRepo) Delete(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok && a.UserID == userID {
		delete(r.accounts, id)
		delete(r.seqs, id)
		return true, nil
	}
	return false, nil
}

func (r *InMemoryAccountRepo) ExistsByPlatformAccount(_ context.Context, platform, accountID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Platform == platform && a.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

// InMemoryPlanRepo stores ad plans keyed by id.
type InMemoryPlanRepo struct {
	mu      sync.RWMutex
	plans   map[string]*models.AdPlan
	seqs    map[string]int64
	nextSeq int64
}

func NewInMemoryPlanRepo() *InMemoryPlanRepo {
	return &InMemoryPlanRepo{
		plans: make(map[string]*models.AdPlan),
		seqs:  make(map[string]int64),
	}
}

func (r *InMemoryPlanRepo) Create(_ context.Context, p *models.AdPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.plans[p.ID] = &cp
	r.nextSeq++
	r.seqs[p.ID] = r.nextSeq
	return nil
}

func (r *InMemoryPlanRepo) GetByID(_ context.Context, id, userID string) (*models.AdPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.plans[id]; ok && p.UserID == userID {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryPlanRepo) List(_ context.Context, userID string, f models.PlanFilter, page Page) ([]*models.AdPlan, int64, error) {
	r.mu.RLock()
	entries := make([]memEntry[models.AdPlan], 0, len(r.plans))
	for id, p := range r.plans {
		if p.UserID != userID {
			continue
		}
		if f.Platform != "" && p.Platform != f.Platform {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.AccountID != "" && p.AccountID != f.AccountID {
			continue
		}
		entries = append(entries, memEntry[models.AdPlan]{val: p, seq: r.seqs[id]})
	}
	r.mu.RUnlock()
	out, total := paginate(entries, func(p *models.AdPlan) time.Time {
		return p.CreatedAt
	}, page)
	return out, total, nil
}

func (r *InMemoryPlanRepo) Update(_ context.Context, p *models.AdPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.plans[p.ID] = &cp
	return nil
}

func (r *InMemoryPlanRepo) Delete(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.plans[id]; ok && p.UserID == userID {
		delete(r.plans, id)
		delete(r.seqs, id)
		return true, nil
	}
	return false, nil
}

func (r *InMemoryPlanRepo) UpdateStatusBatch(_ context.Context, userID string, ids []string, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if p, ok := r.plans[id]; ok && p.UserID == userID {
			p.Status = status
			n++
		}
	}
	return n, nil
}

func (r *InMemoryPlanRepo) DeleteBatch(_ context.Context, userID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if p, ok := r.plans[id]; ok && p.UserID == userID {
			delete(r.plans, id)
			delete(r.seqs, id)
			n++
		}
	}
	return n, nil
}

// InMemoryCreativeRepo stores ad creatives keyed by id.
type InMemoryCreativeRepo struct {
	mu        sync.RWMutex
	creatives map[string]*models.AdCreative
	seqs      map[string]int64
	nextSeq   int64
}

func NewInMemoryCreativeRepo() *InMemoryCreativeRepo {
	return &InMemoryCreativeRepo{
		creatives: make(map[string]*models.AdCreative),
		seqs:      make(map[string]int64),
	}
}

func (r *InMemoryCreativeRepo) Create(_ context.Context, c *models.AdCreative) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.Materials = append([]string(nil), c.Materials...)
	r.creatives[c.ID] = &cp
	r.nextSeq++
	r.seqs[c.ID] = r.nextSeq
	return nil
}

func (r *InMemoryCreativeRepo) GetByID(_ context.Context, id, userID string) (*models.AdCreative, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.creatives[id]; ok && c.UserID == userID {
		cp := *c
		cp.Materials = append([]string(nil), c.Materials...)
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryCreativeRepo) List(_ context.Context, userID string, f models.CreativeFilter, page Page) ([]*models.AdCreative, int64, error) {
	r.mu.RLock()
	entries := make([]memEntry[models.AdCreative], 0, len(r.creatives))
	for id, c := range r.creatives {
		if c.UserID != userID {
			continue
		}
		if f.PlanID != "" && c.PlanID != f.PlanID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		entries = append(entries, memEntry[models.AdCreative]{val: c, seq: r.seqs[id]})
	}
	r.mu.RUnlock()
	out, total := paginate(entries, func(c *models.AdCreative) time.Time {
		return c.CreatedAt
	}, page)
	return out, total, nil
}

func (r *InMemoryCreativeRepo) Update(_ context.Context, c *models.AdCreative) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.Materials = append([]string(nil), c.Materials...)
	r.creatives[c.ID] = &cp
	return nil
}

func (r *InMemoryCreativeRepo) Delete(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.creatives[id]; ok && c.UserID == userID {
		delete(r.creatives, id)
		delete(r.seqs, id)
		return true, nil
	}
	return false, nil
}

// InMemoryStatsRepo aggregates stat records held in a slice. Records are
// seeded with Add; production deployments read from Postgres or
// ClickHouse instead.
type InMemoryStatsRepo struct {
	mu      sync.RWMutex
	records []models.StatRecord
}

func NewInMemoryStatsRepo() *InMemoryStatsRepo {
	return &InMemoryStatsRepo{}
}

// Add appends one stat record.
func (r *InMemoryStatsRepo) Add(rec models.StatRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *InMemoryStatsRepo) matches(rec *models.StatRecord, f StatsFilter) bool {
	if rec.UserID != f.UserID {
		return false
	}
	if f.Platform != "" && rec.Platform != f.Platform {
		return false
	}
	if f.PlanID != "" && rec.PlanID != f.PlanID {
		return false
	}
	if rec.Date.Before(f.Start) || rec.Date.After(f.End) {
		return false
	}
	return true
}

func accumulate(t *StatTotals, m models.StatMetrics) {
	t.Impressions += m.Impressions
	t.Clicks += m.Clicks
	t.Conversions += m.Conversions
	t.Cost += m.Cost
	t.Revenue += m.Revenue
}

func (r *InMemoryStatsRepo) Summarize(_ context.Context, f StatsFilter) (StatTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var t StatTotals
	for i := range r.records {
		if r.matches(&r.records[i], f) {
			accumulate(&t, r.records[i].Metrics)
		}
	}
	return t, nil
}

func (r *InMemoryStatsRepo) TrendByDay(_ context.Context, f StatsFilter) ([]DayBucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byDay := make(map[string]*StatTotals)
	for i := range r.records {
		if !r.matches(&r.records[i], f) {
			continue
		}
		day := r.records[i].Date.Format("2006-01-02")
		t, ok := byDay[day]
		if !ok {
			t = &StatTotals{}
			byDay[day] = t
		}
		accumulate(t, r.records[i].Metrics)
	}
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	buckets := make([]DayBucket, 0, len(days))
	for _, day := range days {
		buckets = append(buckets, DayBucket{Day: day, Totals: *byDay[day]})
	}
	return buckets, nil
}

func (r *InMemoryStatsRepo) ByPlatform(_ context.Context, f StatsFilter) ([]PlatformBucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byPlatform := make(map[string]*StatTotals)
	var order []string
	for i := range r.records {
		if !r.matches(&r.records[i], f) {
			continue
		}
		p := r.records[i].Platform
		t, ok := byPlatform[p]
		if !ok {
			t = &StatTotals{}
			byPlatform[p] = t
			order = append(order, p)
		}
		accumulate(t, r.records[i].Metrics)
	}
	buckets := make([]PlatformBucket, 0, len(order))
	for _, p := range order {
		buckets = append(buckets, PlatformBucket{Platform: p, Totals: *byPlatform[p]})
	}
	return buckets, nil
}
