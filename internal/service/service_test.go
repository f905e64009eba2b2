package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"contractpay/internal/model"
)

// In-memory fakes shared by the service tests.

type memUsers struct {
	mu     sync.Mutex
	nextID int
	users  []*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{nextID: 1}
}

func (m *memUsers) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextID
	m.nextID++
	stored := *u
	m.users = append(m.users, &stored)
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memContracts struct {
	mu        sync.Mutex
	nextID    int
	contracts map[int]*model.Contract
}

func newMemContracts() *memContracts {
	return &memContracts{nextID: 1, contracts: make(map[int]*model.Contract)}
}

func (m *memContracts) Insert(_ context.Context, c *model.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	m.contracts[c.ID] = &stored
	return nil
}

func (m *memContracts) FindByID(_ context.Context, id int) (*model.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *memContracts) ListByUser(_ context.Context, userID int, userType string) ([]model.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Contract
	for _, c := range m.contracts {
		if userType == model.UserTypeClient && c.ClientID == userID {
			out = append(out, *c)
		}
		if userType != model.UserTypeClient && c.FreelancerID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memContracts) UpdateStatus(_ context.Context, id int, status model.ContractStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Status = status
	return nil
}

func (m *memContracts) CountActiveByUser(_ context.Context, userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.contracts {
		if (c.ClientID == userID || c.FreelancerID == userID) && c.Status == model.ContractActive {
			count++
		}
	}
	return count, nil
}

type memMilestones struct {
	mu         sync.Mutex
	nextID     int
	milestones map[int]*model.Milestone
	contracts  *memContracts
}

func newMemMilestones(contracts *memContracts) *memMilestones {
	return &memMilestones{nextID: 1, milestones: make(map[int]*model.Milestone), contracts: contracts}
}

func (m *memMilestones) Insert(_ context.Context, ms *model.Milestone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms.ID = m.nextID
	m.nextID++
	stored := *ms
	m.milestones[ms.ID] = &stored
	return nil
}

func (m *memMilestones) FindByID(_ context.Context, id int) (*model.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.milestones[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ms
	return &cp, nil
}

func (m *memMilestones) ListByContract(_ context.Context, contractID int) ([]model.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Milestone
	for _, ms := range m.milestones {
		if ms.ContractID == contractID {
			out = append(out, *ms)
		}
	}
	return out, nil
}

func (m *memMilestones) ListByUser(ctx context.Context, userID int) ([]model.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Milestone
	for _, ms := range m.milestones {
		c, ok := m.contracts.contracts[ms.ContractID]
		if ok && (c.ClientID == userID || c.FreelancerID == userID) {
			out = append(out, *ms)
		}
	}
	return out, nil
}

func (m *memMilestones) UpdateStatus(_ context.Context, id int, status model.MilestoneStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.milestones[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ms.Status = status
	if status == model.MilestoneCompleted {
		now := time.Now()
		ms.CompletedDate = &now
	}
	return nil
}

func (m *memMilestones) ListOverdueCandidates(_ context.Context, cutoff time.Time) ([]model.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Milestone
	for _, ms := range m.milestones {
		if ms.DueDate.Before(cutoff) &&
			(ms.Status == model.MilestoneNotStarted || ms.Status == model.MilestoneInProgress) {
			out = append(out, *ms)
		}
	}
	return out, nil
}

func (m *memMilestones) CountPendingPaymentsByUser(ctx context.Context, userID int) (int, error) {
	all, _ := m.ListByUser(ctx, userID)
	count := 0
	for _, ms := range all {
		if ms.Status == model.MilestonePendingReview || ms.Status == model.MilestoneReadyForPayment {
			count++
		}
	}
	return count, nil
}

func (m *memMilestones) SumEarnedByUser(ctx context.Context, userID int) (float64, error) {
	all, _ := m.ListByUser(ctx, userID)
	var total float64
	for _, ms := range all {
		if ms.Status == model.MilestoneCompleted {
			total += ms.Amount
		}
	}
	return total, nil
}

type memTemplates struct {
	mu        sync.Mutex
	nextID    int
	templates map[int]*model.ContractTemplate
}

func newMemTemplates() *memTemplates {
	return &memTemplates{nextID: 1, templates: make(map[int]*model.ContractTemplate)}
}

func (m *memTemplates) Insert(_ context.Context, t *model.ContractTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID
	m.nextID++
	stored := *t
	m.templates[t.ID] = &stored
	return nil
}

func (m *memTemplates) ListVisible(_ context.Context, userID int) ([]model.ContractTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ContractTemplate
	for _, t := range m.templates {
		if t.UserID == userID || t.IsPublic {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTemplates) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.templates, id)
	return nil
}

func (m *memTemplates) CountByUser(_ context.Context, userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.templates {
		if t.UserID == userID {
			count++
		}
	}
	return count, nil
}

type memLogs struct {
	mu   sync.Mutex
	logs []model.NotificationLog
}

func (m *memLogs) Insert(_ context.Context, log *model.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

// recordingPublisher records published events instead of talking to a broker.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	routingKey string
	payload    any
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

func (p *recordingPublisher) byKey(routingKey string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.routingKey == routingKey {
			out = append(out, e)
		}
	}
	return out
}
