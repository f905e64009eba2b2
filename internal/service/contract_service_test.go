package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"contractpay/internal/cache"
	"contractpay/internal/model"
	"contractpay/internal/mq"
)

type contractFixture struct {
	svc        *ContractService
	contracts  *memContracts
	milestones *memMilestones
	templates  *memTemplates
	pub        *recordingPublisher
	cache      *cache.Memory
}

func newContractFixture() *contractFixture {
	contracts := newMemContracts()
	milestones := newMemMilestones(contracts)
	templates := newMemTemplates()
	pub := &recordingPublisher{}
	c := cache.NewMemory()
	return &contractFixture{
		svc:        NewContractService(contracts, milestones, templates, pub, c, zap.NewNop()),
		contracts:  contracts,
		milestones: milestones,
		templates:  templates,
		pub:        pub,
		cache:      c,
	}
}

func (f *contractFixture) createContract(t *testing.T) *model.Contract {
	t.Helper()
	c, err := f.svc.CreateContract(context.Background(), CreateContractInput{
		Title:              "Site redesign",
		Description:        "Full redesign of the marketing site",
		ClientID:           1,
		FreelancerID:       2,
		TotalAmount:        5000,
		ContractType:       "fixed_price",
		TermsAndConditions: "Net 30 payment terms apply",
		StartDate:          time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}
	return c
}

func TestCreateContractPublishesAndDefaults(t *testing.T) {
	f := newContractFixture()
	c := f.createContract(t)

	if c.Status != model.ContractDraft {
		t.Fatalf("expected draft status, got %s", c.Status)
	}
	if c.Currency != "USD" {
		t.Fatalf("expected USD default, got %s", c.Currency)
	}
	if got := len(f.pub.byKey(mq.RoutingKeyContractCreated)); got != 1 {
		t.Fatalf("expected 1 contract.created event, got %d", got)
	}
}

func TestCreateContractInvalidatesContractList(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	if err := f.cache.Set(ctx, []byte(`[]`), contractsKey, "userId=1", "userType=client"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	f.createContract(t)

	if _, ok, _ := f.cache.Get(ctx, contractsKey, "userId=1", "userType=client"); ok {
		t.Fatal("contract list should have been invalidated")
	}
}

func TestUpdateContractStatusRejectsUnknownStatus(t *testing.T) {
	f := newContractFixture()
	c := f.createContract(t)

	if _, err := f.svc.UpdateContractStatus(context.Background(), c.ID, "galactic"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := f.svc.UpdateContractStatus(context.Background(), 999, model.ContractActive); !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
}

func TestUpdateContractStatusPublishesEvent(t *testing.T) {
	f := newContractFixture()
	c := f.createContract(t)

	updated, err := f.svc.UpdateContractStatus(context.Background(), c.ID, model.ContractActive)
	if err != nil {
		t.Fatalf("UpdateContractStatus: %v", err)
	}
	if updated.Status != model.ContractActive {
		t.Fatalf("expected active, got %s", updated.Status)
	}

	events := f.pub.byKey(mq.RoutingKeyContractStatusUpdated)
	if len(events) != 1 {
		t.Fatalf("expected 1 status event, got %d", len(events))
	}
	p := events[0].payload.(mq.ContractStatusUpdatedPayload)
	if p.ContractID != c.ID || p.Status != "active" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestCompleteMilestonePublishesAndInvalidatesStats(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()
	c := f.createContract(t)

	m, err := f.svc.CreateMilestone(ctx, CreateMilestoneInput{
		ContractID:  c.ID,
		Title:       "Wireframes",
		Description: "Deliver approved wireframes",
		Amount:      1000,
		DueDate:     time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateMilestone: %v", err)
	}

	if err := f.cache.Set(ctx, []byte(`{}`), statsKey, "userId=2"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	done, err := f.svc.UpdateMilestoneStatus(ctx, m.ID, model.MilestoneCompleted)
	if err != nil {
		t.Fatalf("UpdateMilestoneStatus: %v", err)
	}
	if done.CompletedDate == nil {
		t.Fatal("expected completed date to be stamped")
	}

	if got := len(f.pub.byKey(mq.RoutingKeyMilestoneCompleted)); got != 1 {
		t.Fatalf("expected 1 milestone.completed event, got %d", got)
	}
	if _, ok, _ := f.cache.Get(ctx, statsKey, "userId=2"); ok {
		t.Fatal("stats should have been invalidated")
	}
}

func TestCreateMilestoneRequiresContract(t *testing.T) {
	f := newContractFixture()
	_, err := f.svc.CreateMilestone(context.Background(), CreateMilestoneInput{
		ContractID: 42,
		Title:      "Orphan",
		Amount:     100,
		DueDate:    time.Now(),
	})
	if !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
}

func TestListPaymentsBucketsByStatus(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()
	c := f.createContract(t)

	add := func(title string, status model.MilestoneStatus) {
		m, err := f.svc.CreateMilestone(ctx, CreateMilestoneInput{
			ContractID: c.ID, Title: title, Amount: 100, DueDate: time.Now(),
		})
		if err != nil {
			t.Fatalf("CreateMilestone: %v", err)
		}
		if status != model.MilestoneNotStarted {
			if _, err := f.svc.UpdateMilestoneStatus(ctx, m.ID, status); err != nil {
				t.Fatalf("UpdateMilestoneStatus: %v", err)
			}
		}
	}

	add("a", model.MilestonePendingReview)
	add("b", model.MilestoneReadyForPayment)
	add("c", model.MilestoneNotStarted)
	add("d", model.MilestoneInProgress)
	add("e", model.MilestoneCompleted)
	add("f", model.MilestonePaid) // not bucketed

	p, err := f.svc.ListPayments(ctx, 2)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(p.Pending) != 2 || len(p.Upcoming) != 2 || len(p.Completed) != 1 {
		t.Fatalf("unexpected buckets: pending=%d upcoming=%d completed=%d",
			len(p.Pending), len(p.Upcoming), len(p.Completed))
	}
}

func TestStatsAggregatesAcrossStores(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()
	c := f.createContract(t)
	if _, err := f.svc.UpdateContractStatus(ctx, c.ID, model.ContractActive); err != nil {
		t.Fatalf("UpdateContractStatus: %v", err)
	}

	m1, _ := f.svc.CreateMilestone(ctx, CreateMilestoneInput{ContractID: c.ID, Title: "m1", Amount: 1500, DueDate: time.Now()})
	m2, _ := f.svc.CreateMilestone(ctx, CreateMilestoneInput{ContractID: c.ID, Title: "m2", Amount: 800, DueDate: time.Now()})
	if _, err := f.svc.UpdateMilestoneStatus(ctx, m1.ID, model.MilestoneCompleted); err != nil {
		t.Fatalf("complete m1: %v", err)
	}
	if _, err := f.svc.UpdateMilestoneStatus(ctx, m2.ID, model.MilestonePendingReview); err != nil {
		t.Fatalf("review m2: %v", err)
	}

	tsvc := NewTemplateService(f.templates)
	if _, err := tsvc.Create(ctx, CreateTemplateInput{UserID: 2, Title: "Standard fixed price", Content: "..."}); err != nil {
		t.Fatalf("Create template: %v", err)
	}

	stats, err := f.svc.Stats(ctx, 2)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := model.Stats{ActiveContracts: 1, PendingPayments: 1, TotalEarned: 1500, TemplateCount: 1}
	if *stats != want {
		t.Fatalf("got %+v, want %+v", *stats, want)
	}
}
