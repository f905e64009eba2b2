package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type memSlot struct {
	mu       sync.Mutex
	user     *User
	writes   int
	writeErr error
	clearErr error

	writeGate    chan struct{} // if set, Write blocks until closed
	writeEntered chan struct{} // if set, receives once per Write call
}

func (s *memSlot) Read(ctx context.Context) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *memSlot) Write(ctx context.Context, u *User) error {
	if s.writeEntered != nil {
		select {
		case s.writeEntered <- struct{}{}:
		default:
		}
	}
	if s.writeGate != nil {
		<-s.writeGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.writeErr != nil {
		return s.writeErr
	}
	c := *u
	s.user = &c
	return nil
}

func (s *memSlot) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.user = nil
	return nil
}

func (s *memSlot) stored() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *memSlot) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func newTestStore(slot Slot) *Store {
	return NewStore(slot, zap.NewNop())
}

func TestStoreStartsLoading(t *testing.T) {
	store := newTestStore(&memSlot{})
	if snap := store.Snapshot(); snap.State != StateLoading {
		t.Fatalf("state before Init = %v, want loading", snap.State)
	}
}

func TestInitRestoresPersistedUser(t *testing.T) {
	slot := &memSlot{user: &User{ID: "42", Email: "jane@x.com", Name: "Jane"}}
	store := newTestStore(slot)
	store.Init(context.Background())

	snap := store.Snapshot()
	if snap.State != StateAuthenticated {
		t.Fatalf("state after Init = %v, want authenticated", snap.State)
	}
	if snap.User == nil || snap.User.ID != "42" {
		t.Fatalf("restored user = %+v, want id 42", snap.User)
	}
}

func TestInitEmptySlot(t *testing.T) {
	store := newTestStore(&memSlot{})
	store.Init(context.Background())

	snap := store.Snapshot()
	if snap.State != StateUnauthenticated {
		t.Fatalf("state after Init = %v, want unauthenticated", snap.State)
	}
	if snap.User != nil {
		t.Fatalf("user after empty Init = %+v, want nil", snap.User)
	}
}

func TestRegisterAuthenticatesAndPersists(t *testing.T) {
	slot := &memSlot{}
	store := newTestStore(slot)
	store.Init(context.Background())

	u, err := store.Register(context.Background(), RegisterInput{
		Username: "u1",
		Password: "p",
		Email:    "e@x.com",
		FullName: "Jane Doe",
		UserType: "freelancer",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.Name != "Jane Doe" || u.UserType != "freelancer" || u.Username != "u1" {
		t.Fatalf("registered user = %+v", u)
	}
	if u.ID == "" {
		t.Fatal("registered user has empty id")
	}

	cur := store.CurrentUser()
	if cur == nil || cur.Name != "Jane Doe" || cur.UserType != "freelancer" {
		t.Fatalf("current user = %+v", cur)
	}

	stored := slot.stored()
	if stored == nil || *stored != *u {
		t.Fatalf("persisted record = %+v, want %+v", stored, u)
	}

	store.Logout(context.Background())
	if slot.stored() != nil {
		t.Fatal("slot not cleared after logout")
	}
	if store.CurrentUser() != nil {
		t.Fatal("current user still set after logout")
	}
}

func TestLoginDerivesUserFromEmail(t *testing.T) {
	slot := &memSlot{}
	store := newTestStore(slot)
	store.Init(context.Background())

	u, err := store.Login(context.Background(), "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if u.Name != "alice" || u.Email != "alice@example.com" {
		t.Fatalf("login user = %+v", u)
	}
	if snap := store.Snapshot(); snap.State != StateAuthenticated {
		t.Fatalf("state after login = %v", snap.State)
	}
	if slot.stored() == nil {
		t.Fatal("login did not persist the session record")
	}
}

func TestLoginRejectsEmptyInput(t *testing.T) {
	store := newTestStore(&memSlot{})
	store.Init(context.Background())

	if _, err := store.Login(context.Background(), "", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := store.Login(context.Background(), "a@b.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginWriteFailurePreservesState(t *testing.T) {
	slot := &memSlot{writeErr: errors.New("disk full")}
	store := newTestStore(slot)
	store.Init(context.Background())

	if _, err := store.Login(context.Background(), "a@b.com", "secret1"); err == nil {
		t.Fatal("expected persistence error")
	}
	snap := store.Snapshot()
	if snap.State != StateUnauthenticated || snap.User != nil {
		t.Fatalf("state after failed login = %+v, want unchanged unauthenticated", snap)
	}
}

func TestLogoutSwallowsClearError(t *testing.T) {
	slot := &memSlot{user: &User{ID: "1"}, clearErr: errors.New("io error")}
	store := newTestStore(slot)
	store.Init(context.Background())

	store.Logout(context.Background())
	if snap := store.Snapshot(); snap.State != StateUnauthenticated {
		t.Fatalf("state after logout = %v, want unauthenticated", snap.State)
	}
}

// A logout invoked while a login is still persisting must win, even though
// the login completes afterwards.
func TestLogoutSupersedesPendingLogin(t *testing.T) {
	slot := &memSlot{
		writeGate:    make(chan struct{}),
		writeEntered: make(chan struct{}, 1),
	}
	store := newTestStore(slot)
	store.Init(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := store.Login(context.Background(), "a@b.com", "secret1"); err != nil {
			t.Errorf("Login failed: %v", err)
		}
	}()

	<-slot.writeEntered // login is in flight, blocked on the slot write
	store.Logout(context.Background())
	if snap := store.Snapshot(); snap.State != StateUnauthenticated {
		t.Fatalf("state after logout = %v, want unauthenticated", snap.State)
	}

	close(slot.writeGate) // let the stale login finish
	<-done

	snap := store.Snapshot()
	if snap.State != StateUnauthenticated || snap.User != nil {
		t.Fatalf("stale login overwrote logout: %+v", snap)
	}
	if slot.stored() != nil {
		t.Fatalf("slot repopulated by stale login: %+v", slot.stored())
	}
}

// A transition that is already superseded before its slot write starts must
// not touch the slot at all, so a crash mid-commit cannot leave a stale
// record behind.
func TestSupersededCommitSkipsSlotWrite(t *testing.T) {
	slot := &memSlot{}
	store := newTestStore(slot)
	store.Init(context.Background())

	op := store.begin()
	store.Logout(context.Background()) // resolves first, supersedes op

	if _, err := store.commit(context.Background(), op, "login", &User{ID: "1", Email: "a@b.com", Name: "a"}); err != nil {
		t.Fatalf("superseded commit returned error: %v", err)
	}
	if n := slot.writeCount(); n != 0 {
		t.Fatalf("superseded commit wrote to the slot %d times, want 0", n)
	}
	if slot.stored() != nil {
		t.Fatalf("slot populated by superseded commit: %+v", slot.stored())
	}
	if snap := store.Snapshot(); snap.State != StateUnauthenticated || snap.User != nil {
		t.Fatalf("state after superseded commit = %+v, want unauthenticated", snap)
	}
}

func TestEstablishAdoptsExternalIdentity(t *testing.T) {
	slot := &memSlot{}
	store := newTestStore(slot)
	store.Init(context.Background())

	u, err := store.Establish(context.Background(), &User{
		ID: "42", Email: "jane@example.com", Name: "Jane Doe", Username: "jane", UserType: "freelancer",
	})
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if u.ID != "42" || u.UserType != "freelancer" {
		t.Fatalf("established user = %+v", u)
	}
	if snap := store.Snapshot(); snap.State != StateAuthenticated {
		t.Fatalf("state after Establish = %v, want authenticated", snap.State)
	}
	stored := slot.stored()
	if stored == nil || stored.ID != "42" {
		t.Fatalf("persisted record = %+v, want id 42", stored)
	}

	if _, err := store.Establish(context.Background(), nil); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Establish(nil) err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := store.Establish(context.Background(), &User{Email: "x@y.com"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Establish without id err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSnapshotReturnsCopy(t *testing.T) {
	store := newTestStore(&memSlot{user: &User{ID: "9", Name: "Jane"}})
	store.Init(context.Background())

	snap := store.Snapshot()
	snap.User.Name = "mutated"
	if store.CurrentUser().Name != "Jane" {
		t.Fatal("snapshot exposed the store's record by reference")
	}
}

func TestFileSlot(t *testing.T) {
	dir := t.TempDir()
	slot := NewFileSlot(dir)
	ctx := context.Background()

	u, err := slot.Read(ctx)
	if err != nil || u != nil {
		t.Fatalf("Read on empty slot = (%+v, %v), want (nil, nil)", u, err)
	}

	want := &User{ID: "7", Email: "e@x.com", Name: "E", UserType: "client"}
	if err := slot.Write(ctx, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := slot.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if *got != *want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}

	if err := slot.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if u, _ := slot.Read(ctx); u != nil {
		t.Fatalf("slot still populated after Clear: %+v", u)
	}
	if err := slot.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty slot failed: %v", err)
	}
}

func TestFileSlotMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SlotName+".json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	slot := NewFileSlot(dir)

	if _, err := slot.Read(context.Background()); err == nil {
		t.Fatal("expected error for malformed slot")
	}

	// The store treats a malformed slot as unauthenticated.
	store := newTestStore(slot)
	store.Init(context.Background())
	if snap := store.Snapshot(); snap.State != StateUnauthenticated {
		t.Fatalf("state after malformed restore = %v, want unauthenticated", snap.State)
	}
}
