package logbook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/babylog/internal/infrastructure/database"
	"github.com/nerrad567/babylog/internal/validation"
	"github.com/nerrad567/babylog/migrations"
)

// testDB opens a migrated temporary database with two parents, returning
// their IDs.
func testDB(t *testing.T) (db *sql.DB, alice, bob string) {
	t.Helper()

	d, err := database.Open(t.Context(), database.Config{
		Path:        filepath.Join(t.TempDir(), "logbook-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() }) //nolint:errcheck // test cleanup

	if err := d.Migrate(t.Context(), migrations.FS); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}

	for _, u := range []struct{ id, email string }{
		{"usr-alice", "alice@example.com"},
		{"usr-bob", "bob@example.com"},
	} {
		if _, err := d.ExecContext(t.Context(),
			"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, 'x', '2026-01-01T00:00:00Z')",
			u.id, u.email,
		); err != nil {
			t.Fatalf("seeding user: %v", err)
		}
	}
	return d.DB, "usr-alice", "usr-bob"
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func bottle(brand string, amount int) BottleInput {
	return BottleInput{Brand: brand, Amount: intPtr(amount)}
}

// recorder collects observed events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestBottleService_CreateAndGet(t *testing.T) {
	db, alice, _ := testDB(t)
	svc := NewBottleService(db)
	ctx := context.Background()

	in := bottle("Similac", 120)
	in.Date = "2026-03-01"
	in.Time = "07:45"
	in.Notes = strPtr("took it all")

	created, err := svc.Create(ctx, alice, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" || created.ID[:4] != "btl-" {
		t.Errorf("ID = %q, want btl- prefix", created.ID)
	}
	if created.OwnerID != alice {
		t.Errorf("OwnerID = %q, want caller %q", created.OwnerID, alice)
	}
	if created.CreatedOn.IsZero() {
		t.Error("CreatedOn should be set")
	}

	got, err := svc.Get(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Brand != "Similac" || got.Amount != 120 {
		t.Errorf("got brand/amount = %q/%d, want Similac/120", got.Brand, got.Amount)
	}
	if got.Date != "2026-03-01" || got.Time != "07:45" {
		t.Errorf("got date/time = %s %s, want 2026-03-01 07:45", got.Date, got.Time)
	}
	if got.Notes == nil || *got.Notes != "took it all" {
		t.Errorf("Notes = %v, want %q", got.Notes, "took it all")
	}
	if got.Owner.ID != alice || got.Owner.Email != "alice@example.com" {
		t.Errorf("Owner = %+v, want alice summary", got.Owner)
	}
}

func TestBottleService_CreateDefaultsDateAndTime(t *testing.T) {
	db, alice, _ := testDB(t)
	store := NewSQLiteStore(db, BottleSchema)
	store.now = func() time.Time { return time.Date(2026, 3, 14, 2, 30, 0, 0, time.UTC) }
	svc := NewService[Bottle, BottleInput]("bottle", store)

	created, err := svc.Create(context.Background(), alice, bottle("Enfamil", 90))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Date != "2026-03-14" || created.Time != "02:30" {
		t.Errorf("date/time = %s %s, want 2026-03-14 02:30", created.Date, created.Time)
	}
	if created.Notes != nil {
		t.Errorf("Notes = %q, want nil", *created.Notes)
	}
}

func TestBottleService_CreateValidation(t *testing.T) {
	db, alice, _ := testDB(t)
	svc := NewBottleService(db)

	tests := []struct {
		name string
		in   BottleInput
	}{
		{"missing brand", BottleInput{Amount: intPtr(10)}},
		{"missing amount", BottleInput{Brand: "Similac"}},
		{"negative amount", bottle("Similac", -1)},
		{"bad date", func() BottleInput { b := bottle("Similac", 1); b.Date = "03/01/2026"; return b }()},
		{"bad time", func() BottleInput { b := bottle("Similac", 1); b.Time = "25:99"; return b }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), alice, tt.in)
			if !errors.Is(err, validation.ErrInvalid) {
				t.Errorf("Create() error = %v, want validation.ErrInvalid", err)
			}
		})
	}
}

func TestService_OwnershipEnforced(t *testing.T) {
	db, alice, bob := testDB(t)
	svc := NewBottleService(db)
	ctx := context.Background()

	rec, err := svc.Create(ctx, alice, bottle("Similac", 120))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Get(ctx, bob, rec.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get() by other owner error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Update(ctx, bob, rec.ID, bottle("Hijacked", 1)); !errors.Is(err, ErrForbidden) {
		t.Errorf("Update() by other owner error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, bob, rec.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Delete() by other owner error = %v, want ErrForbidden", err)
	}

	got, err := svc.Get(ctx, alice, rec.ID)
	if err != nil {
		t.Fatalf("Get() by owner error = %v", err)
	}
	if got.Brand != "Similac" {
		t.Errorf("Brand = %q, foreign update must not apply", got.Brand)
	}
}

func TestService_NotFoundBeforeForbidden(t *testing.T) {
	db, alice, bob := testDB(t)
	svc := NewBottleService(db)
	ctx := context.Background()

	for _, caller := range []string{alice, bob} {
		if _, err := svc.Get(ctx, caller, "btl-missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%s) error = %v, want ErrNotFound", caller, err)
		}
		if _, err := svc.Update(ctx, caller, "btl-missing", bottle("x", 1)); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update(%s) error = %v, want ErrNotFound", caller, err)
		}
		if err := svc.Delete(ctx, caller, "btl-missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Delete(%s) error = %v, want ErrNotFound", caller, err)
		}
	}
}

func TestService_UpdateValidatesBeforeOwnership(t *testing.T) {
	db, alice, bob := testDB(t)
	svc := NewBottleService(db)
	ctx := context.Background()

	rec, err := svc.Create(ctx, alice, bottle("Similac", 120))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(ctx, bob, rec.ID, BottleInput{})
	if !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("Update() invalid body error = %v, want validation.ErrInvalid", err)
	}
}

func TestBottleService_Update(t *testing.T) {
	db, alice, _ := testDB(t)
	svc := NewBottleService(db)
	ctx := context.Background()

	in := bottle("Similac", 120)
	in.Date = "2026-03-01"
	in.Time = "07:45"
	in.Notes = strPtr("first")
	rec, err := svc.Create(ctx, alice, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(ctx, alice, rec.ID, bottle("Aptamil", 150))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Brand != "Aptamil" || updated.Amount != 150 {
		t.Errorf("brand/amount = %q/%d, want Aptamil/150", updated.Brand, updated.Amount)
	}
	if updated.Date != "2026-03-01" || updated.Time != "07:45" {
		t.Errorf("date/time = %s %s, omitted values should be kept", updated.Date, updated.Time)
	}
	if updated.Notes != nil {
		t.Errorf("Notes = %q, want cleared", *updated.Notes)
	}
	if updated.ID != rec.ID || updated.OwnerID != alice || !updated.CreatedOn.Equal(rec.CreatedOn) {
		t.Error("Update() must not change id, owner or creation time")
	}

	moved := bottle("Aptamil", 150)
	moved.Date = "2026-03-02"
	updated, err = svc.Update(ctx, alice, rec.ID, moved)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Date != "2026-03-02" {
		t.Errorf("Date = %s, want 2026-03-02", updated.Date)
	}
}

func TestService_DeleteTwice(t *testing.T) {
	db, alice, _ := testDB(t)
	svc := NewBottleService(db)
	ctx := context.Background()

	rec, err := svc.Create(ctx, alice, bottle("Similac", 120))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Delete(ctx, alice, rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, alice, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, alice, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestBottleService_List(t *testing.T) {
	db, alice, bob := testDB(t)
	svc := NewBottleService(db)
	ctx := context.Background()

	brands := []string{"Similac", "similac pro", "Enfamil", "SIMILAC Sensitive"}
	for i := range 12 {
		if _, err := svc.Create(ctx, alice, bottle(brands[i%len(brands)], i)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := svc.Create(ctx, bob, bottle("Similac", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("defaults", func(t *testing.T) {
		res, err := svc.List(ctx, alice, ListOptions{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(res.Items) != DefaultLimit || res.Limit != DefaultLimit || res.Offset != 0 {
			t.Errorf("len/limit/offset = %d/%d/%d, want 10/10/0", len(res.Items), res.Limit, res.Offset)
		}
		if res.Total != 12 {
			t.Errorf("Total = %d, want 12", res.Total)
		}
		for _, b := range res.Items {
			if b.OwnerID != alice {
				t.Fatalf("List() leaked log owned by %s", b.OwnerID)
			}
		}
		// Newest first.
		if res.Items[0].Amount != 11 {
			t.Errorf("first amount = %d, want 11 (newest)", res.Items[0].Amount)
		}
	})

	t.Run("offset", func(t *testing.T) {
		res, err := svc.List(ctx, alice, ListOptions{Limit: 10, Offset: 10})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(res.Items) != 2 {
			t.Errorf("len = %d, want 2", len(res.Items))
		}
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		res, err := svc.List(ctx, alice, ListOptions{Search: "siMiLaC", Limit: 100})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(res.Items) != 9 || res.Total != 9 {
			t.Errorf("len/total = %d/%d, want 9/9", len(res.Items), res.Total)
		}
	})

	t.Run("search without matches", func(t *testing.T) {
		res, err := svc.List(ctx, alice, ListOptions{Search: "nestle"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if res.Items == nil || len(res.Items) != 0 {
			t.Errorf("Items = %v, want empty non-nil slice", res.Items)
		}
	})

	t.Run("limit capped", func(t *testing.T) {
		res, err := svc.List(ctx, alice, ListOptions{Limit: 1000})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if res.Limit != MaxLimit {
			t.Errorf("Limit = %d, want %d", res.Limit, MaxLimit)
		}
	})

	t.Run("negative paging", func(t *testing.T) {
		for _, opts := range []ListOptions{{Limit: -1}, {Offset: -1}} {
			if _, err := svc.List(ctx, alice, opts); !errors.Is(err, validation.ErrInvalid) {
				t.Errorf("List(%+v) error = %v, want validation.ErrInvalid", opts, err)
			}
		}
	})
}

func TestDiaperService(t *testing.T) {
	db, alice, bob := testDB(t)
	svc := NewDiaperService(db)
	ctx := context.Background()

	for _, soil := range []string{"wet", "Dirty", "wet and dirty", "dry"} {
		if _, err := svc.Create(ctx, alice, DiaperInput{SoilType: soil}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	res, err := svc.List(ctx, alice, ListOptions{Search: "DIRTY"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(res.Items) != 2 {
		t.Errorf("search dirty = %d results, want 2", len(res.Items))
	}

	rec := res.Items[0]
	if rec.ID[:4] != "dpr-" {
		t.Errorf("ID = %q, want dpr- prefix", rec.ID)
	}
	if _, err := svc.Get(ctx, bob, rec.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get() by other owner error = %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(ctx, alice, rec.ID, DiaperInput{SoilType: "mixed"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.SoilType != "mixed" {
		t.Errorf("SoilType = %q, want mixed", updated.SoilType)
	}

	if _, err := svc.Create(ctx, alice, DiaperInput{}); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("Create() without soil_type error = %v, want validation.ErrInvalid", err)
	}
}

func TestService_NotifiesObservers(t *testing.T) {
	db, alice, bob := testDB(t)
	rec := &recorder{}
	svc := NewBottleService(db, rec)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice, bottle("Similac", 120))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Update(ctx, alice, created.ID, bottle("Similac", 130)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	_ = svc.Delete(ctx, bob, created.ID) // forbidden, must not notify
	if err := svc.Delete(ctx, alice, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []Action{ActionCreated, ActionUpdated, ActionDeleted}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %d, want %d", len(rec.events), len(want))
	}
	for i, e := range rec.events {
		if e.Action != want[i] || e.Kind != "bottle" || e.OwnerID != alice || e.RecordID != created.ID {
			t.Errorf("event[%d] = %+v", i, e)
		}
	}
	if b, ok := rec.events[1].Record.(*Bottle); !ok || b.Amount != 130 {
		t.Errorf("updated event record = %#v, want *Bottle with amount 130", rec.events[1].Record)
	}
	if rec.events[2].Record != nil {
		t.Errorf("deleted event record = %v, want nil", rec.events[2].Record)
	}
}

func TestService_ConcurrentCreates(t *testing.T) {
	db, alice, _ := testDB(t)
	svc := NewBottleService(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(ctx, alice, bottle(fmt.Sprintf("brand-%d", i), i)); err != nil {
				t.Errorf("Create() error = %v", err)
			}
		}()
	}
	wg.Wait()

	res, err := svc.List(ctx, alice, ListOptions{Limit: 100})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 20 {
		t.Errorf("Total = %d, want 20", res.Total)
	}
}

func TestBottleService_SearchFoldsUnicode(t *testing.T) {
	db, alice, _ := testDB(t)
	svc := NewBottleService(db)
	ctx := context.Background()

	for _, brand := range []string{"Nestlé NAN", "NESTLÉ Beba", "Nestle Lactogen"} {
		if _, err := svc.Create(ctx, alice, bottle(brand, 90)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		search string
		want   int
	}{
		{"NESTLÉ", 2},
		{"nestlé", 2},
		{"nestle", 1},
		{"beba", 1},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			res, err := svc.List(ctx, alice, ListOptions{Search: tt.search})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.want {
				t.Errorf("search %q matched %d, want %d", tt.search, res.Total, tt.want)
			}
		})
	}
}

func TestService_GeneratedIDs(t *testing.T) {
	db, alice, _ := testDB(t)
	bottles := NewBottleService(db)
	diapers := NewDiaperService(db)
	ctx := context.Background()

	seen := make(map[string]bool)
	check := func(id, prefix string) {
		t.Helper()
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok {
			t.Fatalf("ID = %q, want %s prefix", id, prefix)
		}
		if _, err := uuid.Parse(rest); err != nil {
			t.Errorf("ID = %q, want %s followed by a full UUID: %v", id, prefix, err)
		}
		if seen[id] {
			t.Errorf("ID %q generated twice", id)
		}
		seen[id] = true
	}

	for i := range 50 {
		b, err := bottles.Create(ctx, alice, bottle("Similac", i))
		if err != nil {
			t.Fatalf("Create() bottle error = %v", err)
		}
		check(b.ID, "btl-")

		d, err := diapers.Create(ctx, alice, DiaperInput{SoilType: "wet"})
		if err != nil {
			t.Fatalf("Create() diaper error = %v", err)
		}
		check(d.ID, "dpr-")
	}
}
