package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lawnchairsociety/killrate/internal/results"
	"github.com/lawnchairsociety/killrate/internal/stats"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sub", "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	for _, table := range []string{"rate_profiles", "rate_costs", "runs", "run_results"} {
		var name string
		err := db.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		db.Close()
	}
}

func TestOpenWithConfigRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenWithConfig(Config{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	costs := map[string]float64{"pp": 1.5, "shark": 12, "rune": 0.25}
	if err := db.SaveProfile("ironman", costs); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := db.LoadProfile("ironman")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(got) != len(costs) {
		t.Fatalf("LoadProfile returned %d entries, want %d", len(got), len(costs))
	}
	for id, want := range costs {
		if got[id] != want {
			t.Errorf("cost[%s] = %v, want %v", id, got[id], want)
		}
	}
}

func TestSaveProfileReplaces(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveProfile("main", map[string]float64{"pp": 1, "food": 2}); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveProfile("main", map[string]float64{"ammo": 3}); err != nil {
		t.Fatal(err)
	}

	got, err := db.LoadProfile("main")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["ammo"] != 3 {
		t.Errorf("LoadProfile = %v, want only ammo=3", got)
	}

	profiles, err := db.ListProfiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 || profiles[0].Name != "main" || profiles[0].Entries != 1 {
		t.Errorf("ListProfiles = %+v", profiles)
	}
}

func TestProfileNotFound(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.LoadProfile("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadProfile error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteProfile("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteProfile error = %v, want ErrNotFound", err)
	}
	if err := db.SaveProfile("", nil); err == nil {
		t.Error("SaveProfile with empty name should fail")
	}
}

func TestDeleteProfileCascades(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveProfile("temp", map[string]float64{"pp": 1}); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteProfile("temp"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}

	var n int
	if err := db.DB().QueryRow(`SELECT COUNT(*) FROM rate_costs`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rate_costs has %d rows after delete, want 0", n)
	}
}

func sampleSet() results.Set {
	chicken := results.Result{
		Key:            results.MonsterKey("chicken"),
		Success:        true,
		Kills:          10,
		KillTimeS:      stats.Of(12.5),
		KillsPerSecond: stats.Of(0.08),
		XPPerSecond:    stats.Of(4),
		GPPerSecond:    stats.Of(5),
		Factor:         1,
	}
	chicken.Adjusted = results.Unadjusted(chicken)
	failed := results.Failed(results.SlotKey("imp", "fire_temple"), "requirements not met")
	return results.NewSet(chicken, failed)
}

func TestRunRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := Run{
		ID:         "0b7f0a52-1a4c-4a8e-9a35-2f3c0d0e9a11",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Seed:       42,
		Targets:    2,
		Failed:     1,
	}
	if err := db.SaveRun(run, sampleSet()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := db.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Seed != 42 || got.Targets != 2 || got.Failed != 1 || got.Cancelled {
		t.Errorf("GetRun = %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}

	set, err := db.RunResults(run.ID)
	if err != nil {
		t.Fatalf("RunResults: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("RunResults len = %d, want 2", set.Len())
	}
	chicken, ok := set.Get(results.MonsterKey("chicken"))
	if !ok {
		t.Fatal("chicken result missing")
	}
	if v, _ := chicken.KillTimeS.Value(); v != 12.5 {
		t.Errorf("KillTimeS = %v, want 12.5", chicken.KillTimeS)
	}
	imp, _ := set.Get(results.SlotKey("imp", "fire_temple"))
	if imp.Success || imp.KillTimeS.Defined() {
		t.Errorf("failed result should stay failed and undefined: %+v", imp)
	}

	var gp *float64
	if err := db.DB().QueryRow(`SELECT gp_per_second FROM run_results WHERE result_key = ?`, "dungeon:fire_temple/imp").Scan(&gp); err != nil {
		t.Fatal(err)
	}
	if gp != nil {
		t.Errorf("undefined gp stored as %v, want NULL", *gp)
	}
}

func TestSaveRunDuplicateID(t *testing.T) {
	db := setupTestDB(t)
	run := Run{ID: "dup", StartedAt: time.Now()}
	if err := db.SaveRun(run, results.NewSet()); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveRun(run, results.NewSet()); err == nil {
		t.Error("expected duplicate run error")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour), Cancelled: id == "b"}
		if err := db.SaveRun(run, results.NewSet()); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("ListRuns = %+v", runs)
	}
	if !runs[1].Cancelled || !runs[1].FinishedAt.IsZero() {
		t.Errorf("run b = %+v, want cancelled and unfinished", runs[1])
	}

	if _, err := db.GetRun("zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun error = %v, want ErrNotFound", err)
	}
}
