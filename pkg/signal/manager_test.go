package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/egomobility/vehicle-signals/pkg/cache"
	"github.com/egomobility/vehicle-signals/pkg/store"
)

// setupTestManager wires a manager against miniredis and a fresh cache.
func setupTestManager(t *testing.T, vehicleID string) (*Manager, *store.RedisStore, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := store.NewRedisStore(client)
	c := cache.New()

	m := NewManager(vehicleID, DefaultRegistry(), st, c)

	cleanup := func() {
		c.Close()
		client.Close()
		mr.Close()
	}

	return m, st, cleanup
}

func TestManager_Get_DefaultWithoutOverride(t *testing.T) {
	m, _, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	ctx := context.Background()

	value, ok, err := m.Get(ctx, "battery_charging")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false for a defined signal")
	}
	if value != "no" {
		t.Errorf("Get(battery_charging) = %v, expected no", value)
	}
}

func TestManager_Get_NaNDefaultSurfacesAsString(t *testing.T) {
	m, _, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	value, ok, err := m.Get(context.Background(), "distance_to_object_back")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false for a defined signal")
	}
	if value != "NaN" {
		t.Errorf("Get(distance_to_object_back) = %v (%T), expected \"NaN\"", value, value)
	}
}

func TestManager_Get_UnknownSignal(t *testing.T) {
	m, _, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	value, ok, err := m.Get(context.Background(), "flux_capacitor")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for an unknown signal")
	}
	if value != nil {
		t.Errorf("Get(flux_capacitor) = %v, expected nil", value)
	}
}

func TestManager_Set_RoundTripWithIntTransformer(t *testing.T) {
	m, _, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	ctx := context.Background()

	ok, err := m.Set(ctx, "infotainment_volume", "7.9")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !ok {
		t.Fatal("Set() ok = false")
	}

	value, ok, err := m.Get(ctx, "infotainment_volume")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false")
	}
	if value != int64(7) {
		t.Errorf("Get(infotainment_volume) = %v (%T), expected int64(7)", value, value)
	}
}

func TestManager_Set_UnknownSignal(t *testing.T) {
	m, st, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	ctx := context.Background()

	ok, err := m.Set(ctx, "flux_capacitor", "on")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ok {
		t.Error("Set() ok = true for an unknown signal")
	}

	logs, err := st.SignalLogs(ctx, "vehicle-1", 0)
	if err != nil {
		t.Fatalf("SignalLogs() error = %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("unknown signal write produced %d log entries", len(logs))
	}
}

func TestManager_Set_ReadOnlySignal(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := cache.New()
	defer c.Close()

	registry := NewRegistry(Definition{
		Name:     "vin",
		Default:  "WEG0000001",
		Writable: false,
	})
	m := NewManager("vehicle-1", registry, store.NewRedisStore(client), c)

	ok, err := m.Set(context.Background(), "vin", "WEG0000002")
	if !errors.Is(err, ErrSignalReadOnly) {
		t.Fatalf("Set() error = %v, expected ErrSignalReadOnly", err)
	}
	if ok {
		t.Error("Set() ok = true for a read-only signal")
	}
	if err.Error() != "Signal is read-only" {
		t.Errorf("error message = %q", err.Error())
	}
}

func TestManager_Set_ValidationRejectionIsSideEffectFree(t *testing.T) {
	m, st, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	ctx := context.Background()

	ok, err := m.Set(ctx, "speed", 300)
	if ok {
		t.Error("Set(speed, 300) ok = true")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Set() error = %v, expected *ValidationError", err)
	}
	if verr.Message != "The maximum value of 'speed' must be 200" {
		t.Errorf("validation message = %q", verr.Message)
	}

	override, err := st.FindOverride(ctx, "vehicle-1", "speed")
	if err != nil {
		t.Fatalf("FindOverride() error = %v", err)
	}
	if override != nil {
		t.Error("rejected write persisted an override")
	}

	logs, err := st.SignalLogs(ctx, "vehicle-1", 0)
	if err != nil {
		t.Fatalf("SignalLogs() error = %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("rejected write produced %d log entries", len(logs))
	}
}

func TestManager_Set_RejectsInfiniteNumbers(t *testing.T) {
	m, st, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	ctx := context.Background()

	for _, name := range []string{"mileage", "distance_trip", "distance_to_object_back"} {
		ok, err := m.Set(ctx, name, "Inf")
		if ok {
			t.Errorf("Set(%s, Inf) ok = true", name)
		}

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Set(%s, Inf) error = %v, expected *ValidationError", name, err)
		}

		override, err := st.FindOverride(ctx, "vehicle-1", name)
		if err != nil {
			t.Fatalf("FindOverride(%s) error = %v", name, err)
		}
		if override != nil {
			t.Errorf("Set(%s, Inf) persisted %v", name, override.Data)
		}
	}
}

func TestManager_Set_LogsEveryWriteButEventsOnlyChanges(t *testing.T) {
	m, st, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := m.Set(ctx, "speed", "50"); err != nil {
			t.Fatalf("Set() #%d error = %v", i+1, err)
		}
	}

	logs, err := st.SignalLogs(ctx, "vehicle-1", 0)
	if err != nil {
		t.Fatalf("SignalLogs() error = %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, expected 2", len(logs))
	}

	// first write: default 0 -> 50, second write: 50 -> 50
	if logs[0].OldData != int64(0) || logs[0].NewData != int64(50) {
		t.Errorf("logs[0] = %v -> %v", logs[0].OldData, logs[0].NewData)
	}
	if logs[1].OldData != int64(50) || logs[1].NewData != int64(50) {
		t.Errorf("logs[1] = %v -> %v", logs[1].OldData, logs[1].NewData)
	}

	events, err := st.UnhandledEvents(ctx, "vehicle-1", nil, 0)
	if err != nil {
		t.Fatalf("UnhandledEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, expected 1", len(events))
	}
	if events[0].Name != EventNamePrefix+"speed" {
		t.Errorf("event name = %s", events[0].Name)
	}
	if events[0].Data.OldData != int64(0) || events[0].Data.NewData != int64(50) {
		t.Errorf("event data = %v -> %v", events[0].Data.OldData, events[0].Data.NewData)
	}
}

func TestManager_Set_WritingDefaultEmitsNoEvent(t *testing.T) {
	m, st, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	ctx := context.Background()

	if _, err := m.Set(ctx, "battery_charging", "no"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	logs, err := st.SignalLogs(ctx, "vehicle-1", 0)
	if err != nil {
		t.Fatalf("SignalLogs() error = %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("len(logs) = %d, expected 1", len(logs))
	}

	events, err := st.UnhandledEvents(ctx, "vehicle-1", nil, 0)
	if err != nil {
		t.Fatalf("UnhandledEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, expected 0", len(events))
	}
}

func TestManager_Set_NaNOverNaNEmitsNoEvent(t *testing.T) {
	m, st, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	ctx := context.Background()

	ok, err := m.Set(ctx, "distance_to_object_back", "NaN")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !ok {
		t.Fatal("Set() ok = false")
	}

	events, err := st.UnhandledEvents(ctx, "vehicle-1", nil, 0)
	if err != nil {
		t.Fatalf("UnhandledEvents() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, expected 0", len(events))
	}

	value, _, err := m.Get(ctx, "distance_to_object_back")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "NaN" {
		t.Errorf("Get() = %v (%T), expected \"NaN\"", value, value)
	}
}

func TestManager_GetAll_CoversCatalogAndRefreshesAfterWrite(t *testing.T) {
	m, _, cleanup := setupTestManager(t, "vehicle-1")
	defer cleanup()

	ctx := context.Background()

	snapshot, err := m.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(snapshot) != 49 {
		t.Fatalf("len(snapshot) = %d, expected 49", len(snapshot))
	}
	if snapshot["speed"] != int64(0) {
		t.Errorf("snapshot[speed] = %v, expected int64(0)", snapshot["speed"])
	}
	if snapshot["distance_to_object_front"] != "NaN" {
		t.Errorf("snapshot[distance_to_object_front] = %v, expected \"NaN\"", snapshot["distance_to_object_front"])
	}

	// the snapshot is cached, and a write refreshes it
	if _, err := m.Set(ctx, "speed", 80); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	snapshot, err = m.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if snapshot["speed"] != int64(80) {
		t.Errorf("snapshot[speed] = %v, expected int64(80) after write", snapshot["speed"])
	}
}

// flakyFindStore fails FindOverride from a configurable call count on, to
// simulate the store dropping out mid-operation.
type flakyFindStore struct {
	*store.RedisStore
	finds    int
	failFrom int
}

func (s *flakyFindStore) FindOverride(ctx context.Context, vehicleID, name string) (*store.SignalOverride, error) {
	s.finds++
	if s.failFrom > 0 && s.finds >= s.failFrom {
		return nil, errors.New("store unavailable")
	}

	return s.RedisStore.FindOverride(ctx, vehicleID, name)
}

func TestManager_Set_FailedRefreshDropsSnapshot(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := cache.New()
	defer c.Close()

	st := &flakyFindStore{RedisStore: store.NewRedisStore(client)}
	m := NewManager("vehicle-1", DefaultRegistry(), st, c)

	ctx := context.Background()

	// prime the snapshot cache with the defaults
	if _, err := m.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}

	// the write itself sees the store; the post-write snapshot rebuild fails
	st.failFrom = st.finds + 2
	ok, err := m.Set(ctx, "speed", "120")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !ok {
		t.Fatal("Set() ok = false")
	}

	// once the store recovers, reads must observe the written value rather
	// than the pre-write snapshot
	st.failFrom = 0
	snapshot, err := m.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if snapshot["speed"] != int64(120) {
		t.Errorf("snapshot[speed] = %v, expected int64(120) after recovery", snapshot["speed"])
	}
}

func TestManager_VehicleIDIsolation(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	st := store.NewRedisStore(client)
	c := cache.New()
	defer c.Close()

	registry := DefaultRegistry()
	first := NewManager("vehicle-1", registry, st, c)
	second := NewManager("vehicle-2", registry, st, c)

	ctx := context.Background()

	if _, err := first.Set(ctx, "speed", 120); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, _, err := second.Get(ctx, "speed")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != int64(0) {
		t.Errorf("vehicle-2 speed = %v, expected default int64(0)", value)
	}
}
