package signal

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/egomobility/vehicle-signals/pkg/cache"
	"github.com/egomobility/vehicle-signals/pkg/metrics"
	"github.com/egomobility/vehicle-signals/pkg/store"
)

// SnapshotCacheKey is the cache key holding a vehicle's full signal
// snapshot. It is the only key the signal subsystem uses.
const SnapshotCacheKey = "signals"

// EventNamePrefix prefixes every signal change event name.
const EventNamePrefix = "signal_change::"

// Store is the persistence collaborator of the Manager.
type Store interface {
	FindOverride(ctx context.Context, vehicleID, name string) (*store.SignalOverride, error)
	InsertOverride(ctx context.Context, o *store.SignalOverride) error
	UpdateOverride(ctx context.Context, vehicleID, name string, data any, updatedAt time.Time) (*store.SignalOverride, error)
	InsertLog(ctx context.Context, entry *store.SignalChangeLogEntry) error
	InsertEvent(ctx context.Context, ev *store.SignalChangeEvent) error
}

// Manager coordinates signal reads and writes for one vehicle across the
// registry, the persistence store and the snapshot cache. It owns the cache
// entry for its vehicle; no other component writes to it.
type Manager struct {
	vehicleID string
	registry  *Registry
	store     Store
	cache     *cache.VehicleCache
}

// NewManager binds a manager to a vehicle identity.
func NewManager(vehicleID string, registry *Registry, st Store, c *cache.VehicleCache) *Manager {
	return &Manager{
		vehicleID: NormalizeName(vehicleID),
		registry:  registry,
		store:     st,
		cache:     c,
	}
}

// VehicleID returns the normalized vehicle identity the manager is bound to.
func (m *Manager) VehicleID() string {
	return m.vehicleID
}

// presentValue converts a resolved value into its externally visible form.
// NaN surfaces as the string "NaN" so snapshots stay JSON-encodable.
func presentValue(v any) any {
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return "NaN"
	}

	return v
}

// Get resolves a signal's current value: the persisted override if one
// exists, the registry default otherwise. An unknown or invalid name
// returns ok=false without touching persistence and without an error.
func (m *Manager) Get(ctx context.Context, name string) (any, bool, error) {
	def := m.registry.Lookup(name)
	if def == nil {
		metrics.SignalReadsTotal.WithLabelValues("unknown").Inc()
		return nil, false, nil
	}
	name = NormalizeName(name)

	override, err := m.store.FindOverride(ctx, m.vehicleID, name)
	if err != nil {
		metrics.SignalReadsTotal.WithLabelValues("error").Inc()
		return nil, true, err
	}

	value := def.Default
	if override != nil {
		value = override.Data
	}

	m.runHook(def, &AccessContext{
		Direction: DirectionRead,
		Value:     value,
		Override:  override,
	})

	metrics.SignalReadsTotal.WithLabelValues("ok").Inc()
	return presentValue(value), true, nil
}

// Set validates, transforms and persists a new signal value, appends an
// audit log entry and emits a change event when the stored value actually
// changed. An unknown name returns (false, nil); a read-only signal or a
// validator rejection returns an error and leaves all state untouched.
func (m *Manager) Set(ctx context.Context, name string, rawValue any) (bool, error) {
	def := m.registry.Lookup(name)
	if def == nil {
		metrics.SignalWritesTotal.WithLabelValues("unknown").Inc()
		return false, nil
	}
	name = NormalizeName(name)

	if !def.Writable {
		metrics.SignalWritesTotal.WithLabelValues("read_only").Inc()
		return false, ErrSignalReadOnly
	}

	if def.Validator != nil {
		if msg := def.Validator(rawValue, name); msg != "" {
			metrics.SignalWritesTotal.WithLabelValues("rejected").Inc()
			metrics.ValidationFailuresTotal.WithLabelValues(name).Inc()
			return false, &ValidationError{Name: name, Message: msg}
		}
	}

	value := rawValue
	if def.Transformer != nil {
		value = def.Transformer(rawValue, name)
	}

	oldOverride, err := m.store.FindOverride(ctx, m.vehicleID, name)
	if err != nil {
		metrics.SignalWritesTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("failed to locate signal override: %w", err)
	}

	now := time.Now().UTC()
	direction := DirectionWrite
	var override *store.SignalOverride

	// The override write must succeed; everything after it is best effort.
	if oldOverride == nil {
		direction = DirectionNew
		override = &store.SignalOverride{
			ID:           uuid.NewString(),
			VehicleID:    m.vehicleID,
			Name:         name,
			Data:         value,
			CreationTime: now,
		}
		if err := m.store.InsertOverride(ctx, override); err != nil {
			metrics.SignalWritesTotal.WithLabelValues("error").Inc()
			return false, fmt.Errorf("failed to insert signal override: %w", err)
		}
	} else {
		direction = DirectionUpdate
		override, err = m.store.UpdateOverride(ctx, m.vehicleID, name, value, now)
		if err != nil {
			metrics.SignalWritesTotal.WithLabelValues("error").Inc()
			return false, fmt.Errorf("failed to update signal override: %w", err)
		}
	}

	oldData := def.Default
	if oldOverride != nil {
		oldData = oldOverride.Data
	}
	newData := override.Data

	// Audit log entry is written for every accepted write, changed or not.
	// A failed append must not undo an otherwise successful write.
	logEntry := &store.SignalChangeLogEntry{
		ID:           uuid.NewString(),
		VehicleID:    m.vehicleID,
		SignalID:     override.ID,
		Name:         name,
		OldData:      oldData,
		NewData:      newData,
		CreationTime: now,
	}
	if err := m.store.InsertLog(ctx, logEntry); err != nil {
		logrus.Errorf("failed to append signal change log for %s/%s: %v", m.vehicleID, name, err)
	}

	if !ValuesEqual(oldData, newData) {
		event := &store.SignalChangeEvent{
			ID:        uuid.NewString(),
			VehicleID: m.vehicleID,
			Name:      EventNamePrefix + name,
			Data: store.ChangeEventData{
				OldData: oldData,
				NewData: newData,
			},
			IsHandled:    false,
			CreationTime: now,
		}
		if err := m.store.InsertEvent(ctx, event); err != nil {
			logrus.Errorf("failed to emit signal change event for %s/%s: %v", m.vehicleID, name, err)
		}
	}

	m.runHook(def, &AccessContext{
		Direction:   direction,
		Value:       value,
		Override:    override,
		OldOverride: oldOverride,
	})

	// A stale snapshot must not outlive a successful write: when the rebuild
	// fails, drop the cache entry so the next read falls through to the store.
	if _, err := m.Refresh(ctx); err != nil {
		logrus.Warnf("failed to refresh signal snapshot for %s: %v", m.vehicleID, err)
		m.cache.Set(ctx, m.vehicleID, SnapshotCacheKey, nil)
	}

	metrics.SignalWritesTotal.WithLabelValues("ok").Inc()
	return true, nil
}

// GetAll returns every defined signal's current value, keyed by name. The
// cached snapshot is served when present; otherwise the snapshot is built
// from the store in registry order and cached.
func (m *Manager) GetAll(ctx context.Context) (map[string]any, error) {
	cached := m.cache.Get(ctx, m.vehicleID, SnapshotCacheKey, nil)
	if snapshot, ok := cached.(map[string]any); ok {
		metrics.SnapshotCacheHitsTotal.Inc()
		return snapshot, nil
	}
	metrics.SnapshotCacheMissesTotal.Inc()

	return m.Refresh(ctx)
}

// Refresh rebuilds the vehicle's signal snapshot from the store and
// overwrites the cached copy, so subsequent reads observe current values.
func (m *Manager) Refresh(ctx context.Context) (map[string]any, error) {
	snapshot := make(map[string]any, m.registry.Count())
	for _, name := range m.registry.Names() {
		value, ok, err := m.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		snapshot[name] = value
	}

	m.cache.Set(ctx, m.vehicleID, SnapshotCacheKey, snapshot)

	return snapshot, nil
}

func (m *Manager) runHook(def *Definition, accessCtx *AccessContext) {
	if def.Hook == nil {
		return
	}

	def.Hook(accessCtx)
}
