package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// Key layout. All signal state is partitioned by vehicle ID.
	vehiclesKey        = "vehicle_signals:vehicles"
	overridesKeyPrefix = "vehicle_signals:overrides:"
	logKeyPrefix       = "vehicle_signals:log:"
	eventListKeyPrefix = "vehicle_signals:events:"
	eventDocsKeyPrefix = "vehicle_signals:eventdocs:"
)

// RedisOptions configures the Redis connection bootstrap.
type RedisOptions struct {
	Addr       string
	Password   string
	MaxRetries int
}

// InitRedisClient initializes a Redis client, retrying the initial ping with
// exponential backoff.
func InitRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           0,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetries)),
		ctx,
	)
	err := backoff.Retry(
		func() error {
			if err := client.Ping(ctx).Err(); err != nil {
				logrus.Warnf("Redis connection to %s failed: %v, retrying...", opts.Addr, err)
				return err
			}
			return nil
		},
		b,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	logrus.Infof("connected to Redis at %s", opts.Addr)
	return client, nil
}

// RedisStore persists vehicles, signal overrides, the signal change log and
// the change event queue in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func overridesKey(vehicleID string) string {
	return overridesKeyPrefix + normalizeID(vehicleID)
}

func logKey(vehicleID string) string {
	return logKeyPrefix + normalizeID(vehicleID)
}

func eventListKey(vehicleID string) string {
	return eventListKeyPrefix + normalizeID(vehicleID)
}

func eventDocsKey(vehicleID string) string {
	return eventDocsKeyPrefix + normalizeID(vehicleID)
}

// FindOverride returns the override for (vehicle, name), or nil if none has
// ever been written.
func (s *RedisStore) FindOverride(ctx context.Context, vehicleID, name string) (*SignalOverride, error) {
	data, err := s.client.HGet(ctx, overridesKey(vehicleID), name).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signal override %s/%s: %w", vehicleID, name, err)
	}

	var o SignalOverride
	if err := unmarshalDoc([]byte(data), &o); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signal override %s/%s: %w", vehicleID, name, err)
	}
	o.Data = decodeSignalValue(o.Data)

	return &o, nil
}

// InsertOverride stores a new override document.
func (s *RedisStore) InsertOverride(ctx context.Context, o *SignalOverride) error {
	doc := *o
	doc.Data = encodeValue(o.Data)

	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal signal override %s/%s: %w", o.VehicleID, o.Name, err)
	}

	if err := s.client.HSet(ctx, overridesKey(o.VehicleID), o.Name, data).Err(); err != nil {
		return fmt.Errorf("failed to insert signal override %s/%s: %w", o.VehicleID, o.Name, err)
	}

	return nil
}

// UpdateOverride replaces the data and last-update time of an existing
// override in place and returns the updated document.
func (s *RedisStore) UpdateOverride(ctx context.Context, vehicleID, name string, data any, updatedAt time.Time) (*SignalOverride, error) {
	o, err := s.FindOverride(ctx, vehicleID, name)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("no signal override %s/%s to update", vehicleID, name)
	}

	o.Data = data
	o.LastUpdate = &updatedAt
	if err := s.InsertOverride(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

// DeleteOverrides removes every override of a vehicle. Used by the signal
// reset operation; the change log and event queue are kept.
func (s *RedisStore) DeleteOverrides(ctx context.Context, vehicleID string) error {
	if err := s.client.Del(ctx, overridesKey(vehicleID)).Err(); err != nil {
		return fmt.Errorf("failed to delete signal overrides for %s: %w", vehicleID, err)
	}

	return nil
}

// InsertLog appends an entry to the signal change log.
func (s *RedisStore) InsertLog(ctx context.Context, entry *SignalChangeLogEntry) error {
	doc := *entry
	doc.OldData = encodeValue(entry.OldData)
	doc.NewData = encodeValue(entry.NewData)

	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal signal change log entry %s/%s: %w", entry.VehicleID, entry.Name, err)
	}

	if err := s.client.RPush(ctx, logKey(entry.VehicleID), data).Err(); err != nil {
		return fmt.Errorf("failed to append signal change log entry %s/%s: %w", entry.VehicleID, entry.Name, err)
	}

	return nil
}

// SignalLogs returns up to limit change log entries for a vehicle, oldest
// first. A limit <= 0 returns the whole log.
func (s *RedisStore) SignalLogs(ctx context.Context, vehicleID string, limit int64) ([]*SignalChangeLogEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = limit - 1
	}

	rows, err := s.client.LRange(ctx, logKey(vehicleID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read signal change log for %s: %w", vehicleID, err)
	}

	entries := make([]*SignalChangeLogEntry, 0, len(rows))
	for _, row := range rows {
		var entry SignalChangeLogEntry
		if err := unmarshalDoc([]byte(row), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal signal change log entry for %s: %w", vehicleID, err)
		}
		entry.OldData = decodeValue(entry.OldData)
		entry.NewData = decodeValue(entry.NewData)
		entries = append(entries, &entry)
	}

	return entries, nil
}

// InsertEvent appends a change event to the vehicle's event queue. The event
// document and its queue position are written in one transaction.
func (s *RedisStore) InsertEvent(ctx context.Context, ev *SignalChangeEvent) error {
	doc := *ev
	doc.Data.OldData = encodeValue(ev.Data.OldData)
	doc.Data.NewData = encodeValue(ev.Data.NewData)

	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal change event %s/%s: %w", ev.VehicleID, ev.Name, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, eventDocsKey(ev.VehicleID), ev.ID, data)
		pipe.RPush(ctx, eventListKey(ev.VehicleID), ev.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append change event %s/%s: %w", ev.VehicleID, ev.Name, err)
	}

	return nil
}

// UnhandledEvents returns up to limit unhandled events for a vehicle, oldest
// first, optionally filtered by event name.
func (s *RedisStore) UnhandledEvents(ctx context.Context, vehicleID string, filter *regexp.Regexp, limit int) ([]*SignalChangeEvent, error) {
	ids, err := s.client.LRange(ctx, eventListKey(vehicleID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event queue for %s: %w", vehicleID, err)
	}

	var events []*SignalChangeEvent
	for _, id := range ids {
		if limit > 0 && len(events) >= limit {
			break
		}

		data, err := s.client.HGet(ctx, eventDocsKey(vehicleID), id).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read change event %s/%s: %w", vehicleID, id, err)
		}

		var ev SignalChangeEvent
		if err := unmarshalDoc([]byte(data), &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal change event %s/%s: %w", vehicleID, id, err)
		}
		if ev.IsHandled {
			continue
		}
		if filter != nil && !filter.MatchString(ev.Name) {
			continue
		}

		ev.Data.OldData = decodeValue(ev.Data.OldData)
		ev.Data.NewData = decodeValue(ev.Data.NewData)
		events = append(events, &ev)
	}

	return events, nil
}

// MarkEventsHandled flags the given events as handled and stamps their
// last-update time. Already-handled events are left untouched.
func (s *RedisStore) MarkEventsHandled(ctx context.Context, vehicleID string, events []*SignalChangeEvent, handledAt time.Time) error {
	for _, ev := range events {
		if ev.IsHandled {
			continue
		}

		ev.IsHandled = true
		t := handledAt
		ev.LastUpdate = &t

		doc := *ev
		doc.Data.OldData = encodeValue(ev.Data.OldData)
		doc.Data.NewData = encodeValue(ev.Data.NewData)

		data, err := json.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("failed to marshal change event %s/%s: %w", vehicleID, ev.ID, err)
		}
		if err := s.client.HSet(ctx, eventDocsKey(vehicleID), ev.ID, data).Err(); err != nil {
			return fmt.Errorf("failed to mark change event %s/%s handled: %w", vehicleID, ev.ID, err)
		}
	}

	return nil
}

// DeleteEvents removes the complete event queue of a vehicle.
func (s *RedisStore) DeleteEvents(ctx context.Context, vehicleID string) error {
	if err := s.client.Del(ctx, eventListKey(vehicleID), eventDocsKey(vehicleID)).Err(); err != nil {
		return fmt.Errorf("failed to delete event queue for %s: %w", vehicleID, err)
	}

	return nil
}

// CreateVehicle registers a vehicle document.
func (s *RedisStore) CreateVehicle(ctx context.Context, v *Vehicle) error {
	v.ID = normalizeID(v.ID)

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle %s: %w", v.ID, err)
	}

	if err := s.client.HSet(ctx, vehiclesKey, v.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to create vehicle %s: %w", v.ID, err)
	}

	logrus.Infof("created vehicle %s (%s %s)", v.ID, v.Manufacturer, v.ModelName)
	return nil
}

// GetVehicle returns a vehicle document, or nil if it does not exist.
func (s *RedisStore) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	data, err := s.client.HGet(ctx, vehiclesKey, normalizeID(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle %s: %w", id, err)
	}

	var v Vehicle
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vehicle %s: %w", id, err)
	}

	return &v, nil
}

// ListVehicles returns all vehicle documents ordered by creation time.
func (s *RedisStore) ListVehicles(ctx context.Context) ([]*Vehicle, error) {
	rows, err := s.client.HGetAll(ctx, vehiclesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*Vehicle, 0, len(rows))
	for id, row := range rows {
		var v Vehicle
		if err := json.Unmarshal([]byte(row), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vehicle %s: %w", id, err)
		}
		vehicles = append(vehicles, &v)
	}

	sort.Slice(vehicles, func(i, j int) bool {
		if !vehicles[i].CreationTime.Equal(vehicles[j].CreationTime) {
			return vehicles[i].CreationTime.Before(vehicles[j].CreationTime)
		}
		return vehicles[i].ID < vehicles[j].ID
	})

	return vehicles, nil
}

// DeleteVehicle removes a vehicle document together with all of its signal
// state (overrides, change log, event queue).
func (s *RedisStore) DeleteVehicle(ctx context.Context, id string) error {
	id = normalizeID(id)

	if err := s.client.HDel(ctx, vehiclesKey, id).Err(); err != nil {
		return fmt.Errorf("failed to delete vehicle %s: %w", id, err)
	}
	if err := s.client.Del(ctx, overridesKey(id), logKey(id), eventListKey(id), eventDocsKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete signal state for vehicle %s: %w", id, err)
	}

	logrus.Infof("deleted vehicle %s", id)
	return nil
}
