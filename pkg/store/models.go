package store

import (
	"time"
)

// Vehicle is a registered simulated vehicle. The vehicle ID partitions all
// signal state in the store.
type Vehicle struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Manufacturer string    `json:"manufacturer"`
	ModelName    string    `json:"model_name"`
	LicensePlate string    `json:"license_plate"`
	Country      string    `json:"country,omitempty"`
	CreationTime time.Time `json:"creation_time"`
}

// SignalOverride is the persisted current value of one signal for one
// vehicle. There is at most one live override per (vehicle, name) pair;
// later writes update Data and LastUpdate in place.
type SignalOverride struct {
	ID           string     `json:"id"`
	VehicleID    string     `json:"vehicle_id"`
	Name         string     `json:"name"`
	Data         any        `json:"data"`
	CreationTime time.Time  `json:"creation_time"`
	LastUpdate   *time.Time `json:"last_update,omitempty"`
}

// SignalChangeLogEntry is an immutable audit record of one accepted write,
// including writes that did not change the stored value.
type SignalChangeLogEntry struct {
	ID           string    `json:"id"`
	VehicleID    string    `json:"vehicle_id"`
	SignalID     string    `json:"signal_id"`
	Name         string    `json:"name"`
	OldData      any       `json:"old_data"`
	NewData      any       `json:"new_data"`
	CreationTime time.Time `json:"creation_time"`
}

// ChangeEventData carries the before/after values of a change event.
type ChangeEventData struct {
	OldData any `json:"old_data"`
	NewData any `json:"new_data"`
}

// SignalChangeEvent is a consumable notification emitted when a write
// actually changed a signal's value. Consumers fetch unhandled events and
// flag them handled; events are never overwritten.
type SignalChangeEvent struct {
	ID           string          `json:"id"`
	VehicleID    string          `json:"vehicle_id"`
	Name         string          `json:"name"`
	Data         ChangeEventData `json:"data"`
	IsHandled    bool            `json:"is_handled"`
	CreationTime time.Time       `json:"creation_time"`
	LastUpdate   *time.Time      `json:"last_update,omitempty"`
}
