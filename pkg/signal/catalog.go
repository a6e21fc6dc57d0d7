package signal

import "math"

const (
	defaultPercentage = float64(100)
	defaultOnOff      = "off"
	defaultOpenClosed = "closed"
)

// unbounded disables a min or max bound of ValidateNumber.
func unbounded() float64 {
	return math.NaN()
}

// DefaultRegistry builds the catalog of all known vehicle signals.
// Declaration order is the iteration order of get-all results and must stay
// stable.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Definition{
			Name:      "battery_charging",
			Default:   "no",
			Writable:  true,
			Validator: ValidateEnum("yes", "no"),
		},
		Definition{
			Name:        "battery_charging_current",
			Default:     float64(16),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, unbounded()),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "battery_health",
			Default:     defaultPercentage,
			Writable:    true,
			Validator:   ValidatePercentage(),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "battery_loading_capacity",
			Default:     float64(11),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, unbounded()),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "battery_state_of_charge",
			Default:     defaultPercentage,
			Writable:    true,
			Validator:   ValidatePercentage(),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "battery_total_kwh_capacity",
			Default:     float64(17.5),
			Writable:    true,
			Validator:   ValidateNumber(false, 14, 24),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "brake_fluid_level",
			Default:     defaultPercentage,
			Writable:    true,
			Validator:   ValidatePercentage(),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "calculated_remaining_distance",
			Default:     float64(150),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, unbounded()),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:      "central_locking_system",
			Default:   defaultOpenClosed,
			Writable:  true,
			Validator: ValidateOpenClosed(),
		},
		Definition{
			Name:        "distance_to_object_back",
			Default:     math.NaN(),
			Writable:    true,
			Validator:   ValidateNumber(true, 0, unbounded()),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "distance_to_object_bottom",
			Default:     float64(20),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, 30),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "distance_to_object_front",
			Default:     math.NaN(),
			Writable:    true,
			Validator:   ValidateNumber(true, 0, unbounded()),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "distance_to_object_left",
			Default:     math.NaN(),
			Writable:    true,
			Validator:   ValidateNumber(true, 0, unbounded()),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "distance_to_object_right",
			Default:     math.NaN(),
			Writable:    true,
			Validator:   ValidateNumber(true, 0, unbounded()),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "distance_trip",
			Default:     float64(0),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, unbounded()),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:      "door_disc_front_left",
			Default:   defaultOpenClosed,
			Writable:  true,
			Validator: ValidateOpenClosed(),
		},
		Definition{
			Name:      "door_disc_front_right",
			Default:   defaultOpenClosed,
			Writable:  true,
			Validator: ValidateOpenClosed(),
		},
		Definition{
			Name:      "door_front_left",
			Default:   defaultOpenClosed,
			Writable:  true,
			Validator: ValidateOpenClosed(),
		},
		Definition{
			Name:      "door_front_right",
			Default:   defaultOpenClosed,
			Writable:  true,
			Validator: ValidateOpenClosed(),
		},
		Definition{
			Name:      "drive_mode",
			Default:   "eco",
			Writable:  true,
			Validator: ValidateEnum("comfort", "eco", "sport"),
		},
		Definition{
			Name:      "flash",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:      "heated_seats",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:      "high_beam",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:      "infotainment",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:        "infotainment_volume",
			Default:     int64(5),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, 10),
			Transformer: TransformToInt(),
		},
		Definition{
			Name:      "location",
			Default:   "50.782117,6.047171",
			Writable:  true,
			Validator: ValidateGeoCoordinates(),
		},
		Definition{
			Name:        "mileage",
			Default:     int64(0),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, unbounded()),
			Transformer: TransformToInt(),
		},
		Definition{
			Name:      "motor_control_lamp",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:        "person_count",
			Default:     int64(0),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, 4),
			Transformer: TransformToInt(),
		},
		Definition{
			Name:        "pulse_sensor_steering_wheel",
			Default:     math.NaN(),
			Writable:    true,
			Validator:   ValidateNumber(true, 0, 300),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "power_consumption",
			Default:     float64(0),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, 40),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:      "rain_sensor",
			Default:   "no_rain",
			Writable:  true,
			Validator: ValidateEnum("no_rain", "rain"),
		},
		Definition{
			Name:      "rear_running_lights",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:      "side_lights",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:        "speed",
			Default:     int64(0),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, 200),
			Transformer: TransformToInt(),
		},
		Definition{
			Name:      "stop_lights",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:        "temperature_inside",
			Default:     int64(20),
			Writable:    true,
			Validator:   ValidateNumber(false, -100, 100),
			Transformer: TransformToInt(),
		},
		Definition{
			Name:        "temperature_outside",
			Default:     int64(10),
			Writable:    true,
			Validator:   ValidateNumber(false, -100, 100),
			Transformer: TransformToInt(),
		},
		Definition{
			Name:        "tire_pressure_back_left",
			Default:     float64(3),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, 5),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "tire_pressure_back_right",
			Default:     float64(3),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, 5),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "tire_pressure_front_left",
			Default:     float64(3),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, 5),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:        "tire_pressure_front_right",
			Default:     float64(3),
			Writable:    true,
			Validator:   ValidateNumber(false, 0, 5),
			Transformer: TransformToFloat(),
		},
		Definition{
			Name:      "trunk",
			Default:   defaultOpenClosed,
			Writable:  true,
			Validator: ValidateOpenClosed(),
		},
		Definition{
			Name:      "turn_signal_left",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:      "turn_signal_right",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:      "warning_blinker",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			Name:        "weight",
			Default:     int64(1200),
			Writable:    true,
			Validator:   ValidateNumber(false, 1200, 3500),
			Transformer: TransformToInt(),
		},
		Definition{
			Name:      "windshield_wipers",
			Default:   defaultOnOff,
			Writable:  true,
			Validator: ValidateOnOff(),
		},
		Definition{
			// percentage-validated but stored as given
			Name:      "wiping_water_level",
			Default:   defaultPercentage,
			Writable:  true,
			Validator: ValidatePercentage(),
		},
	)
}
