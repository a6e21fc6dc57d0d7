package signal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ValidateEnum accepts exactly the listed values.
func ValidateEnum(values ...string) Validator {
	return func(value any, name string) string {
		candidate := valueString(value)
		for _, v := range values {
			if candidate == v {
				return ""
			}
		}

		return fmt.Sprintf("You can only use the following value(s) for '%s': %s",
			name, strings.Join(values, ", "))
	}
}

// ValidateNumber accepts numeric values, optionally bounded. Passing NaN for
// min or max disables that bound. With allowNaN, unparseable input is legal
// (the "no object detected" sentinel of the distance sensors); bounds are
// still applied to parseable input.
func ValidateNumber(allowNaN bool, min, max float64) Validator {
	return func(value any, name string) string {
		num := parseFloat(value)

		if math.IsNaN(num) {
			if allowNaN {
				return ""
			}
			return fmt.Sprintf("'%s' is not a number", name)
		}
		// infinities parse but have no storable JSON form
		if math.IsInf(num, 0) {
			return fmt.Sprintf("'%s' is not a number", name)
		}

		if !math.IsNaN(min) && min > num {
			return fmt.Sprintf("The minimum value of '%s' must be %s", name, formatBound(min))
		}
		if !math.IsNaN(max) && max < num {
			return fmt.Sprintf("The maximum value of '%s' must be %s", name, formatBound(max))
		}

		return ""
	}
}

// ValidateOnOff accepts "on" and "off".
func ValidateOnOff() Validator {
	return ValidateEnum("on", "off")
}

// ValidateOpenClosed accepts "open" and "closed".
func ValidateOpenClosed() Validator {
	return ValidateEnum("open", "closed")
}

// ValidatePercentage accepts numbers in [0, 100].
func ValidatePercentage() Validator {
	return ValidateNumber(false, 0, 100)
}

// ValidateGeoCoordinates accepts "LATITUDE,LONGITUDE" strings with latitude
// in [-90, 90] and longitude in [-180, 180], failing with a stage-specific
// message.
func ValidateGeoCoordinates() Validator {
	return func(value any, name string) string {
		candidate := strings.TrimSpace(valueString(value))

		if !strings.Contains(candidate, ",") {
			return "Value must be in following format: LATITUDE,LONGITUDE"
		}

		parts := strings.Split(candidate, ",")
		if len(parts) != 2 {
			return "Value must be in following format: LATITUDE,LONGITUDE"
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil || math.IsNaN(lat) {
			return "Latitude value must be a valid float value in english number format"
		}
		if lat < -90 || lat > 90 {
			return "Latitude value must be between -90 and 90"
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || math.IsNaN(lng) {
			return "Longitude value must be a valid float value in english number format"
		}
		if lng < -180 || lng > 180 {
			return "Longitude value must be between -180 and 180"
		}

		return ""
	}
}
