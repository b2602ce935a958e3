package weight

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

type Unit string

const (
	KG  Unit = "kg"
	LBS Unit = "lbs"

	DefaultUnit = KG

	// LbsPerKg is the conversion factor between the two units.
	LbsPerKg = 2.20462
)

func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case KG:
		return KG, nil
	case LBS, "lb":
		return LBS, nil
	default:
		return "", fmt.Errorf("unknown weight unit [%s], use kg or lbs", s)
	}
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber leniently parses the leading number of text ("12.5kg" -> 12.5).
// Anything unparsable, as well as NaN and Inf, becomes 0.
func ParseNumber(text string) float64 {
	match := leadingNumber.FindString(strings.TrimSpace(text))
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

// Convert converts w between units. kg -> lbs is rounded to 2 decimals,
// lbs -> kg keeps full precision so pound input survives the round trip.
func Convert(w float64, from, to Unit) float64 {
	w = sanitize(w)
	if from == to {
		return w
	}

	switch {
	case from == KG && to == LBS:
		return round(w*LbsPerKg, 2)
	case from == LBS && to == KG:
		return w / LbsPerKg
	default:
		return w
	}
}

// ToStorage returns the canonical kg value of a weight entered in unit.
// Kilogram input is returned untouched.
func ToStorage(input float64, unit Unit) float64 {
	input = sanitize(input)
	if unit == KG {
		return input
	}
	return Convert(input, unit, KG)
}

// ParseData reads raw user input entered in unit.
func ParseData(input string, unit Unit) Data {
	return NewData(ParseNumber(input), unit)
}

// ToDisplay converts a stored kg value into unit for display. Pound values within 0.1
// of a whole number snap to it, everything else is rounded to 1 decimal.
func ToDisplay(storageKg float64, unit Unit) float64 {
	converted := Convert(storageKg, KG, unit)
	if unit == LBS {
		whole := round(converted, 0)
		if math.Abs(converted-whole) < 0.1 {
			return whole
		}
	}
	return round(converted, 1)
}

// Format renders "<value> <unit>", or "" for a zero (unset / bodyweight) value.
func Format(w float64, unit Unit) string {
	w = sanitize(w)
	if w == 0 {
		return ""
	}
	return fmt.Sprintf("%s %s", strconv.FormatFloat(w, 'f', -1, 64), unit)
}

// FormatStored formats a stored kg value in the display unit.
func FormatStored(storageKg float64, unit Unit) string {
	return Format(ToDisplay(storageKg, unit), unit)
}

// Data keeps the value as the user entered it next to its canonical kg value.
type Data struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
	Kg    float64 `json:"kg"`
}

func NewData(input float64, unit Unit) Data {
	input = sanitize(input)
	return Data{
		Value: input,
		Unit:  unit,
		Kg:    ToStorage(input, unit),
	}
}

// half-up rounding to the given number of decimal places
func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Floor(float64(x*pow)+0.5) / pow
}

func sanitize(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	return w
}
