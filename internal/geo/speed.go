package geo

// SpeedUnit is the racer's preferred display unit
type SpeedUnit string

const (
	UnitKMH SpeedUnit = "kmh"
	UnitMPH SpeedUnit = "mph"
)

// Fixed conversion factors
const (
	mpsToKMH = 3.6
	kmhToMPH = 0.621371
)

// ConvertSpeed converts a platform speed sample in meters/second to the
// given display unit. Negative or garbage samples clamp to zero.
func ConvertSpeed(metersPerSecond float64, unit SpeedUnit) float64 {
	if metersPerSecond < 0 {
		metersPerSecond = 0
	}
	kmh := metersPerSecond * mpsToKMH
	if unit == UnitMPH {
		return kmh * kmhToMPH
	}
	return kmh
}
