// Package solar implements the clear-sky radiation oracle: instantaneous
// global horizontal irradiance from the Ineichen-Perez model, its cumulative
// integral through the day, and the sunrise/sunset window for a site.
package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	solarConstant = 1361.0 // W/m², average solar energy at the top of the atmosphere
)

// Site describes the fixed geometry and atmosphere of one observation domain.
type Site struct {
	Latitude  float64 // degrees, north positive
	Longitude float64 // degrees, east positive
	Elevation float64 // metres above sea level
	Turbidity float64 // Linke turbidity factor, typically 2-6
	TZOffset  int     // local timezone offset from UTC in minutes
}

// degToRad converts an angle from degrees to radians
func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// radToDeg converts an angle from radians to degrees
func radToDeg(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

// fixAngle normalizes an angle to the range [0, 360) degrees
func fixAngle(angle float64) float64 {
	return math.Mod(angle+360, 360)
}

// equationOfTime calculates the Equation of Time (EoT) in minutes, the
// difference between apparent and mean solar time
func equationOfTime(t time.Time) float64 {
	jd := julian.TimeToJD(t)
	T := (jd - 2451545.0) / 36525.0 // Julian centuries since J2000.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))            // Mean longitude of the Sun (degrees)
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))             // Mean anomaly of the Sun (degrees)
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)                  // Eccentricity of Earth's orbit
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60 // Mean obliquity of the ecliptic (degrees)

	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4 // Convert to minutes (4 min/radian)

	return eqTimeMin
}

// GHI computes clear-sky Global Horizontal Irradiance in W/m² at the given
// UTC time using the Ineichen-Perez model.
func (s Site) GHI(t time.Time) float64 {
	N := t.YearDay()

	// Solar declination, sinusoidal approximation peaking at the solstices
	delta := 23.45 * math.Sin(degToRad(360.0/365.0*float64(N-81)))

	// Hour angle incorporating the Equation of Time for true solar time
	utcMin := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0
	timeOffset := 4*s.Longitude + equationOfTime(t)
	tst := utcMin + timeOffset
	H := (tst / 4) - 180 // noon = 0°

	latRad := degToRad(s.Latitude)
	deltaRad := degToRad(delta)
	cosThetaZ := math.Sin(latRad)*math.Sin(deltaRad) + math.Cos(latRad)*math.Cos(deltaRad)*math.Cos(degToRad(H))
	thetaZ := radToDeg(math.Acos(cosThetaZ))

	// Extraterrestrial radiation adjusted for Earth-Sun distance variation
	G0 := solarConstant * (1 + 0.033*math.Cos(degToRad(360.0*(float64(N)-3)/365.0)))

	if thetaZ >= 90.0 {
		return 0.0 // sun below horizon
	}

	TL := s.Turbidity
	if TL <= 0 {
		TL = 2.0
	}
	// Air mass via the Kasten-Young formula
	AM := 1.0 / (math.Cos(degToRad(thetaZ)) + 0.50572*math.Pow(96.07995-thetaZ, -1.6364))
	c := 0.7   // Normalization constant for DNI
	a := 0.027 // Atmospheric extinction coefficient
	DNI := G0 * c * math.Exp(-a*AM*TL*math.Exp(-s.Elevation/8000.0))
	fh := 0.1 + 0.05*math.Sin(math.Pi*float64(N-100)/365.0)
	DHI := fh * G0 * math.Sin(degToRad(thetaZ))
	return DNI*math.Cos(degToRad(thetaZ)) + DHI
}

// CumulativeIrradiance integrates clear-sky GHI from local midnight up to the
// given local minute-of-day on the given date, returning Wh/m². The result is
// non-decreasing in minuteOfDay for a fixed date, since GHI is never negative.
func (s Site) CumulativeIrradiance(year int, month time.Month, day, minuteOfDay int) float64 {
	loc := time.FixedZone("local", s.TZOffset*60)
	midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)

	// Trapezoidal integration at one-minute steps
	total := 0.0
	prev := s.GHI(midnight.UTC())
	for m := 1; m <= minuteOfDay; m++ {
		cur := s.GHI(midnight.Add(time.Duration(m) * time.Minute).UTC())
		total += (prev + cur) / 2.0 / 60.0 // W/m² over one minute -> Wh/m²
		prev = cur
	}
	return total
}
