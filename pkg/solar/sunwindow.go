package solar

import (
	"fmt"
	"math"
	"time"
)

// SunWindow returns sunrise and sunset as local minutes from midnight for the
// given calendar date at the site. Polar day and polar night are reported as
// errors: the integration pipeline cannot establish a day window there.
func (s Site) SunWindow(year int, month time.Month, day int) (sunriseMin, sunsetMin int, err error) {
	loc := time.FixedZone("local", s.TZOffset*60)
	dayOfYear := time.Date(year, month, day, 12, 0, 0, 0, loc).YearDay()

	// Solar declination: angle between the Sun and the celestial equator
	doy := float64(dayOfYear)
	innerAngle := (356.6 + 0.9856*doy) * (math.Pi / 180.0)
	outerAngle := (278.97 + 0.9856*doy + 1.9165*math.Sin(innerAngle)) * (math.Pi / 180.0)
	declinationRad := math.Asin(0.39785 * math.Sin(outerAngle))

	latRad := s.Latitude * (math.Pi / 180.0)

	// Hour angle at sunrise/sunset: cos(H) = -tan(lat) * tan(declination)
	cosH := -math.Tan(latRad) * math.Tan(declinationRad)
	if cosH < -1.0 || cosH > 1.0 {
		return 0, 0, fmt.Errorf("solar: no sunrise/sunset at latitude %.2f on %04d-%02d-%02d",
			s.Latitude, year, month, day)
	}

	hourAngleRad := math.Acos(cosH)
	hourAngleMinutes := hourAngleRad * (180.0 / math.Pi) / 15.0 * 60.0 // 15 degrees per hour

	// Solar noon in UTC minutes, adjusted for longitude and equation of time
	refTime := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	eotMinutes := equationOfTime(refTime)
	solarNoonUTC := 720.0 - s.Longitude*4.0 - eotMinutes

	sunriseUTC := solarNoonUTC - hourAngleMinutes
	sunsetUTC := solarNoonUTC + hourAngleMinutes

	// Shift into local minutes and normalize to [0, 1440)
	sunriseLocal := math.Mod(sunriseUTC+float64(s.TZOffset)+1440, 1440)
	sunsetLocal := math.Mod(sunsetUTC+float64(s.TZOffset)+1440, 1440)

	return int(math.Round(sunriseLocal)), int(math.Round(sunsetLocal)), nil
}
