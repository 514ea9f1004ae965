package sensor

import "math"

// HeatIndex returns the apparent temperature in Celsius for tempC and
// relative humidity, using Steadman's simple formula and switching to the
// NOAA Rothfusz regression (with its low and high humidity adjustments) once
// the simple estimate exceeds 79°F. NaN inputs give NaN.
func HeatIndex(tempC, humidity float64) float64 {
	t := tempC*1.8 + 32
	h := humidity

	hi := 0.5 * (t + 61.0 + (t-68.0)*1.2 + h*0.094)

	if hi > 79 {
		hi = -42.379 +
			2.04901523*t +
			10.14333127*h +
			-0.22475541*t*h +
			-0.00683783*t*t +
			-0.05481717*h*h +
			0.00122874*t*t*h +
			0.00085282*t*h*h +
			-0.00000199*t*t*h*h

		switch {
		case h < 13 && t >= 80 && t <= 112:
			hi -= (13 - h) * 0.25 * math.Sqrt((17-math.Abs(t-95))*0.05882)
		case h > 85 && t >= 80 && t <= 87:
			hi += (h - 85) * 0.1 * ((87 - t) * 0.2)
		}
	}

	return (hi - 32) * 0.55555
}
