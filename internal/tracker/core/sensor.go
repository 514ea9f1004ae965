package core

// EnvSensor reads air temperature and humidity. Failed readings are NaN.
type EnvSensor interface {
	ReadTemperature() float64 // degrees Celsius
	ReadHumidity() float64    // percent relative humidity
	ComputeHeatIndex(temperature, humidity float64) float64
}

// Readings is the latest environmental sample.
type Readings struct {
	Temperature float64
	Humidity    float64
	HeatIndex   float64
}
