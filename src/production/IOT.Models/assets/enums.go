package asset_models

// Status is the operational state shared by boards and sensors
type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

// Statuses returns every valid status in display order
func Statuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusMaintenance}
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

// SensorType is the measured quantity
type SensorType string

const (
	SensorTypeTemperature SensorType = "TEMPERATURE"
	SensorTypeHumidity    SensorType = "HUMIDITY"
	SensorTypePH          SensorType = "PH"
)

// SensorTypes returns every valid sensor type in display order
func SensorTypes() []SensorType {
	return []SensorType{SensorTypeTemperature, SensorTypeHumidity, SensorTypePH}
}

// Valid reports whether t is a known sensor type
func (t SensorType) Valid() bool {
	switch t {
	case SensorTypeTemperature, SensorTypeHumidity, SensorTypePH:
		return true
	}
	return false
}

// DefaultUnit is the unit used when a sensor is created without one
func (t SensorType) DefaultUnit() string {
	switch t {
	case SensorTypeTemperature:
		return "°C"
	case SensorTypeHumidity:
		return "%"
	case SensorTypePH:
		return "pH"
	}
	return ""
}

// DefaultRange is the nominal measuring range for the type
func (t SensorType) DefaultRange() (min, max float64) {
	switch t {
	case SensorTypeTemperature:
		return -10, 50
	case SensorTypeHumidity:
		return 0, 100
	case SensorTypePH:
		return 0, 14
	}
	return 0, 0
}
