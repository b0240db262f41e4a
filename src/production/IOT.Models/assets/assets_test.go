package asset_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestSensorRangeValid(t *testing.T) {
	tests := []struct {
		name string
		min  *float64
		max  *float64
		want bool
	}{
		{"both unset", nil, nil, true},
		{"only min", ptr(1), nil, true},
		{"only max", nil, ptr(1), true},
		{"max greater", ptr(-10), ptr(50), true},
		{"equal", ptr(5), ptr(5), false},
		{"max lower", ptr(14), ptr(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Sensor{MinValue: tt.min, MaxValue: tt.max}
			assert.Equal(t, tt.want, s.RangeValid())
		})
	}
}

func TestEnums(t *testing.T) {
	assert.True(t, StatusMaintenance.Valid())
	assert.False(t, Status("broken").Valid())
	assert.True(t, SensorTypePH.Valid())
	assert.False(t, SensorType("temperature").Valid())
	assert.Equal(t, []SensorType{"TEMPERATURE", "HUMIDITY", "PH"}, SensorTypes())

	min, max := SensorTypeHumidity.DefaultRange()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 100.0, max)
	assert.Equal(t, "°C", SensorTypeTemperature.DefaultUnit())
}
