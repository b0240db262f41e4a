package asset_models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is the root of the asset hierarchy
type Organization struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Country     string             `json:"country,omitempty" bson:"country,omitempty"`
	State       string             `json:"state,omitempty" bson:"state,omitempty"`
	City        string             `json:"city,omitempty" bson:"city,omitempty"`
	Address     string             `json:"address,omitempty" bson:"address,omitempty"`
	Zipcode     string             `json:"zipcode,omitempty" bson:"zipcode,omitempty"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Site is a physical location owned by an organization
type Site struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name"`
	Description    string             `json:"description,omitempty" bson:"description,omitempty"`
	Location       string             `json:"location,omitempty" bson:"location,omitempty"`
	OrganizationID primitive.ObjectID `json:"organizationId" bson:"organizationId"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Coordinates is a WGS84 position
type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// MeasuringPoint is a spot inside a site where boards are installed
type MeasuringPoint struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Coordinates *Coordinates       `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	SiteID      primitive.ObjectID `json:"siteId" bson:"siteId"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Board is an acquisition board installed at a measuring point
type Board struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name"`
	SerialNumber     string             `json:"serialNumber,omitempty" bson:"serialNumber,omitempty"`
	FirmwareVersion  string             `json:"firmwareVersion,omitempty" bson:"firmwareVersion,omitempty"`
	Description      string             `json:"description,omitempty" bson:"description,omitempty"`
	Status           Status             `json:"status" bson:"status"`
	MeasuringPointID primitive.ObjectID `json:"measuringPointId" bson:"measuringPointId"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Sensor is a measuring element attached to a board
type Sensor struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Type        SensorType         `json:"type" bson:"type"`
	Unit        string             `json:"unit,omitempty" bson:"unit,omitempty"`
	MinValue    *float64           `json:"minValue,omitempty" bson:"minValue,omitempty"`
	MaxValue    *float64           `json:"maxValue,omitempty" bson:"maxValue,omitempty"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Status      Status             `json:"status" bson:"status"`
	BoardID     primitive.ObjectID `json:"boardId" bson:"boardId"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RangeValid reports whether maxValue > minValue when both are set
func (s *Sensor) RangeValid() bool {
	if s.MinValue == nil || s.MaxValue == nil {
		return true
	}
	return *s.MaxValue > *s.MinValue
}

// OrganizationDetail is an organization with its sites
type OrganizationDetail struct {
	Organization
	Sites []Site `json:"sites"`
}

// SiteDetail is a site with its organization and measuring points
type SiteDetail struct {
	Site
	Organization    *Organization    `json:"organization"`
	MeasuringPoints []MeasuringPoint `json:"measuringPoints"`
}

// MeasuringPointDetail is a measuring point with its site and boards
type MeasuringPointDetail struct {
	MeasuringPoint
	Site   *Site   `json:"site"`
	Boards []Board `json:"boards"`
}

// BoardDetail is a board with its measuring point and sensors
type BoardDetail struct {
	Board
	MeasuringPoint *MeasuringPoint `json:"measuringPoint"`
	Sensors        []Sensor        `json:"sensors"`
}

// SensorDetail is a sensor with its board
type SensorDetail struct {
	Sensor
	Board *Board `json:"board"`
}
