package interfaces

import (
	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Patches carry only the fields a PUT supplied. Nil means "leave unchanged".

type OrganizationPatch struct {
	Name        *string
	Country     *string
	State       *string
	City        *string
	Address     *string
	Zipcode     *string
	Description *string
}

type SitePatch struct {
	Name           *string
	Description    *string
	Location       *string
	OrganizationID *primitive.ObjectID
}

type MeasuringPointPatch struct {
	Name        *string
	Description *string
	Coordinates *asset_models.Coordinates
	SiteID      *primitive.ObjectID
}

type BoardPatch struct {
	Name             *string
	SerialNumber     *string
	FirmwareVersion  *string
	Description      *string
	Status           *asset_models.Status
	MeasuringPointID *primitive.ObjectID
}

type SensorPatch struct {
	Name        *string
	Type        *asset_models.SensorType
	Unit        *string
	MinValue    *float64
	MaxValue    *float64
	Description *string
	Status      *asset_models.Status
	BoardID     *primitive.ObjectID
}
