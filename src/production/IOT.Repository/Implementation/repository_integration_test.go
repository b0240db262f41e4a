//go:build integration

package implementation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	config "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Config"
	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	_ interfaces.OrganizationRepository   = (*MongoOrganizationRepository)(nil)
	_ interfaces.SiteRepository           = (*MongoSiteRepository)(nil)
	_ interfaces.MeasuringPointRepository = (*MongoMeasuringPointRepository)(nil)
	_ interfaces.BoardRepository          = (*MongoBoardRepository)(nil)
	_ interfaces.SensorRepository         = (*MongoSensorRepository)(nil)
	_ interfaces.UserRepository           = (*MongoUserRepository)(nil)
	_ interfaces.DataResetter             = (*MongoDataResetter)(nil)
)

type MongoRepositorySuite struct {
	suite.Suite

	container *mongodb.MongoDBContainer
	client    *mongo.Client
	db        *mongo.Database

	orgs    *MongoOrganizationRepository
	sites   *MongoSiteRepository
	points  *MongoMeasuringPointRepository
	boards  *MongoBoardRepository
	sensors *MongoSensorRepository
	users   *MongoUserRepository
}

func TestMongoRepositorySuite(t *testing.T) {
	suite.Run(t, new(MongoRepositorySuite))
}

func (s *MongoRepositorySuite) SetupSuite() {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	s.Require().NoError(err)
	s.container = container

	uri, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	s.client, err = ConnectMongoWithTimeout(config.DatabaseConfig{
		Driver:         config.DriverMongo,
		URI:            uri,
		Name:           "iot_test",
		ConnectTimeout: 30 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
	})
	s.Require().NoError(err)

	s.db = s.client.Database("iot_test")
	s.Require().NoError(EnsureIndexes(ctx, s.db))

	s.orgs = NewMongoOrganizationRepository(s.db)
	s.sites = NewMongoSiteRepository(s.db)
	s.points = NewMongoMeasuringPointRepository(s.db)
	s.boards = NewMongoBoardRepository(s.db)
	s.sensors = NewMongoSensorRepository(s.db)
	s.users = NewMongoUserRepository(s.db)
}

func (s *MongoRepositorySuite) TearDownSuite() {
	ctx := context.Background()
	if s.client != nil {
		_ = s.client.Disconnect(ctx)
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *MongoRepositorySuite) SetupTest() {
	s.Require().NoError(NewMongoDataResetter(s.db).DeleteAll(context.Background()))
}

func (s *MongoRepositorySuite) seedTree(serial string) (asset_models.Organization, asset_models.Site, asset_models.MeasuringPoint, asset_models.Board, asset_models.Sensor) {
	ctx := context.Background()

	org := asset_models.Organization{Name: "Acme", Country: "CA"}
	s.Require().NoError(s.orgs.Create(ctx, &org))
	site := asset_models.Site{Name: "Plant", OrganizationID: org.ID}
	s.Require().NoError(s.sites.Create(ctx, &site))
	point := asset_models.MeasuringPoint{Name: "Tank", SiteID: site.ID, Coordinates: &asset_models.Coordinates{Latitude: 45.5, Longitude: -73.6}}
	s.Require().NoError(s.points.Create(ctx, &point))
	board := asset_models.Board{Name: "B1", SerialNumber: serial, Status: asset_models.StatusActive, MeasuringPointID: point.ID}
	s.Require().NoError(s.boards.Create(ctx, &board))
	min, max := asset_models.SensorTypeTemperature.DefaultRange()
	sensor := asset_models.Sensor{
		Name:     "T1",
		Type:     asset_models.SensorTypeTemperature,
		Unit:     "°C",
		MinValue: &min,
		MaxValue: &max,
		Status:   asset_models.StatusActive,
		BoardID:  board.ID,
	}
	s.Require().NoError(s.sensors.Create(ctx, &sensor))
	return org, site, point, board, sensor
}

func (s *MongoRepositorySuite) TestCreateAndGetRoundTrip() {
	ctx := context.Background()
	_, _, point, _, sensor := s.seedTree("SN-1")

	gotPoint, err := s.points.Get(ctx, point.ID)
	s.Require().NoError(err)
	s.Equal(point.Name, gotPoint.Name)
	s.Require().NotNil(gotPoint.Coordinates)
	s.Equal(45.5, gotPoint.Coordinates.Latitude)
	s.True(point.CreatedAt.Equal(gotPoint.CreatedAt))

	gotSensor, err := s.sensors.Get(ctx, sensor.ID)
	s.Require().NoError(err)
	s.Equal(-10.0, *gotSensor.MinValue)
	s.Equal(50.0, *gotSensor.MaxValue)
	s.Equal(sensor.BoardID, gotSensor.BoardID)
}

func (s *MongoRepositorySuite) TestGetMissingReturnsNotFound() {
	_, err := s.orgs.Get(context.Background(), primitive.NewObjectID())
	s.ErrorIs(err, interfaces.ErrNotFound)

	name := "x"
	_, err = s.sites.Update(context.Background(), primitive.NewObjectID(), interfaces.SitePatch{Name: &name})
	s.ErrorIs(err, interfaces.ErrNotFound)
}

func (s *MongoRepositorySuite) TestListByParent() {
	ctx := context.Background()
	org, site, _, _, _ := s.seedTree("SN-1")
	s.seedTree("SN-2")

	all, err := s.sites.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	mine, err := s.sites.ListByOrganization(ctx, org.ID)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(site.ID, mine[0].ID)

	none, err := s.boards.ListByMeasuringPoint(ctx, primitive.NewObjectID())
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *MongoRepositorySuite) TestUpdateAppliesPatchAndUnsetsEmptyStrings() {
	ctx := context.Background()
	org, _, _, _, _ := s.seedTree("SN-1")

	city := "Montreal"
	country := ""
	updated, err := s.orgs.Update(ctx, org.ID, interfaces.OrganizationPatch{City: &city, Country: &country})
	s.Require().NoError(err)
	s.Equal("Acme", updated.Name)
	s.Equal("Montreal", updated.City)
	s.Empty(updated.Country)
	s.True(updated.UpdatedAt.After(org.UpdatedAt) || updated.UpdatedAt.Equal(org.UpdatedAt))
}

func (s *MongoRepositorySuite) TestSerialNumberUniqueness() {
	ctx := context.Background()
	_, _, point, board, _ := s.seedTree("SN-1")

	dup := asset_models.Board{Name: "B2", SerialNumber: "SN-1", Status: asset_models.StatusActive, MeasuringPointID: point.ID}
	err := s.boards.Create(ctx, &dup)
	s.ErrorIs(err, interfaces.ErrDuplicateKey)

	var dupErr *interfaces.DuplicateKeyError
	s.Require().ErrorAs(err, &dupErr)
	s.Equal("serialNumber", dupErr.Field)

	s.NoError(s.boards.Create(ctx, &asset_models.Board{Name: "B3", Status: asset_models.StatusActive, MeasuringPointID: point.ID}))
	s.NoError(s.boards.Create(ctx, &asset_models.Board{Name: "B4", Status: asset_models.StatusActive, MeasuringPointID: point.ID}))

	other := asset_models.Board{Name: "B5", SerialNumber: "SN-2", Status: asset_models.StatusActive, MeasuringPointID: point.ID}
	s.Require().NoError(s.boards.Create(ctx, &other))
	serial := board.SerialNumber
	_, err = s.boards.Update(ctx, other.ID, interfaces.BoardPatch{SerialNumber: &serial})
	s.ErrorIs(err, interfaces.ErrDuplicateKey)
}

func (s *MongoRepositorySuite) TestDeleteCascade() {
	ctx := context.Background()
	org, site, _, board, sensor := s.seedTree("SN-1")
	_, _, _, _, otherSensor := s.seedTree("SN-2")

	n, err := s.sites.Delete(ctx, site.ID, false)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	_, err = s.boards.Get(ctx, board.ID)
	s.NoError(err, "non-cascading delete keeps children")

	n, err = s.orgs.Delete(ctx, org.ID, true)
	s.Require().NoError(err)
	s.Equal(int64(1), n, "site was already gone so nothing else hangs off the organization")

	n, err = s.boards.Delete(ctx, board.ID, true)
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	_, err = s.sensors.Get(ctx, sensor.ID)
	s.ErrorIs(err, interfaces.ErrNotFound)
	_, err = s.sensors.Get(ctx, otherSensor.ID)
	s.NoError(err)

	_, err = s.sensors.Delete(ctx, sensor.ID)
	s.ErrorIs(err, interfaces.ErrNotFound)
}

func (s *MongoRepositorySuite) TestCascadeFromOrganization() {
	ctx := context.Background()
	org, _, _, _, _ := s.seedTree("SN-1")

	n, err := s.orgs.Delete(ctx, org.ID, true)
	s.Require().NoError(err)
	s.Equal(int64(5), n)

	sensors, err := s.sensors.List(ctx)
	s.Require().NoError(err)
	s.Empty(sensors)
}

func (s *MongoRepositorySuite) TestUsers() {
	ctx := context.Background()
	user := auth_models.NewUser("admin", "admin@example.com", "hash", auth_models.RoleAdmin)
	s.Require().NoError(s.users.Create(ctx, user))

	got, err := s.users.GetByUsername(ctx, "admin")
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)

	count, err := s.users.CountByRole(ctx, auth_models.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	err = s.users.Create(ctx, auth_models.NewUser("admin", "other@example.com", "hash", auth_models.RoleViewer))
	var dupErr *interfaces.DuplicateKeyError
	s.Require().ErrorAs(err, &dupErr)
	s.Equal("username", dupErr.Field)
}
