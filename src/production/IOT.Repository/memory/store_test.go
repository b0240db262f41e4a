package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ interfaces.OrganizationRepository   = (*OrganizationRepository)(nil)
	_ interfaces.SiteRepository           = (*SiteRepository)(nil)
	_ interfaces.MeasuringPointRepository = (*MeasuringPointRepository)(nil)
	_ interfaces.BoardRepository          = (*BoardRepository)(nil)
	_ interfaces.SensorRepository         = (*SensorRepository)(nil)
	_ interfaces.UserRepository           = (*UserRepository)(nil)
	_ interfaces.DataResetter             = (*Store)(nil)
)

type tree struct {
	org    asset_models.Organization
	site   asset_models.Site
	point  asset_models.MeasuringPoint
	board  asset_models.Board
	sensor asset_models.Sensor
}

func seedTree(t *testing.T, s *Store, serial string) tree {
	t.Helper()
	ctx := context.Background()

	var tr tree
	tr.org = asset_models.Organization{Name: "Acme"}
	require.NoError(t, s.Organizations().Create(ctx, &tr.org))
	tr.site = asset_models.Site{Name: "Plant", OrganizationID: tr.org.ID}
	require.NoError(t, s.Sites().Create(ctx, &tr.site))
	tr.point = asset_models.MeasuringPoint{Name: "Tank", SiteID: tr.site.ID}
	require.NoError(t, s.MeasuringPoints().Create(ctx, &tr.point))
	tr.board = asset_models.Board{Name: "B1", SerialNumber: serial, Status: asset_models.StatusActive, MeasuringPointID: tr.point.ID}
	require.NoError(t, s.Boards().Create(ctx, &tr.board))
	tr.sensor = asset_models.Sensor{Name: "T1", Type: asset_models.SensorTypeTemperature, Status: asset_models.StatusActive, BoardID: tr.board.ID}
	require.NoError(t, s.Sensors().Create(ctx, &tr.sensor))
	return tr
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	s := NewStore()
	org := asset_models.Organization{Name: "Acme"}
	require.NoError(t, s.Organizations().Create(context.Background(), &org))

	assert.False(t, org.ID.IsZero())
	assert.False(t, org.CreatedAt.IsZero())
	assert.Equal(t, org.CreatedAt, org.UpdatedAt)

	got, err := s.Organizations().Get(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, org, *got)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.Boards().Get(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = s.Sensors().Update(context.Background(), primitive.NewObjectID(), interfaces.SensorPatch{})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestListIsOrderedAndNeverNil(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	orgs, err := s.Organizations().List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, orgs)
	assert.Empty(t, orgs)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.clock = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, s.Organizations().Create(ctx, &asset_models.Organization{Name: name}))
	}

	orgs, err = s.Organizations().List(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 3)
	assert.Equal(t, "a", orgs[0].Name)
	assert.Equal(t, "c", orgs[2].Name)
}

func TestListByParentFilters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seedTree(t, s, "SN-A")
	seedTree(t, s, "SN-B")

	sites, err := s.Sites().ListByOrganization(ctx, a.org.ID)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, a.site.ID, sites[0].ID)

	sensors, err := s.Sensors().ListByBoard(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, sensors)
	assert.Empty(t, sensors)
}

func TestUpdateMergesFields(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tr := seedTree(t, s, "SN-1")

	max := 80.0
	desc := "outdoor"
	updated, err := s.Sensors().Update(ctx, tr.sensor.ID, interfaces.SensorPatch{MaxValue: &max, Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, "T1", updated.Name)
	assert.Equal(t, asset_models.SensorTypeTemperature, updated.Type)
	require.NotNil(t, updated.MaxValue)
	assert.Equal(t, 80.0, *updated.MaxValue)
	assert.Equal(t, "outdoor", updated.Description)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	max = 1
	got, err := s.Sensors().Get(ctx, tr.sensor.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, *got.MaxValue)
}

func TestBoardSerialNumberIsUnique(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tr := seedTree(t, s, "SN-1")

	dup := asset_models.Board{Name: "B2", SerialNumber: "SN-1", MeasuringPointID: tr.point.ID}
	err := s.Boards().Create(ctx, &dup)
	assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)

	var dupErr *interfaces.DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "serialNumber", dupErr.Field)

	// boards without serial numbers never collide
	require.NoError(t, s.Boards().Create(ctx, &asset_models.Board{Name: "B3", MeasuringPointID: tr.point.ID}))
	require.NoError(t, s.Boards().Create(ctx, &asset_models.Board{Name: "B4", MeasuringPointID: tr.point.ID}))

	other := asset_models.Board{Name: "B5", SerialNumber: "SN-2", MeasuringPointID: tr.point.ID}
	require.NoError(t, s.Boards().Create(ctx, &other))
	serial := "SN-1"
	_, err = s.Boards().Update(ctx, other.ID, interfaces.BoardPatch{SerialNumber: &serial})
	assert.ErrorIs(t, err, interfaces.ErrDuplicateKey)

	// re-saving its own serial is fine
	serial = "SN-2"
	_, err = s.Boards().Update(ctx, other.ID, interfaces.BoardPatch{SerialNumber: &serial})
	assert.NoError(t, err)
}

func TestDeleteWithoutCascadeKeepsChildren(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tr := seedTree(t, s, "SN-1")

	n, err := s.Organizations().Delete(ctx, tr.org.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := s.Sites().Exists(ctx, tr.site.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCascadeDeleteRemovesDescendants(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	tr := seedTree(t, s, "SN-1")
	keep := seedTree(t, s, "SN-2")

	n, err := s.Organizations().Delete(ctx, tr.org.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = s.Sensors().Get(ctx, tr.sensor.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = s.Boards().Get(ctx, tr.board.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = s.Sensors().Get(ctx, keep.sensor.ID)
	assert.NoError(t, err)

	n, err = s.Boards().Delete(ctx, keep.board.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = s.Organizations().Delete(ctx, tr.org.ID, true)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestDeleteAllKeepsUsers(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedTree(t, s, "SN-1")
	require.NoError(t, s.Users().Create(ctx, auth_models.NewUser("admin", "admin@example.com", "hash", auth_models.RoleAdmin)))

	require.NoError(t, s.DeleteAll(ctx))

	orgs, err := s.Organizations().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orgs)

	n, err := s.Users().CountByRole(ctx, auth_models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserUniqueness(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, auth_models.NewUser("alice", "alice@example.com", "hash", auth_models.RoleViewer)))

	err := s.Users().Create(ctx, auth_models.NewUser("alice", "other@example.com", "hash", auth_models.RoleViewer))
	var dupErr *interfaces.DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "username", dupErr.Field)

	u, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = s.Users().GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}
