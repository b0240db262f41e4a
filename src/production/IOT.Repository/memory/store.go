// Package memory keeps the asset hierarchy in process. It backs the
// DB_DRIVER=memory mode and the HTTP handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection behind one lock so cascading deletes are atomic
type Store struct {
	mu sync.RWMutex

	organizations   map[primitive.ObjectID]asset_models.Organization
	sites           map[primitive.ObjectID]asset_models.Site
	measuringPoints map[primitive.ObjectID]asset_models.MeasuringPoint
	boards          map[primitive.ObjectID]asset_models.Board
	sensors         map[primitive.ObjectID]asset_models.Sensor
	users           map[primitive.ObjectID]auth_models.User

	clock func() time.Time
}

func NewStore() *Store {
	return &Store{
		organizations:   make(map[primitive.ObjectID]asset_models.Organization),
		sites:           make(map[primitive.ObjectID]asset_models.Site),
		measuringPoints: make(map[primitive.ObjectID]asset_models.MeasuringPoint),
		boards:          make(map[primitive.ObjectID]asset_models.Board),
		sensors:         make(map[primitive.ObjectID]asset_models.Sensor),
		users:           make(map[primitive.ObjectID]auth_models.User),
		clock: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

// Organizations returns a repository view over the store
func (s *Store) Organizations() *OrganizationRepository { return &OrganizationRepository{s} }

func (s *Store) Sites() *SiteRepository { return &SiteRepository{s} }

func (s *Store) MeasuringPoints() *MeasuringPointRepository { return &MeasuringPointRepository{s} }

func (s *Store) Boards() *BoardRepository { return &BoardRepository{s} }

func (s *Store) Sensors() *SensorRepository { return &SensorRepository{s} }

func (s *Store) Users() *UserRepository { return &UserRepository{s} }

// DeleteAll empties the asset collections. Users are kept.
func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.organizations = make(map[primitive.ObjectID]asset_models.Organization)
	s.sites = make(map[primitive.ObjectID]asset_models.Site)
	s.measuringPoints = make(map[primitive.ObjectID]asset_models.MeasuringPoint)
	s.boards = make(map[primitive.ObjectID]asset_models.Board)
	s.sensors = make(map[primitive.ObjectID]asset_models.Sensor)
	return nil
}

// values returns the map values ordered like the Mongo repositories order them
func values[T any](m map[primitive.ObjectID]T, keep func(T) bool, created func(T) (time.Time, primitive.ObjectID)) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, idi := created(out[i])
		tj, idj := created(out[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi.Hex() < idj.Hex()
	})
	return out
}

func stringValue(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}
