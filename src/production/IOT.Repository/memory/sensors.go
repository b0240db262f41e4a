package memory

import (
	"context"
	"time"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SensorRepository struct {
	s *Store
}

func (r *SensorRepository) Create(_ context.Context, sensor *asset_models.Sensor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sensor.ID = primitive.NewObjectID()
	sensor.CreatedAt = r.s.clock()
	sensor.UpdatedAt = sensor.CreatedAt
	r.s.sensors[sensor.ID] = cloneSensor(*sensor)
	return nil
}

func (r *SensorRepository) Get(_ context.Context, id primitive.ObjectID) (*asset_models.Sensor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sensor, ok := r.s.sensors[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	sensor = cloneSensor(sensor)
	return &sensor, nil
}

func (r *SensorRepository) List(_ context.Context) ([]asset_models.Sensor, error) {
	return r.list(nil), nil
}

func (r *SensorRepository) ListByBoard(_ context.Context, boardID primitive.ObjectID) ([]asset_models.Sensor, error) {
	return r.list(func(s asset_models.Sensor) bool { return s.BoardID == boardID }), nil
}

func (r *SensorRepository) list(keep func(asset_models.Sensor) bool) []asset_models.Sensor {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sensors := values(r.s.sensors, keep, func(s asset_models.Sensor) (time.Time, primitive.ObjectID) {
		return s.CreatedAt, s.ID
	})
	for i := range sensors {
		sensors[i] = cloneSensor(sensors[i])
	}
	return sensors
}

func (r *SensorRepository) Update(_ context.Context, id primitive.ObjectID, patch interfaces.SensorPatch) (*asset_models.Sensor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sensor, ok := r.s.sensors[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	sensor = cloneSensor(sensor)
	stringValue(&sensor.Name, patch.Name)
	setValue(&sensor.Type, patch.Type)
	stringValue(&sensor.Unit, patch.Unit)
	if patch.MinValue != nil {
		sensor.MinValue = cloneFloat(patch.MinValue)
	}
	if patch.MaxValue != nil {
		sensor.MaxValue = cloneFloat(patch.MaxValue)
	}
	stringValue(&sensor.Description, patch.Description)
	setValue(&sensor.Status, patch.Status)
	setValue(&sensor.BoardID, patch.BoardID)
	sensor.UpdatedAt = r.s.clock()

	r.s.sensors[id] = cloneSensor(sensor)
	return &sensor, nil
}

func (r *SensorRepository) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sensors[id]; !ok {
		return 0, interfaces.ErrNotFound
	}
	delete(r.s.sensors, id)
	return 1, nil
}

func cloneSensor(s asset_models.Sensor) asset_models.Sensor {
	s.MinValue = cloneFloat(s.MinValue)
	s.MaxValue = cloneFloat(s.MaxValue)
	return s
}
