package memory

import (
	"context"
	"time"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MeasuringPointRepository struct {
	s *Store
}

func (r *MeasuringPointRepository) Create(_ context.Context, point *asset_models.MeasuringPoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	point.ID = primitive.NewObjectID()
	point.CreatedAt = r.s.clock()
	point.UpdatedAt = point.CreatedAt
	r.s.measuringPoints[point.ID] = clonePoint(*point)
	return nil
}

func (r *MeasuringPointRepository) Get(_ context.Context, id primitive.ObjectID) (*asset_models.MeasuringPoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	point, ok := r.s.measuringPoints[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	point = clonePoint(point)
	return &point, nil
}

func (r *MeasuringPointRepository) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.measuringPoints[id]
	return ok, nil
}

func (r *MeasuringPointRepository) List(_ context.Context) ([]asset_models.MeasuringPoint, error) {
	return r.list(nil), nil
}

func (r *MeasuringPointRepository) ListBySite(_ context.Context, siteID primitive.ObjectID) ([]asset_models.MeasuringPoint, error) {
	return r.list(func(p asset_models.MeasuringPoint) bool { return p.SiteID == siteID }), nil
}

func (r *MeasuringPointRepository) list(keep func(asset_models.MeasuringPoint) bool) []asset_models.MeasuringPoint {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	points := values(r.s.measuringPoints, keep, func(p asset_models.MeasuringPoint) (time.Time, primitive.ObjectID) {
		return p.CreatedAt, p.ID
	})
	for i := range points {
		points[i] = clonePoint(points[i])
	}
	return points
}

func (r *MeasuringPointRepository) Update(_ context.Context, id primitive.ObjectID, patch interfaces.MeasuringPointPatch) (*asset_models.MeasuringPoint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	point, ok := r.s.measuringPoints[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	stringValue(&point.Name, patch.Name)
	stringValue(&point.Description, patch.Description)
	if patch.Coordinates != nil {
		c := *patch.Coordinates
		point.Coordinates = &c
	}
	setValue(&point.SiteID, patch.SiteID)
	point.UpdatedAt = r.s.clock()

	r.s.measuringPoints[id] = clonePoint(point)
	return &point, nil
}

func (r *MeasuringPointRepository) Delete(_ context.Context, id primitive.ObjectID, cascade bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.measuringPoints[id]; !ok {
		return 0, interfaces.ErrNotFound
	}
	if cascade {
		return r.s.deleteMeasuringPointLocked(id), nil
	}
	delete(r.s.measuringPoints, id)
	return 1, nil
}

func (s *Store) deleteMeasuringPointLocked(id primitive.ObjectID) int64 {
	var deleted int64
	for boardID, board := range s.boards {
		if board.MeasuringPointID == id {
			deleted += s.deleteBoardLocked(boardID)
		}
	}
	delete(s.measuringPoints, id)
	return deleted + 1
}

func clonePoint(p asset_models.MeasuringPoint) asset_models.MeasuringPoint {
	if p.Coordinates != nil {
		c := *p.Coordinates
		p.Coordinates = &c
	}
	return p
}
