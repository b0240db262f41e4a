package memory

import (
	"context"
	"time"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BoardRepository struct {
	s *Store
}

func (r *BoardRepository) Create(_ context.Context, board *asset_models.Board) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.serialTakenLocked(board.SerialNumber, primitive.NilObjectID) {
		return &interfaces.DuplicateKeyError{Field: "serialNumber"}
	}
	board.ID = primitive.NewObjectID()
	board.CreatedAt = r.s.clock()
	board.UpdatedAt = board.CreatedAt
	r.s.boards[board.ID] = *board
	return nil
}

func (r *BoardRepository) Get(_ context.Context, id primitive.ObjectID) (*asset_models.Board, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	board, ok := r.s.boards[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &board, nil
}

func (r *BoardRepository) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.boards[id]
	return ok, nil
}

func (r *BoardRepository) List(_ context.Context) ([]asset_models.Board, error) {
	return r.list(nil), nil
}

func (r *BoardRepository) ListByMeasuringPoint(_ context.Context, measuringPointID primitive.ObjectID) ([]asset_models.Board, error) {
	return r.list(func(b asset_models.Board) bool { return b.MeasuringPointID == measuringPointID }), nil
}

func (r *BoardRepository) list(keep func(asset_models.Board) bool) []asset_models.Board {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return values(r.s.boards, keep, func(b asset_models.Board) (time.Time, primitive.ObjectID) {
		return b.CreatedAt, b.ID
	})
}

func (r *BoardRepository) Update(_ context.Context, id primitive.ObjectID, patch interfaces.BoardPatch) (*asset_models.Board, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	board, ok := r.s.boards[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if patch.SerialNumber != nil && r.s.serialTakenLocked(*patch.SerialNumber, id) {
		return nil, &interfaces.DuplicateKeyError{Field: "serialNumber"}
	}
	stringValue(&board.Name, patch.Name)
	stringValue(&board.SerialNumber, patch.SerialNumber)
	stringValue(&board.FirmwareVersion, patch.FirmwareVersion)
	stringValue(&board.Description, patch.Description)
	setValue(&board.Status, patch.Status)
	setValue(&board.MeasuringPointID, patch.MeasuringPointID)
	board.UpdatedAt = r.s.clock()

	r.s.boards[id] = board
	return &board, nil
}

func (r *BoardRepository) Delete(_ context.Context, id primitive.ObjectID, cascade bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.boards[id]; !ok {
		return 0, interfaces.ErrNotFound
	}
	if cascade {
		return r.s.deleteBoardLocked(id), nil
	}
	delete(r.s.boards, id)
	return 1, nil
}

func (s *Store) deleteBoardLocked(id primitive.ObjectID) int64 {
	var deleted int64
	for sensorID, sensor := range s.sensors {
		if sensor.BoardID == id {
			delete(s.sensors, sensorID)
			deleted++
		}
	}
	delete(s.boards, id)
	return deleted + 1
}

// serialTakenLocked reports whether another board already uses serial.
// Empty serial numbers are never unique.
func (s *Store) serialTakenLocked(serial string, self primitive.ObjectID) bool {
	if serial == "" {
		return false
	}
	for id, b := range s.boards {
		if id != self && b.SerialNumber == serial {
			return true
		}
	}
	return false
}
