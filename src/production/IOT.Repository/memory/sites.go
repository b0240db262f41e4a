package memory

import (
	"context"
	"time"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SiteRepository struct {
	s *Store
}

func (r *SiteRepository) Create(_ context.Context, site *asset_models.Site) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	site.ID = primitive.NewObjectID()
	site.CreatedAt = r.s.clock()
	site.UpdatedAt = site.CreatedAt
	r.s.sites[site.ID] = *site
	return nil
}

func (r *SiteRepository) Get(_ context.Context, id primitive.ObjectID) (*asset_models.Site, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	site, ok := r.s.sites[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &site, nil
}

func (r *SiteRepository) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.sites[id]
	return ok, nil
}

func (r *SiteRepository) List(ctx context.Context) ([]asset_models.Site, error) {
	return r.list(nil), nil
}

func (r *SiteRepository) ListByOrganization(_ context.Context, organizationID primitive.ObjectID) ([]asset_models.Site, error) {
	return r.list(func(s asset_models.Site) bool { return s.OrganizationID == organizationID }), nil
}

func (r *SiteRepository) list(keep func(asset_models.Site) bool) []asset_models.Site {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return values(r.s.sites, keep, func(s asset_models.Site) (time.Time, primitive.ObjectID) {
		return s.CreatedAt, s.ID
	})
}

func (r *SiteRepository) Update(_ context.Context, id primitive.ObjectID, patch interfaces.SitePatch) (*asset_models.Site, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	site, ok := r.s.sites[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	stringValue(&site.Name, patch.Name)
	stringValue(&site.Description, patch.Description)
	stringValue(&site.Location, patch.Location)
	setValue(&site.OrganizationID, patch.OrganizationID)
	site.UpdatedAt = r.s.clock()

	r.s.sites[id] = site
	return &site, nil
}

func (r *SiteRepository) Delete(_ context.Context, id primitive.ObjectID, cascade bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sites[id]; !ok {
		return 0, interfaces.ErrNotFound
	}
	if cascade {
		return r.s.deleteSiteLocked(id), nil
	}
	delete(r.s.sites, id)
	return 1, nil
}

// deleteSiteLocked removes a site and everything below it
func (s *Store) deleteSiteLocked(id primitive.ObjectID) int64 {
	var deleted int64
	for pointID, point := range s.measuringPoints {
		if point.SiteID == id {
			deleted += s.deleteMeasuringPointLocked(pointID)
		}
	}
	delete(s.sites, id)
	return deleted + 1
}
