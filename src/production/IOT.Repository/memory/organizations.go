package memory

import (
	"context"
	"time"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrganizationRepository struct {
	s *Store
}

func (r *OrganizationRepository) Create(_ context.Context, org *asset_models.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	org.ID = primitive.NewObjectID()
	org.CreatedAt = r.s.clock()
	org.UpdatedAt = org.CreatedAt
	r.s.organizations[org.ID] = *org
	return nil
}

func (r *OrganizationRepository) Get(_ context.Context, id primitive.ObjectID) (*asset_models.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	org, ok := r.s.organizations[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &org, nil
}

func (r *OrganizationRepository) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.organizations[id]
	return ok, nil
}

func (r *OrganizationRepository) List(_ context.Context) ([]asset_models.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return values(r.s.organizations, nil, func(o asset_models.Organization) (time.Time, primitive.ObjectID) {
		return o.CreatedAt, o.ID
	}), nil
}

func (r *OrganizationRepository) Update(_ context.Context, id primitive.ObjectID, patch interfaces.OrganizationPatch) (*asset_models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	org, ok := r.s.organizations[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	stringValue(&org.Name, patch.Name)
	stringValue(&org.Country, patch.Country)
	stringValue(&org.State, patch.State)
	stringValue(&org.City, patch.City)
	stringValue(&org.Address, patch.Address)
	stringValue(&org.Zipcode, patch.Zipcode)
	stringValue(&org.Description, patch.Description)
	org.UpdatedAt = r.s.clock()

	r.s.organizations[id] = org
	return &org, nil
}

func (r *OrganizationRepository) Delete(_ context.Context, id primitive.ObjectID, cascade bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.organizations[id]; !ok {
		return 0, interfaces.ErrNotFound
	}
	var deleted int64
	if cascade {
		for siteID, site := range r.s.sites {
			if site.OrganizationID == id {
				deleted += r.s.deleteSiteLocked(siteID)
			}
		}
	}
	delete(r.s.organizations, id)
	return deleted + 1, nil
}
