// Package seed fills the asset hierarchy with generated sample data.
package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	config "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Config"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
)

// Stores are the repositories the seeder writes through
type Stores struct {
	Organizations   interfaces.OrganizationRepository
	Sites           interfaces.SiteRepository
	MeasuringPoints interfaces.MeasuringPointRepository
	Boards          interfaces.BoardRepository
	Sensors         interfaces.SensorRepository
	Resetter        interfaces.DataResetter
}

// Result counts the documents created by one run
type Result struct {
	Organizations   int
	Sites           int
	MeasuringPoints int
	Boards          int
	Sensors         int
}

type Seeder struct {
	stores  Stores
	cfg     config.SeedConfig
	faker   *gofakeit.Faker
	logger  *logger.Logger
	serials map[string]struct{}
}

// New creates a seeder. A zero RandomSeed gives different data on every run.
func New(stores Stores, cfg config.SeedConfig, log *logger.Logger) *Seeder {
	return &Seeder{
		stores:  stores,
		cfg:     cfg,
		faker:   gofakeit.New(cfg.RandomSeed),
		logger:  log.WithComponent("seeder"),
		serials: make(map[string]struct{}),
	}
}

// Run optionally wipes the asset collections, then creates the hierarchy
// top-down so every child references an existing parent.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	if s.cfg.Clean {
		s.logger.Info("Cleaning asset collections")
		if err := s.stores.Resetter.DeleteAll(ctx); err != nil {
			return res, fmt.Errorf("clean database: %w", err)
		}
	}
	if err := s.loadSerials(ctx); err != nil {
		return res, err
	}

	for i := 0; i < s.cfg.Organizations; i++ {
		org := s.organization()
		if err := s.stores.Organizations.Create(ctx, org); err != nil {
			return res, fmt.Errorf("create organization: %w", err)
		}
		res.Organizations++

		for j := 0; j < s.cfg.SitesPerOrg; j++ {
			if err := s.site(ctx, org, &res); err != nil {
				return res, err
			}
		}
	}

	s.logger.Logger.Info().
		Int("organizations", res.Organizations).
		Int("sites", res.Sites).
		Int("measuring_points", res.MeasuringPoints).
		Int("boards", res.Boards).
		Int("sensors", res.Sensors).
		Msg("Seeding completed")
	return res, nil
}

func (s *Seeder) organization() *asset_models.Organization {
	return &asset_models.Organization{
		Name:        s.faker.Company(),
		Country:     s.faker.Country(),
		State:       s.faker.State(),
		City:        s.faker.City(),
		Address:     s.faker.Street(),
		Zipcode:     s.faker.Zip(),
		Description: s.faker.BS(),
	}
}

func (s *Seeder) site(ctx context.Context, org *asset_models.Organization, res *Result) error {
	site := &asset_models.Site{
		Name:           s.faker.City() + " Site",
		Description:    s.faker.Sentence(8),
		Location:       s.faker.Country(),
		OrganizationID: org.ID,
	}
	if err := s.stores.Sites.Create(ctx, site); err != nil {
		return fmt.Errorf("create site: %w", err)
	}
	res.Sites++

	for i := 0; i < s.cfg.MeasuringPointsPerSite; i++ {
		point := &asset_models.MeasuringPoint{
			Name:        fmt.Sprintf("Point %s %d", s.faker.Word(), i+1),
			Description: s.faker.Sentence(8),
			Coordinates: &asset_models.Coordinates{
				Latitude:  s.faker.Latitude(),
				Longitude: s.faker.Longitude(),
			},
			SiteID: site.ID,
		}
		if err := s.stores.MeasuringPoints.Create(ctx, point); err != nil {
			return fmt.Errorf("create measuring point: %w", err)
		}
		res.MeasuringPoints++

		for j := 0; j < s.cfg.BoardsPerPoint; j++ {
			if err := s.board(ctx, point, res); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) board(ctx context.Context, point *asset_models.MeasuringPoint, res *Result) error {
	board := &asset_models.Board{
		Name:             "Board-" + s.faker.Regex("[A-Z0-9]{4}"),
		SerialNumber:     s.serial(),
		FirmwareVersion:  "v" + s.faker.AppVersion(),
		Description:      s.faker.Sentence(8),
		Status:           s.status(),
		MeasuringPointID: point.ID,
	}
	if err := s.stores.Boards.Create(ctx, board); err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	res.Boards++

	for _, sensorType := range s.sensorTypes() {
		min, max := sensorType.DefaultRange()
		sensor := &asset_models.Sensor{
			Name:        fmt.Sprintf("Sensor-%s-%s", sensorType, s.faker.Regex("[A-Z0-9]{3}")),
			Type:        sensorType,
			Unit:        sensorType.DefaultUnit(),
			MinValue:    &min,
			MaxValue:    &max,
			Description: s.faker.Sentence(8),
			Status:      s.status(),
			BoardID:     board.ID,
		}
		if err := s.stores.Sensors.Create(ctx, sensor); err != nil {
			return fmt.Errorf("create sensor: %w", err)
		}
		res.Sensors++
	}
	return nil
}

// sensorTypes covers every type once before repeating random ones
func (s *Seeder) sensorTypes() []asset_models.SensorType {
	all := asset_models.SensorTypes()
	types := make([]asset_models.SensorType, 0, s.cfg.SensorsPerBoard)
	for i := 0; i < s.cfg.SensorsPerBoard; i++ {
		if i < len(all) {
			types = append(types, all[i])
			continue
		}
		types = append(types, all[s.faker.Number(0, len(all)-1)])
	}
	return types
}

func (s *Seeder) status() asset_models.Status {
	statuses := asset_models.Statuses()
	return statuses[s.faker.Number(0, len(statuses)-1)]
}

// loadSerials reserves the serial numbers already stored so a run
// without cleaning never collides with earlier data
func (s *Seeder) loadSerials(ctx context.Context) error {
	boards, err := s.stores.Boards.List(ctx)
	if err != nil {
		return fmt.Errorf("list boards: %w", err)
	}
	for _, b := range boards {
		if b.SerialNumber != "" {
			s.serials[b.SerialNumber] = struct{}{}
		}
	}
	return nil
}

// serial returns a serial number that is neither stored nor handed out earlier
func (s *Seeder) serial() string {
	for {
		serial := s.faker.Regex("[A-Z0-9]{10}")
		if _, taken := s.serials[serial]; !taken {
			s.serials[serial] = struct{}{}
			return serial
		}
	}
}
