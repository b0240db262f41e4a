package main

import (
	"context"
	"fmt"
	"time"

	config "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Config"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	implementation "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Implementation"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Seeder/seed"
)

func main() {
	cfg, err := config.LoadSeederConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load seeder configuration: %v", err))
	}

	log := logger.NewLogger(&cfg.Logging)
	log.Info("Starting seeder")

	if err := run(cfg, log); err != nil {
		log.FatalWithError(err, "Seeding failed")
	}
}

func run(cfg *config.SeederConfig, log *logger.Logger) error {
	client, err := implementation.ConnectMongoWithTimeout(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.ErrorWithError(err, "Error disconnecting from MongoDB")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db := client.Database(cfg.Database.Name)
	if err := implementation.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	seeder := seed.New(seed.Stores{
		Organizations:   implementation.NewMongoOrganizationRepository(db),
		Sites:           implementation.NewMongoSiteRepository(db),
		MeasuringPoints: implementation.NewMongoMeasuringPointRepository(db),
		Boards:          implementation.NewMongoBoardRepository(db),
		Sensors:         implementation.NewMongoSensorRepository(db),
		Resetter:        implementation.NewMongoDataResetter(db),
	}, cfg.Seed, log)

	_, err = seeder.Run(ctx)
	return err
}
