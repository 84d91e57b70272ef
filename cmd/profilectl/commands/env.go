package commands

import (
	"fmt"
	"os"

	"github.com/benvon/profile-sync/internal/config"
	"github.com/benvon/profile-sync/internal/database"
	"github.com/benvon/profile-sync/internal/events"
	"github.com/benvon/profile-sync/internal/logger"
	"go.uber.org/zap"
)

// Env holds the dependencies commands resolve at run time
type Env struct {
	LoadConfig func() (*config.Config, error)
	OpenStore  func(cfg *config.Config) (database.ProfileStore, func(), error)
	Migrate    func(databaseURL, direction string) error
	OpenBroker func(amqpURL string) (events.Broker, error)
	Logger     *zap.Logger
}

// DefaultEnv wires commands to the real configuration, store and migrator
func DefaultEnv() *Env {
	log, err := logger.NewDevelopmentLogger(false)
	if err != nil {
		log = zap.NewNop()
	}
	return &Env{
		LoadConfig: config.Load,
		OpenStore:  openStore,
		Migrate:    database.Migrate,
		OpenBroker: openBroker,
		Logger:     log,
	}
}

// openStore connects to the profile store named by DATABASE_URL
func openStore(cfg *config.Config) (database.ProfileStore, func(), error) {
	if cfg.UsesMemoryStore() {
		return nil, nil, fmt.Errorf("profilectl needs a persistent store; DATABASE_URL is %s", config.MemoryDatabaseURL)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closer := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return database.NewProfileRepository(db), closer, nil
}

func openBroker(amqpURL string) (events.Broker, error) {
	return events.NewRabbitMQBroker(amqpURL)
}
