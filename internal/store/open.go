package store

import (
	"log"

	"myradio/internal/config"
	database "myradio/internal/db"
	"myradio/internal/storage"
)

// Open builds the Store for cfg.Store.Backend. The returned func releases
// backend resources.
func Open(cfg *config.Config) (*Store, func() error, error) {
	switch cfg.Store.Backend {
	case "sqlite", "postgres":
		client, err := database.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := client.AutoMigrate(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return New(NewSQLBackend(client.DB)), client.Close, nil
	}

	log.Printf("🗄️  State store: %s (%s)", cfg.Store.Backend, location(cfg))
	return New(NewObjectBackend(storage.New(cfg))), func() error { return nil }, nil
}

func location(cfg *config.Config) string {
	if cfg.Store.Backend == "s3" {
		return cfg.Storage.Bucket + "/" + cfg.Storage.Prefix
	}
	return cfg.Store.DataDir
}
