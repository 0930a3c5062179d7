// Package bundle selects where the input tables are loaded from.
package bundle

import (
	"context"
	"fmt"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/config"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/logger"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/persistence"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/storage"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/tableimport"
	"go.uber.org/zap"
)

// Source is a table source together with the resources it holds
type Source struct {
	commerce.TableSource
	close func() error
}

// Close releases the source's resources
func (s *Source) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open creates the table source named by cfg.Bundle.Source
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Source, error) {
	switch cfg.Bundle.Source {
	case config.SourceCSV:
		log.Info("loading bundle from csv files", zap.String("dir", cfg.Bundle.Dir))
		return &Source{TableSource: tableimport.NewCSVSource(cfg.Bundle.Dir, cfg.Bundle.Files(), log)}, nil

	case config.SourceDatabase:
		db, err := OpenDatabase(cfg, log)
		if err != nil {
			return nil, err
		}
		log.Info("loading bundle from database", zap.String("driver", cfg.Database.Driver))
		return &Source{TableSource: persistence.NewTableSource(db.DB, log), close: db.Close}, nil

	case config.SourceS3:
		s, err := storage.NewS3SourceFromConfig(ctx, &cfg.Storage,
			storage.WithLogger(log),
			storage.WithFiles(cfg.Bundle.Files()),
		)
		if err != nil {
			return nil, err
		}
		log.Info("loading bundle from object storage",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("prefix", cfg.Storage.Prefix),
		)
		return &Source{TableSource: s}, nil
	}

	return nil, fmt.Errorf("unknown bundle source %q", cfg.Bundle.Source)
}

// OpenDatabase connects to the configured database and makes sure the
// bundle tables exist
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	db, err := persistence.NewDatabase(&cfg.Database, log, logger.GormLevel(cfg.Log.Level))
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
