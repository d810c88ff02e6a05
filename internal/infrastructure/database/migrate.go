package database

import (
	"errors"
	"fmt"

	"go-clinic-workflow/config"
	"go-clinic-workflow/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

// Migrator applies the SQL files embedded in the migrations package.
type Migrator struct {
	m   *migrate.Migrate
	log *logrus.Logger
}

func NewMigrator(cfg config.DBConfig, log *logrus.Logger) (*Migrator, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	m.Log = &migrateLogger{log: log}

	return &Migrator{m: m, log: log}, nil
}

func (m *Migrator) Up() error {
	return m.report("up", m.m.Up())
}

// Down rolls back a single migration.
func (m *Migrator) Down() error {
	return m.report("down", m.m.Steps(-1))
}

func (m *Migrator) report(direction string, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info("Migrations already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, verr := m.m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return verr
	}
	m.log.Infof("Migrated %s: version=%d, dirty=%v", direction, version, dirty)
	return nil
}

func (m *Migrator) Close() {
	srcErr, dbErr := m.m.Close()
	if srcErr != nil || dbErr != nil {
		m.log.Warnf("Failed to close migrator: source=%v, db=%v", srcErr, dbErr)
	}
}

type migrateLogger struct {
	log *logrus.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.log.IsLevelEnabled(logrus.DebugLevel)
}
