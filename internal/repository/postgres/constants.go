package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	migrationsDir        = "migrations"
	migrationsSourceName = "iofs"

	projectsTable   = "projects"
	defaultPageSize = 10

	errProjectNotFound = "project not found"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"

	errFailedOpenMigrationsFmt       = "failed to open embedded migrations: %w"
	errFailedInitMigrationsFmt       = "failed to initialise migrations: %w"
	errFailedApplyMigrationsFmt      = "failed to apply migrations: %w"
	errFailedReadMigrationVersionFmt = "failed to read migration version: %w"
	errDirtyMigrationFmt             = "database is dirty at migration version %d"

	errFailedBuildQueryFmt        = "failed to build query: %w"
	errFailedEncodeProjectFmt     = "failed to encode project: %w"
	errFailedDecodeProjectFmt     = "failed to decode project: %w"
	errFailedCreateProjectFmt     = "failed to create project: %w"
	errFailedGetProjectFmt        = "failed to get project: %w"
	errFailedListProjectsFmt      = "failed to list projects: %w"
	errFailedCountProjectsFmt     = "failed to count projects: %w"
	errFailedScanProjectFmt       = "failed to scan project: %w"
	errIterateProjectsFmt         = "error iterating projects: %w"
	errFailedUpdateProjectFmt     = "failed to update project: %w"
	errFailedDeleteProjectFmt     = "failed to delete project: %w"
	errFailedCheckSlugFmt         = "failed to check slug: %w"
	errFailedProjectStatsFmt      = "failed to compute project stats: %w"
	errFailedSetProjectStatusFmt  = "failed to set project status: %w"
	errFailedSoftDeleteProjectFmt = "failed to deactivate project: %w"
)

var (
	errDirtyMigration             = func(version uint) error { return fmt.Errorf(errDirtyMigrationFmt, version) }
	errFailedApplyMigrations      = func(err error) error { return fmt.Errorf(errFailedApplyMigrationsFmt, err) }
	errFailedBuildQuery           = func(err error) error { return fmt.Errorf(errFailedBuildQueryFmt, err) }
	errFailedCheckSlug            = func(err error) error { return fmt.Errorf(errFailedCheckSlugFmt, err) }
	errFailedCountProjects        = func(err error) error { return fmt.Errorf(errFailedCountProjectsFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedCreateProject        = func(err error) error { return fmt.Errorf(errFailedCreateProjectFmt, err) }
	errFailedDecodeProject        = func(err error) error { return fmt.Errorf(errFailedDecodeProjectFmt, err) }
	errFailedDeleteProject        = func(err error) error { return fmt.Errorf(errFailedDeleteProjectFmt, err) }
	errFailedEncodeProject        = func(err error) error { return fmt.Errorf(errFailedEncodeProjectFmt, err) }
	errFailedGetProject           = func(err error) error { return fmt.Errorf(errFailedGetProjectFmt, err) }
	errFailedInitMigrations       = func(err error) error { return fmt.Errorf(errFailedInitMigrationsFmt, err) }
	errFailedListProjects         = func(err error) error { return fmt.Errorf(errFailedListProjectsFmt, err) }
	errFailedOpenMigrations       = func(err error) error { return fmt.Errorf(errFailedOpenMigrationsFmt, err) }
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedProjectStats         = func(err error) error { return fmt.Errorf(errFailedProjectStatsFmt, err) }
	errFailedReadMigrationVersion = func(err error) error { return fmt.Errorf(errFailedReadMigrationVersionFmt, err) }
	errFailedScanProject          = func(err error) error { return fmt.Errorf(errFailedScanProjectFmt, err) }
	errFailedSetProjectStatus     = func(err error) error { return fmt.Errorf(errFailedSetProjectStatusFmt, err) }
	errFailedSoftDeleteProject    = func(err error) error { return fmt.Errorf(errFailedSoftDeleteProjectFmt, err) }
	errFailedUpdateProject        = func(err error) error { return fmt.Errorf(errFailedUpdateProjectFmt, err) }
	errIterateProjects            = func(err error) error { return fmt.Errorf(errIterateProjectsFmt, err) }
)
