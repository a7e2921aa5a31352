package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"prodflow/adapters/excel"
	"prodflow/adapters/memory"
	"prodflow/adapters/postgres"
	"prodflow/app"
	"prodflow/domain/core"
	"prodflow/internal/announce"
	"prodflow/internal/config"
	"prodflow/internal/migration"
	"prodflow/internal/telemetry"
	"prodflow/ports"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB      *sqlx.DB
	Clock   core.Clock
	Metrics *telemetry.Instruments

	// Ports
	Initiatives ports.InitiativeRepository
	Roster      ports.MemberRoster
	Publisher   ports.AnnouncementPublisher

	// Services
	Lifecycle      *app.LifecycleService
	Escalation     *app.EscalationService
	Reconciliation *app.ReconciliationService
	Backlog        *app.BacklogService
	Exporter       *excel.BacklogExporter
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	metrics, err := telemetry.NewInstruments(telemetry.Meter(""))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric instruments: %w", err)
	}

	return &Container{
		Config:  cfg,
		Clock:   core.SystemClock{},
		Metrics: metrics,
	}, nil
}

// Init connects the configured store and builds the services
func (c *Container) Init(ctx context.Context) error {
	if c.Config.UsesMemoryStore() {
		return c.InitInMemory()
	}

	db, err := Connect(ctx, c.Config.Database.URL, c.Config.Database.ConnectTimeout)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	return c.InitWithDatabase(ctx, db)
}

// InitInMemory wires the in-process adapters
func (c *Container) InitInMemory() error {
	roster := memory.NewRoster()
	for _, id := range c.Config.Database.SeedMembers {
		roster.Add(ports.Member{ID: core.MemberID(id), DisplayName: id})
	}

	c.Initiatives = memory.NewInitiativeRepository(c.Clock)
	c.Roster = roster
	c.Publisher = memory.NewAnnouncementLog()
	c.initServices()

	log.Printf("Container initialized with in-memory store (%d roster members)", len(c.Config.Database.SeedMembers))
	return nil
}

// InitWithDatabase runs migrations and wires the PostgreSQL adapters
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	members := postgres.NewMemberRepository(db)
	for _, id := range c.Config.Database.SeedMembers {
		if err := members.Upsert(ctx, ports.Member{ID: core.MemberID(id), DisplayName: id}); err != nil {
			return fmt.Errorf("failed to seed member %s: %w", id, err)
		}
	}

	c.Initiatives = postgres.NewInitiativeRepository(db)
	c.Roster = members
	c.Publisher = postgres.NewAnnouncementRepository(db)
	c.initServices()

	log.Printf("Container initialized successfully with database connection")
	return nil
}

func (c *Container) initServices() {
	lc := c.Config.Lifecycle
	c.Reconciliation = app.NewReconciliationService(c.Initiatives, lc.SweepConcurrency, c.Metrics)
	c.Lifecycle = app.NewLifecycleService(app.LifecycleDeps{
		Repo:      c.Initiatives,
		Owners:    app.NewRosterOwnerValidator(c.Roster, lc.OwnerRosterStrict),
		Publisher: c.Publisher,
		Composer:  announce.NewComposer(lc.AnnouncementCategory, c.Clock),
		Sweeper:   c.Reconciliation,
		Metrics:   c.Metrics,
	})
	c.Escalation = app.NewEscalationService(c.Initiatives, c.Metrics)
	c.Backlog = app.NewBacklogService(c.Initiatives)
	c.Exporter = excel.NewBacklogExporter()
}

// Connect opens a PostgreSQL pool, retrying with exponential backoff until timeout
func Connect(ctx context.Context, url string, timeout time.Duration) (*sqlx.DB, error) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = timeout

	var db *sqlx.DB
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		conn, err := sqlx.ConnectContext(ctx, "postgres", url)
		if err != nil {
			log.Printf("[Container.Connect] attempt %d: database not reachable: %v", attempt, err)
			return err
		}
		db = conn
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
	}
	return db, nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	telemetry.Shutdown(ctx)
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
