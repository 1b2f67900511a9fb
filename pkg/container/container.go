package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"staff-directory/internal/config"
	employeeHandler "staff-directory/internal/domains/employee/handler"
	employeeRepo "staff-directory/internal/domains/employee/repository"
	employeeService "staff-directory/internal/domains/employee/service"
	"staff-directory/internal/infrastructure/cache"
	"staff-directory/internal/infrastructure/database"
	"staff-directory/internal/infrastructure/storage"
	"staff-directory/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every long-lived dependency of the API.
// Initialization order: config → infrastructure → repositories → services → handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config       *config.Config
	DB           *database.PostgresDB
	Redis        *cache.RedisClient // nil when Redis is unreachable
	Storage      *storage.MinIOStorage
	OrphanLedger *cache.OrphanLedger // nil when Redis is unreachable
	JWTManager   *jwt.Manager

	// ========================================
	// DOMAIN LAYER
	// ========================================
	EmployeeRepo    employeeRepo.EmployeeRepository
	EmployeeService employeeService.ServiceInterface
	EmployeeHandler *employeeHandler.EmployeeHandler
	OrphanHandler   *employeeHandler.OrphanHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer connects to every backing service and wires the domain.
// PostgreSQL and MinIO are required; Redis only backs the orphan ledger
// and its absence is logged, not fatal.
func NewContainer(ctx context.Context) (*Container, error) {
	log.Info().Msg("Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("Config loaded")

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}

	// ========================================
	// STEP 3: INITIALIZE REDIS (NON-CRITICAL)
	// ========================================
	c.initRedis(ctx)

	// ========================================
	// STEP 4: INITIALIZE OBJECT STORAGE
	// ========================================
	storageCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	minioStorage, err := storage.NewMinIOStorage(storageCtx, cfg.MinIO)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to initialize minio: %w", err)
	}
	c.Storage = minioStorage
	log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("MinIO ready")

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	// ========================================
	// STEP 5: WIRE EMPLOYEE DOMAIN
	// ========================================
	c.initEmployeeDomain()

	log.Info().Msg("DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initDatabase(ctx context.Context) error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if c.Config.App.MigrationsEnabled {
		if err := db.Migrate(connectCtx); err != nil {
			c.Cleanup()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Msg("Database migrations applied")
	}

	log.Info().Msg("Database connected")
	return nil
}

func (c *Container) initRedis(ctx context.Context) {
	redisClient := cache.NewRedisClient(
		c.Config.Redis.Host,
		c.Config.Redis.Password,
		c.Config.Redis.DB,
	)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := redisClient.Connect(pingCtx); err != nil {
		log.Warn().Err(err).Msg("Redis connection failed (non-critical), orphaned images will only be logged")
		_ = redisClient.Close()
		return
	}

	c.Redis = redisClient
	c.OrphanLedger = cache.NewOrphanLedger(redisClient.Client, c.Config.Upload.OrphanLedgerKey)
}

func (c *Container) initEmployeeDomain() {
	c.EmployeeRepo = employeeRepo.NewPostgresEmployeeRepository(c.DB.Pool)

	gateway := storage.NewImageGateway(
		c.Storage,
		storage.NewImageProcessor(c.Config.Upload.MaxBytes, c.Config.Upload.MaxDimension),
		c.Config.Upload.Folder,
	)

	// a nil *OrphanLedger must not become a non-nil interface
	var (
		orphans     employeeService.OrphanRecorder
		orphanAdmin employeeHandler.OrphanLedger
	)
	if c.OrphanLedger != nil {
		orphans = c.OrphanLedger
		orphanAdmin = c.OrphanLedger
	}

	c.EmployeeService = employeeService.NewEmployeeService(c.EmployeeRepo, gateway, orphans)
	c.EmployeeHandler = employeeHandler.NewEmployeeHandler(c.EmployeeService, c.Config.Upload.MaxBytes)
	c.OrphanHandler = employeeHandler.NewOrphanHandler(orphanAdmin)
}

// Cleanup closes connections on shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}

	log.Info().Msg("Container cleanup completed")
}
