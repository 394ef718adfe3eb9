package main

import (
	"context"
	"log"

	"discovery-backend/config"
	"discovery-backend/handlers"
	"discovery-backend/pipeline"
	"discovery-backend/profiles"
	"discovery-backend/repository"
	"discovery-backend/service"
	"discovery-backend/storage"
	"discovery-backend/taxonomy"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := initPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	exportStorage, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage initialized (%s)", cfg.Storage.Type)

	// Repositories
	caseRepo := repository.NewCaseRepository(db)
	jobRepo := repository.NewDiscoveryJobRepository(db)
	exportRepo := repository.NewExportRepository(db)
	taxonomyRepo := repository.NewTaxonomyRepository(db)

	catalog, err := loadTaxonomy(taxonomyRepo)
	if err != nil {
		log.Fatalf("Failed to load issue taxonomy: %v", err)
	}

	registry, err := profiles.Load()
	if err != nil {
		log.Fatalf("Failed to load discovery profiles: %v", err)
	}
	for _, p := range registry.All() {
		if missing := profiles.Audit(p); len(missing) > 0 {
			log.Printf("Warning: profile %s has no count for %v", p.Type(), missing)
		}
	}

	engine := pipeline.NewEngine(catalog, registry, cfg.Pipeline)
	log.Printf("Discovery engine ready (ceiling %d, oversize %s, household %s, %d workers)",
		cfg.Pipeline.Ceiling, cfg.Pipeline.Oversize, cfg.Pipeline.Household, cfg.Pipeline.Workers)

	discoveryService := service.NewDiscoveryService(
		service.DiscoveryWithCaseRepository(caseRepo),
		service.DiscoveryWithJobRepository(jobRepo),
		service.DiscoveryWithExportRepository(exportRepo),
		service.DiscoveryWithStorage(exportStorage),
		service.DiscoveryWithEngine(engine),
	)

	caseService := service.NewCaseService(
		service.WithCaseRepository(caseRepo),
		service.WithSelectionValidator(catalog),
	)

	caseHandler := handlers.NewCaseHandler(caseService)
	discoveryHandler := handlers.NewDiscoveryHandler(discoveryService)
	exportHandler := handlers.NewExportHandler(discoveryService)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		// Case endpoints
		api.POST("/cases", caseHandler.CreateCase)
		api.GET("/cases/:id", caseHandler.GetCase)

		// Discovery endpoints
		api.POST("/cases/:id/discovery", discoveryHandler.GenerateDiscovery)
		api.POST("/discovery/preview", discoveryHandler.PreviewDiscovery)

		// Job endpoints
		api.GET("/jobs/:id", discoveryHandler.GetJobStatus)

		// Export endpoints
		api.GET("/cases/:id/exports", exportHandler.ListExports)
		api.GET("/exports/:id", exportHandler.GetExport)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Postgres connection established")
	return pool, nil
}

// loadTaxonomy prefers the catalog tables and falls back to the embedded catalog
func loadTaxonomy(repo *repository.TaxonomyRepository) (*taxonomy.Catalog, error) {
	catalog, err := repo.Load(context.Background())
	if err == nil {
		log.Printf("Issue taxonomy loaded from database (%d categories)", len(catalog.Categories()))
		return catalog, nil
	}
	log.Printf("Warning: Failed to load issue taxonomy from database: %v. Using embedded catalog.", err)
	return taxonomy.Default()
}
