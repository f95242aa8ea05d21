package main

import (
	"fmt"
	"os"
	"time"

	courserepo "github.com/edukraft/courseforge-backend/internal/data/repos/course"
	"github.com/edukraft/courseforge-backend/internal/db"
	"github.com/edukraft/courseforge-backend/internal/handlers"
	"github.com/edukraft/courseforge-backend/internal/pkg/envutil"
	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
	"github.com/edukraft/courseforge-backend/internal/server"
	"github.com/edukraft/courseforge-backend/internal/services"
	"github.com/edukraft/courseforge-backend/internal/services/structurecache"
	"github.com/edukraft/courseforge-backend/internal/syllabus"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres (primary cache tier). A dead database is survivable: the
	// file tier takes over below.
	var primary structurecache.StructureStore
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Warn("Postgres init failed, running on the file tier only", "error", err)
	} else {
		if err := postgresService.AutoMigrateAll(); err != nil {
			log.Warn("Postgres auto migration failed", "error", err)
		}
		thePG := postgresService.DB()

		// Repos
		log.Info("Setting up Repos from main...")
		structureRepo := courserepo.NewStructureRepo(thePG, log)
		usageRepo := courserepo.NewStructureUsageRepo(thePG, log)
		primary = structurecache.NewDBStore(thePG, log, structureRepo, usageRepo, 5*time.Second)
	}

	// File tier
	cacheDir := envutil.Str("STRUCTURE_CACHE_DIR", "./data/structure_cache")
	fallback, err := structurecache.NewFileStore(cacheDir, log)
	if err != nil {
		log.Error("Could not init file structure store", "error", err)
		os.Exit(1)
	}
	// Services
	log.Info("Setting up Services from main...")
	cacheService := structurecache.NewCacheService(log, primary, fallback)

	themes := syllabus.DefaultThemes()
	if themesPath := envutil.Str("THEMES_FILE", ""); themesPath != "" {
		loaded, err := syllabus.LoadThemes(themesPath)
		if err != nil {
			log.Warn("Could not load themes file, using defaults", "path", themesPath, "error", err)
		} else {
			themes = loaded
		}
	}

	aiClient, err := services.NewAIClient(log)
	if err != nil {
		log.Warn("Could not init AIClient, structures come from the baseline generator", "error", err)
	}

	progressBus := services.NewProgressBus(log)
	defer progressBus.Close()

	generationService := services.NewCourseGenerationService(log, cacheService, aiClient, progressBus, themes)

	// Handlers
	log.Info("Setting up handlers from main...")
	structureHandler := handlers.NewStructureHandler(log, generationService, cacheService, progressBus)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		StructureHandler: structureHandler,
	})

	port := envutil.Str("PORT", "8080")
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
