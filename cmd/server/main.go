package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	jobapp "streamsplit/internal/application/job"
	"streamsplit/internal/config"
	"streamsplit/internal/infrastructure/ffmpeg"
	"streamsplit/internal/infrastructure/filesystem"
	"streamsplit/internal/infrastructure/jobstore"
	httptransport "streamsplit/internal/transport/http"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadServer()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store := filesystem.NewStore(cfg.UploadsDir, cfg.OutputsDir)
	if err := store.EnsureDirs(); err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	var jobs jobapp.Store
	if cfg.JobStoreDSN != "" {
		pg, err := jobstore.NewPostgres(cfg.JobStoreDSN)
		if err != nil {
			log.Fatalf("job store init failed: %v", err)
		}
		defer pg.Close()
		jobs = pg
		logger.Info("using postgres job store")
	} else {
		jobs = jobstore.NewMemory()
	}

	runner := ffmpeg.NewRunner()
	pipeline := jobapp.NewSplitPipeline(runner, runner, logger)
	jobService := jobapp.NewService(jobs, store, pipeline, logger)
	jobService.DefaultMaxLength = cfg.MaxSegmentLength

	handler := httptransport.NewHandler(jobService, store)
	router := httptransport.NewRouter(handler, "")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	})

	log.Printf("Server started on %s", cfg.ServerAddr)
	log.Fatal(http.ListenAndServe(cfg.ServerAddr, c.Handler(router)))
}
