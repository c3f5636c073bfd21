package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"galaxy/artifact"
	"galaxy/config"
	"galaxy/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		port     = flag.String("port", cfg.Port, "Listen address")
		dataFile = flag.String("data", cfg.DataFile, "Analysis payload served by /galaxy/final_file")
		root     = flag.String("root", cfg.NotebookRoot, "Directory notebook paths are resolved against")
	)
	flag.Parse()
	cfg.Port, cfg.DataFile, cfg.NotebookRoot = *port, *dataFile, *root

	var store artifact.Store
	if cfg.Artifact.Enabled {
		s3, err := artifact.NewS3Store(cfg.Artifact)
		if err != nil {
			log.Fatalf("Failed to initialize artifact store: %v", err)
		}
		store = s3
		log.Printf("Artifact store: %s/%s", cfg.Artifact.Endpoint, cfg.Artifact.Bucket)
	} else if cfg.Env == "local" {
		store = artifact.NewMemoryStore("memory://" + config.DefaultBucket)
		log.Printf("Artifact store: in memory")
	}

	h, err := server.NewHandler(cfg, store)
	if err != nil {
		log.Fatalf("Failed to initialize handler: %v", err)
	}
	srv := server.New(cfg.Port, h.Routes())

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
