package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crewport/internal/db"
	"crewport/internal/documents"
	"crewport/internal/profile"
	"crewport/internal/server"
	"crewport/internal/storage"
	"crewport/internal/store"
	"crewport/internal/workflow"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	s3Client := s3.NewFromConfig(awsConfig)
	files := storage.NewS3Store(s3Client, config.S3BucketName, config.S3KeyPrefix)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	crewRepo := store.NewCrewRepository(pool)
	staffRepo := store.NewStaffRepository(pool)
	documentRepo := store.NewDocumentRepository(pool)
	adminRepo := store.NewAdminRepository(pool)

	documentSvc := documents.NewService(logger, files, documentRepo)
	profiles := profile.NewIssuer(logger, crewRepo)
	reviews := workflow.NewService(logger, crewRepo, staffRepo)

	srv, err := server.New(
		config,
		logger,
		crewRepo,
		staffRepo,
		adminRepo,
		documentSvc,
		profiles,
		reviews,
		files,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
