package cmd

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpHdlr "swasthya/handler/http"
	"swasthya/src/answer"
	"swasthya/src/fsutil"
	"swasthya/src/index"
	"swasthya/src/ingest"
	"swasthya/src/log"
	"swasthya/src/storage/minioctrl"
	"swasthya/src/storage/postgres/ingestionctrl"
	"swasthya/src/transliterate"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the health-information assistant server",
	Long: `The serve command starts the HTTP server for the web chat channel,
the SMS gateway webhook and the admin document uploader. Unless the queue
driver is set to amqp, ingestion runs are processed in-process.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	settingDefaultConfig()
}

func runServe(cmd *cobra.Command, args []string) error {
	db, err := openPostgres()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	runs, err := ingestionctrl.NewPostgresRepository(db)
	if err != nil {
		return err
	}

	pointers, err := newPointerStore()
	if err != nil {
		return err
	}

	ollamaClient := newOllamaClient()
	provider := newOllamaProvider(ollamaClient)
	weaviateSDK := newWeaviateSDK()
	handle := newIndexHandle(weaviateSDK, pointers)

	minioService, err := minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		false,
	)
	if err != nil {
		return err
	}

	archiveBucket := viper.GetString("minio.archive_bucket")
	if err := minioService.EnsureBucketExists(context.Background(), archiveBucket); err != nil {
		return err
	}

	// Ingestion scheduling: in-process channel by default, AMQP when the
	// worker runs as a separate process.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wmLogger := watermill.NewStdLogger(false, false)
	var publisher message.Publisher

	switch viper.GetString("queue.driver") {
	case "amqp":
		amqpPublisher, err := amqp.NewPublisher(
			amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
			wmLogger,
		)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	default:
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		defer pubSub.Close()
		publisher = pubSub

		coordinator, err := newCoordinator(provider, handle, runs)
		if err != nil {
			return err
		}

		go func() {
			if err := ingest.Consume(ctx, pubSub, coordinator); err != nil {
				log.Error(err, "ingestion consumer stopped")
			}
		}()
	}

	ingestService := ingest.NewService(runs, publisher)

	documents, err := httpHdlr.NewDocumentStore(fsutil.NewLocalFileStore(), viper.GetString("staging.dir"))
	if err != nil {
		return err
	}

	synthesizer := answer.NewSynthesizer(
		provider,
		index.NewRetriever(handle, viper.GetInt("rag.top_k")),
		provider,
		backendTimeout(),
	)

	health := httpHdlr.HealthDeps{
		Postgres: func(ctx context.Context) error {
			return sqlDB.PingContext(ctx)
		},
		Valkey: func(ctx context.Context) error {
			_, err := pointers.Get(ctx)
			if errors.Is(err, index.ErrIndexUnavailable) {
				return nil
			}
			return err
		},
		Weaviate: func(ctx context.Context) error {
			_, err := weaviateSDK.ClassExists(ctx, "Health")
			return err
		},
		Ollama: func(ctx context.Context) error {
			_, err := ollamaClient.Models(ctx)
			return err
		},
	}

	handler := httpHdlr.NewHandler(
		synthesizer,
		transliterate.New(),
		ingestService,
		documents,
		minioService,
		archiveBucket,
		health,
	)

	// Setup gin router
	r := gin.Default()
	handler.RegisterRoutes(r)

	srv := &nethttp.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			log.Error(err, "Failed to start server")
		}
	}()

	log.Info("server started", "port", viper.GetString("server.port"))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")

	return nil
}
