package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"swasthya/src/ingest"
	"swasthya/src/log"
	"swasthya/src/storage/postgres/ingestionctrl"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a standalone ingestion worker",
	Long: `The worker command consumes scheduled ingestion runs from AMQP and
executes the load, chunk, embed and index-rebuild pipeline. Use it when the
server runs with QUEUE_DRIVER=amqp.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
	settingDefaultConfig()
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	provider := newOllamaProvider(newOllamaClient())
	handle := newIndexHandle(newWeaviateSDK(), pointers)

	coordinator, err := newCoordinator(provider, handle, runs)
	if err != nil {
		return err
	}

	subscriber, err := amqp.NewSubscriber(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return err
	}
	defer subscriber.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down worker...")
		cancel()
	}()

	log.Info("worker started", "topic", ingest.RunsTopic)

	return ingest.Consume(ctx, subscriber, coordinator)
}
