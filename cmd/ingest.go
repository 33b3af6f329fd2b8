package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"swasthya/src/ingest"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass over the staging directory",
	Long: `The ingest command loads every staged document, chunks and embeds the
text and rebuilds the vector index, then exits. It is the operational
equivalent of uploading a document, without the server.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	settingDefaultConfig()
}

func runIngest(cmd *cobra.Command, args []string) error {
	pointers, err := newPointerStore()
	if err != nil {
		return err
	}

	provider := newOllamaProvider(newOllamaClient())
	handle := newIndexHandle(newWeaviateSDK(), pointers)

	coordinator, err := newCoordinator(provider, handle, nil)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	coordinator.Progress = func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "embedding chunks")
		}
		bar.Add(1)
	}

	stats, err := coordinator.Execute(context.Background())
	if err != nil {
		if errors.Is(err, ingest.ErrNothingToIngest) {
			fmt.Println("Nothing to ingest: the staging directory holds no usable documents.")
			return nil
		}
		return err
	}

	fmt.Printf("Ingestion complete: %d documents, %d chunks indexed.\n", stats.Documents, stats.Chunks)

	return nil
}
