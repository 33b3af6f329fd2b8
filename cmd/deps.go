package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"swasthya/src/fsutil"
	"swasthya/src/index"
	indexvalkey "swasthya/src/index/valkey"
	"swasthya/src/ingest"
	"swasthya/src/integrations/ollama"
	"swasthya/src/storage/postgres/ingestionctrl"
	"swasthya/src/storage/weaviate"
)

func openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))

	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func newOllamaClient() *ollama.Client {
	return ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: backendTimeout(),
	})
}

func newOllamaProvider(client *ollama.Client) *ollama.Provider {
	return ollama.NewProvider(
		client,
		viper.GetString("rag.embedding_model"),
		viper.GetString("rag.generation_model"),
		viper.GetFloat64("rag.temperature"),
	)
}

func newWeaviateSDK() *weaviate.SDK {
	client := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.host"),
		Scheme: "http",
	})
	return weaviate.NewSDK(client)
}

func newPointerStore() (index.PointerStore, error) {
	addr := fmt.Sprintf("%s:%s",
		viper.GetString("valkey.host"),
		viper.GetString("valkey.port"))
	return indexvalkey.NewPointerStore(addr)
}

func newIndexHandle(sdk *weaviate.SDK, pointers index.PointerStore) *index.Handle {
	return index.NewHandle(sdk, pointers, viper.GetString("rag.embedding_model"))
}

func newCoordinator(embedder ingest.Embedder, idx index.Index, runs ingestionctrl.Repository) (*ingest.Coordinator, error) {
	chunker, err := ingest.NewChunker(
		viper.GetInt("rag.chunk_size"),
		viper.GetInt("rag.chunk_overlap"),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid chunk geometry: %w", err)
	}

	loader := ingest.NewLoader(fsutil.NewLocalFileStore(), viper.GetString("staging.dir"))

	return ingest.NewCoordinator(loader, chunker, embedder, idx, runs), nil
}

func backendTimeout() time.Duration {
	timeout, err := time.ParseDuration(viper.GetString("rag.backend_timeout"))
	if err != nil {
		return 60 * time.Second
	}
	return timeout
}
