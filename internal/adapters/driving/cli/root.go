// Package cli implements the archon command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	yamlcatalog "github.com/archon-search/archon/internal/adapters/driven/catalog/yaml"
	configfile "github.com/archon-search/archon/internal/adapters/driven/config/file"
	ollamaembed "github.com/archon-search/archon/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/archon-search/archon/internal/adapters/driven/embedding/openai"
	"github.com/archon-search/archon/internal/adapters/driven/keyword"
	ollamallm "github.com/archon-search/archon/internal/adapters/driven/llm/ollama"
	openaillm "github.com/archon-search/archon/internal/adapters/driven/llm/openai"
	"github.com/archon-search/archon/internal/adapters/driven/loader"
	"github.com/archon-search/archon/internal/adapters/driven/storage/sqlite"
	"github.com/archon-search/archon/internal/core/ports/driven"
	"github.com/archon-search/archon/internal/core/ports/driving"
	"github.com/archon-search/archon/internal/core/services"
	"github.com/archon-search/archon/internal/logger"
	"github.com/archon-search/archon/internal/postprocessors/chunker"
)

// Configuration keys consumed by the CLI wiring.
const (
	keyAutoDelete        = "auto_delete_missing_files"
	keyChangeDetection   = "change_detection"
	keyWorkers           = "workers"
	keyChunkSize         = "chunk_size"
	keyChunkOverlap      = "chunk_overlap"
	keyEmbeddingProvider = "embedding_provider"
	keyEmbeddingModel    = "embedding_model"
	keyEmbeddingBaseURL  = "embedding_base_url"
	keyLLMProvider       = "llm_provider"
	keyLLMModel          = "llm_model"
	keyFailureThreshold  = "failure_threshold"
)

var version = "dev"

var (
	verboseFlag bool
	configDir   string
	dataDir     string
	logFile     string
)

// wired marks the services as initialised, letting tests inject their
// own implementations before Execute runs.
var wired bool

var (
	configStore   driven.ConfigStore
	sourceCatalog *yamlcatalog.Catalog
	docIndex      driven.DocumentIndex
	keywordIndex  driven.KeywordIndex
	embedder      driven.EmbeddingService
	llm           driven.LLMService
	synchronizer  driving.Synchronizer
	searchService driving.SearchService
	askService    driving.AskService
)

var rootCmd = &cobra.Command{
	Use:   "archon",
	Short: "Incremental document sync and retrieval",
	Long: `Archon keeps a local chunked document index in sync with configured
data sources and retrieves from it with hybrid keyword and semantic search.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		logger.SetFile(logFile)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		if wired {
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.archon)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.archon/data)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to a rotating file")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// initServices wires the adapters into the core services.
func initServices() error {
	var err error

	configStore, err = configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	catalogPath := ""
	if configDir != "" {
		catalogPath = configDir + "/sources.yaml"
	}
	sourceCatalog, err = yamlcatalog.New(catalogPath)
	if err != nil {
		return fmt.Errorf("open source catalog: %w", err)
	}

	docIndex, err = sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open document index: %w", err)
	}

	embedder = buildEmbedder()
	llm = buildLLM()

	// The keyword index is derived in-memory state: hydrate it from
	// the persisted chunk set so search works without a prior sync in
	// this process.
	bm25 := keyword.New()
	keywordIndex = bm25
	if chunks, err := docIndex.AllChunks(context.Background()); err == nil {
		if err := bm25.Rebuild(context.Background(), chunks); err != nil {
			logger.Warn("Keyword index rebuild failed: %v", err)
		}
	}

	registry := services.NewSourceRegistry(sourceCatalog, configStore)

	var strategy services.ExecutionStrategy
	if workers := configStore.GetInt(keyWorkers); workers > 1 {
		strategy = services.NewConcurrentStrategy(workers)
	} else {
		strategy = services.NewSequentialStrategy()
	}

	split := chunker.New(
		chunker.WithChunkSize(configStore.GetInt(keyChunkSize)),
		chunker.WithOverlap(configStore.GetInt(keyChunkOverlap)),
	)

	changeDetection := true
	if _, set := configStore.Get(keyChangeDetection); set {
		changeDetection = configStore.GetBool(keyChangeDetection)
	}

	synchronizer = services.NewReconciler(
		registry,
		docIndex,
		loader.NewFileLoader(),
		split,
		embedder,
		keywordIndex,
		strategy,
		services.ReconcilerConfig{
			AutoDeleteMissing: configStore.GetBool(keyAutoDelete),
			ChangeDetection:   changeDetection,
			FailureThreshold:  configStore.GetInt(keyFailureThreshold),
		},
	)

	searchService = services.NewRetrievalService(docIndex, keywordIndex, embedder)
	askService = services.NewAnswerService(searchService, llm, 0)
	wired = true
	return nil
}

// buildEmbedder constructs the configured embedding service, nil when
// none is configured.
func buildEmbedder() driven.EmbeddingService {
	switch configStore.GetString(keyEmbeddingProvider) {
	case "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: configStore.GetString(keyEmbeddingBaseURL),
			Model:   configStore.GetString(keyEmbeddingModel),
		})
	case "openai":
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  configStore.GetString(keyEmbeddingModel),
		})
		if err != nil {
			logger.Warn("OpenAI embeddings disabled: %v", err)
			return nil
		}
		return svc
	default:
		return nil
	}
}

// buildLLM constructs the configured LLM service, nil when none is
// configured.
func buildLLM() driven.LLMService {
	switch configStore.GetString(keyLLMProvider) {
	case "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			Model: configStore.GetString(keyLLMModel),
		})
	case "openai":
		svc, err := openaillm.NewLLMService(openaillm.Config{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  configStore.GetString(keyLLMModel),
		})
		if err != nil {
			logger.Warn("OpenAI LLM disabled: %v", err)
			return nil
		}
		return svc
	default:
		return nil
	}
}

// closeServices releases adapter resources.
func closeServices() {
	if closer, ok := docIndex.(io.Closer); ok {
		closer.Close() //nolint:errcheck
	}
	if embedder != nil {
		embedder.Close() //nolint:errcheck
	}
	if llm != nil {
		llm.Close() //nolint:errcheck
	}
}
