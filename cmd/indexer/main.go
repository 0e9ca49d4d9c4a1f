// Command indexer ingests reference documents into the memory index:
// chunk, embed, upload. It can also bootstrap the index schema.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/glowly/glowly-backend/internal/config"
	"github.com/glowly/glowly-backend/internal/embedding"
	"github.com/glowly/glowly-backend/internal/knowledge"
	"github.com/glowly/glowly-backend/internal/search"
)

func main() {
	var (
		dir         = flag.String("dir", "docs", "directory of .txt/.md/.pdf documents to ingest")
		uid         = flag.String("uid", "", "user id to attach to the uploaded memories")
		chunkSize   = flag.Int("chunk-size", knowledge.DefaultChunkSize, "maximum chunk length in bytes")
		createIndex = flag.Bool("create-index", false, "create or update the index schema before ingesting")
		indexOnly   = flag.Bool("index-only", false, "only create the index schema, skip ingestion")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg := config.Load()
	ctx := context.Background()

	index, err := search.NewClient(cfg.AzureSearchEndpoint, cfg.AzureSearchAPIKey, cfg.AzureSearchIndex)
	if err != nil {
		log.Fatal().Err(err).Msg("search client")
	}

	if *createIndex || *indexOnly {
		if err := index.EnsureIndex(ctx, embedding.DefaultDimensions); err != nil {
			log.Fatal().Err(err).Msg("ensure index")
		}
		log.Info().Str("index", cfg.AzureSearchIndex).Msg("index schema applied")
		if *indexOnly {
			return
		}
	}

	if *uid == "" {
		log.Fatal().Msg("-uid is required for ingestion")
	}

	embedder, err := embedding.NewClient(ctx, cfg.GeminiAPIKey, embedding.DefaultDimensions)
	if err != nil {
		log.Fatal().Err(err).Msg("embedding client")
	}

	chunks, err := knowledge.LoadDir(*dir, *chunkSize)
	if err != nil {
		log.Fatal().Err(err).Msg("load documents")
	}
	if len(chunks) == 0 {
		log.Warn().Str("dir", *dir).Msg("no documents found, nothing to ingest")
		return
	}

	now := time.Now().UTC()
	for _, chunk := range chunks {
		vector, err := embedder.Embed(ctx, chunk.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Fatal().Err(err).Str("file", chunk.Filename).Msg("embed chunk")
		}

		id, err := index.Upload(ctx, *uid, chunk.Text, vector, now)
		if err != nil {
			log.Fatal().Err(err).Str("file", chunk.Filename).Msg("upload chunk")
		}
		log.Info().Str("file", chunk.Filename).Str("id", id).Msg("chunk uploaded")
	}

	log.Info().Int("chunks", len(chunks)).Str("index", cfg.AzureSearchIndex).Msg("ingestion complete")
}
