package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/glowly/glowly-backend/internal/config"
	"github.com/glowly/glowly-backend/internal/cosmetist"
	"github.com/glowly/glowly-backend/internal/embedding"
	"github.com/glowly/glowly-backend/internal/llm"
	"github.com/glowly/glowly-backend/internal/memory"
	"github.com/glowly/glowly-backend/internal/repository"
	"github.com/glowly/glowly-backend/internal/search"
	"github.com/glowly/glowly-backend/internal/serper"
	"github.com/glowly/glowly-backend/internal/server"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx := context.Background()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connect")
	}
	defer func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect")
		}
	}()

	chats := repository.NewMongoChatRepository(mongoClient.Database(cfg.MongoDB), "chats")

	chatModel, err := llm.NewClient(llm.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		log.Fatal().Err(err).Msg("openai client")
	}
	memoryModel, err := llm.NewClient(llm.OpenRouterBaseURL, cfg.OpenRouterKey, cfg.OpenRouterModel)
	if err != nil {
		log.Fatal().Err(err).Msg("openrouter client")
	}
	shopping, err := serper.NewClient(cfg.SerperAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("serper client")
	}
	embedder, err := embedding.NewClient(ctx, cfg.GeminiAPIKey, embedding.DefaultDimensions)
	if err != nil {
		log.Fatal().Err(err).Msg("embedding client")
	}
	index, err := search.NewClient(cfg.AzureSearchEndpoint, cfg.AzureSearchAPIKey, cfg.AzureSearchIndex)
	if err != nil {
		log.Fatal().Err(err).Msg("search client")
	}

	retriever := memory.NewIndexRetriever(embedder, index)
	memoryAgent := memory.NewAgent(memoryModel, retriever)
	chatAgent := cosmetist.NewAgent(chatModel, shopping)

	srv := server.New(chats, chatAgent, memoryAgent, index, cfg.DefaultCountry)

	log.Info().Str("port", cfg.HTTPPort).Msg("glowly backend listening")
	if err := srv.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
}

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
