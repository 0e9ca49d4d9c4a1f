// Package server exposes the backend's HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/glowly/glowly-backend/internal/cosmetist"
	"github.com/glowly/glowly-backend/internal/memory"
	"github.com/glowly/glowly-backend/internal/model"
	"github.com/glowly/glowly-backend/internal/repository"
	"github.com/glowly/glowly-backend/internal/search"
)

// ChatAgent is the cosmetist surface the server drives.
type ChatAgent interface {
	ChatTurn(ctx context.Context, photoDataURLs []string, history []model.Turn, country, memoryContext string) (string, error)
	RunInitialWorkflow(ctx context.Context, photoDataURLs []string, country string) (*cosmetist.WorkflowResult, error)
}

// MemoryAgent answers questions from stored history.
type MemoryAgent interface {
	Search(ctx context.Context, question, uid string, cutoff time.Time, seed []memory.Chunk) (memory.Outcome, error)
}

// VectorStore is the direct index surface behind the /search endpoints.
type VectorStore interface {
	Search(ctx context.Context, q search.Query) ([]search.Result, error)
	Upload(ctx context.Context, uid, content string, embedding []float32, timestamp time.Time) (string, error)
}

// Server wires the HTTP routes to the agents and stores.
type Server struct {
	router         *gin.Engine
	chats          repository.ChatRepository
	cosmetist      ChatAgent
	memory         MemoryAgent
	vectors        VectorStore
	defaultCountry string
}

// New builds the Server and registers all routes.
func New(chats repository.ChatRepository, chatAgent ChatAgent, memoryAgent MemoryAgent, vectors VectorStore, defaultCountry string) *Server {
	s := &Server{
		chats:          chats,
		cosmetist:      chatAgent,
		memory:         memoryAgent,
		vectors:        vectors,
		defaultCountry: defaultCountry,
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	chat := router.Group("/chat")
	{
		chat.POST("/store-message", s.storeMessage)
		chat.GET("/get-messages", s.getMessages)
		chat.POST("/turn", s.chatTurn)
		chat.POST("/workflow", s.runWorkflow)
		chat.POST("/memory-search", s.memorySearch)
	}

	router.POST("/conversation", s.memorySearch)

	searchGroup := router.Group("/search")
	{
		searchGroup.POST("/search-vector-db", s.searchVectorDB)
		searchGroup.POST("/upload", s.uploadVectorDB)
	}

	s.router = router
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
