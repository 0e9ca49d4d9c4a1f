package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/glowly/glowly-backend/internal/memory"
	"github.com/glowly/glowly-backend/internal/model"
	"github.com/glowly/glowly-backend/internal/search"
)

func (s *Server) storeMessage(c *gin.Context) {
	var req storeMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.chats.Append(c.Request.Context(), req.ChatID, req.UID, req.Messages); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, storeMessageResponse{Message: "Message stored"})
}

func (s *Server) getMessages(c *gin.Context) {
	chatID := c.Query("chat_id")
	uid := c.Query("uid")
	if chatID == "" && uid == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "chat_id or uid is required"})
		return
	}

	var (
		messages []model.ChatMessage
		err      error
	)
	if chatID != "" {
		messages, err = s.chats.Messages(c.Request.Context(), chatID)
	} else {
		messages, err = s.chats.MessagesByUID(c.Request.Context(), uid)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	if messages == nil {
		messages = []model.ChatMessage{}
	}
	c.JSON(http.StatusOK, getMessagesResponse{Messages: messages})
}

func (s *Server) chatTurn(c *gin.Context) {
	var req chatTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	country := req.Country
	if country == "" {
		country = s.defaultCountry
	}

	history := append([]model.Turn{}, req.History...)
	history = append(history, model.Turn{Role: model.RoleUser, Content: req.Message})

	// A memory miss must not block the turn.
	memoryContext := ""
	if outcome, err := s.memory.Search(ctx, req.Message, req.UID, time.Time{}, nil); err != nil {
		log.Warn().Err(err).Str("uid", req.UID).Msg("memory consult failed")
	} else if outcome.Kind == memory.OutcomeFound {
		memoryContext = outcome.Answer
	}

	reply, err := s.cosmetist.ChatTurn(ctx, req.PhotoDataURLs, history, country, memoryContext)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	history = append(history, model.Turn{Role: model.RoleAssistant, Content: reply})

	chatID := req.ChatID
	if chatID == "" {
		chatID = req.UID
	}
	persisted := stampTurns([]model.Turn{
		{Role: model.RoleUser, Content: req.Message},
		{Role: model.RoleAssistant, Content: reply},
	})
	if err := s.chats.Append(ctx, chatID, req.UID, persisted); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, chatTurnResponse{Reply: reply, History: history})
}

func (s *Server) runWorkflow(c *gin.Context) {
	var req workflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	country := req.Country
	if country == "" {
		country = s.defaultCountry
	}

	result, err := s.cosmetist.RunInitialWorkflow(ctx, req.PhotoDataURLs, country)
	if err != nil {
		// Workflow failures surface as a structured result, not a transport
		// error.
		c.JSON(http.StatusOK, workflowResponse{
			Success: false,
			History: []model.Turn{},
			Error:   err.Error(),
		})
		return
	}

	resp := workflowResponse{
		Success:      true,
		Verification: result.Verification,
		Analysis:     result.Analysis,
		Ratings:      result.Ratings,
		Shopping:     result.Shopping,
		History:      result.History,
	}
	if message, failed := result.VerificationFailure(); failed {
		resp.Success = false
		resp.Error = message
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = req.UID
	}
	if chatID != "" && len(result.History) > 0 {
		if err := s.chats.Append(ctx, chatID, req.UID, stampTurns(result.History)); err != nil {
			log.Warn().Err(err).Str("chat_id", chatID).Msg("persist workflow history failed")
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) memorySearch(c *gin.Context) {
	var req memorySearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cutoff := time.Time{}
	if req.Timestamp != nil {
		cutoff = *req.Timestamp
	}

	outcome, err := s.memory.Search(c.Request.Context(), req.Question, req.UID, cutoff, nil)
	if err != nil {
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, memorySearchResponse{Result: outcome.Response()})
}

func (s *Server) searchVectorDB(c *gin.Context) {
	var req searchVectorDBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	results, err := s.vectors.Search(c.Request.Context(), search.Query{
		Text:   req.Query,
		UID:    req.UID,
		Before: req.Timestamp,
		Top:    20,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	if results == nil {
		results = []search.Result{}
	}
	c.JSON(http.StatusOK, searchVectorDBResponse{Results: results})
}

func (s *Server) uploadVectorDB(c *gin.Context) {
	var req uploadVectorDBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if _, err := s.vectors.Upload(c.Request.Context(), req.UID, req.Content, req.Embedding, req.Timestamp); err != nil {
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, uploadVectorDBResponse{Message: "Documents uploaded"})
}

// stampTurns converts turns into persisted messages with the storage
// timestamp and content type attached.
func stampTurns(turns []model.Turn) []model.ChatMessage {
	now := time.Now().UTC()
	messages := make([]model.ChatMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, model.ChatMessage{
			Role:        t.Role,
			Content:     t.Content,
			Timestamp:   now,
			ContentType: "text",
		})
	}
	return messages
}
