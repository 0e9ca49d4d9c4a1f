package server

import (
	"time"

	"github.com/glowly/glowly-backend/internal/model"
	"github.com/glowly/glowly-backend/internal/search"
)

type storeMessageRequest struct {
	ChatID   string              `json:"chat_id" binding:"required"`
	UID      string              `json:"uid" binding:"required"`
	Messages []model.ChatMessage `json:"messages" binding:"required"`
}

type storeMessageResponse struct {
	Message string `json:"message"`
}

type getMessagesResponse struct {
	Messages []model.ChatMessage `json:"messages"`
}

type chatTurnRequest struct {
	UID           string       `json:"uid" binding:"required"`
	ChatID        string       `json:"chat_id"`
	Message       string       `json:"message" binding:"required"`
	PhotoDataURLs []string     `json:"photo_data_urls"`
	History       []model.Turn `json:"history"`
	Country       string       `json:"country"`
}

type chatTurnResponse struct {
	Reply   string       `json:"reply"`
	History []model.Turn `json:"history"`
}

type workflowRequest struct {
	UID           string   `json:"uid" binding:"required"`
	ChatID        string   `json:"chat_id"`
	PhotoDataURLs []string `json:"photo_data_urls" binding:"required"`
	Country       string   `json:"country"`
}

type workflowResponse struct {
	Success      bool         `json:"success"`
	Verification string       `json:"verification,omitempty"`
	Analysis     string       `json:"analysis,omitempty"`
	Ratings      string       `json:"ratings,omitempty"`
	Shopping     string       `json:"shopping,omitempty"`
	History      []model.Turn `json:"history"`
	Error        string       `json:"error,omitempty"`
}

type memorySearchRequest struct {
	UID       string     `json:"uid" binding:"required"`
	Question  string     `json:"question" binding:"required"`
	Timestamp *time.Time `json:"timestamp"`
}

type memorySearchResponse struct {
	Result map[string]any `json:"result"`
}

type searchVectorDBRequest struct {
	Query     string    `json:"query" binding:"required"`
	UID       string    `json:"uid" binding:"required"`
	Timestamp time.Time `json:"timestamp" binding:"required"`
}

type searchVectorDBResponse struct {
	Results []search.Result `json:"results"`
}

type uploadVectorDBRequest struct {
	UID       string    `json:"uid" binding:"required"`
	Content   string    `json:"content" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
	Timestamp time.Time `json:"timestamp" binding:"required"`
}

type uploadVectorDBResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
