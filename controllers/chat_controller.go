package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gracechapel/churchweb/utils"
)

// maxHistoryMessages caps the conversation window sent to the model at the
// last six exchanges.
const maxHistoryMessages = 12

// ChatController answers visitor questions with an LLM grounded in current
// site content, falling back to canned keyword answers when the model is
// unavailable.
type ChatController struct {
	db *gorm.DB
}

// NewChatController creates a new ChatController instance.
func NewChatController(db *gorm.DB) *ChatController {
	return &ChatController{db: db}
}

// Chat handles a visitor message. Public, rate limited.
func (c *ChatController) Chat(ctx *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required,min=1"`
		History []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"history"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40085, "message is required")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		utils.Error(ctx, http.StatusBadRequest, 40085, "message is required")
		return
	}

	messages := []utils.ChatMessage{
		{Role: "system", Content: utils.BuildKnowledgeBase(c.db)},
	}

	history := req.History
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	for _, h := range history {
		role := h.Role
		if role != "user" && role != "assistant" {
			continue
		}
		content := strings.TrimSpace(h.Content)
		if content == "" {
			continue
		}
		messages = append(messages, utils.ChatMessage{Role: role, Content: content})
	}
	messages = append(messages, utils.ChatMessage{Role: "user", Content: message})

	reply, err := utils.ChatCompletion(ctx.Request.Context(), messages)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			utils.Sugar.Warnf("chat completion failed, using fallback: %v", err)
		}
		utils.Success(ctx, gin.H{
			"reply":    utils.FallbackAnswer(message),
			"fallback": true,
		})
		return
	}

	utils.Success(ctx, gin.H{"reply": reply, "fallback": false})
}
