package httpapi

import (
	"net/http"

	"wildtrack-api/internal/service"

	"go.uber.org/zap"
)

// ChatHandler 问答 Handler
type ChatHandler struct {
	chat   service.ChatService
	logger *zap.Logger
}

// NewChatHandler 创建问答 Handler
func NewChatHandler(chat service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

type chatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

// Chat POST /api/chat 回答关于告警历史的自由提问
// provider 失败不产生错误响应：网关内部已兜底为 fallback 回复
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	reply, err := h.chat.Ask(r.Context(), req.Message, req.Language)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
