package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"wildtrack-api/internal/domain"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		// 上传中断是客户端问题，和空 body / 坏 JSON 一样按 400 处理
		return &domain.ValidationError{Field: "body", Reason: "could not be read"}
	}
	if len(body) == 0 {
		return &domain.ValidationError{Field: "body", Reason: "is required"}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "is not valid JSON"}
	}
	return nil
}

// writeError 错误分类映射：校验 400、不存在 404，其余一律 500，
// 存储层细节只进日志，不回给调用方
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
		return
	}

	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
		return
	}

	logger.Error("Request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
