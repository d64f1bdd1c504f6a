package domain

import (
	"strings"
	"time"
)

// Alert 野生动物检测告警（入库后不可变）
// 可选字段使用指针，序列化时输出显式 null，下游聚合无需判断键是否存在
type Alert struct {
	ID          string    `json:"id"`
	AnimalLabel string    `json:"animalLabel"`
	Confidence  float64   `json:"confidenceScore"`
	ImageRef    *string   `json:"imageReference"`
	Location    *string   `json:"locationLabel"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	DetectedAt  time.Time `json:"timestamp"`
}

// AlertInput 告警入库请求（来自 HTTP POST /alert 或 MQTT 边缘上报）
// Confidence 使用指针以区分"未提供"和零值
type AlertInput struct {
	AnimalLabel string     `json:"animalLabel"`
	Confidence  *float64   `json:"confidenceScore"`
	ImageRef    *string    `json:"imageReference"`
	Location    *string    `json:"locationLabel"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	DetectedAt  *time.Time `json:"timestamp"`
}

// Validate 校验必填字段（animalLabel 和 confidenceScore 缺一不可）
func (in *AlertInput) Validate() error {
	if strings.TrimSpace(in.AnimalLabel) == "" {
		return &ValidationError{Field: "animalLabel", Reason: "is required"}
	}
	if in.Confidence == nil {
		return &ValidationError{Field: "confidenceScore", Reason: "is required"}
	}
	return nil
}
