package domain

import "time"

// 空快照时的哨兵值
const (
	NoValueSentinel  = "not specified"
	NoAlertsSentinel = "no alerts yet"
)

// Digest 告警历史的固定形状统计摘要（SummaryBuilder 的输出）
type Digest struct {
	Total                 int            `json:"total"`
	AnimalCounts          map[string]int `json:"animalCounts"`
	LocationCounts        map[string]int `json:"locationCounts"`
	MostFrequentAnimal    string         `json:"mostFrequentAnimal"`
	MostFrequentLocation  string         `json:"mostFrequentLocation"`
	MostRecentTimestamp   *time.Time     `json:"mostRecentTimestamp"`
	ElapsedSinceLastAlert string         `json:"elapsedSinceLastAlert"`
}

// SummaryAggregate 仓库层 SQL 聚合结果（避免为每次摘要全量扫描告警历史）
type SummaryAggregate struct {
	Total          int
	AnimalCounts   map[string]int
	LocationCounts map[string]int
	MostRecent     *time.Time
}
