// internal/service/promotion/infrastructure/adapter/keys.go
package adapter

import "fmt"

// Redis key 的统一生成，保证各适配器用同一套命名。

func queueKey(promotionID string) string {
	return fmt.Sprintf("promotion:%s:queue", promotionID)
}

func joinedKey(promotionID string) string {
	return fmt.Sprintf("promotion:%s:joined", promotionID)
}

func winnerSeqKey(promotionID string) string {
	return fmt.Sprintf("promotion:%s:winner_seq", promotionID)
}

func cacheKey(promotionID string) string {
	return fmt.Sprintf("promotion:cache:%s", promotionID)
}

const activeListKey = "promotion:active:list"
