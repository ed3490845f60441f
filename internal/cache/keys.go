package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func PipelineStatusKey(reelID uuid.UUID) string {
	return fmt.Sprintf("reel:status:%s", reelID)
}

func RunLockKey(reelID uuid.UUID) string {
	return fmt.Sprintf("reel:lock:%s", reelID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
