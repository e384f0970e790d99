package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ClubRankingChannel returns the Redis PubSub channel for a club's live ranking.
func (r *CacheKeyStruct) ClubRankingChannel(clubID int64) string {
	return fmt.Sprintf("club:%d:ranking", clubID)
}

var CacheKey = NewCacheKeyStruct()
