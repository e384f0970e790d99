package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/config"
	"github.com/leolibre/leolibre-backend/internal/model"
	"github.com/leolibre/leolibre-backend/internal/repository"
)

// RankingService serves club and per-resource rankings and pushes live
// updates over Redis pub/sub after each graded submission.
type RankingService struct {
	rankings *repository.RankingRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewRankingService creates a new RankingService.
func NewRankingService(rankings *repository.RankingRepository, rdb *redis.Client, log zerolog.Logger) *RankingService {
	return &RankingService{
		rankings: rankings,
		rdb:      rdb,
		log:      log.With().Str("component", "ranking_service").Logger(),
	}
}

// ClubRanking returns the club's members ordered by accumulated score.
func (s *RankingService) ClubRanking(ctx context.Context, clubID int64) ([]model.ClubRankingEntry, error) {
	entries, err := s.rankings.ClubRanking(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("club ranking: %w", err)
	}
	return entries, nil
}

// ResourceRanking returns everyone who answered the resource's quiz,
// ordered by score.
func (s *RankingService) ResourceRanking(ctx context.Context, clubID, resourceID int64) ([]model.ResourceRankingEntry, error) {
	entries, err := s.rankings.ResourceRanking(ctx, clubID, resourceID)
	if err != nil {
		return nil, fmt.Errorf("resource ranking: %w", err)
	}
	return entries, nil
}

// NotifyClubRanking recomputes a club's ranking and publishes it on the
// club's channel. Failures are logged; submissions never block on this.
func (s *RankingService) NotifyClubRanking(ctx context.Context, clubID int64) {
	entries, err := s.rankings.ClubRanking(ctx, clubID)
	if err != nil {
		s.log.Error().Err(err).Int64("club_id", clubID).Msg("ranking recompute failed")
		return
	}

	payload, err := json.Marshal(model.RankingUpdate{ClubID: clubID, Entries: entries})
	if err != nil {
		s.log.Error().Err(err).Int64("club_id", clubID).Msg("ranking marshal failed")
		return
	}

	channel := config.CacheKey.ClubRankingChannel(clubID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("channel", channel).Msg("ranking publish failed")
	}
}

// SubscribeClubRanking opens a pub/sub subscription on a club's ranking
// channel. The caller owns the subscription and must close it.
func (s *RankingService) SubscribeClubRanking(ctx context.Context, clubID int64) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.ClubRankingChannel(clubID))
}
