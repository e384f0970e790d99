package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/model"
	"github.com/leolibre/leolibre-backend/internal/repository"
)

// Common club and membership errors.
var (
	ErrClubNotFound    = errors.New("club not found")
	ErrAlreadyMember   = errors.New("user is already an active member")
	ErrRequestPending  = errors.New("a join request is already pending")
	ErrRequestNotFound = errors.New("join request not found")
	ErrNotMember       = errors.New("user is not a member of this club")
	ErrFounderLeaving  = errors.New("the founder cannot leave their own club")
)

// ClubService handles club lifecycle and membership.
type ClubService struct {
	clubs   *repository.ClubRepository
	members *repository.MembershipRepository
	auth    *AuthService
	log     zerolog.Logger
}

// NewClubService creates a new ClubService.
func NewClubService(clubs *repository.ClubRepository, members *repository.MembershipRepository, auth *AuthService, log zerolog.Logger) *ClubService {
	return &ClubService{
		clubs:   clubs,
		members: members,
		auth:    auth,
		log:     log.With().Str("component", "club_service").Logger(),
	}
}

// CreateClub creates a club, enrolls the creator as its founder, and mints
// a founder token scoped to the new club.
func (s *ClubService) CreateClub(ctx context.Context, userID int64, req *model.CreateClubRequest) (*model.Club, string, error) {
	club := &model.Club{
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		IsAcademic:  req.IsAcademic,
	}
	if err := s.clubs.Create(ctx, club); err != nil {
		return nil, "", fmt.Errorf("create club: %w", err)
	}

	if err := s.members.AddParticipant(ctx, club.ID, userID, model.RoleFounder, req.Nickname); err != nil {
		return nil, "", fmt.Errorf("enroll founder: %w", err)
	}

	token, err := s.auth.GenerateToken(userID, club.ID, model.RoleFounder)
	if err != nil {
		return nil, "", fmt.Errorf("mint founder token: %w", err)
	}

	s.log.Info().Int64("club_id", club.ID).Int64("user_id", userID).Msg("club created")
	return club, token, nil
}

// GetClub retrieves an active club.
func (s *ClubService) GetClub(ctx context.Context, clubID int64) (*model.Club, error) {
	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("get club: %w", err)
	}
	return club, nil
}

// ListClubs retrieves active clubs with pagination.
func (s *ClubService) ListClubs(ctx context.Context, page, perPage int) ([]model.Club, int, error) {
	offset := (page - 1) * perPage
	clubs, total, err := s.clubs.List(ctx, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list clubs: %w", err)
	}
	return clubs, total, nil
}

// UpdateClub applies founder edits to a club.
func (s *ClubService) UpdateClub(ctx context.Context, clubID int64, req *model.UpdateClubRequest) (*model.Club, error) {
	if err := s.clubs.Update(ctx, clubID, req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("update club: %w", err)
	}
	return s.GetClub(ctx, clubID)
}

// DeleteClub soft-deletes a club. Members, resources, quizzes and results
// stay in place but the club stops resolving.
func (s *ClubService) DeleteClub(ctx context.Context, clubID int64) error {
	if err := s.clubs.SoftDelete(ctx, clubID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrClubNotFound
		}
		return fmt.Errorf("delete club: %w", err)
	}
	s.log.Info().Int64("club_id", clubID).Msg("club deactivated")
	return nil
}

// JoinClub enrolls a user into a public club immediately, or files a
// pending request for a private one. For immediate joins a member token is
// returned; for private clubs the token is empty until the founder approves.
func (s *ClubService) JoinClub(ctx context.Context, clubID, userID int64, nickname string) (pending bool, token string, err error) {
	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return false, "", err
	}

	if _, err := s.members.GetParticipant(ctx, clubID, userID); err == nil {
		return false, "", ErrAlreadyMember
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, "", fmt.Errorf("check membership: %w", err)
	}

	if club.IsPrivate {
		if err := s.members.CreateRequest(ctx, clubID, userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, "", ErrRequestPending
			}
			return false, "", fmt.Errorf("create join request: %w", err)
		}
		s.log.Info().Int64("club_id", clubID).Int64("user_id", userID).Msg("join request filed")
		return true, "", nil
	}

	if err := s.members.AddParticipant(ctx, clubID, userID, model.RoleMember, nickname); err != nil {
		return false, "", fmt.Errorf("enroll member: %w", err)
	}

	token, err = s.auth.GenerateToken(userID, clubID, model.RoleMember)
	if err != nil {
		return false, "", fmt.Errorf("mint member token: %w", err)
	}
	return false, token, nil
}

// ApproveRequest admits a pending requester as a member.
func (s *ClubService) ApproveRequest(ctx context.Context, clubID, userID int64, nickname string) error {
	if err := s.members.ResolveRequest(ctx, clubID, userID, model.RequestStatusApproved); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("approve request: %w", err)
	}
	if err := s.members.AddParticipant(ctx, clubID, userID, model.RoleMember, nickname); err != nil {
		return fmt.Errorf("enroll approved member: %w", err)
	}
	s.log.Info().Int64("club_id", clubID).Int64("user_id", userID).Msg("join request approved")
	return nil
}

// RejectRequest declines a pending join request.
func (s *ClubService) RejectRequest(ctx context.Context, clubID, userID int64) error {
	if err := s.members.ResolveRequest(ctx, clubID, userID, model.RequestStatusRejected); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("reject request: %w", err)
	}
	return nil
}

// ListMembers retrieves a club's active participants.
func (s *ClubService) ListMembers(ctx context.Context, clubID int64) ([]model.Participant, error) {
	members, err := s.members.ListParticipants(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// ListPendingRequests retrieves a club's pending join requests.
func (s *ClubService) ListPendingRequests(ctx context.Context, clubID int64) ([]model.MembershipRequest, error) {
	requests, err := s.members.ListPendingRequests(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// RemoveMember expels a member from a club. The founder cannot be removed.
func (s *ClubService) RemoveMember(ctx context.Context, clubID, userID int64) error {
	p, err := s.members.GetParticipant(ctx, clubID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	if p.Role == model.RoleFounder {
		return ErrFounderLeaving
	}
	if err := s.members.RemoveParticipant(ctx, clubID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	s.log.Info().Int64("club_id", clubID).Int64("user_id", userID).Msg("member removed")
	return nil
}
