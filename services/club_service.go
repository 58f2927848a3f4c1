package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/saboarena/sabo-platform/models"
	"github.com/saboarena/sabo-platform/repositories"
	"github.com/saboarena/sabo-platform/storage"
)

type ClubInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	TableCount  int     `json:"table_count"`
}

type ClubService interface {
	Create(ctx context.Context, ownerID int, input ClubInput) (*models.Club, error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	Update(ctx context.Context, id int, actorID int, input ClubInput) (*models.Club, error)
	UploadLogo(ctx context.Context, id int, actorID int, contentType string, reader io.Reader) (*models.Club, error)
	Delete(ctx context.Context, id int, actorID int) error
}

type clubService struct {
	clubRepo repositories.ClubRepository
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewClubService(clubRepo repositories.ClubRepository, userRepo repositories.UserRepository, uploader storage.FileUploader, logger *slog.Logger) ClubService {
	return &clubService{clubRepo: clubRepo, userRepo: userRepo, uploader: uploader, logger: logger}
}

func (s *clubService) Create(ctx context.Context, ownerID int, input ClubInput) (*models.Club, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: club name is required", ErrValidationFailed)
	}

	club := &models.Club{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Address:     input.Address,
		OwnerID:     ownerID,
		TableCount:  input.TableCount,
	}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("failed to create club: %w", err)
	}

	s.logger.Info("club created", slog.Int("club_id", club.ID), slog.Int("owner_id", ownerID))
	return club, nil
}

func (s *clubService) GetByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to load club %d: %w", id, err)
	}
	s.fillLogoURL(club)
	return club, nil
}

func (s *clubService) List(ctx context.Context) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	for _, club := range clubs {
		s.fillLogoURL(club)
	}
	return clubs, nil
}

func (s *clubService) Update(ctx context.Context, id int, actorID int, input ClubInput) (*models.Club, error) {
	club, err := s.authorizeOwner(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) != "" {
		club.Name = strings.TrimSpace(input.Name)
	}
	if input.Description != nil {
		club.Description = input.Description
	}
	if input.Address != nil {
		club.Address = input.Address
	}
	if input.TableCount > 0 {
		club.TableCount = input.TableCount
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("failed to update club %d: %w", id, err)
	}
	return club, nil
}

func (s *clubService) UploadLogo(ctx context.Context, id int, actorID int, contentType string, reader io.Reader) (*models.Club, error) {
	club, err := s.authorizeOwner(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("clubs/%d/%s", id, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload club logo: %w", err)
	}

	oldKey := club.LogoKey
	if err := s.clubRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store logo key: %w", err)
	}
	if oldKey != nil {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous club logo",
				slog.Int("club_id", id), slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	club.LogoKey = &result.Key
	s.fillLogoURL(club)
	return club, nil
}

func (s *clubService) Delete(ctx context.Context, id int, actorID int) error {
	if _, err := s.authorizeOwner(ctx, id, actorID); err != nil {
		return err
	}
	if err := s.clubRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to delete club %d: %w", id, err)
	}
	return nil
}

// authorizeOwner permits the club owner and platform admins.
func (s *clubService) authorizeOwner(ctx context.Context, clubID, actorID int) (*models.Club, error) {
	club, err := s.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club.OwnerID == actorID {
		return club, nil
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, ErrForbiddenOperation
	}
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	return club, nil
}

func (s *clubService) fillLogoURL(club *models.Club) {
	if club.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*club.LogoKey)
		club.LogoURL = &url
	}
}
