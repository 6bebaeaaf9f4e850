package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/cache"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

type videoService struct {
	repo         repositories.Repository
	db           *gorm.DB
	logger       utils.Logger
	validator    *validator.Validator
	cacheManager *cache.CacheManager
	tokenTTL     time.Duration
}

func NewVideoService(repo repositories.Repository, db *gorm.DB, logger utils.Logger, v *validator.Validator, cacheManager *cache.CacheManager, tokenTTL time.Duration) VideoService {
	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}
	return &videoService{
		repo:         repo,
		db:           db,
		logger:       logger,
		validator:    v,
		cacheManager: cacheManager,
		tokenTTL:     tokenTTL,
	}
}

func (s *videoService) Create(ctx context.Context, req *CreateVideoRequest, creatorID uint) (*models.Video, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	video := &models.Video{
		Title:     req.Title,
		SubjectID: req.SubjectID,
		CourseID:  req.CourseID,
		URL:       req.URL,
		Duration:  req.Duration,
		Thumbnail: req.Thumbnail,
		CreatedBy: creatorID,
	}
	if err := s.repo.Video().Create(ctx, nil, video); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	return video, nil
}

func (s *videoService) GetByID(ctx context.Context, id uint, role models.UserRole) (*models.Video, error) {
	video, err := s.repo.Video().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if role == models.RoleStudent && !video.IsPublished {
		return nil, ErrVideoNotFound
	}
	return video, nil
}

func (s *videoService) Update(ctx context.Context, id uint, req *UpdateVideoRequest, userID uint) (*models.Video, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	video, err := s.repo.Video().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.SubjectID != nil {
		video.SubjectID = req.SubjectID
	}
	if req.CourseID != nil {
		video.CourseID = req.CourseID
	}
	if req.URL != nil {
		video.URL = *req.URL
	}
	if req.Duration != nil {
		video.Duration = *req.Duration
	}
	if req.Thumbnail != nil {
		video.Thumbnail = req.Thumbnail
	}

	if err := s.repo.Video().Update(ctx, nil, video); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}
	return video, nil
}

func (s *videoService) Delete(ctx context.Context, id uint, userID uint) error {
	if err := s.repo.Video().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

func (s *videoService) List(ctx context.Context, filters repositories.VideoFilters, role models.UserRole) (*VideoListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if role == models.RoleStudent {
		filters.PublishedOnly = true
	}

	videos, total, err := s.repo.Video().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return &VideoListResponse{Videos: videos, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

func (s *videoService) SetPublished(ctx context.Context, id uint, published bool, userID uint) (*models.Video, error) {
	if err := s.repo.Video().SetPublished(ctx, nil, id, published); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to update publish state: %w", err)
	}
	return s.repo.Video().GetByID(ctx, nil, id)
}

// AuthorizeDownload issues a short-lived single-use token that later resolves
// to the video URL. Tokens live in redis with the configured TTL.
func (s *videoService) AuthorizeDownload(ctx context.Context, videoID uint, userID uint, role models.UserRole) (*DownloadGrant, error) {
	video, err := s.GetByID(ctx, videoID, role)
	if err != nil {
		return nil, err
	}
	if role == models.RoleStudent && !video.IsPublished {
		return nil, ErrVideoNotPublished
	}

	token := uuid.New().String()
	if err := s.cacheManager.VideoToken.SetString(ctx, token, strconv.FormatUint(uint64(videoID), 10), s.tokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store download token: %w", err)
	}

	s.logger.Info("download authorized", "video_id", videoID, "user_id", userID)
	return &DownloadGrant{
		Token:     token,
		URL:       fmt.Sprintf("/api/v1/videos/download/%s", token),
		ExpiresAt: time.Now().Add(s.tokenTTL),
	}, nil
}

// ResolveDownload consumes the token and returns the video. GetDel makes the
// token single use.
func (s *videoService) ResolveDownload(ctx context.Context, token string) (*models.Video, error) {
	value, err := s.cacheManager.VideoToken.GetDel(ctx, token)
	if err != nil || value == "" {
		return nil, ErrDownloadTokenInvalid
	}

	videoID, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, ErrDownloadTokenInvalid
	}

	video, err := s.repo.Video().GetByID(ctx, nil, uint(videoID))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}
