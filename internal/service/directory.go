package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/target/totem-api/internal/domain/model"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/ports"
)

const (
	minUserQueryLength = 2
	defaultUserResults = 10
)

// DirectoryServiceOptions groups dependencies for DirectoryService.
type DirectoryServiceOptions struct {
	Directory ports.GraphDirectory // Required
	Logger    *slog.Logger         // Optional
}

// DirectoryService exposes the signed-in user's profile, SharePoint sites and
// tenant people search.
type DirectoryService struct {
	dir    ports.GraphDirectory
	logger *slog.Logger
}

// NewDirectoryService constructs a new DirectoryService.
func NewDirectoryService(opts DirectoryServiceOptions) (*DirectoryService, error) {
	if opts.Directory == nil {
		return nil, errors.New("GraphDirectory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryService{dir: opts.Directory, logger: logger.With("component", "directory_service")}, nil
}

// Profile returns the signed-in user's Graph profile.
func (s *DirectoryService) Profile(ctx context.Context) (*model.UserProfile, error) {
	p, err := s.dir.Me(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "read profile failed", "error", err)
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return &p, nil
}

// Sites lists the SharePoint sites visible to the signed-in user.
func (s *DirectoryService) Sites(ctx context.Context, query string) ([]model.SharePointSite, error) {
	sites, err := s.dir.SearchSites(ctx, strings.TrimSpace(query))
	if err != nil {
		s.logger.ErrorContext(ctx, "search sites failed", "error", err)
		return nil, fmt.Errorf("search sites: %w", err)
	}
	return sites, nil
}

// SiteByPath resolves a site from its hostname and server-relative path.
func (s *DirectoryService) SiteByPath(ctx context.Context, hostname, path string) (*model.SharePointSite, error) {
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return nil, apperrors.ValidationField("hostname", "hostname is required")
	}
	site, err := s.dir.SiteByPath(ctx, hostname, strings.TrimSpace(path))
	if err != nil {
		s.logger.ErrorContext(ctx, "resolve site failed", "hostname", hostname, "path", path, "error", err)
		return nil, fmt.Errorf("resolve site: %w", err)
	}
	return &site, nil
}

// SearchUsers looks people up by display name or mail. Queries shorter than
// two characters and store failures both yield an empty result.
func (s *DirectoryService) SearchUsers(ctx context.Context, query string) []model.DirectoryUser {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minUserQueryLength {
		return []model.DirectoryUser{}
	}
	users, err := s.dir.SearchUsers(ctx, query, defaultUserResults)
	if err != nil {
		s.logger.WarnContext(ctx, "user search failed", "error", err)
		return []model.DirectoryUser{}
	}
	if users == nil {
		return []model.DirectoryUser{}
	}
	return users
}

// UserPhoto returns a user's profile picture. Users without a photo and
// store failures both report absent.
func (s *DirectoryService) UserPhoto(ctx context.Context, userID string) (model.Photo, bool) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Photo{}, false
	}
	photo, err := s.dir.UserPhoto(ctx, userID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.WarnContext(ctx, "user photo unavailable", "user_id", userID, "error", err)
		}
		return model.Photo{}, false
	}
	if len(photo.Data) == 0 {
		return model.Photo{}, false
	}
	return photo, true
}
