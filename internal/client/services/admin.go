package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gilab/labsite/internal/client/models"
	"github.com/gilab/labsite/internal/client/querycache"
	"github.com/gilab/labsite/internal/logging"
)

const (
	PendingUsersPath = "/admin/pending-users"
	approveUserPath  = "/admin/approve-user/"
)

// AdminService runs the admin-only actions. A failed write leaves the
// cache untouched.
type AdminService interface {
	PendingUsers(ctx context.Context) ([]models.PendingUser, error)
	ApproveUser(ctx context.Context, id string) error
	CreatePublication(ctx context.Context, req models.CreatePublicationRequest) error
	UpdateLabInfo(ctx context.Context, info models.LabInfo) error
}

type adminService struct {
	api   API
	cache *querycache.Cache
	log   logging.Logger
}

func NewAdminService(api API, cache *querycache.Cache, log logging.Logger) AdminService {
	if log == nil {
		log = logging.Nop()
	}
	return &adminService{api: api, cache: cache, log: log.With("service", "admin")}
}

func (s *adminService) PendingUsers(ctx context.Context) ([]models.PendingUser, error) {
	return querycache.FetchAs(ctx, s.cache, querycache.NewKey(PendingUsersPath), func(ctx context.Context) ([]models.PendingUser, error) {
		return getJSON[[]models.PendingUser](ctx, s.api, PendingUsersPath)
	})
}

func (s *adminService) ApproveUser(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Fields: []FieldError{{Field: "id", Message: "is required"}}}
	}
	if _, err := s.api.Post(ctx, approveUserPath+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("approve user %s: %w", id, err)
	}
	s.cache.Invalidate(querycache.NewKey(PendingUsersPath))
	s.log.Info(ctx, "user approved", "user", id)
	return nil
}

// publicationBody is the wire form of a new publication: the year column
// is text on the server.
type publicationBody struct {
	models.PublicationInput
	Year string `json:"year"`
}

type createPublicationBody struct {
	Publication publicationBody      `json:"publication"`
	Authors     []models.AuthorInput `json:"authors"`
}

func (s *adminService) CreatePublication(ctx context.Context, req models.CreatePublicationRequest) error {
	authors := make([]models.AuthorInput, len(req.Authors))
	for i, a := range req.Authors {
		if a.Homepage != nil && strings.TrimSpace(*a.Homepage) == "" {
			a.Homepage = nil
		}
		authors[i] = a
	}
	req.Authors = authors

	if err := Validate(req); err != nil {
		return err
	}

	body := createPublicationBody{
		Publication: publicationBody{PublicationInput: req.Publication, Year: strconv.Itoa(req.Publication.Year)},
		Authors:     req.Authors,
	}

	if _, err := s.api.Post(ctx, PublicationsPath, body); err != nil {
		return fmt.Errorf("create publication: %w", err)
	}
	n := s.cache.InvalidatePrefix(querycache.NewKey(PublicationsPath))
	s.log.Info(ctx, "publication created", "title", req.Publication.Title, "invalidated", n)
	return nil
}

func (s *adminService) UpdateLabInfo(ctx context.Context, info models.LabInfo) error {
	if err := Validate(info); err != nil {
		return err
	}
	if _, err := s.api.Put(ctx, LabInfoPath, info); err != nil {
		return fmt.Errorf("update lab info: %w", err)
	}
	s.cache.Invalidate(querycache.NewKey(LabInfoPath))
	s.log.Info(ctx, "lab info updated")
	return nil
}
