package services

import (
	"context"
	"fmt"

	"github.com/gilab/labsite/internal/client/models"
	"github.com/gilab/labsite/internal/client/querycache"
	"github.com/gilab/labsite/internal/client/staticdata"
	"github.com/gilab/labsite/internal/logging"
)

// Cache keys of the public content. They match the API paths so that a
// mutation can invalidate by path.
const (
	PublicationsPath  = "/publications"
	MembersPath       = "/members"
	NewsPath          = "/news"
	ResearchAreasPath = "/research-areas"
	LabInfoPath       = "/lab-info"
)

// ContentSource produces the public documents. *staticdata.Loader is one;
// APISource is the other.
type ContentSource interface {
	Publications(ctx context.Context) ([]models.Publication, error)
	Members(ctx context.Context) (models.GroupedMembers, error)
	News(ctx context.Context) ([]models.News, error)
	ResearchAreas(ctx context.Context) ([]models.ResearchArea, error)
	LabInfo(ctx context.Context) (*models.LabInfo, error)
}

var _ ContentSource = (*staticdata.Loader)(nil)

// APISource reads the public content from the dynamic API.
type APISource struct {
	api API
}

func NewAPISource(api API) *APISource {
	return &APISource{api: api}
}

func getJSON[T any](ctx context.Context, api API, path string) (T, error) {
	var out T
	resp, err := api.Get(ctx, path)
	if err != nil {
		return out, fmt.Errorf("get %s: %w", path, err)
	}
	if err := resp.Decode(&out); err != nil {
		return out, fmt.Errorf("get %s: %w", path, err)
	}
	return out, nil
}

func (s *APISource) Publications(ctx context.Context) ([]models.Publication, error) {
	return getJSON[[]models.Publication](ctx, s.api, PublicationsPath)
}

func (s *APISource) Members(ctx context.Context) (models.GroupedMembers, error) {
	return getJSON[models.GroupedMembers](ctx, s.api, MembersPath+"?grouped=true")
}

func (s *APISource) News(ctx context.Context) ([]models.News, error) {
	items, err := getJSON[[]models.News](ctx, s.api, NewsPath)
	if err != nil {
		return nil, err
	}
	return staticdata.SortNews(items), nil
}

func (s *APISource) ResearchAreas(ctx context.Context) ([]models.ResearchArea, error) {
	return getJSON[[]models.ResearchArea](ctx, s.api, ResearchAreasPath)
}

// LabInfo returns nil when no settings row exists yet.
func (s *APISource) LabInfo(ctx context.Context) (*models.LabInfo, error) {
	return getJSON[*models.LabInfo](ctx, s.api, LabInfoPath)
}

// ContentService serves the public pages from the query cache.
type ContentService interface {
	Publications(ctx context.Context) ([]models.Publication, error)
	RecentPublications(ctx context.Context, limit int) ([]models.Publication, error)
	PublicationsByYear(ctx context.Context) ([]staticdata.YearGroup, error)
	Members(ctx context.Context) (models.GroupedMembers, error)
	News(ctx context.Context) ([]models.News, error)
	NewsByID(ctx context.Context, id string) (*models.News, error)
	ResearchAreas(ctx context.Context) ([]models.ResearchArea, error)
	LabInfo(ctx context.Context) (*models.LabInfo, error)
	Refresh()
}

type contentService struct {
	cache *querycache.Cache
	src   ContentSource
	log   logging.Logger
}

func NewContentService(cache *querycache.Cache, src ContentSource, log logging.Logger) ContentService {
	if log == nil {
		log = logging.Nop()
	}
	return &contentService{cache: cache, src: src, log: log.With("service", "content")}
}

func (s *contentService) Publications(ctx context.Context) ([]models.Publication, error) {
	return querycache.FetchAs(ctx, s.cache, querycache.NewKey(PublicationsPath), s.src.Publications)
}

// RecentPublications keeps same-year publications in document order.
func (s *contentService) RecentPublications(ctx context.Context, limit int) ([]models.Publication, error) {
	pubs, err := s.Publications(ctx)
	if err != nil {
		return nil, err
	}
	return staticdata.Recent(pubs, limit), nil
}

func (s *contentService) PublicationsByYear(ctx context.Context) ([]staticdata.YearGroup, error) {
	pubs, err := s.Publications(ctx)
	if err != nil {
		return nil, err
	}
	return staticdata.GroupByYear(pubs), nil
}

func (s *contentService) Members(ctx context.Context) (models.GroupedMembers, error) {
	return querycache.FetchAs(ctx, s.cache, querycache.NewKey(MembersPath), s.src.Members)
}

func (s *contentService) News(ctx context.Context) ([]models.News, error) {
	return querycache.FetchAs(ctx, s.cache, querycache.NewKey(NewsPath), s.src.News)
}

// NewsByID returns nil if no item has id.
func (s *contentService) NewsByID(ctx context.Context, id string) (*models.News, error) {
	items, err := s.News(ctx)
	if err != nil {
		return nil, err
	}
	return staticdata.FindNews(items, id), nil
}

func (s *contentService) ResearchAreas(ctx context.Context) ([]models.ResearchArea, error) {
	return querycache.FetchAs(ctx, s.cache, querycache.NewKey(ResearchAreasPath), s.src.ResearchAreas)
}

func (s *contentService) LabInfo(ctx context.Context) (*models.LabInfo, error) {
	return querycache.FetchAs(ctx, s.cache, querycache.NewKey(LabInfoPath), s.src.LabInfo)
}

// Refresh marks every public document stale, then drops the cached
// queries nobody is watching.
func (s *contentService) Refresh() {
	for _, p := range []string{PublicationsPath, MembersPath, NewsPath, ResearchAreasPath, LabInfoPath} {
		s.cache.InvalidatePrefix(querycache.NewKey(p))
	}
	if n := s.cache.Collect(); n > 0 {
		s.log.Debug(context.Background(), "dropped idle queries", "count", n)
	}
}
