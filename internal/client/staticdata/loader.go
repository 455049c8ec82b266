package staticdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gilab/labsite/internal/client/models"
	"github.com/gilab/labsite/internal/logging"
)

// Loader decodes exported documents into records. It neither caches nor
// retries; callers put it behind the query cache.
type Loader struct {
	src Source
	log logging.Logger
}

func NewLoader(src Source, log logging.Logger) *Loader {
	if log == nil {
		log = logging.Nop()
	}
	return &Loader{src: src, log: log.With("component", "staticdata")}
}

// Load returns the raw document.
func (l *Loader) Load(ctx context.Context, name string) ([]byte, error) {
	b, err := l.src.Fetch(ctx, name)
	if err != nil {
		l.log.Warn(ctx, "static document unavailable", "name", name, "error", err)
		return nil, err
	}
	return b, nil
}

func decode[T any](ctx context.Context, l *Loader, name string) (T, error) {
	var out T
	b, err := l.Load(ctx, name)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

func (l *Loader) Publications(ctx context.Context) ([]models.Publication, error) {
	return decode[[]models.Publication](ctx, l, DocPublications)
}

// RecentPublications returns the first limit publications by descending
// year. Publications sharing a year keep their document order.
func (l *Loader) RecentPublications(ctx context.Context, limit int) ([]models.Publication, error) {
	pubs, err := l.Publications(ctx)
	if err != nil {
		return nil, err
	}
	return Recent(pubs, limit), nil
}

func (l *Loader) Members(ctx context.Context) (models.GroupedMembers, error) {
	return decode[models.GroupedMembers](ctx, l, DocMembers)
}

// News returns all news, newest first.
func (l *Loader) News(ctx context.Context) ([]models.News, error) {
	items, err := decode[[]models.News](ctx, l, DocNews)
	if err != nil {
		return nil, err
	}
	return SortNews(items), nil
}

// NewsByID returns the item with id, or nil if there is none.
func (l *Loader) NewsByID(ctx context.Context, id string) (*models.News, error) {
	items, err := l.News(ctx)
	if err != nil {
		return nil, err
	}
	return FindNews(items, id), nil
}

func (l *Loader) ResearchAreas(ctx context.Context) ([]models.ResearchArea, error) {
	return decode[[]models.ResearchArea](ctx, l, DocResearchAreas)
}

// LabInfo returns nil when the export holds null.
func (l *Loader) LabInfo(ctx context.Context) (*models.LabInfo, error) {
	return decode[*models.LabInfo](ctx, l, DocLabInfo)
}
