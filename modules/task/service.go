package task

import (
	"context"
	"strconv"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	listKeyPrefix = "list:"
	// listGenerationKey counts mutations. Page keys embed the generation read
	// before the store, so a page filled after a mutation is never served.
	listGenerationKey = "gen:list"
)

// PageCache stores rendered list pages. It is satisfied by *cache.Cache.
type PageCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Incr(ctx context.Context, key string) (int64, error)
	DeletePattern(ctx context.Context, pattern string) error
}

// Service implements the task use cases on top of a Store.
type Service struct {
	store  Store
	cache  PageCache
	group  singleflight.Group
	logger zerolog.Logger
	now    func() time.Time
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithPageCache enables caching of list results. Cache failures are logged
// and never fail a request.
func WithPageCache(c PageCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a task service.
func NewService(store Store, logger zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of the filtered, sorted collection.
func (s *Service) List(ctx context.Context, params domain.QueryParams) (domain.Page, error) {
	params = params.Normalized()
	if s.cache == nil {
		return s.query(ctx, params)
	}

	var gen int64
	if _, err := s.cache.Get(ctx, listGenerationKey, &gen); err != nil {
		s.logger.Warn().Err(err).Msg("cache generation read failed")
		return s.query(ctx, params)
	}

	key := listKeyPrefix + strconv.FormatInt(gen, 10) + ":" + params.Key()
	var page domain.Page
	hit, err := s.cache.Get(ctx, key, &page)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit {
		return page, nil
	}

	// Identical concurrent misses share one store read. The shared load must
	// not fail for every waiter when the first caller goes away.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		page, err := s.query(loadCtx, params)
		if err != nil {
			return domain.Page{}, err
		}
		if err := s.cache.Set(loadCtx, key, page); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		return page, nil
	})
	if err != nil {
		return domain.Page{}, err
	}
	return v.(domain.Page), nil
}

func (s *Service) query(ctx context.Context, params domain.QueryParams) (domain.Page, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return domain.Page{}, err
	}
	data, meta := domain.Query(tasks, params)
	return domain.Page{Data: data, Meta: meta}, nil
}

// Get returns a single task.
func (s *Service) Get(ctx context.Context, id int64) (domain.Task, error) {
	return s.store.Get(ctx, id)
}

// Create validates the draft, fills defaults and stores the new task.
// An invalid draft leaves the collection untouched.
func (s *Service) Create(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	t, err := draft.Build(s.now())
	if err != nil {
		return domain.Task{}, err
	}

	created, err := s.store.Insert(ctx, t)
	if err != nil {
		return domain.Task{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Update applies a partial update and refreshes updatedAt.
func (s *Service) Update(ctx context.Context, id int64, patch domain.Patch) (domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return domain.Task{}, err
	}

	now := s.now()
	updated, err := s.store.Update(ctx, id, func(t *domain.Task) error {
		patch.Apply(t, now)
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// invalidate moves lists to a new generation, then drops the old pages.
func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, listGenerationKey); err != nil {
		s.logger.Warn().Err(err).Msg("cache generation bump failed")
	}
	if err := s.cache.DeletePattern(ctx, listKeyPrefix+"*"); err != nil {
		s.logger.Warn().Err(err).Msg("cache invalidation failed")
	}
}
