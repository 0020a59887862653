package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/target/totem-api/internal/domain/model"
	"github.com/target/totem-api/internal/domain/odata"
	"github.com/target/totem-api/internal/domain/presence"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/observability/metrics"
	"github.com/target/totem-api/internal/observability/statsd"
	"github.com/target/totem-api/internal/ports"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultAccessPageSize = 200
	defaultListIDTTL      = 24 * time.Hour
	defaultLookupTimeout  = 30 * time.Second
)

// ListIDCacheKeyPrefix namespaces list ids cached by display name.
const ListIDCacheKeyPrefix = "listid:"

// AccessServiceOptions groups dependencies for AccessService.
type AccessServiceOptions struct {
	Lists ports.ListStore       // Required: remote list store
	Cache ports.CacheRepository // Optional: caches list ids resolved by name

	AccessListID   string // Access list id; resolved from AccessListName when empty
	AccessListName string
	VisitorListID  string // Required: visitor directory list id

	Lookback  time.Duration // Optional: presence window, 48h when non-positive
	PageSize  int           // Optional: $top used for paginated reads
	ListIDTTL time.Duration // Optional: cache lifetime of resolved list ids

	// LookupTimeout bounds a shared list-id lookup, which outlives any single caller.
	LookupTimeout time.Duration

	Now     func() time.Time
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// AccessService records visitor access events and derives who is on site.
// Store errors are logged and returned to the caller unchanged.
type AccessService struct {
	lists ports.ListStore
	cache ports.CacheRepository

	accessListID   string
	accessListName string
	visitorListID  string

	lookback  time.Duration
	pageSize  int
	listIDTTL time.Duration
	lookupTTL time.Duration

	now     func() time.Time
	logger  *slog.Logger
	metrics statsd.Sink

	resolve singleflight.Group
}

// NewAccessService constructs a new AccessService.
func NewAccessService(opts AccessServiceOptions) (*AccessService, error) {
	if opts.Lists == nil {
		return nil, errors.New("ListStore is required")
	}
	if opts.AccessListID == "" && opts.AccessListName == "" {
		return nil, errors.New("access list id or name is required")
	}
	if opts.VisitorListID == "" {
		return nil, errors.New("visitor list id is required")
	}

	s := &AccessService{
		lists:          opts.Lists,
		cache:          opts.Cache,
		accessListID:   opts.AccessListID,
		accessListName: opts.AccessListName,
		visitorListID:  opts.VisitorListID,
		lookback:       opts.Lookback,
		pageSize:       opts.PageSize,
		listIDTTL:      opts.ListIDTTL,
		lookupTTL:      opts.LookupTimeout,
		now:            opts.Now,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}
	if s.lookback <= 0 {
		s.lookback = presence.DefaultLookback
	}
	if s.pageSize <= 0 {
		s.pageSize = defaultAccessPageSize
	}
	if s.listIDTTL <= 0 {
		s.listIDTTL = defaultListIDTTL
	}
	if s.lookupTTL <= 0 {
		s.lookupTTL = defaultLookupTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "access_service")
	return s, nil
}

// CreateAccess records a new access event, filling in the kiosk defaults.
func (s *AccessService) CreateAccess(ctx context.Context, req *model.CreateAccessRequest) (*model.Access, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	listID, err := s.accessList(ctx)
	if err != nil {
		return nil, err
	}

	access := model.NewAccess(*req, s.now())
	item, err := s.lists.CreateItem(ctx, listID, access.Fields())
	if err != nil {
		return nil, s.storeError(ctx, "create access", err, "visitor_id", access.VisitorID)
	}
	access.ID = item.ID

	s.logger.InfoContext(ctx, "access recorded",
		"access_id", access.ID,
		"visitor_id", access.VisitorID,
		"action", access.Action,
	)
	return &access, nil
}

// UpdateDestinationPath sets the destination of an existing access event.
func (s *AccessService) UpdateDestinationPath(ctx context.Context, accessID, destination string) error {
	accessID = strings.TrimSpace(accessID)
	if accessID == "" {
		return apperrors.Wrap(model.ErrAccessIDRequired, apperrors.ErrCodeValidation, model.ErrAccessIDRequired.Error())
	}

	listID, err := s.accessList(ctx)
	if err != nil {
		return err
	}

	fields := map[string]any{model.FieldDestinationPath: destination}
	if err := s.lists.UpdateItemFields(ctx, listID, accessID, fields); err != nil {
		return s.storeError(ctx, "update destination path", err, "access_id", accessID)
	}
	return nil
}

// AccessesByVisitor returns every access event of a visitor, newest first.
func (s *AccessService) AccessesByVisitor(ctx context.Context, visitorID string) ([]model.Access, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return nil, apperrors.Wrap(model.ErrVisitorIDRequired, apperrors.ErrCodeValidation, model.ErrVisitorIDRequired.Error())
	}

	return s.readAccesses(ctx, "accesses by visitor", ports.ListQuery{
		Filter:  odata.Eq(odata.FieldPath(model.FieldVisitorID), visitorID),
		OrderBy: odata.Desc(odata.FieldPath(model.FieldTimestamp)),
		Top:     s.pageSize,
	})
}

// ListAccesses reads access events with an optional caller supplied filter
// and ordering. Top is the page size; every page is read.
func (s *AccessService) ListAccesses(ctx context.Context, opts model.ListAccessesOptions) ([]model.Access, error) {
	top := opts.Top
	if top <= 0 {
		top = s.pageSize
	}
	return s.readAccesses(ctx, "list accesses", ports.ListQuery{
		Filter:  opts.Filter,
		OrderBy: opts.OrderBy,
		Top:     top,
	})
}

// LastAccess returns the most recent access event of a visitor.
func (s *AccessService) LastAccess(ctx context.Context, visitorID string) (*model.Access, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return nil, apperrors.Wrap(model.ErrVisitorIDRequired, apperrors.ErrCodeValidation, model.ErrVisitorIDRequired.Error())
	}

	accesses, err := s.readAccesses(ctx, "last access", ports.ListQuery{
		Filter:  odata.Eq(odata.FieldPath(model.FieldVisitorID), visitorID),
		OrderBy: odata.Desc(odata.FieldPath(model.FieldTimestamp)),
		Top:     1,
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(accesses) == 0 {
		return nil, apperrors.NotFoundf("no access recorded for visitor %q", visitorID)
	}
	return &accesses[0], nil
}

// PresentVisitors returns the visitors whose latest access inside the
// lookback window is an entry. Both fetches must succeed; a partial roster is
// never returned.
func (s *AccessService) PresentVisitors(ctx context.Context) ([]model.PresentVisitor, error) {
	start := time.Now()

	listID, err := s.accessList(ctx)
	if err != nil {
		metrics.EmitPresence(s.metrics, metrics.Presence{Err: err, Duration: time.Since(start)})
		return nil, err
	}

	since := presence.Since(s.now(), s.lookback)
	var (
		events   []model.Access
		visitors []model.Visitor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.lists.ListItems(gctx, listID, ports.ListQuery{
			Select: model.AccessSelect,
			Filter: odata.Ge(odata.FieldPath(model.FieldTimestamp), model.FormatTimestamp(since)),
			Top:    s.pageSize,
		})
		if err != nil {
			return fmt.Errorf("fetch access events: %w", err)
		}
		events = make([]model.Access, 0, len(items))
		for _, it := range items {
			events = append(events, model.AccessFromFields(it.ID, it.Fields))
		}
		return nil
	})
	g.Go(func() error {
		items, err := s.lists.ListItems(gctx, s.visitorListID, ports.ListQuery{
			Select: model.VisitorSelect,
			Top:    s.pageSize,
		})
		if err != nil {
			return fmt.Errorf("fetch visitor directory: %w", err)
		}
		visitors = make([]model.Visitor, 0, len(items))
		for _, it := range items {
			visitors = append(visitors, model.VisitorFromFields(it.ID, it.Fields))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.EmitPresence(s.metrics, metrics.Presence{Err: err, Duration: time.Since(start)})
		return nil, s.storeError(ctx, "present visitors", err, "since", since)
	}

	present := presence.Reconcile(events, visitors)
	metrics.EmitPresence(s.metrics, metrics.Presence{
		Events:   len(events),
		Present:  len(present),
		Duration: time.Since(start),
	})
	s.logger.DebugContext(ctx, "presence reconciled",
		"events", len(events),
		"visitors", len(visitors),
		"present", len(present),
	)
	return present, nil
}

// ResolveListID finds a list id by its display name. Results are cached and
// concurrent lookups of the same name share one store call.
func (s *AccessService) ResolveListID(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ValidationField("name", "list name is required")
	}

	key := ListIDCacheKeyPrefix + name
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "list id cache read failed", "name", name, "error", err)
		} else if len(cached) > 0 {
			return string(cached), nil
		}
	}

	ch := s.resolve.DoChan(name, func() (any, error) {
		// Waiters share this lookup, so one caller's cancellation must not end it.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lookupTTL)
		defer cancel()

		lists, err := s.lists.FindLists(lookupCtx, odata.Eq("displayName", name))
		if err != nil {
			return "", s.storeError(lookupCtx, "resolve list id", err, "name", name)
		}
		if len(lists) == 0 || lists[0].ID == "" {
			return "", apperrors.NotFoundf("list %q not found", name)
		}
		id := lists[0].ID
		if s.cache != nil {
			if err := s.cache.Set(lookupCtx, key, []byte(id), s.listIDTTL); err != nil {
				s.logger.WarnContext(lookupCtx, "list id cache write failed", "name", name, "error", err)
			}
		}
		return id, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *AccessService) accessList(ctx context.Context) (string, error) {
	if s.accessListID != "" {
		return s.accessListID, nil
	}
	return s.ResolveListID(ctx, s.accessListName)
}

func (s *AccessService) readAccesses(ctx context.Context, op string, q ports.ListQuery) ([]model.Access, error) {
	listID, err := s.accessList(ctx)
	if err != nil {
		return nil, err
	}
	q.Select = model.AccessSelect

	items, err := s.lists.ListItems(ctx, listID, q)
	if err != nil {
		return nil, s.storeError(ctx, op, err)
	}
	out := make([]model.Access, 0, len(items))
	for _, it := range items {
		out = append(out, model.AccessFromFields(it.ID, it.Fields))
	}
	return out, nil
}

func (s *AccessService) storeError(ctx context.Context, op string, err error, attrs ...any) error {
	args := append([]any{"op", op, "error", err}, attrs...)
	s.logger.ErrorContext(ctx, "list store operation failed", args...)
	return fmt.Errorf("%s: %w", op, err)
}
