package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/totem-api/internal/domain/model"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/mocks"
	"github.com/target/totem-api/internal/ports"
	"github.com/target/totem-api/internal/testutil"
	"go.uber.org/mock/gomock"
)

const (
	testAccessList  = "list-accessi"
	testVisitorList = "list-visitatori"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	delete(c.data, key)
	return ok, nil
}

func (c *memCache) Health(context.Context) error { return nil }

func newAccessService(t *testing.T, mutate func(*AccessServiceOptions)) (*mocks.MockListStore, *AccessService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	lists := mocks.NewMockListStore(ctrl)
	opts := AccessServiceOptions{
		Lists:         lists,
		AccessListID:  testAccessList,
		VisitorListID: testVisitorList,
		PageSize:      200,
		Now:           testutil.FixedTimeFunc(testutil.TestTime()),
	}
	if mutate != nil {
		mutate(&opts)
	}
	svc, err := NewAccessService(opts)
	require.NoError(t, err)
	return lists, svc
}

func accessItem(a model.Access) ports.ListItem {
	return ports.ListItem{ID: a.ID, Fields: a.Fields()}
}

func visitorItem(v model.Visitor) ports.ListItem {
	return ports.ListItem{ID: v.ID + "-item", Fields: map[string]any{
		model.FieldTitle:               v.ID,
		model.FieldVisitorFirstNameDir: v.FirstName,
		model.FieldVisitorLastNameDir:  v.LastName,
		model.FieldVisitorCompany:      v.Company,
	}}
}

func TestNewAccessService_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	lists := mocks.NewMockListStore(ctrl)

	_, err := NewAccessService(AccessServiceOptions{AccessListID: "a", VisitorListID: "v"})
	assert.ErrorContains(t, err, "ListStore is required")

	_, err = NewAccessService(AccessServiceOptions{Lists: lists, VisitorListID: "v"})
	assert.ErrorContains(t, err, "access list id or name is required")

	_, err = NewAccessService(AccessServiceOptions{Lists: lists, AccessListName: "Accessi"})
	assert.ErrorContains(t, err, "visitor list id is required")
}

func TestAccessService_CreateAccess_AppliesDefaults(t *testing.T) {
	lists, svc := newAccessService(t, nil)
	ctx := context.Background()
	now := testutil.TestTime()

	lists.EXPECT().
		CreateItem(ctx, testAccessList, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, fields map[string]any) (ports.ListItem, error) {
			assert.Equal(t, "ACC-1740821400000", fields[model.FieldTitle])
			assert.Equal(t, "V1", fields[model.FieldVisitorID])
			assert.Equal(t, "2025-03-01T09:30:00.000Z", fields[model.FieldTimestamp])
			assert.Equal(t, "Ingresso", fields[model.FieldAction])
			assert.Equal(t, model.DefaultAccessPoint, fields[model.FieldAccessPoint])
			assert.Equal(t, model.DefaultAccessCategory, fields[model.FieldCategory])
			assert.NotContains(t, fields, model.FieldAppointmentContact)
			return ports.ListItem{ID: "42", Fields: fields}, nil
		})

	got, err := svc.CreateAccess(ctx, &model.CreateAccessRequest{VisitorID: " V1 "})

	require.NoError(t, err)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "V1", got.VisitorID)
	assert.Equal(t, model.ActionEntry, got.Action)
	assert.Equal(t, now, got.Time())
}

func TestAccessService_CreateAccess_CarriesAppointmentContact(t *testing.T) {
	lists, svc := newAccessService(t, nil)
	ctx := context.Background()

	lists.EXPECT().
		CreateItem(ctx, testAccessList, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, fields map[string]any) (ports.ListItem, error) {
			assert.Equal(t, "Mario Rossi", fields[model.FieldAppointmentContact])
			assert.Equal(t, "Uscita", fields[model.FieldAction])
			return ports.ListItem{ID: "43"}, nil
		})

	got, err := svc.CreateAccess(ctx, &model.CreateAccessRequest{
		VisitorID:          "V1",
		Action:             model.ActionExit,
		AppointmentContact: "Mario Rossi",
	})

	require.NoError(t, err)
	assert.Equal(t, "Mario Rossi", got.AppointmentContact)
}

func TestAccessService_CreateAccess_Validation(t *testing.T) {
	_, svc := newAccessService(t, nil)

	_, err := svc.CreateAccess(context.Background(), &model.CreateAccessRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.ErrorIs(t, err, model.ErrVisitorIDRequired)

	_, err = svc.CreateAccess(context.Background(), &model.CreateAccessRequest{VisitorID: "V1", Action: "Sideways"})
	assert.ErrorIs(t, err, model.ErrInvalidAction)

	_, err = svc.CreateAccess(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrEmptyRequest)
}

func TestAccessService_CreateAccess_StoreErrorPropagates(t *testing.T) {
	lists, svc := newAccessService(t, nil)
	storeErr := apperrors.Upstream(503, "service unavailable")
	lists.EXPECT().CreateItem(gomock.Any(), gomock.Any(), gomock.Any()).Return(ports.ListItem{}, storeErr)

	_, err := svc.CreateAccess(context.Background(), &model.CreateAccessRequest{VisitorID: "V1"})

	require.ErrorIs(t, err, storeErr)
	assert.True(t, apperrors.IsUpstream(err))
}

func TestAccessService_UpdateDestinationPath(t *testing.T) {
	lists, svc := newAccessService(t, nil)
	ctx := context.Background()

	lists.EXPECT().
		UpdateItemFields(ctx, testAccessList, "42", map[string]any{model.FieldDestinationPath: "Sala Riunioni"}).
		Return(nil)

	require.NoError(t, svc.UpdateDestinationPath(ctx, "42", "Sala Riunioni"))

	err := svc.UpdateDestinationPath(ctx, " ", "x")
	assert.True(t, apperrors.IsValidation(err))
}

func TestAccessService_AccessesByVisitor_EscapesFilter(t *testing.T) {
	lists, svc := newAccessService(t, nil)
	ctx := context.Background()

	older := testutil.NewAccess("O'Brien").WithID("1").At(testutil.TestTime().Add(-time.Hour)).Build()
	newer := testutil.NewAccess("O'Brien").WithID("2").At(testutil.TestTime()).Exit().Build()

	lists.EXPECT().
		ListItems(ctx, testAccessList, ports.ListQuery{
			Select:  model.AccessSelect,
			Filter:  "fields/field_1 eq 'O''Brien'",
			OrderBy: "fields/field_4 desc",
			Top:     200,
		}).
		Return([]ports.ListItem{accessItem(newer), accessItem(older)}, nil)

	got, err := svc.AccessesByVisitor(ctx, "O'Brien")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, model.ActionExit, got[0].Action)
}

func TestAccessService_ListAccesses_PassesOptions(t *testing.T) {
	lists, svc := newAccessService(t, nil)
	ctx := context.Background()

	lists.EXPECT().
		ListItems(ctx, testAccessList, ports.ListQuery{
			Select:  model.AccessSelect,
			Filter:  "fields/field_5 eq 'Uscita'",
			OrderBy: "fields/field_4 asc",
			Top:     50,
		}).
		Return(nil, nil)

	got, err := svc.ListAccesses(ctx, model.ListAccessesOptions{
		Top:     50,
		Filter:  "fields/field_5 eq 'Uscita'",
		OrderBy: "fields/field_4 asc",
	})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAccessService_LastAccess(t *testing.T) {
	lists, svc := newAccessService(t, nil)
	ctx := context.Background()

	latest := testutil.NewAccess("V1").WithID("9").Build()
	lists.EXPECT().
		ListItems(ctx, testAccessList, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, q ports.ListQuery) ([]ports.ListItem, error) {
			assert.Equal(t, 1, q.Top)
			assert.Equal(t, 1, q.Limit)
			return []ports.ListItem{accessItem(latest)}, nil
		})

	got, err := svc.LastAccess(ctx, "V1")
	require.NoError(t, err)
	assert.Equal(t, "9", got.ID)

	lists.EXPECT().ListItems(ctx, testAccessList, gomock.Any()).Return(nil, nil)
	_, err = svc.LastAccess(ctx, "V2")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAccessService_PresentVisitors(t *testing.T) {
	sink := newCountingSink()
	lists, svc := newAccessService(t, func(o *AccessServiceOptions) { o.Metrics = sink })
	ctx := context.Background()
	t0 := testutil.TestTime().Add(-3 * time.Hour)

	events := []ports.ListItem{
		accessItem(testutil.NewAccess("V1").WithID("1").At(t0).Build()),
		accessItem(testutil.NewAccess("V1").WithID("2").At(t0.Add(time.Hour)).Exit().Build()),
		accessItem(testutil.NewAccess("V2").WithID("3").At(t0).WithDestination("Lab").Build()),
		accessItem(testutil.NewAccess("ghost").WithID("4").At(t0).Build()),
	}
	directory := []ports.ListItem{
		visitorItem(testutil.Visitor("V1", "Ann", "Lee", "Acme")),
		visitorItem(testutil.Visitor("V2", "Bob", "Ray", "Globex")),
		visitorItem(testutil.Visitor("V3", "Cid", "Moe", "Initech")),
	}

	lists.EXPECT().
		ListItems(gomock.Any(), testAccessList, ports.ListQuery{
			Select: model.AccessSelect,
			Filter: "fields/field_4 ge '2025-02-27T09:30:00.000Z'",
			Top:    200,
		}).
		Return(events, nil)
	lists.EXPECT().
		ListItems(gomock.Any(), testVisitorList, ports.ListQuery{
			Select: model.VisitorSelect,
			Top:    200,
		}).
		Return(directory, nil)

	present, err := svc.PresentVisitors(ctx)

	require.NoError(t, err)
	require.Len(t, present, 1)
	assert.Equal(t, "V2", present[0].VisitorID)
	assert.Equal(t, "Bob", present[0].FirstName)
	assert.Equal(t, "Globex", present[0].Company)
	assert.Equal(t, "Lab", present[0].DestinationPath)
	assert.Equal(t, model.FormatTimestamp(t0), present[0].EnteredAt)

	reconciles := sink.tags("presence.reconcile")
	require.Len(t, reconciles, 1)
	assert.Equal(t, "success", reconciles[0]["result"])
}

func TestAccessService_PresentVisitors_Idempotent(t *testing.T) {
	lists, svc := newAccessService(t, nil)
	t0 := testutil.TestTime().Add(-5 * time.Hour)

	events := []ports.ListItem{
		accessItem(testutil.NewAccess("V1").WithID("1").At(t0).Build()),
		accessItem(testutil.NewAccess("V2").WithID("2").At(t0).Build()),
		accessItem(testutil.NewAccess("V2").WithID("3").At(t0.Add(time.Hour)).Exit().Build()),
		accessItem(testutil.NewAccess("V2").WithID("4").At(t0.Add(2 * time.Hour)).Build()),
		accessItem(testutil.NewAccess("V3").WithID("5").At(t0.Add(time.Hour)).Build()),
		accessItem(testutil.NewAccess("V3").WithID("6").At(t0.Add(3 * time.Hour)).Exit().Build()),
	}
	shuffled := []ports.ListItem{events[4], events[1], events[5], events[0], events[3], events[2]}
	directory := []ports.ListItem{
		visitorItem(testutil.Visitor("V1", "Ann", "Lee", "Acme")),
		visitorItem(testutil.Visitor("V2", "Bob", "Ray", "Globex")),
		visitorItem(testutil.Visitor("V3", "Cid", "Moe", "Initech")),
	}

	gomock.InOrder(
		lists.EXPECT().ListItems(gomock.Any(), testAccessList, gomock.Any()).Return(events, nil),
		lists.EXPECT().ListItems(gomock.Any(), testAccessList, gomock.Any()).Return(shuffled, nil),
	)
	lists.EXPECT().ListItems(gomock.Any(), testVisitorList, gomock.Any()).Return(directory, nil).Times(2)

	first, err := svc.PresentVisitors(context.Background())
	require.NoError(t, err)
	second, err := svc.PresentVisitors(context.Background())
	require.NoError(t, err)

	ids := func(pv []model.PresentVisitor) []string {
		out := make([]string, 0, len(pv))
		for _, p := range pv {
			out = append(out, p.VisitorID)
		}
		return out
	}
	assert.ElementsMatch(t, []string{"V1", "V2"}, ids(first))
	assert.ElementsMatch(t, first, second)
}

func TestAccessService_PresentVisitors_LookbackConfigurable(t *testing.T) {
	lists, svc := newAccessService(t, func(o *AccessServiceOptions) { o.Lookback = 2 * time.Hour })

	lists.EXPECT().
		ListItems(gomock.Any(), testAccessList, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, q ports.ListQuery) ([]ports.ListItem, error) {
			assert.Equal(t, "fields/field_4 ge '2025-03-01T07:30:00.000Z'", q.Filter)
			return nil, nil
		})
	lists.EXPECT().ListItems(gomock.Any(), testVisitorList, gomock.Any()).Return(nil, nil)

	present, err := svc.PresentVisitors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, present)
}

func TestAccessService_PresentVisitors_NoPartialResults(t *testing.T) {
	tests := []struct {
		name       string
		eventsErr  error
		visitorErr error
		wantMsg    string
	}{
		{"event fetch fails", errors.New("throttled"), nil, "fetch access events"},
		{"directory fetch fails", nil, errors.New("throttled"), "fetch visitor directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lists, svc := newAccessService(t, nil)
			lists.EXPECT().ListItems(gomock.Any(), testAccessList, gomock.Any()).
				Return([]ports.ListItem{accessItem(testutil.NewAccess("V1").Build())}, tt.eventsErr).
				MaxTimes(1)
			lists.EXPECT().ListItems(gomock.Any(), testVisitorList, gomock.Any()).
				Return([]ports.ListItem{visitorItem(testutil.Visitor("V1", "Ann", "Lee", ""))}, tt.visitorErr).
				MaxTimes(1)

			present, err := svc.PresentVisitors(context.Background())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Nil(t, present)
		})
	}
}

func TestAccessService_ResolveListID_CachesResult(t *testing.T) {
	cache := newMemCache()
	lists, svc := newAccessService(t, func(o *AccessServiceOptions) {
		o.Cache = cache
		o.ListIDTTL = time.Hour
	})
	ctx := context.Background()

	lists.EXPECT().
		FindLists(gomock.Any(), "displayName eq 'Accessi d''ingresso'").
		Return([]model.ListInfo{{ID: "abc", DisplayName: "Accessi d'ingresso"}}, nil).
		Times(1)

	id, err := svc.ResolveListID(ctx, "Accessi d'ingresso")
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	id, err = svc.ResolveListID(ctx, "Accessi d'ingresso")
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
	assert.Equal(t, time.Hour, cache.ttls["listid:Accessi d'ingresso"])
}

func TestAccessService_ResolveListID_NotFoundAndValidation(t *testing.T) {
	lists, svc := newAccessService(t, nil)
	ctx := context.Background()

	lists.EXPECT().FindLists(gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err := svc.ResolveListID(ctx, "Missing")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.ResolveListID(ctx, "  ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestAccessService_ResolveListID_DeduplicatesConcurrentLookups(t *testing.T) {
	lists, svc := newAccessService(t, nil)

	var calls atomic.Int32
	release := make(chan struct{})
	lists.EXPECT().
		FindLists(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) ([]model.ListInfo, error) {
			calls.Add(1)
			<-release
			return []model.ListInfo{{ID: "abc"}}, nil
		}).
		MinTimes(1)

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := svc.ResolveListID(context.Background(), "Accessi")
			assert.NoError(t, err)
			results[i] = id
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, id := range results {
		assert.Equal(t, "abc", id)
	}
	assert.Less(t, calls.Load(), int32(5))
}

func TestAccessService_ResolveListID_LookupOutlivesCallerCancel(t *testing.T) {
	lists, svc := newAccessService(t, func(o *AccessServiceOptions) { o.LookupTimeout = time.Second })

	ctx, cancel := context.WithCancel(context.Background())
	lookupCtx := make(chan context.Context, 1)
	release := make(chan struct{})
	lists.EXPECT().
		FindLists(gomock.Any(), "displayName eq 'Accessi'").
		DoAndReturn(func(ctx context.Context, _ string) ([]model.ListInfo, error) {
			lookupCtx <- ctx
			<-release
			return []model.ListInfo{{ID: "abc"}}, nil
		}).
		Times(1)

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.ResolveListID(ctx, "Accessi")
		errCh <- err
	}()

	shared := <-lookupCtx
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
	assert.NoError(t, shared.Err())
	_, hasDeadline := shared.Deadline()
	assert.True(t, hasDeadline)

	// A later caller joins the still-running lookup and gets its result.
	got := make(chan string, 1)
	go func() {
		id, err := svc.ResolveListID(context.Background(), "Accessi")
		assert.NoError(t, err)
		got <- id
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	assert.Equal(t, "abc", <-got)
}

func TestAccessService_ResolvesAccessListByName(t *testing.T) {
	lists, svc := newAccessService(t, func(o *AccessServiceOptions) {
		o.AccessListID = ""
		o.AccessListName = "Accessi"
		o.Cache = newMemCache()
	})
	ctx := context.Background()

	lists.EXPECT().FindLists(gomock.Any(), "displayName eq 'Accessi'").Return([]model.ListInfo{{ID: "resolved"}}, nil)
	lists.EXPECT().UpdateItemFields(ctx, "resolved", "42", gomock.Any()).Return(nil)

	require.NoError(t, svc.UpdateDestinationPath(ctx, "42", "Lab"))
}
