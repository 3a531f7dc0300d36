package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/applyforge/applyforge/internal/core"
	"github.com/applyforge/applyforge/internal/data"
	"github.com/applyforge/applyforge/internal/domain/model"
	"github.com/applyforge/applyforge/internal/mocks"
	"github.com/applyforge/applyforge/internal/service"
	"github.com/applyforge/applyforge/internal/testutil"
)

type discoveryFixture struct {
	svc      *service.DiscoveryService
	repo     *mocks.MockRecordRepository
	postings *mocks.MockPostingRepository
	governor *mocks.MockGovernor
	adapter  *mocks.MockPlatformAdapter
	pager    *mocks.MockSearchPager
}

func newDiscoveryFixture(t *testing.T) *discoveryFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &discoveryFixture{
		repo:     mocks.NewMockRecordRepository(ctrl),
		postings: mocks.NewMockPostingRepository(ctrl),
		governor: mocks.NewMockGovernor(ctrl),
		adapter:  mocks.NewMockPlatformAdapter(ctrl),
		pager:    mocks.NewMockSearchPager(ctrl),
	}

	apps, err := service.NewApplicationService(service.ApplicationServiceOptions{
		Repo:         f.repo,
		TimeProvider: data.NewFixedTimeProvider(fixedNow),
	})
	require.NoError(t, err)

	f.svc, err = service.NewDiscoveryService(service.DiscoveryOptions{
		Applications: apps,
		Postings:     f.postings,
		Governor:     f.governor,
		Adapters: map[model.Platform]core.PlatformAdapter{
			model.PlatformLinkedIn: f.adapter,
		},
	})
	require.NoError(t, err)
	return f
}

func grantSearch(f *discoveryFixture, times int) {
	f.governor.EXPECT().
		Acquire(gomock.Any(), model.PlatformLinkedIn, model.PermissionSearch).
		Return(&core.PermissionToken{ID: "tok", Kind: model.PermissionSearch}, nil).
		Times(times)
}

func searchCriteria() model.SearchCriteria {
	return model.SearchCriteria{Titles: []string{"Backend Engineer"}, PageSize: 25}
}

func TestDiscoverStoresPostingsAndEnqueuesRecords(t *testing.T) {
	f := newDiscoveryFixture(t)

	p1 := testutil.NewPosting().WithExternalID("job-1").Build()
	p2 := testutil.NewPosting().WithExternalID("job-2").Build()

	// One grant per page fetch (two pages: data, then nil); starting the
	// search itself spends nothing.
	grantSearch(f, 2)
	f.adapter.EXPECT().Search(gomock.Any(), searchCriteria()).Return(f.pager, nil)
	gomock.InOrder(
		f.pager.EXPECT().Next(gomock.Any()).Return([]*model.JobPosting{p1, p2}, nil),
		f.pager.EXPECT().Next(gomock.Any()).Return(nil, nil),
	)

	f.postings.EXPECT().Upsert(gomock.Any(), p1).Return(p1, nil)
	f.postings.EXPECT().Upsert(gomock.Any(), p2).Return(p2, nil)

	f.repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateRecordRequest) (*model.ApplicationRecord, error) {
			require.Equal(t, "resume-1", req.ResumeID)
			require.Equal(t, "discover:"+req.JobID, req.CausalID)
			return &model.ApplicationRecord{
				ID:    model.RecordIdentity(req.ResumeID, req.JobID),
				State: model.StateDiscovered, Version: 1,
			}, nil
		}).
		Times(2)

	result, err := f.svc.Discover(context.Background(), "resume-1", model.PlatformLinkedIn, searchCriteria())
	require.NoError(t, err)
	require.Equal(t, 2, result.Found)
	require.Equal(t, 2, result.Enqueued)
}

func TestDiscoverDeduplicatedPairsNotCountedAsEnqueued(t *testing.T) {
	f := newDiscoveryFixture(t)

	p1 := testutil.NewPosting().WithExternalID("job-1").Build()

	grantSearch(f, 2)
	f.adapter.EXPECT().Search(gomock.Any(), gomock.Any()).Return(f.pager, nil)
	gomock.InOrder(
		f.pager.EXPECT().Next(gomock.Any()).Return([]*model.JobPosting{p1}, nil),
		f.pager.EXPECT().Next(gomock.Any()).Return(nil, nil),
	)
	f.postings.EXPECT().Upsert(gomock.Any(), p1).Return(p1, nil)

	// The pair already exists: Create returns the stored record further along
	// its lifecycle.
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&model.ApplicationRecord{
		ID: "existing", State: model.StatePendingReview, Version: 4,
	}, nil)

	result, err := f.svc.Discover(context.Background(), "resume-1", model.PlatformLinkedIn, searchCriteria())
	require.NoError(t, err)
	require.Equal(t, 1, result.Found)
	require.Zero(t, result.Enqueued)
}

func TestDiscoverGovernorDenialEndsRunWithPartialResult(t *testing.T) {
	f := newDiscoveryFixture(t)

	p1 := testutil.NewPosting().WithExternalID("job-1").Build()

	gomock.InOrder(
		f.governor.EXPECT().
			Acquire(gomock.Any(), model.PlatformLinkedIn, model.PermissionSearch).
			Return(&core.PermissionToken{}, nil),
		f.governor.EXPECT().
			Acquire(gomock.Any(), model.PlatformLinkedIn, model.PermissionSearch).
			Return(nil, &core.DeniedError{
				Platform: "linkedin", Kind: "search",
				RetryAfter: fixedNow.Add(time.Minute),
			}),
	)

	f.adapter.EXPECT().Search(gomock.Any(), gomock.Any()).Return(f.pager, nil)
	f.pager.EXPECT().Next(gomock.Any()).Return([]*model.JobPosting{p1}, nil)
	f.postings.EXPECT().Upsert(gomock.Any(), p1).Return(p1, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&model.ApplicationRecord{
		ID: "rec-1", State: model.StateDiscovered, Version: 1,
	}, nil)

	// The denial is not an error: already-yielded postings stay valid.
	result, err := f.svc.Discover(context.Background(), "resume-1", model.PlatformLinkedIn, searchCriteria())
	require.NoError(t, err)
	require.Equal(t, 1, result.Found)
	require.Equal(t, 1, result.Enqueued)
}

func TestDiscoverDenialBeforeFirstPageIsError(t *testing.T) {
	f := newDiscoveryFixture(t)

	// Nothing yielded yet, so the denial surfaces to the caller instead of
	// masquerading as an empty run. No page is ever fetched.
	f.governor.EXPECT().
		Acquire(gomock.Any(), model.PlatformLinkedIn, model.PermissionSearch).
		Return(nil, &core.DeniedError{
			Platform: "linkedin", Kind: "search",
			RetryAfter: fixedNow.Add(time.Minute),
		})
	f.adapter.EXPECT().Search(gomock.Any(), gomock.Any()).Return(f.pager, nil)

	result, err := f.svc.Discover(context.Background(), "resume-1", model.PlatformLinkedIn, searchCriteria())
	require.ErrorIs(t, err, core.ErrPermissionDenied)
	require.Zero(t, result.Found)
}

func TestDiscoverPageFailureReturnsPartialResultWithError(t *testing.T) {
	f := newDiscoveryFixture(t)

	p1 := testutil.NewPosting().WithExternalID("job-1").Build()

	grantSearch(f, 2)
	f.adapter.EXPECT().Search(gomock.Any(), gomock.Any()).Return(f.pager, nil)
	gomock.InOrder(
		f.pager.EXPECT().Next(gomock.Any()).Return([]*model.JobPosting{p1}, nil),
		f.pager.EXPECT().Next(gomock.Any()).Return(nil, errors.New("portal 500")),
	)
	f.postings.EXPECT().Upsert(gomock.Any(), p1).Return(p1, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&model.ApplicationRecord{
		ID: "rec-1", State: model.StateDiscovered, Version: 1,
	}, nil)

	result, err := f.svc.Discover(context.Background(), "resume-1", model.PlatformLinkedIn, searchCriteria())
	require.Error(t, err)
	require.Equal(t, 1, result.Found)
}

func TestDiscoverIngestFailureSkipsPosting(t *testing.T) {
	f := newDiscoveryFixture(t)

	p1 := testutil.NewPosting().WithExternalID("job-1").Build()
	p2 := testutil.NewPosting().WithExternalID("job-2").Build()

	grantSearch(f, 2)
	f.adapter.EXPECT().Search(gomock.Any(), gomock.Any()).Return(f.pager, nil)
	gomock.InOrder(
		f.pager.EXPECT().Next(gomock.Any()).Return([]*model.JobPosting{p1, p2}, nil),
		f.pager.EXPECT().Next(gomock.Any()).Return(nil, nil),
	)

	f.postings.EXPECT().Upsert(gomock.Any(), p1).Return(nil, errors.New("constraint violation"))
	f.postings.EXPECT().Upsert(gomock.Any(), p2).Return(p2, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&model.ApplicationRecord{
		ID: "rec-2", State: model.StateDiscovered, Version: 1,
	}, nil)

	result, err := f.svc.Discover(context.Background(), "resume-1", model.PlatformLinkedIn, searchCriteria())
	require.NoError(t, err)
	require.Equal(t, 2, result.Found)
	require.Equal(t, 1, result.Enqueued)
}

func TestDiscoverUnknownPlatform(t *testing.T) {
	f := newDiscoveryFixture(t)

	_, err := f.svc.Discover(context.Background(), "resume-1", model.PlatformDice, searchCriteria())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no adapter registered")
}

func TestDiscoverInvalidCriteria(t *testing.T) {
	f := newDiscoveryFixture(t)

	_, err := f.svc.Discover(context.Background(), "resume-1", model.PlatformLinkedIn, model.SearchCriteria{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "validate search criteria")
}
