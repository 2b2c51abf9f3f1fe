package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type categoryFixture struct {
	client     *MockERPClient
	categories *MockCategoryReader
	shops      *MockShopReader
	mappings   *memMappingStore
	reconciler *CategoryReconciler
}

func newCategoryFixture(t *testing.T) *categoryFixture {
	f := &categoryFixture{
		client:     new(MockERPClient),
		categories: new(MockCategoryReader),
		shops:      new(MockShopReader),
		mappings:   newMemMappingStore(),
	}
	f.reconciler = NewCategoryReconciler(f.client, f.categories, f.shops, f.mappings, DefaultExportSettings(), zaptest.NewLogger(t))
	return f
}

func catalogPage(page int) integration.CatalogPageRequest {
	return integration.CatalogPageRequest{Lang: "de", Page: page}
}

func named(name string) any {
	return mock.MatchedBy(func(req integration.RemoteCategoryRequest) bool { return req.Name == name })
}

// shopTree is a shop with root 3, two exported levels, a blog, a reused
// category and a category below a root without shop.
func shopTree() []integration.CategoryNode {
	return []integration.CategoryNode{
		{ID: 1, Name: "Root"},
		{ID: 3, ParentID: 1, Name: "Deutsch"},
		{ID: 10, ParentID: 1, Name: "Unused"},
		{ID: 7, ParentID: 5, Name: "Polo", AncestorIDs: []int64{5, 3}, Position: 1},
		{ID: 5, ParentID: 3, Name: "Shirts", AncestorIDs: []int64{3}, Position: 1, MetaTitle: "All shirts"},
		{ID: 6, ParentID: 3, Name: "Caps", AncestorIDs: []int64{3}, Position: 2},
		{ID: 8, ParentID: 3, Name: "News", AncestorIDs: []int64{3}, Blog: true},
		{ID: 20, ParentID: 10, Name: "Orphan", AncestorIDs: []int64{10}},
	}
}

func TestCategoryRun_Success(t *testing.T) {
	f := newCategoryFixture(t)

	// Setup expectations
	f.client.On("GetCategoryCatalogPage", mock.Anything, catalogPage(0)).Return(integration.CatalogPage{
		Success:    true,
		Pages:      1,
		Categories: []integration.RemoteCategory{{ID: 900, Level: 1, Name: "Caps"}},
	}, nil).Once()
	f.shops.On("FindActive", mock.Anything).Return([]integration.Shop{
		{ID: 1, RootCategoryID: 3, Locale: "de_DE", Active: true, Default: true},
		{ID: 2, RootCategoryID: 3, Locale: "en_GB", Active: true},
		{ID: 3, RootCategoryID: 3, Locale: "de_AT", Active: true},
	}, nil)
	f.categories.On("FindAll", mock.Anything).Return(shopTree(), nil)

	var created []integration.RemoteCategoryRequest
	f.client.On("AddCategory", mock.Anything, named("Shirts")).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(integration.RemoteCategoryRequest)) }).
		Return(success("CategoryID", "501"), nil).Once()
	f.client.On("AddCategory", mock.Anything, named("Polo")).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(integration.RemoteCategoryRequest)) }).
		Return(success("CategoryID", "502"), nil).Once()

	var translations []integration.RemoteCategoryTranslation
	f.client.On("AddCategoryTranslation", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			translations = append(translations, args.Get(1).(integration.RemoteCategoryTranslation))
		}).
		Return(success(), nil)

	// Execute
	result, err := f.reconciler.Run(context.Background())

	// Verify
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.IndexedRemote)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Reused)
	assert.Equal(t, 3, result.Translated)
	assert.Equal(t, 3, result.PathsRebuilt)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, int64(20), result.Skipped[0].CategoryID)
	assert.Equal(t, integration.CodeCategoryNotConnected, result.Skipped[0].Code)

	require.Len(t, created, 2)
	assert.Equal(t, "Shirts", created[0].Name, "parents are created first")
	assert.Equal(t, 1, created[0].Level)
	assert.Equal(t, "de", created[0].Lang)
	assert.Equal(t, "All shirts", created[0].MetaTitle)
	assert.Equal(t, 2, created[1].Level)

	for _, tr := range translations {
		assert.Equal(t, "en", tr.Lang)
	}
	assert.ElementsMatch(t, []int64{501, 900, 502}, []int64{translations[0].CategoryID, translations[1].CategoryID, translations[2].CategoryID})

	shirts, ok := f.mappings.get(integration.EntityCategory, "5")
	require.True(t, ok)
	assert.Equal(t, []string{"501"}, shirts.Path)
	caps, ok := f.mappings.get(integration.EntityCategory, "6")
	require.True(t, ok)
	assert.Equal(t, []string{"900"}, caps.Path)
	polo, ok := f.mappings.get(integration.EntityCategory, "7")
	require.True(t, ok)
	assert.Equal(t, []string{"501", "502"}, polo.Path)
	assert.Equal(t, "502", polo.RemoteID)

	_, ok = f.mappings.get(integration.EntityCategory, "8")
	assert.False(t, ok, "blog categories are not exported")
	_, ok = f.mappings.get(integration.EntityCategory, "20")
	assert.False(t, ok)
	f.client.AssertExpectations(t)
}

func TestCategoryRun_CatalogPageFailureAbortsBeforeCreating(t *testing.T) {
	f := newCategoryFixture(t)

	f.client.On("GetCategoryCatalogPage", mock.Anything, catalogPage(0)).Return(integration.CatalogPage{
		Success: true, Pages: 3,
		Categories: []integration.RemoteCategory{{ID: 900, Level: 1, Name: "Caps"}},
	}, nil).Once()
	f.client.On("GetCategoryCatalogPage", mock.Anything, catalogPage(1)).Return(integration.CatalogPage{Success: false}, nil).Once()

	result, err := f.reconciler.Run(context.Background())

	assert.Nil(t, result)
	var opErr *integration.RemoteOperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, integration.CodeCatalogPageFailed, opErr.Code)
	assert.Contains(t, opErr.Subject, "page 1")
	f.client.AssertNotCalled(t, "GetCategoryCatalogPage", mock.Anything, catalogPage(2))
	f.client.AssertNotCalled(t, "AddCategory", mock.Anything, mock.Anything)
	f.categories.AssertNotCalled(t, "FindAll", mock.Anything)
	assert.Zero(t, f.mappings.count(integration.EntityCategory))
}

func TestCategoryRun_PagesAllFetched(t *testing.T) {
	f := newCategoryFixture(t)

	for page := 0; page < 3; page++ {
		f.client.On("GetCategoryCatalogPage", mock.Anything, catalogPage(page)).Return(integration.CatalogPage{
			Success: true, Pages: 3,
			Categories: []integration.RemoteCategory{{ID: int64(900 + page), Level: 1, Name: string(rune('A' + page))}},
		}, nil).Once()
	}
	f.shops.On("FindActive", mock.Anything).Return([]integration.Shop{{ID: 1, RootCategoryID: 3, Locale: "de_DE"}}, nil)
	f.categories.On("FindAll", mock.Anything).Return([]integration.CategoryNode{}, nil)

	result, err := f.reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.IndexedRemote)
	f.client.AssertExpectations(t)
}

func TestCategoryRun_SameNameSameLevelShared(t *testing.T) {
	f := newCategoryFixture(t)

	f.client.On("GetCategoryCatalogPage", mock.Anything, catalogPage(0)).Return(integration.CatalogPage{Success: true, Pages: 0}, nil)
	f.shops.On("FindActive", mock.Anything).Return([]integration.Shop{
		{ID: 1, RootCategoryID: 3, Locale: "de_DE"},
		{ID: 2, RootCategoryID: 4, Locale: "de_CH"},
	}, nil)
	f.categories.On("FindAll", mock.Anything).Return([]integration.CategoryNode{
		{ID: 3, ParentID: 1, Name: "DE"},
		{ID: 4, ParentID: 1, Name: "CH"},
		{ID: 11, ParentID: 3, Name: "Sale", AncestorIDs: []int64{3}},
		{ID: 12, ParentID: 4, Name: "Sale", AncestorIDs: []int64{4}},
	}, nil)
	f.client.On("AddCategory", mock.Anything, named("Sale")).Return(success("CategoryID", "600"), nil).Once()

	result, err := f.reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Reused)
	a, _ := f.mappings.get(integration.EntityCategory, "11")
	b, _ := f.mappings.get(integration.EntityCategory, "12")
	assert.Equal(t, "600", a.RemoteID)
	assert.Equal(t, "600", b.RemoteID)
	f.client.AssertExpectations(t)
}

func TestCategoryRun_CreateFailure(t *testing.T) {
	f := newCategoryFixture(t)

	f.client.On("GetCategoryCatalogPage", mock.Anything, catalogPage(0)).Return(integration.CatalogPage{Success: true, Pages: 1}, nil)
	f.shops.On("FindActive", mock.Anything).Return([]integration.Shop{{ID: 1, RootCategoryID: 3, Locale: "de_DE"}}, nil)
	f.categories.On("FindAll", mock.Anything).Return(shopTree(), nil)
	f.client.On("AddCategory", mock.Anything, named("Shirts")).Return(integration.RemoteResult{Success: false}, nil)

	_, err := f.reconciler.Run(context.Background())

	var opErr *integration.RemoteOperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, integration.CodeCategoryCreateFailed, opErr.Code)
	assert.Contains(t, err.Error(), "Shirts")
	f.client.AssertNotCalled(t, "AddCategory", mock.Anything, named("Polo"))
}

func TestCategoryRun_CreateResponseWithoutID(t *testing.T) {
	f := newCategoryFixture(t)

	f.client.On("GetCategoryCatalogPage", mock.Anything, catalogPage(0)).Return(integration.CatalogPage{Success: true, Pages: 1}, nil)
	f.shops.On("FindActive", mock.Anything).Return([]integration.Shop{{ID: 1, RootCategoryID: 3, Locale: "de_DE"}}, nil)
	f.categories.On("FindAll", mock.Anything).Return(shopTree(), nil)
	f.client.On("AddCategory", mock.Anything, named("Shirts")).Return(success(), nil)

	_, err := f.reconciler.Run(context.Background())

	assert.ErrorIs(t, err, integration.ErrRemoteInvalidResponse)
}

func TestCategoryRun_TranslationFailure(t *testing.T) {
	f := newCategoryFixture(t)

	f.client.On("GetCategoryCatalogPage", mock.Anything, catalogPage(0)).Return(integration.CatalogPage{Success: true, Pages: 1}, nil)
	f.shops.On("FindActive", mock.Anything).Return([]integration.Shop{
		{ID: 1, RootCategoryID: 3, Locale: "de_DE"},
		{ID: 2, RootCategoryID: 3, Locale: "en_GB"},
	}, nil)
	f.categories.On("FindAll", mock.Anything).Return(shopTree(), nil)
	f.client.On("AddCategory", mock.Anything, named("Shirts")).Return(success("CategoryID", "501"), nil)
	f.client.On("AddCategoryTranslation", mock.Anything, mock.Anything).Return(integration.RemoteResult{}, integration.ErrRemoteUnavailable)

	_, err := f.reconciler.Run(context.Background())

	var opErr *integration.RemoteOperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, integration.CodeCategoryTranslationFailed, opErr.Code)
	assert.ErrorIs(t, err, integration.ErrRemoteUnavailable)
}

func TestCategoryRun_TooDeepSkipped(t *testing.T) {
	f := newCategoryFixture(t)

	f.client.On("GetCategoryCatalogPage", mock.Anything, catalogPage(0)).Return(integration.CatalogPage{Success: true, Pages: 1}, nil)
	f.shops.On("FindActive", mock.Anything).Return([]integration.Shop{{ID: 1, RootCategoryID: 3, Locale: "de_DE"}}, nil)
	f.categories.On("FindAll", mock.Anything).Return([]integration.CategoryNode{
		{ID: 3, ParentID: 1, Name: "DE"},
		{ID: 99, ParentID: 98, Name: "Deep", AncestorIDs: []int64{98, 97, 96, 95, 94, 93, 3}},
	}, nil)

	result, err := f.reconciler.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, int64(99), result.Skipped[0].CategoryID)
	f.client.AssertNotCalled(t, "AddCategory", mock.Anything, mock.Anything)
}

func TestCategoryRun_LockHeld(t *testing.T) {
	f := newCategoryFixture(t)
	lock := new(MockExportLock)
	lock.On("TryAcquire", mock.Anything, integration.LockKeyCategories, DefaultCategoryLockTTL).Return(integration.ErrExportInProgress)
	f.reconciler.WithLock(lock, 0)

	_, err := f.reconciler.Run(context.Background())

	assert.ErrorIs(t, err, integration.ErrExportInProgress)
	f.client.AssertNotCalled(t, "GetCategoryCatalogPage", mock.Anything, mock.Anything)
}
