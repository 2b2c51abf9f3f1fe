package integration

import (
	"context"
	"sync"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/stretchr/testify/mock"
)

// ---------------------------------------------------------------------------
// Mapping store fake
// ---------------------------------------------------------------------------

type mappingKey struct {
	entityType integration.EntityType
	localID    string
}

// memMappingStore is an in-memory MappingStore
type memMappingStore struct {
	mu       sync.Mutex
	entries  map[mappingKey]integration.MappingEntry
	failWith error
}

func newMemMappingStore() *memMappingStore {
	return &memMappingStore{entries: make(map[mappingKey]integration.MappingEntry)}
}

func (s *memMappingStore) put(entityType integration.EntityType, localID, remoteID string) *memMappingStore {
	s.entries[mappingKey{entityType, localID}] = integration.MappingEntry{EntityType: entityType, LocalID: localID, RemoteID: remoteID}
	return s
}

func (s *memMappingStore) get(entityType integration.EntityType, localID string) (integration.MappingEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[mappingKey{entityType, localID}]
	return entry, ok
}

func (s *memMappingStore) count(entityType integration.EntityType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.entries {
		if key.entityType == entityType {
			n++
		}
	}
	return n
}

func (s *memMappingStore) Resolve(ctx context.Context, entityType integration.EntityType, localID string) (string, bool, error) {
	if s.failWith != nil {
		return "", false, s.failWith
	}
	entry, ok := s.get(entityType, localID)
	return entry.RemoteID, ok, nil
}

func (s *memMappingStore) ResolvePath(ctx context.Context, entityType integration.EntityType, localID string) ([]string, bool, error) {
	if s.failWith != nil {
		return nil, false, s.failWith
	}
	entry, ok := s.get(entityType, localID)
	return entry.Path, ok, nil
}

func (s *memMappingStore) Register(ctx context.Context, entry integration.MappingEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := mappingKey{entry.EntityType, entry.LocalID}
	if existing, ok := s.entries[key]; ok {
		if existing.Equal(entry) {
			return nil
		}
		return integration.ErrMappingConflict
	}
	s.entries[key] = entry
	return nil
}

func (s *memMappingStore) Replace(ctx context.Context, entry integration.MappingEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[mappingKey{entry.EntityType, entry.LocalID}] = entry
	return nil
}

func (s *memMappingStore) Delete(ctx context.Context, entityType integration.EntityType, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, mappingKey{entityType, localID})
	return nil
}

var _ integration.MappingStore = (*memMappingStore)(nil)

// ---------------------------------------------------------------------------
// ERP client mock
// ---------------------------------------------------------------------------

// MockERPClient is a mock implementation of ERPClient
type MockERPClient struct {
	mock.Mock
}

func (m *MockERPClient) AddOrder(ctx context.Context, order integration.RemoteOrder) (integration.RemoteResult, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(integration.RemoteResult), args.Error(1)
}

func (m *MockERPClient) GetCategoryCatalogPage(ctx context.Context, req integration.CatalogPageRequest) (integration.CatalogPage, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(integration.CatalogPage), args.Error(1)
}

func (m *MockERPClient) AddCategory(ctx context.Context, req integration.RemoteCategoryRequest) (integration.RemoteResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(integration.RemoteResult), args.Error(1)
}

func (m *MockERPClient) AddCategoryTranslation(ctx context.Context, req integration.RemoteCategoryTranslation) (integration.RemoteResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(integration.RemoteResult), args.Error(1)
}

func (m *MockERPClient) AddCustomer(ctx context.Context, customer integration.RemoteCustomer) (integration.RemoteResult, error) {
	args := m.Called(ctx, customer)
	return args.Get(0).(integration.RemoteResult), args.Error(1)
}

func (m *MockERPClient) AddDeliveryAddress(ctx context.Context, address integration.RemoteDeliveryAddress) (integration.RemoteResult, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(integration.RemoteResult), args.Error(1)
}

func (m *MockERPClient) AddIncomingPayment(ctx context.Context, payment integration.IncomingPayment) (integration.RemoteResult, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(integration.RemoteResult), args.Error(1)
}

func (m *MockERPClient) AddItemAttribute(ctx context.Context, attribute integration.ItemAttribute) (integration.RemoteResult, error) {
	args := m.Called(ctx, attribute)
	return args.Get(0).(integration.RemoteResult), args.Error(1)
}

var _ integration.ERPClient = (*MockERPClient)(nil)

// ---------------------------------------------------------------------------
// Repository mocks
// ---------------------------------------------------------------------------

// MockOrderReader is a mock implementation of OrderReader
type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) FindExportable(ctx context.Context, orderID int64) (*integration.ExportableOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ExportableOrder), args.Error(1)
}

// MockArticleDetailReader is a mock implementation of ArticleDetailReader
type MockArticleDetailReader struct {
	mock.Mock
}

func (m *MockArticleDetailReader) FindByNumber(ctx context.Context, number string) (*integration.ArticleDetail, bool, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*integration.ArticleDetail), args.Bool(1), args.Error(2)
}

// MockExportStatusRepository is a mock implementation of ExportStatusRepository
type MockExportStatusRepository struct {
	mock.Mock
}

func (m *MockExportStatusRepository) RecordFailure(ctx context.Context, orderID int64, status integration.ExportStatus, at time.Time) error {
	args := m.Called(ctx, orderID, status, at)
	return args.Error(0)
}

func (m *MockExportStatusRepository) RecordSuccess(ctx context.Context, orderID int64, remoteOrderID int64, remoteStatus float64, at time.Time) error {
	args := m.Called(ctx, orderID, remoteOrderID, remoteStatus, at)
	return args.Error(0)
}

func (m *MockExportStatusRepository) FindByOrderID(ctx context.Context, orderID int64) (*integration.ExportStatusRecord, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ExportStatusRecord), args.Error(1)
}

// MockCategoryReader is a mock implementation of CategoryReader
type MockCategoryReader struct {
	mock.Mock
}

func (m *MockCategoryReader) FindAll(ctx context.Context) ([]integration.CategoryNode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.CategoryNode), args.Error(1)
}

// MockShopReader is a mock implementation of ShopReader
type MockShopReader struct {
	mock.Mock
}

func (m *MockShopReader) FindActive(ctx context.Context) ([]integration.Shop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Shop), args.Error(1)
}

// MockConfiguratorGroupReader is a mock implementation of ConfiguratorGroupReader
type MockConfiguratorGroupReader struct {
	mock.Mock
}

func (m *MockConfiguratorGroupReader) FindAll(ctx context.Context) ([]integration.ConfiguratorGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ConfiguratorGroup), args.Error(1)
}

// ---------------------------------------------------------------------------
// Collaborator mocks
// ---------------------------------------------------------------------------

// MockCustomerExporter is a mock implementation of OrderCustomerExporter
type MockCustomerExporter struct {
	mock.Mock
}

func (m *MockCustomerExporter) Export(ctx context.Context, order *integration.ExportableOrder) (CustomerRefs, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(CustomerRefs), args.Error(1)
}

// MockPaymentBooker is a mock implementation of PaymentBooker
type MockPaymentBooker struct {
	mock.Mock
}

func (m *MockPaymentBooker) Book(ctx context.Context, order *integration.ExportableOrder, remoteOrderID int64) error {
	args := m.Called(ctx, order, remoteOrderID)
	return args.Error(0)
}

// MockExportLock is a mock implementation of ExportLock
type MockExportLock struct {
	mock.Mock
	released []string
}

func (m *MockExportLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (integration.ReleaseFunc, error) {
	args := m.Called(ctx, key, ttl)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		m.released = append(m.released, key)
		return nil
	}, nil
}

var (
	_ integration.OrderReader             = (*MockOrderReader)(nil)
	_ integration.ArticleDetailReader     = (*MockArticleDetailReader)(nil)
	_ integration.ExportStatusRepository  = (*MockExportStatusRepository)(nil)
	_ integration.CategoryReader          = (*MockCategoryReader)(nil)
	_ integration.ShopReader              = (*MockShopReader)(nil)
	_ integration.ConfiguratorGroupReader = (*MockConfiguratorGroupReader)(nil)
	_ integration.ExportLock              = (*MockExportLock)(nil)
	_ OrderCustomerExporter               = (*MockCustomerExporter)(nil)
	_ PaymentBooker                       = (*MockPaymentBooker)(nil)
)

// success builds a successful remote result
func success(kv ...string) integration.RemoteResult {
	res := integration.RemoteResult{Success: true}
	for i := 0; i+1 < len(kv); i += 2 {
		res.SuccessMessages = append(res.SuccessMessages, integration.KeyValue{Key: kv[i], Value: kv[i+1]})
	}
	return res
}
