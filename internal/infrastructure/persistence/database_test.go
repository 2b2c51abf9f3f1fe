package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/config"
	applogger "github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/logger"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

// newTestDB opens an in-memory sqlite database holding the connector
// tables and the Shopware tables the readers use
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 applogger.NewGormLogger(zaptest.NewLogger(t), gormlogger.Warn),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.PlentyMappingModel{},
		&models.PlentyOrderModel{},
		&models.ShopOrderModel{},
		&models.ShopOrderDetailModel{},
		&models.ShopBillingAddressModel{},
		&models.ShopShippingAddressModel{},
		&models.ShopCountryModel{},
		&models.ShopUserModel{},
		&models.ShopUserDebitModel{},
		&models.ArticleDetailModel{},
		&models.OrderNumberModel{},
		&models.CategoryModel{},
		&models.ShopModel{},
		&models.LocaleModel{},
		&models.ConfiguratorGroupModel{},
		&models.ConfiguratorOptionModel{},
	))
	return db
}

func TestNewDatabase_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            ":memory:",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 60,
		ConnMaxIdleTime: 30,
	}

	db, err := NewDatabaseWithLogger(cfg, applogger.NewGormLogger(zaptest.NewLogger(t), gormlogger.Warn))
	require.NoError(t, err)
	defer db.Close()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.NoError(t, db.Ping())
	assert.Equal(t, "sqlite", DBSystem(cfg))
}

func TestDialector(t *testing.T) {
	t.Run("postgres is the default", func(t *testing.T) {
		d, err := Dialector(&config.DatabaseConfig{Host: "localhost", Port: 5432, User: "u", DBName: "shop", SSLMode: "disable"})
		require.NoError(t, err)
		assert.Equal(t, "postgres", d.Name())
		assert.Equal(t, "postgresql", DBSystem(&config.DatabaseConfig{}))
	})

	t.Run("rejects unknown drivers", func(t *testing.T) {
		_, err := Dialector(&config.DatabaseConfig{Driver: "mysql"})
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}

// TestDatabase_Stats tests the Stats method
func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.GreaterOrEqual(t, stats.WaitCount, int64(0))
}

// TestDatabase_Close tests the Close method
func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDatabase_Transaction tests the Transaction method
func TestDatabase_Transaction(t *testing.T) {
	t.Run("successful transaction", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "plenty_mapping" WHERE entity_type = \$1 AND local_id = \$2`).
			WithArgs("category", "17").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return NewGormMappingStore(tx).Delete(t.Context(), "category", "17")
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("transaction rollback on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureConnectorTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, EnsureConnectorTables(db))
	// Idempotent
	require.NoError(t, EnsureConnectorTables(db))

	assert.True(t, db.Migrator().HasTable("plenty_mapping"))
	assert.True(t, db.Migrator().HasTable("plenty_order"))
	assert.True(t, db.Migrator().HasIndex(&models.PlentyMappingModel{}, "idx_plenty_mapping_entity_local"))
	assert.False(t, db.Migrator().HasTable("s_order"))
}
