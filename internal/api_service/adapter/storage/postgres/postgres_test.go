package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/langowen/satsconv/internal/entities"
	"github.com/stretchr/testify/suite"
)

// Runs against a real database when SATSCONV_TEST_POSTGRES_DSN is set, e.g.
// "host=localhost port=5432 user=postgres password=postgres dbname=satsconv_test sslmode=disable".
type StorageTestSuite struct {
	suite.Suite
	storage *Storage
}

func (suite *StorageTestSuite) SetupSuite() {
	dsn := os.Getenv("SATSCONV_TEST_POSTGRES_DSN")
	if dsn == "" {
		suite.T().Skip("SATSCONV_TEST_POSTGRES_DSN not set")
	}

	storage, err := InitStorage(context.Background(), dsn, 10*time.Second)
	suite.Require().NoError(err)
	suite.storage = storage
}

func (suite *StorageTestSuite) TearDownSuite() {
	if suite.storage != nil {
		suite.storage.Close()
	}
}

func (suite *StorageTestSuite) SetupTest() {
	_, err := suite.storage.db.Exec(context.Background(), `TRUNCATE rate_snapshots, events`)
	suite.Require().NoError(err)
}

func (suite *StorageTestSuite) countSnapshots(provider string) int {
	var n int
	err := suite.storage.db.QueryRow(context.Background(),
		`SELECT count(*) FROM rate_snapshots WHERE provider = $1`, provider).Scan(&n)
	suite.Require().NoError(err)
	return n
}

func (suite *StorageTestSuite) TestSaveSnapshotUpserts() {
	ctx := context.Background()
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	snap := &entities.Snapshot{
		Rates: entities.NewRates(map[entities.Currency]float64{
			entities.USD: 50000,
			entities.EUR: 46000,
		}, updated),
		Provider:  "coingecko",
		FetchedAt: updated.Add(time.Second),
	}
	suite.Require().NoError(suite.storage.SaveSnapshot(ctx, snap))
	suite.Equal(2, suite.countSnapshots("coingecko"))

	snap.Rates = entities.NewRates(map[entities.Currency]float64{
		entities.USD: 51000,
		entities.EUR: 47000,
	}, updated)
	snap.FetchedAt = updated.Add(2 * time.Second)
	suite.Require().NoError(suite.storage.SaveSnapshot(ctx, snap))
	suite.Equal(2, suite.countSnapshots("coingecko"))

	var amount float64
	err := suite.storage.db.QueryRow(ctx,
		`SELECT amount FROM rate_snapshots WHERE provider = $1 AND currency = $2`, "coingecko", "usd").Scan(&amount)
	suite.Require().NoError(err)
	suite.Equal(51000.0, amount)
}

func (suite *StorageTestSuite) TestSaveEventAndCount() {
	ctx := context.Background()
	now := time.Now().UTC()

	suite.Require().NoError(suite.storage.SaveEvent(ctx,
		entities.NewEvent(entities.EventConversion, map[string]string{"from": "btc"}, now)))
	suite.Require().NoError(suite.storage.SaveEvent(ctx,
		entities.NewEvent(entities.EventConversion, nil, now)))
	suite.Require().NoError(suite.storage.SaveEvent(ctx,
		entities.NewEvent(entities.EventCopy, nil, now)))

	n, err := suite.storage.CountEvents(ctx, entities.EventConversion, now.Add(-time.Minute))
	suite.Require().NoError(err)
	suite.Equal(int64(2), n)

	n, err = suite.storage.CountEvents(ctx, entities.EventConversion, now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Zero(n)

	var payload string
	err = suite.storage.db.QueryRow(ctx,
		`SELECT payload->>'from' FROM events WHERE type = $1 AND payload->>'from' IS NOT NULL`, "conversion").Scan(&payload)
	suite.Require().NoError(err)
	suite.Equal("btc", payload)
}

func TestStorageTestSuite(t *testing.T) {
	suite.Run(t, new(StorageTestSuite))
}
