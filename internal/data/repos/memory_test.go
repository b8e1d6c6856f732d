package repos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

var d1 = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

func TestMemorySignalRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySignalRepository()

	require.NoError(t, repo.Save(ctx, []contracts.Signal{
		{Symbol: "A", Date: d1, Strategy: "momentum", Score: 10},
		{Symbol: "B", Date: d1, Strategy: "momentum", Score: 30},
		{Symbol: "A", Date: d1, Strategy: "mean_reversion", Score: 5},
	}))
	// 같은 키는 덮어쓴다
	require.NoError(t, repo.Save(ctx, []contracts.Signal{{Symbol: "A", Date: d1, Strategy: "momentum", Score: 50}}))
	assert.Equal(t, 3, repo.Len())

	got, err := repo.GetByDate(ctx, d1, "momentum")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Symbol)
	assert.Equal(t, 50.0, got[0].Score)

	all, err := repo.GetByDate(ctx, d1, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemorySignalRepositoryRange(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySignalRepository()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, []contracts.Signal{{Symbol: "A", Date: d1.AddDate(0, 0, i), Strategy: "momentum"}}))
	}

	got, err := repo.GetRange(ctx, d1.AddDate(0, 0, 1), d1.AddDate(0, 0, 3), "momentum")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, d1.AddDate(0, 0, 1), got[0].Date)
}

func TestMemoryOutcomeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOutcomeRepository()

	require.NoError(t, repo.Save(ctx, []contracts.TradeOutcome{
		{Symbol: "A", SetupDate: d1, Strategy: "momentum", Status: contracts.StatusOpen},
	}))
	require.NoError(t, repo.Save(ctx, []contracts.TradeOutcome{
		{Symbol: "A", SetupDate: d1, Strategy: "momentum", Status: contracts.StatusSuccess},
	}))

	got, err := repo.GetRange(ctx, d1, d1, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, contracts.StatusSuccess, got[0].Status)
}
