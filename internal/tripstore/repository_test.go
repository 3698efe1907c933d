package tripstore_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmate/tripmate/internal/database"
	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/tripstore"
)

func samplePlan() *itinerary.GeneratedPlan {
	return &itinerary.GeneratedPlan{
		Destination:        "Goa",
		Days:               1,
		Persons:            1,
		TotalEstimatedCost: 4305,
		Currency:           "INR",
		CostBreakdown:      itinerary.CostBreakdown{Accommodation: 1500, Food: 1200, Transport: 600, Activities: 800, Misc: 205, Total: 4305},
		Itinerary: []itinerary.DayPlan{{Day: 1, Activities: []itinerary.Activity{
			{Time: "09:00", Place: "Hotel", Category: itinerary.ActivityWake},
			{Time: "21:00", Place: "Hotel", Category: itinerary.ActivityReturn},
		}}},
		PackingList: []string{"Passport"},
		SafetyTips:  []string{"Keep copies of documents"},
		Provenance:  itinerary.ProvenanceDeterministic,
	}
}

// exerciseRepository runs the behaviour every Repository must share.
func exerciseRepository(t *testing.T, repo tripstore.Repository) {
	t.Helper()
	ctx := context.Background()
	owner := "user_" + strings.ReplaceAll(time.Now().Format("150405.000000000"), ".", "")

	require.NoError(t, repo.Ping(ctx))

	_, err := repo.Get(ctx, "plan_missing")
	assert.ErrorIs(t, err, tripstore.ErrTripNotFound)

	trip := &tripstore.Trip{
		ID:      tripstore.NewID(),
		OwnerID: owner,
		Request: itinerary.PlanRequest{Destination: "Goa", Days: 1, Persons: 1},
		Status:  tripstore.StatusPending,
	}
	require.NoError(t, repo.Save(ctx, trip))
	assert.False(t, trip.CreatedAt.IsZero())

	got, err := repo.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, tripstore.StatusPending, got.Status)
	assert.Nil(t, got.Plan)
	assert.Equal(t, "Goa", got.Request.Destination)

	trip.Plan = samplePlan()
	trip.Status = tripstore.StatusReady
	require.NoError(t, repo.Save(ctx, trip))

	got, err = repo.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, tripstore.StatusReady, got.Status)
	assert.Equal(t, samplePlan(), got.Plan)

	second := &tripstore.Trip{ID: tripstore.NewID(), OwnerID: owner, Status: tripstore.StatusFailed, Error: "generation failed"}
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, &tripstore.Trip{ID: tripstore.NewID(), OwnerID: owner + "-other", Status: tripstore.StatusPending}))

	trips, err := repo.ListByOwner(ctx, owner, 10)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	for _, tr := range trips {
		assert.Equal(t, owner, tr.OwnerID)
	}

	trips, err = repo.ListByOwner(ctx, owner, 1)
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}

func TestInMemoryRepository(t *testing.T) {
	exerciseRepository(t, tripstore.NewInMemoryRepository())
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := tripstore.NewInMemoryRepository()
	trip := &tripstore.Trip{ID: "plan_1", Status: tripstore.StatusPending}
	require.NoError(t, repo.Save(ctx, trip))

	got, err := repo.Get(ctx, "plan_1")
	require.NoError(t, err)
	got.Status = tripstore.StatusFailed

	again, err := repo.Get(ctx, "plan_1")
	require.NoError(t, err)
	assert.Equal(t, tripstore.StatusPending, again.Status)
}

func TestPostgresRepository_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, database.Config{URL: url, MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: time.Minute})
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, database.EnsureSchema(ctx, pool))

	exerciseRepository(t, tripstore.NewPostgresRepository(pool))
}

func TestNewID(t *testing.T) {
	id := tripstore.NewID()
	assert.True(t, strings.HasPrefix(id, "plan_"))
	assert.NotEqual(t, id, tripstore.NewID())
}
