package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"labchem/internal/database"
	"labchem/internal/models"
	"labchem/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open("sqlite", dsn, zap.NewNop())
	require.NoError(t, err)
	return db
}

func sampleReagent(name string) *models.Reagent {
	return &models.Reagent{
		Name:          name,
		Concentration: "1M",
		Manufacturer:  "Acme",
		CAS:           "7647-14-5",
		Quantity:      "500",
		Unit:          "g",
		Location:      "Shelf 3",
		Stock:         "In stock",
		Date:          "01-02-2024 10:00:00",
	}
}

func TestGORMReagentRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMReagentRepository(openTestDB(t))

	t.Run("Create assigns increasing IDs", func(t *testing.T) {
		first, second := sampleReagent("NaCl"), sampleReagent("KCl")
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
		assert.NotZero(t, first.ID)
		assert.Greater(t, second.ID, first.ID)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "NaCl", all[0].Name)
		assert.Equal(t, "KCl", all[1].Name)
	})

	t.Run("Update keeps the date", func(t *testing.T) {
		reagent := sampleReagent("Ethanol")
		require.NoError(t, repo.Create(ctx, reagent))

		changed := *reagent
		changed.Location = "Shelf 5"
		changed.Comment = ""
		changed.Date = "31-12-2099 00:00:00"
		require.NoError(t, repo.Update(ctx, &changed))

		stored, err := repo.GetByID(ctx, reagent.ID)
		require.NoError(t, err)
		assert.Equal(t, "Shelf 5", stored.Location)
		assert.Equal(t, reagent.Date, stored.Date)
	})

	t.Run("Update writes empty values", func(t *testing.T) {
		reagent := sampleReagent("Acetone")
		reagent.Comment = "flammable"
		require.NoError(t, repo.Create(ctx, reagent))

		reagent.Comment = ""
		require.NoError(t, repo.Update(ctx, reagent))

		stored, err := repo.GetByID(ctx, reagent.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Comment)
	})

	t.Run("unknown IDs", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		missing := sampleReagent("Ghost")
		missing.ID = 9999
		assert.ErrorIs(t, repo.Update(ctx, missing), repositories.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, 9999), repositories.ErrNotFound)
	})

	t.Run("Delete removes the row", func(t *testing.T) {
		reagent := sampleReagent("Toluene")
		require.NoError(t, repo.Create(ctx, reagent))
		require.NoError(t, repo.Delete(ctx, reagent.ID))

		_, err := repo.GetByID(ctx, reagent.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	user := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: "a@x.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "Ada Lovelace", byEmail.FullName())

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	dup := &models.User{FirstName: "Other", LastName: "User", Email: "a@x.com", Password: "hash"}
	assert.ErrorIs(t, repo.Create(ctx, dup), repositories.ErrDuplicateEmail)

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
