//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
	storage "github.com/agentur-schein/propshop/internal/storage/postgres"
)

func propInput(name string, images ...string) catalog.PropInput {
	return catalog.PropInput{
		Name:        name,
		Description: "screen used",
		Price:       decimal.RequireFromString("100"),
		PrintCost:   decimal.RequireFromString("10"),
		Category:    "misc",
		ImageURLs:   images,
	}
}

func TestCatalog_CreateGetUpdateDelete(t *testing.T) {
	truncate(t, "props")
	repo := storage.NewCatalogRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, propInput("Hoverboard", "https://img/1.png", "https://img/2.png"))
	require.NoError(t, err)
	require.Len(t, created.Images, 2)
	assert.Equal(t, 0, created.Images[0].Position)
	assert.Equal(t, "https://img/1.png", created.Images[0].URL)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hoverboard", got.Name)

	updated, err := repo.Update(ctx, created.ID, propInput("Hoverboard Mk2", "https://img/3.png"))
	require.NoError(t, err)
	assert.Equal(t, "Hoverboard Mk2", updated.Name)
	require.Len(t, updated.Images, 1)
	assert.Equal(t, "https://img/3.png", updated.Images[0].URL)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCatalog_UpdateMissingProp(t *testing.T) {
	truncate(t, "props")
	repo := storage.NewCatalogRepository(pool)

	_, err := repo.Update(context.Background(), 424242, propInput("Ghost"))
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCatalog_ReplaceAll(t *testing.T) {
	truncate(t, "props")
	repo := storage.NewCatalogRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, propInput("Old"))
	require.NoError(t, err)

	err = repo.ReplaceAll(ctx, []catalog.PropInput{
		propInput("New A", "https://img/a.png"),
		propInput("New B"),
	})
	require.NoError(t, err)

	props, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, props, 2)
	names := []string{props[0].Name, props[1].Name}
	assert.ElementsMatch(t, []string{"New A", "New B"}, names)
}

func TestSettings_DefaultsThenStored(t *testing.T) {
	truncate(t, "discount_settings", "email_settings")
	repo := storage.NewSettingsRepository(pool)
	ctx := context.Background()

	tiers, err := repo.DiscountTiers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, tiers.Tier1Quantity)
	assert.True(t, tiers.UpdatedAt.IsZero(), "defaults are not a stored row")

	updated, err := repo.UpdateDiscountTiers(ctx, catalog.DiscountTiers{
		Tier1Quantity: 3,
		Tier1Rate:     decimal.RequireFromString("0.07"),
		Tier2Quantity: 8,
		Tier2Rate:     decimal.RequireFromString("0.12"),
	})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.IsZero())

	reread, err := repo.DiscountTiers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, reread.Tier1Quantity)
	assert.True(t, decimal.RequireFromString("0.12").Equal(reread.Tier2Rate))
}

func TestSettings_EmailRoundTrip(t *testing.T) {
	truncate(t, "email_settings")
	repo := storage.NewSettingsRepository(pool)
	ctx := context.Background()

	initial, err := repo.EmailSettings(ctx)
	require.NoError(t, err)
	assert.False(t, initial.Configured())

	_, err = repo.UpdateEmailSettings(ctx, catalog.EmailSettings{
		Server:   "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "secret",
		UseTLS:   true,
	})
	require.NoError(t, err)

	stored, err := repo.EmailSettings(ctx)
	require.NoError(t, err)
	assert.True(t, stored.Configured())
	assert.Equal(t, "smtp.example.com", stored.Server)
	assert.True(t, stored.UseTLS)
}
