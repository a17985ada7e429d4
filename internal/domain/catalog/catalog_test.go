package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Tiers(t *testing.T) {
	tiers := DefaultDiscountTiers()

	tests := []struct {
		name string
		qty  int
		want string
	}{
		{"below tier1", 4, "0"},
		{"at tier1", 5, "0.05"},
		{"between tiers", 9, "0.05"},
		{"at tier2", 10, "0.10"},
		{"above tier2", 50, "0.10"},
		{"empty cart", 0, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tiers.Resolve(tt.qty)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"qty=%d got=%s", tt.qty, got)
		})
	}
}

func TestResolve_Tier2PrecedenceWithOverlappingThresholds(t *testing.T) {
	// Misconfigured tiers where tier2 threshold is below tier1. Tier2 still
	// wins for anything at or above its threshold.
	tiers := DiscountTiers{
		Tier1Quantity: 10,
		Tier1Rate:     decimal.RequireFromString("0.05"),
		Tier2Quantity: 5,
		Tier2Rate:     decimal.RequireFromString("0.20"),
	}
	assert.True(t, decimal.RequireFromString("0.20").Equal(tiers.Resolve(7)))
}

func TestImageRef_String(t *testing.T) {
	var ref ImageRef
	require.NoError(t, json.Unmarshal([]byte(`"https://cdn/x.jpg"`), &ref))
	assert.Equal(t, "https://cdn/x.jpg", ref.URL)
}

func TestImageRef_Object(t *testing.T) {
	var ref ImageRef
	require.NoError(t, json.Unmarshal([]byte(`{"image_url":"https://cdn/y.jpg"}`), &ref))
	assert.Equal(t, "https://cdn/y.jpg", ref.URL)
}

func TestImageRef_ObjectWithoutURL(t *testing.T) {
	var ref ImageRef
	require.NoError(t, json.Unmarshal([]byte(`{"id":3}`), &ref))
	assert.Empty(t, ref.URL)
}

func TestImageRef_Invalid(t *testing.T) {
	var ref ImageRef
	assert.Error(t, json.Unmarshal([]byte(`42`), &ref))
}

func TestImageURLs_SkipsEmptyAndCaps(t *testing.T) {
	refs := []ImageRef{
		{URL: "a"}, {URL: ""}, {URL: "b"}, {URL: "c"},
		{URL: "d"}, {URL: "e"}, {URL: "f"},
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ImageURLs(refs))
}

func TestEmailSettings_Configured(t *testing.T) {
	assert.False(t, EmailSettings{}.Configured())
	assert.False(t, EmailSettings{Server: "smtp.example.com"}.Configured())
	assert.True(t, EmailSettings{Server: "smtp.example.com", Port: 587}.Configured())
}
