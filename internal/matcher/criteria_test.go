package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/fundmatch/internal/model"
)

func TestBuildCriteria(t *testing.T) {
	profile := model.CompanyProfile{
		Industries: []string{"Software", " software ", "Tech-Enabled Services"},
		Locations:  []string{"Austin, Texas", "Toronto, Ontario", "USA"},
		RevenueUSD: rng(5e6, 80e6),
	}

	t.Run("normalizes and dedupes sets", func(t *testing.T) {
		c := BuildCriteria(profile, "", "")
		assert.Equal(t, []string{"software", "tech-enabled services"}, c.Industries)
		assert.Equal(t, []string{"us", "canada"}, c.Regions)
		assert.Equal(t, profile.RevenueUSD, c.RevenueUSD)
	})

	t.Run("deal type from context hint", func(t *testing.T) {
		c := BuildCriteria(profile, "the owner wants a majority recap soon", "")
		assert.Equal(t, "majority", c.DealType)
	})

	t.Run("explicit deal type wins over context", func(t *testing.T) {
		c := BuildCriteria(profile, "thinking about growth equity", "Carve-Out")
		assert.Equal(t, "carve-out", c.DealType)
	})

	t.Run("no deal type derivable", func(t *testing.T) {
		c := BuildCriteria(profile, "family-owned since 1987", "")
		assert.Empty(t, c.DealType)
	})

	t.Run("empty profile yields empty criteria", func(t *testing.T) {
		c := BuildCriteria(model.CompanyProfile{}, "", "")
		assert.Empty(t, c.Industries)
		assert.Empty(t, c.Regions)
		assert.True(t, c.RevenueUSD.Empty())
		assert.True(t, c.Employees.Empty())
	})
}

func TestValidateConfig(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, ValidateConfig(DefaultConfig()))
	})

	t.Run("weights must sum to one", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.IndustryWeight = 0.9
		assert.Error(t, ValidateConfig(cfg))
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RegionWeight = -0.2
		cfg.IndustryWeight = 0.8
		assert.Error(t, ValidateConfig(cfg))
	})
}
