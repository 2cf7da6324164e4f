package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fundmatch/internal/model"
)

func testFunds() []model.Fund {
	return []model.Fund{
		{
			Name:         "Summit Ridge Capital",
			Industries:   []string{"Software", "Business Services"},
			Regions:      []string{"US"},
			RevenueFocus: rng(10e6, 100e6),
			DealTypes:    []string{"Buyout", "Recap"},
		},
		{
			Name:          "Lakeshore Partners",
			Industries:    []string{"Industrial", "Manufacturing"},
			Regions:       []string{"US", "Canada"},
			RevenueFocus:  rng(25e6, 30e6),
			EmployeeFocus: rng(50, 500),
			DealTypes:     []string{"LBO"},
		},
		{
			Name:       "Meridian Growth Partners",
			Industries: []string{"Software"},
			Regions:    []string{"Europe"},
			DealTypes:  []string{"Growth Equity", "Minority"},
		},
	}
}

func testProfile() model.CompanyProfile {
	return model.CompanyProfile{
		Name:       "Acme Machining",
		URL:        "https://acmemachining.example.com",
		Industries: []string{"Industrial", "Manufacturing"},
		Locations:  []string{"Cleveland, Ohio, United States"},
		RevenueUSD: rng(20e6, 40e6),
	}
}

func TestMatchRankingAndScores(t *testing.T) {
	eng := New(DefaultConfig())

	items, err := eng.Match(context.Background(), Request{
		Profile:  testProfile(),
		DealType: "buyout",
		TopK:     5,
	}, testFunds())
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Lakeshore: industry 1.0*0.4, region 0.2, revenue 0.25*0.2, deal near 0.
	assert.Equal(t, "Lakeshore Partners", items[0].Fund)
	assert.InDelta(t, 0.65, items[0].Score, 1e-4)

	lakeshore := items[0]
	rev := lakeshore.Subscore(model.FactorRevenue)
	require.NotNil(t, rev)
	assert.InDelta(t, 0.25, rev.Raw, 1e-9)

	deal := lakeshore.Subscore(model.FactorDealType)
	require.NotNil(t, deal)
	assert.Equal(t, model.DealNearMatch, deal.Classification)
	assert.Zero(t, deal.Contribution)

	// Summit Ridge: region 0.2, revenue full coverage 0.2, deal match 0.1.
	assert.Equal(t, "Summit Ridge Capital", items[1].Fund)
	assert.InDelta(t, 0.50, items[1].Score, 1e-4)

	// Meridian: nothing fits.
	assert.Equal(t, "Meridian Growth Partners", items[2].Fund)
	assert.InDelta(t, 0.0, items[2].Score, 1e-4)
}

func TestMatchWeightConservation(t *testing.T) {
	eng := New(DefaultConfig())

	items, err := eng.Match(context.Background(), Request{
		Profile: testProfile(),
		Context: "owner is exploring a buyout exit",
		TopK:    50,
	}, testFunds())
	require.NoError(t, err)

	for _, item := range items {
		require.Len(t, item.Subscores, 5)

		var weightSum, contribSum float64
		for _, s := range item.Subscores {
			weightSum += s.Weight
			contribSum += s.Contribution
			assert.GreaterOrEqual(t, s.Contribution, 0.0)
			assert.LessOrEqual(t, s.Contribution, s.Weight+1e-9)
		}
		assert.InDelta(t, 1.0, weightSum, 1e-9, "weights must sum to 1.0")
		assert.InDelta(t, item.Score, contribSum, 1e-9, "total must equal sum of contributions")
	}
}

func TestMatchDeterminism(t *testing.T) {
	eng := New(DefaultConfig())
	req := Request{Profile: testProfile(), Context: "prefers a recap", TopK: 10}

	first, err := eng.Match(context.Background(), req, testFunds())
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := eng.Match(context.Background(), req, testFunds())
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(againJSON))
	}
}

func TestMatchParallelMatchesSerial(t *testing.T) {
	// 40 funds with varied attributes so scores differ.
	var funds []model.Fund
	for i := 0; i < 40; i++ {
		f := model.Fund{
			Name:    fmt.Sprintf("Fund %02d", i),
			Regions: []string{"US"},
		}
		if i%2 == 0 {
			f.Industries = []string{"Industrial"}
		}
		if i%3 == 0 {
			f.RevenueFocus = rng(float64(i)*1e6, float64(i+20)*1e6)
		}
		if i%2 == 0 {
			f.DealTypes = []string{"Buyout"}
		} else {
			f.DealTypes = []string{"Growth Equity"}
		}
		funds = append(funds, f)
	}

	req := Request{Profile: testProfile(), DealType: "buyout", TopK: 40}

	serial, err := New(DefaultConfig()).Match(context.Background(), req, funds)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Workers = 8
	parallel, err := New(cfg).Match(context.Background(), req, funds)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestMatchTieBreakByName(t *testing.T) {
	// Identical funds score identically; order must be alphabetical.
	funds := []model.Fund{
		{Name: "Zenith Capital", Regions: []string{"US"}},
		{Name: "Alpine Equity", Regions: []string{"US"}},
		{Name: "Quarry Lane Partners", Regions: []string{"US"}},
	}

	eng := New(DefaultConfig())
	items, err := eng.Match(context.Background(), Request{Profile: testProfile(), TopK: 10}, funds)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Alpine Equity", items[0].Fund)
	assert.Equal(t, "Quarry Lane Partners", items[1].Fund)
	assert.Equal(t, "Zenith Capital", items[2].Fund)
	assert.Equal(t, items[0].Score, items[1].Score)
}

func TestMatchTopKTruncation(t *testing.T) {
	var funds []model.Fund
	for i := 0; i < 10; i++ {
		f := model.Fund{Name: fmt.Sprintf("Fund %02d", i)}
		if i >= 7 {
			// Highest scorers share the company's industry and region.
			f.Industries = []string{"Industrial", "Manufacturing"}
			f.Regions = []string{"US"}
		}
		funds = append(funds, f)
	}

	eng := New(DefaultConfig())
	items, err := eng.Match(context.Background(), Request{Profile: testProfile(), TopK: 3}, funds)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Fund 07", items[0].Fund)
	assert.Equal(t, "Fund 08", items[1].Fund)
	assert.Equal(t, "Fund 09", items[2].Fund)
}

func TestMatchTopKClamping(t *testing.T) {
	eng := New(DefaultConfig())

	t.Run("k below range becomes one", func(t *testing.T) {
		items, err := eng.Match(context.Background(), Request{Profile: testProfile(), TopK: 0}, testFunds())
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("negative k becomes one", func(t *testing.T) {
		items, err := eng.Match(context.Background(), Request{Profile: testProfile(), TopK: -7}, testFunds())
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("k above range is capped", func(t *testing.T) {
		items, err := eng.Match(context.Background(), Request{Profile: testProfile(), TopK: 500}, testFunds())
		require.NoError(t, err)
		assert.Len(t, items, 3)
		assert.Equal(t, MaxTopK, clampTopK(500))
	})
}

func TestMatchEmptyProfileDegradesGracefully(t *testing.T) {
	eng := New(DefaultConfig())

	items, err := eng.Match(context.Background(), Request{TopK: 5}, testFunds())
	require.NoError(t, err)
	require.Len(t, items, 3)

	for _, item := range items {
		assert.Zero(t, item.Score)
		for _, s := range item.Subscores {
			assert.Zero(t, s.Contribution)
			assert.NotEmpty(t, s.Detail)
		}
	}
}

func TestMatchEmptyDataset(t *testing.T) {
	eng := New(DefaultConfig())

	items, err := eng.Match(context.Background(), Request{Profile: testProfile(), TopK: 5}, nil)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestMatchCancelledContext(t *testing.T) {
	eng := New(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Match(ctx, Request{Profile: testProfile(), TopK: 5}, testFunds())
	assert.Error(t, err)
}
