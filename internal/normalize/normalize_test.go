package normalize

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Business Services", "business services"},
		{"trims", "  Software  ", "software"},
		{"collapses whitespace", "tech   enabled\t services", "tech enabled services"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Token(tt.in))
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens([]string{"Software", "SOFTWARE", "", "  Industrial "})
	assert.Equal(t, []string{"software", "industrial"}, got)
}

func TestRegion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"United States", "us"},
		{"USA", "us"},
		{"US", "us"},
		{"San Francisco, California", "us"},
		{"New York", "us"},
		{"Toronto, Ontario", "canada"},
		{"London", "europe"},
		{"United Kingdom", "europe"},
		// "us" must not fire on words that merely contain it.
		{"Austria", "austria"},
		{"Business District, Singapore", "business district, singapore"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Region(tt.in))
		})
	}
}

func TestRegionsDedupe(t *testing.T) {
	got := Regions([]string{"Dallas, Texas", "USA", "Toronto", ""})
	assert.Equal(t, []string{"us", "canada"}, got)
}

func TestDealType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Buyout", "buyout"},
		{"LBO", "lbo"},
		{"Leveraged Buyout", "lbo"},
		{"Growth-Equity", "growth equity"},
		{"Roll Up", "roll-up"},
		{"Carve Out", "carve-out"},
		{"Recapitalisation", "recapitalization"},
		{"something else", "something else"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DealType(tt.in))
		})
	}
}

func TestSameDealClass(t *testing.T) {
	assert.True(t, SameDealClass("buyout", "LBO"))
	assert.True(t, SameDealClass("growth", "Minority"))
	assert.True(t, SameDealClass("roll-up", "platform"))
	assert.False(t, SameDealClass("buyout", "growth"))
	assert.False(t, SameDealClass("buyout", "unheard-of"))
	assert.False(t, SameDealClass("unheard-of", "buyout"))
}

func TestFindDealType(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain token", "owner wants a buyout", "buyout"},
		{"uppercase", "considering an LBO next year", "lbo"},
		{"multi-word token", "open to growth equity investors", "growth"},
		{"alias spelling", "a roll up of regional shops", "roll-up"},
		{"none present", "profitable family business", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindDealType(tt.in))
		})
	}
}

func TestKnownDealType(t *testing.T) {
	assert.True(t, KnownDealType("Buyout"))
	assert.True(t, KnownDealType("divestiture"))
	assert.False(t, KnownDealType("merger of equals"))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Growth Equity", Title("growth equity"))
	assert.Equal(t, "Us", Title("us"))
}

// Title runs on scoring goroutines, so it must not share caser state.
// The race detector flags any regression here.
func TestTitleConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.Equal(t, "Growth Equity", Title("growth equity"))
			}
		}()
	}
	wg.Wait()
}
