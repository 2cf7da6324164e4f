package extract

import (
	"context"

	"github.com/sells-group/fundmatch/internal/fetch"
	"github.com/sells-group/fundmatch/internal/model"
)

// Extractor derives a structured company profile from a fetched page.
// extraContext carries free-text clarifications from the caller (size,
// regions, deal preferences).
type Extractor interface {
	Extract(ctx context.Context, page *fetch.Page, extraContext string) (*model.CompanyProfile, error)
}
