package tracker

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"smokebuddy/internal/types"
)

//go:embed rewards.json
var defaultRewardsJSON []byte

// RewardCatalog is the ordered streak reward list. Index i is awarded on the
// (i+1)th consecutive improving day; past the end the last tier repeats.
type RewardCatalog []types.RewardTier

// TierFor returns the tier for a streak length, or nil for a non-positive
// streak or an empty catalog.
func (c RewardCatalog) TierFor(streak int) *types.RewardTier {
	if streak <= 0 || len(c) == 0 {
		return nil
	}
	idx := min(streak, len(c)) - 1
	tier := c[idx]
	return &tier
}

// LoadRewardCatalog reads the catalog from path, or the embedded default when
// path is empty, and validates every tier.
func LoadRewardCatalog(path string) (RewardCatalog, error) {
	data := defaultRewardsJSON
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, types.NewAppError(
				types.ErrCodeValidationRewardCatalog,
				fmt.Sprintf("failed to read reward catalog %s", path),
				err,
			)
		}
		data = b
	}
	return ParseRewardCatalog(data)
}

// ParseRewardCatalog decodes and validates a JSON array of reward tiers.
func ParseRewardCatalog(data []byte) (RewardCatalog, error) {
	var catalog RewardCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeValidationRewardCatalog,
			"reward catalog is not a JSON array of {image, text}",
			err,
		)
	}
	if len(catalog) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeValidationRewardCatalog,
			"reward catalog must contain at least one tier",
			nil,
		)
	}

	validate := validator.New()
	for i, tier := range catalog {
		if err := validate.Struct(tier); err != nil {
			return nil, types.NewAppErrorWithDetails(
				types.ErrCodeValidationRewardCatalog,
				"invalid reward tier",
				err,
				map[string]any{"index": i},
			)
		}
	}
	return catalog, nil
}
