package dataset

import (
	"time"

	datasetDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/dataset"
)

// Classification tiers, 0 (public) through 3 (sensitive). Tier 4
// ("secret") is deliberately unsupported on this platform.
const (
	TierPublic    = 0
	TierLow       = 1
	TierModerate  = 2
	TierSensitive = 3

	DefaultTier = TierSensitive
)

type Dataset struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tier        int       `json:"tier"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ValidTier(tier int) bool {
	return tier >= TierPublic && tier <= TierSensitive
}

func ToDataModel(d *Dataset) *datasetDatamodel.Dataset {
	return &datasetDatamodel.Dataset{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Tier:        d.Tier,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func FromDataModel(m *datasetDatamodel.Dataset) *Dataset {
	return &Dataset{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Tier:        m.Tier,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
