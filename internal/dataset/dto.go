package dataset

import (
	errors "github.com/rsecloud/research-management/internal"
	"github.com/rsecloud/research-management/internal/core/common/validation"
)

type CreateDatasetDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Tier is optional; an absent tier defaults to the most sensitive level.
	Tier *int `json:"tier,omitempty"`
}

func (d CreateDatasetDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MinLength(2).MaxLength(200)
	v.Field("description", d.Description).MaxLength(2000)
	if d.Tier != nil {
		v.Field("tier", *d.Tier).IntRange(TierPublic, TierSensitive, errors.ErrCodeInvalidTier)
	}
	return v.Validate()
}

type DatasetResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tier        int    `json:"tier"`
	CreatedAt   string `json:"created_at"`
}

type DatasetsResponse struct {
	Datasets []DatasetResponse `json:"datasets"`
}

func (d *Dataset) ToResponse() DatasetResponse {
	return DatasetResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Tier:        d.Tier,
		CreatedAt:   d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
