package postgres

import (
	datasetDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/dataset"
	"github.com/rsecloud/research-management/internal/dataset"
	"gorm.io/gorm"
)

type DatasetRepository struct {
	db *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) dataset.RepositoryAPI {
	return &DatasetRepository{db: db}
}

func (r *DatasetRepository) GetAll() ([]*dataset.Dataset, error) {
	var models []datasetDatamodel.Dataset
	if err := r.db.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	datasets := make([]*dataset.Dataset, 0, len(models))
	for i := range models {
		datasets = append(datasets, dataset.FromDataModel(&models[i]))
	}
	return datasets, nil
}

func (r *DatasetRepository) GetByID(id int64) (*dataset.Dataset, error) {
	var m datasetDatamodel.Dataset
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return dataset.FromDataModel(&m), nil
}

func (r *DatasetRepository) Create(d *dataset.Dataset) error {
	m := dataset.ToDataModel(d)
	if err := r.db.Create(m).Error; err != nil {
		return err
	}
	d.ID = m.ID
	d.CreatedAt = m.CreatedAt
	d.UpdatedAt = m.UpdatedAt
	return nil
}
