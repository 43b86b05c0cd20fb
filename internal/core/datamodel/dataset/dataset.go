package dataset

import "time"

// Tier 3 (most sensitive) is the default so an unclassified dataset is
// never more exposed than intended.
type Dataset struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Tier        int       `gorm:"column:tier;not null;default:3"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (Dataset) TableName() string {
	return "datasets"
}
