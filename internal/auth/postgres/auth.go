package postgres

import (
	"database/sql"
	"fmt"

	userDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/user"
	"github.com/rsecloud/research-management/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForUsername(username string) (string, string, error) {
	var passwordHash string
	var userID string
	query := `SELECT id, password_hash FROM users WHERE username = ? AND is_active = true`

	row := r.db.Raw(query, username).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("user not found")
		}
		return "", "", err
	}
	return passwordHash, userID, nil
}

func (r *Repository) GetUserByID(userID int64) (*user.User, error) {
	var m userDatamodel.User
	err := r.db.Where("id = ?", userID).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&m), nil
}
