package postgres

import (
	"errors"

	apperrors "github.com/rsecloud/research-management/internal"
	userDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/user"
	"github.com/rsecloud/research-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var m userDatamodel.User
	err := r.db.Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&m), nil
}

func (r *UserRepository) GetByUsername(username string) (*user.User, error) {
	var m userDatamodel.User
	err := r.db.Where("username = ?", username).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&m), nil
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var models []userDatamodel.User
	if err := r.db.Order("username ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]*user.User, 0, len(models))
	for i := range models {
		users = append(users, user.FromDataModel(&models[i]))
	}
	return users, nil
}

func (r *UserRepository) Create(u *user.User) error {
	m := user.ToDataModel(u)
	if err := r.db.Create(m).Error; err != nil {
		// Username duplicates are pre-checked by the service, so a
		// translated duplicate here is the email index firing.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewDuplicateUserError("email", u.Email)
		}
		return err
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}
