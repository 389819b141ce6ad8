package store

import (
	"context"
	"errors"

	"nearby/internal/domain"

	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

// Create inserts a new user. Username uniqueness is enforced by the
// database; requires TranslateError on the gorm config.
func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if err := u.db.WithContext(ctx).Create(usr).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (u *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePosition overwrites lat/lng and stamps last_active in one UPDATE.
// Zero rows matched means the user does not exist; that is an error here,
// not a silent no-op.
func (u *UserStore) UpdatePosition(ctx context.Context, id int64, lat, lng float64, nowMillis int64) error {
	tx := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"lat":         lat,
			"lng":         lng,
			"last_active": nowMillis,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListActiveSince returns users whose last_active is strictly after the
// cutoff. Rows with NULL last_active never match the predicate.
func (u *UserStore) ListActiveSince(ctx context.Context, cutoffMillis int64) ([]domain.User, error) {
	var users []domain.User
	if err := u.db.WithContext(ctx).
		Where("last_active > ?", cutoffMillis).
		Order("id asc").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
