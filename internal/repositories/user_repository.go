package repositories

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/veilroom/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByFirebaseUID(firebaseUID string) (*models.User, error)
	UpdateUser(user *models.User) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email from PostgreSQL
func (r *PostgresUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing user in PostgreSQL
func (r *PostgresUserRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// AnonDisplayName generates the anonymous handle assigned to users who have
// never picked one, e.g. "Anon#4821".
func AnonDisplayName() string {
	return fmt.Sprintf("Anon#%d", rand.Intn(10000))
}

// UserDirectory adapts a UserRepository to the confession service's view of
// user accounts. Confessions store owner IDs as strings, so the adapter
// converts to and from the numeric primary key.
type UserDirectory struct {
	users UserRepository
}

// NewUserDirectory creates a new UserDirectory
func NewUserDirectory(users UserRepository) *UserDirectory {
	return &UserDirectory{users: users}
}

// UserExists reports whether a user with the given ID exists
func (d *UserDirectory) UserExists(_ context.Context, userID string) (bool, error) {
	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil {
		return false, nil
	}
	if _, err := d.users.GetUserByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// OwnerProjection returns the public projection of a confession's author
func (d *UserDirectory) OwnerProjection(_ context.Context, userID string) (*models.OwnerView, error) {
	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	user, err := d.users.GetUserByID(uint(id))
	if err != nil {
		return nil, err
	}
	return &models.OwnerView{DisplayName: user.DisplayName, Avatar: user.Avatar}, nil
}

// EnsureDisplayName assigns an anonymous handle to users who have none yet
func (d *UserDirectory) EnsureDisplayName(_ context.Context, userID string) error {
	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	user, err := d.users.GetUserByID(uint(id))
	if err != nil {
		return err
	}
	if user.DisplayName != "" {
		return nil
	}
	user.DisplayName = AnonDisplayName()
	return d.users.UpdateUser(user)
}
