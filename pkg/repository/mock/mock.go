package mock

import (
	"context"

	"github.com/coderr-app/backend/pkg/models"
)

// Test helpers and mocks
type Mocks struct {
	Users    *UserRepo
	Profiles *ProfileRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		Users:    &UserRepo{},
		Profiles: &ProfileRepo{},
	}
}

type UserRepo struct {
	Stored    *models.User
	CreateErr error
}

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	stored := *u
	stored.ID = 1
	m.Stored = &stored
	return 1, nil
}

func (m *UserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *UserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.Stored != nil && m.Stored.Username == username {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.Stored != nil && m.Stored.Email == email {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *UserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	m.Stored = u
	return nil
}

func (m *UserRepo) DeleteUserByUsername(ctx context.Context, username string) error {
	if m.Stored != nil && m.Stored.Username == username {
		m.Stored = nil
	}
	return nil
}

type ProfileRepo struct {
	Stored    *models.Profile
	CreateErr error
}

func (m *ProfileRepo) CreateProfile(ctx context.Context, p *models.Profile) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	stored := *p
	stored.ID = 1
	m.Stored = &stored
	return 1, nil
}

func (m *ProfileRepo) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	if m.Stored != nil && m.Stored.UserID == userID {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *ProfileRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	m.Stored = p
	return nil
}

func (m *ProfileRepo) ListProfilesByType(ctx context.Context, profileType string) ([]models.Profile, error) {
	if m.Stored != nil && m.Stored.Type == profileType {
		return []models.Profile{*m.Stored}, nil
	}
	return nil, nil
}
