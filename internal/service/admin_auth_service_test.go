package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

type memAdminStore struct {
	users map[string]*models.AdminUser
}

func (s *memAdminStore) GetByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (s *memAdminStore) Create(_ context.Context, user *models.AdminUser) error {
	user.ID = len(s.users) + 1
	s.users[user.Email] = user
	return nil
}

func TestAdminAuthService_Login(t *testing.T) {
	utils.InitJWT("test-secret", time.Hour)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	store := &memAdminStore{users: map[string]*models.AdminUser{
		"ops@gtd.co.id":  {ID: 1, Email: "ops@gtd.co.id", PasswordHash: string(hash), IsActive: true},
		"gone@gtd.co.id": {ID: 2, Email: "gone@gtd.co.id", PasswordHash: string(hash), IsActive: false},
	}}
	svc := NewAdminAuthService(store)
	ctx := context.Background()

	token, err := svc.Login(ctx, "ops@gtd.co.id", "s3cret")
	require.NoError(t, err)
	claims, err := utils.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)

	_, err = svc.Login(ctx, "ops@gtd.co.id", "wrong")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@gtd.co.id", "s3cret")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "gone@gtd.co.id", "s3cret")
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
}

func TestAdminAuthService_CreateAdmin(t *testing.T) {
	utils.InitJWT("test-secret", time.Hour)
	store := &memAdminStore{users: map[string]*models.AdminUser{}}
	svc := NewAdminAuthService(store)

	user, err := svc.CreateAdmin(context.Background(), "new@gtd.co.id", "pa55word", "New Admin")
	require.NoError(t, err)
	assert.NotEqual(t, "pa55word", user.PasswordHash)
	assert.True(t, user.IsActive)

	_, err = svc.Login(context.Background(), "new@gtd.co.id", "pa55word")
	assert.NoError(t, err)
}
