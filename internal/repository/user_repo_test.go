// Package repository 用户仓储单元测试
package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mingyuantech/crm-console-backend/internal/models"
)

// setupUserTestDB 创建用户测试数据库
func setupUserTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Tenant{})
	require.NoError(t, err)

	return db
}

func createRepoTestUser(t *testing.T, repo *UserRepository, tenantID int64, username string) *models.User {
	t.Helper()
	user := &models.User{
		TenantID: tenantID,
		Username: username,
		Password: "hashed",
		Role:     models.UserRoleAgent,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_Create(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)

	user := createRepoTestUser(t, repo, 1, "agent01")
	assert.NotZero(t, user.ID)

	// 用户名唯一
	dup := &models.User{TenantID: 1, Username: "agent01", Password: "hashed"}
	assert.Error(t, repo.Create(context.Background(), dup))
}

func TestUserRepository_GetByID(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createRepoTestUser(t, repo, 1, "agent02")

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "agent02", got.Username)

	_, err = repo.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createRepoTestUser(t, repo, 1, "agent03")

	got, err := repo.GetByUsername(ctx, "agent03")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TenantID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ListByTenant(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, name := range []string{"t1_a", "t1_b", "t1_c"} {
		createRepoTestUser(t, repo, 1, name)
	}
	createRepoTestUser(t, repo, 2, "t2_a")

	users, total, err := repo.ListByTenant(ctx, 1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)

	_, total, err = repo.ListByTenant(ctx, 2, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
