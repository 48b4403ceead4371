package auth

import (
	"testing"

	"github.com/barengs/smp/pkg/config"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newCasbinService(t *testing.T) *CasbinService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	e, err := NewEnforcer(db, &config.CasbinConfig{})
	require.NoError(t, err)
	return NewCasbinService(e)
}

func TestSyncRoleKeys(t *testing.T) {
	s := newCasbinService(t)

	require.NoError(t, s.SyncRoleKeys("ustadz", []string{"student", "student.create"}))
	ok, err := s.CheckRolePermission("ustadz", "student.create")
	require.NoError(t, err)
	assert.True(t, ok)

	// 覆盖写入
	require.NoError(t, s.SyncRoleKeys("ustadz", []string{"finance"}))
	keys, err := s.RoleKeys("ustadz")
	require.NoError(t, err)
	assert.Equal(t, []string{"finance"}, keys)

	ok, err = s.CheckRolePermission("ustadz", "student.create")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CheckRolePermission("student", "finance")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteRole(t *testing.T) {
	s := newCasbinService(t)
	require.NoError(t, s.SyncRoleKeys("ustadz", []string{"a", "b"}))
	require.NoError(t, s.SyncRoleKeys("ustadz", nil))

	keys, err := s.RoleKeys("ustadz")
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, s.SyncRoleKeys("staff", []string{"a"}))
	require.NoError(t, s.DeleteRole("staff"))
	keys, err = s.RoleKeys("staff")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
