package seed

import (
	"context"
	"testing"

	"github.com/barengs/smp/services/menu/internal/model"
	"github.com/barengs/smp/services/menu/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, db, "admin"))
	require.NoError(t, Run(ctx, db, "admin"))

	var menus int64
	require.NoError(t, db.Model(&model.Menu{}).Count(&menus).Error)
	assert.Equal(t, int64(count(catalog)), menus)

	var roles []model.Role
	require.NoError(t, db.Find(&roles).Error)
	require.Len(t, roles, 1)
	assert.Equal(t, "admin", roles[0].Code)

	var assign model.Menu
	require.NoError(t, db.Where("key = ?", AssignKey).First(&assign).Error)
	assert.Equal(t, model.MenuTypeButton, assign.Type)
	assert.Equal(t, "Assign Permissions", assign.Titles.Data()["en"])

	var parent model.Menu
	require.NoError(t, db.First(&parent, assign.ParentID).Error)
	assert.Equal(t, "system:role", parent.Key)
}

func TestRunWithoutSuperRole(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, Run(context.Background(), db, ""))

	var roles int64
	require.NoError(t, db.Model(&model.Role{}).Count(&roles).Error)
	assert.Zero(t, roles)
}

func count(items []item) int {
	n := len(items)
	for _, it := range items {
		n += count(it.children)
	}
	return n
}
