package database

import (
	"testing"

	"athleticamp/config"
	"athleticamp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnectDbSqliteMigrates(t *testing.T) {
	d := OpenTestDb(t)

	for _, m := range models.All() {
		assert.True(t, d.Db.Migrator().HasTable(m), "%T", m)
	}
}

func TestConnectDbRejectsUnknownDriver(t *testing.T) {
	_, err := ConnectDb(&config.Config{DBDriver: "oracle"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestSeedAdminCreatesAndPromotes(t *testing.T) {
	d := OpenTestDb(t)

	require.NoError(t, SeedAdmin(d.Db, "root@camp.io"))
	var u models.User
	require.NoError(t, d.Db.Where("email = ?", "root@camp.io").First(&u).Error)
	assert.Equal(t, models.RoleAdmin, u.Role)

	require.NoError(t, d.Db.Create(&models.User{Email: "coach@camp.io", Role: models.RoleInstructor}).Error)
	require.NoError(t, SeedAdmin(d.Db, "coach@camp.io"))
	require.NoError(t, d.Db.Where("email = ?", "coach@camp.io").First(&u).Error)
	assert.Equal(t, models.RoleAdmin, u.Role)

	// Seeding twice keeps a single record.
	require.NoError(t, SeedAdmin(d.Db, "root@camp.io"))
	var count int64
	d.Db.Model(&models.User{}).Where("email = ?", "root@camp.io").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSeedAdminNoEmailIsNoop(t *testing.T) {
	d := OpenTestDb(t)
	require.NoError(t, SeedAdmin(d.Db, ""))
	var count int64
	d.Db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestSelectedClassIsUniquePerUser(t *testing.T) {
	d := OpenTestDb(t)

	require.NoError(t, d.Db.Create(&models.SelectedClass{ClassID: "class-1", Email: "sam@camp.io"}).Error)
	assert.Error(t, d.Db.Create(&models.SelectedClass{ClassID: "class-1", Email: "sam@camp.io"}).Error)
	assert.NoError(t, d.Db.Create(&models.SelectedClass{ClassID: "class-1", Email: "kim@camp.io"}).Error)
}
