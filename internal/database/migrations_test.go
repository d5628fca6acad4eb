package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/memberhub/internal/models"
)

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	for _, model := range Models() {
		require.True(t, migrator.HasTable(model), "expected table for %T", model)
	}
	require.True(t, migrator.HasIndex(&models.User{}, "Email"))
	require.True(t, migrator.HasIndex(&models.MembershipIntention{}, "Token"))
}

func TestAutoMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, AutoMigrate(db))
}

func TestAutoMigrateRejectsNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}

func TestIntentionTokenIsUnique(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	token := "duplicate-token"
	first := models.MembershipIntention{FullName: "A", Email: "a@example.com", GroupID: 1, Status: models.IntentionApproved, Token: &token}
	second := models.MembershipIntention{FullName: "B", Email: "b@example.com", GroupID: 1, Status: models.IntentionApproved, Token: &token}

	require.NoError(t, db.Create(&first).Error)
	require.Error(t, db.Create(&second).Error)

	// NULL tokens never collide.
	require.NoError(t, db.Create(&models.MembershipIntention{FullName: "C", Email: "c@example.com", GroupID: 1, Status: models.IntentionPending}).Error)
	require.NoError(t, db.Create(&models.MembershipIntention{FullName: "D", Email: "d@example.com", GroupID: 1, Status: models.IntentionPending}).Error)
}
