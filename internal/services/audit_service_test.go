package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/memberhub/internal/auditctx"
	"github.com/charlesng35/memberhub/internal/database/testutil"
	"github.com/charlesng35/memberhub/internal/models"
)

func TestAuditServiceLogAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	userID := uint(7)
	ctx := context.Background()
	err = svc.Log(ctx, AuditEntry{
		UserID:   &userID,
		Email:    "auditor@example.com",
		Action:   "user.create",
		Resource: "user:7",
		Result:   "success",
		Metadata: map[string]any{"email": "auditor@example.com"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Log(ctx, AuditEntry{Action: "auth.login", Result: "failure"}))

	logs, total, err := svc.List(ctx, AuditListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, logs, 2)

	filtered, total, err := svc.List(ctx, AuditListOptions{Filters: AuditFilters{Action: "user.create"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, userID, *filtered[0].UserID)

	var metadata map[string]any
	require.NoError(t, json.Unmarshal(filtered[0].Metadata, &metadata))
	require.Equal(t, "auditor@example.com", metadata["email"])
}

func TestAuditServiceLogUsesContextActor(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	actorID := uint(3)
	ctx := auditctx.WithActor(context.Background(), auditctx.Actor{
		UserID:    &actorID,
		Email:     "admin@example.com",
		IPAddress: "192.0.2.10",
		UserAgent: "curl/8",
		RequestID: "req-1",
	})
	require.NoError(t, svc.Log(ctx, AuditEntry{Action: "intention.approve", Result: "success"}))

	var stored models.AuditLog
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, actorID, *stored.UserID)
	require.Equal(t, "admin@example.com", stored.Email)
	require.Equal(t, "192.0.2.10", stored.IPAddress)
	require.Equal(t, "curl/8", stored.UserAgent)
	require.Contains(t, string(stored.Metadata), "req-1")
}

func TestAuditServiceLogRequiresActionAndResult(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: "x"}))
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, err := NewAuditService(db, WithAuditClock(func() time.Time { return now }))
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.AuditLog{Action: "old.action", Result: "success", CreatedAt: now.AddDate(0, 0, -10)}).Error)
	require.NoError(t, db.Create(&models.AuditLog{Action: "new.action", Result: "success", CreatedAt: now.AddDate(0, 0, -1)}).Error)

	ctx := context.Background()
	rows, err := svc.CleanupOlderThan(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	_, err = svc.CleanupOlderThan(ctx, 0)
	require.Error(t, err)
}

func TestNewAuditServiceRequiresDB(t *testing.T) {
	_, err := NewAuditService(nil)
	require.Error(t, err)
}

func TestNormalisePage(t *testing.T) {
	page, perPage := NormaliseAuditPage(0, 0)
	require.Equal(t, 1, page)
	require.Equal(t, defaultAuditPageSize, perPage)

	_, perPage = NormaliseAuditPage(2, 1000)
	require.Equal(t, maxAuditPageSize, perPage)
}
