package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akulov/spacefs/pkg/models"
)

// createTestStore creates an in-memory SQLite store for testing.
func createTestStore(t *testing.T) *GORMStore {
	t.Helper()
	store, err := New(&Config{
		Type: DatabaseTypeSQLite,
		SQLite: SQLiteConfig{
			Path: ":memory:",
		},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNew(t *testing.T) {
	t.Run("default config uses sqlite", func(t *testing.T) {
		config := &Config{}
		config.ApplyDefaults()

		if config.Type != DatabaseTypeSQLite {
			t.Errorf("expected SQLite, got %s", config.Type)
		}
	})

	t.Run("invalid config returns error", func(t *testing.T) {
		config := &Config{
			Type: "invalid",
		}
		_, err := New(config)
		if err == nil {
			t.Error("expected error for invalid config")
		}
	})

	t.Run("creates in-memory store", func(t *testing.T) {
		store := createTestStore(t)
		if store == nil {
			t.Error("expected non-nil store")
		}
	})
}

func TestShareOperations(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	var shareID string

	t.Run("create share", func(t *testing.T) {
		share := &models.Share{
			Token:       "abc42",
			OwnerID:     "bob",
			SourceSpace: models.SpaceVolume,
			SourcePath:  "finance/q3.xlsx",
			AccessMode:  models.AccessReadOnly,
			SharingType: models.SharingAnyone,
		}

		id, err := store.CreateShare(ctx, share)
		if err != nil {
			t.Fatalf("failed to create share: %v", err)
		}
		if id == "" {
			t.Error("expected non-empty share ID")
		}
		shareID = id
	})

	t.Run("duplicate token fails", func(t *testing.T) {
		share := &models.Share{
			Token:       "abc42",
			OwnerID:     "carol",
			SourceSpace: models.SpaceVolume,
			SourcePath:  "other",
			AccessMode:  models.AccessReadOnly,
			SharingType: models.SharingAnyone,
		}

		_, err := store.CreateShare(ctx, share)
		if !errors.Is(err, models.ErrDuplicateShare) {
			t.Errorf("expected ErrDuplicateShare, got %v", err)
		}
	})

	t.Run("get share by token", func(t *testing.T) {
		share, err := store.GetShareByToken(ctx, "abc42")
		if err != nil {
			t.Fatalf("failed to get share: %v", err)
		}
		if share.OwnerID != "bob" {
			t.Errorf("expected owner 'bob', got %q", share.OwnerID)
		}
	})

	t.Run("get share not found", func(t *testing.T) {
		_, err := store.GetShareByToken(ctx, "nonexistent")
		if !errors.Is(err, models.ErrShareNotFound) {
			t.Errorf("expected ErrShareNotFound, got %v", err)
		}
	})

	t.Run("token exists", func(t *testing.T) {
		exists, err := store.ShareTokenExists(ctx, "abc42")
		if err != nil {
			t.Fatalf("failed to check token: %v", err)
		}
		if !exists {
			t.Error("expected token to exist")
		}

		exists, err = store.ShareTokenExists(ctx, "free1")
		if err != nil {
			t.Fatalf("failed to check token: %v", err)
		}
		if exists {
			t.Error("expected token to be free")
		}
	})

	t.Run("track access", func(t *testing.T) {
		now := time.Now()
		if err := store.TrackShareAccess(ctx, shareID, now); err != nil {
			t.Fatalf("failed to track access: %v", err)
		}
		if err := store.TrackShareAccess(ctx, shareID, now); err != nil {
			t.Fatalf("failed to track access: %v", err)
		}

		share, _ := store.GetShareByID(ctx, shareID)
		if share.DownloadCount != 2 {
			t.Errorf("expected download count 2, got %d", share.DownloadCount)
		}
		if share.LastAccessedAt == nil {
			t.Error("expected last accessed time to be set")
		}
	})

	t.Run("permissions", func(t *testing.T) {
		if err := store.AddSharePermission(ctx, shareID, "alice"); err != nil {
			t.Fatalf("failed to add permission: %v", err)
		}
		// Granting twice is idempotent.
		if err := store.AddSharePermission(ctx, shareID, "alice"); err != nil {
			t.Fatalf("expected repeated grant to succeed, got %v", err)
		}

		ok, err := store.HasSharePermission(ctx, shareID, "alice")
		if err != nil {
			t.Fatalf("failed to check permission: %v", err)
		}
		if !ok {
			t.Error("expected alice to be permitted")
		}

		ok, _ = store.HasSharePermission(ctx, shareID, "mallory")
		if ok {
			t.Error("expected mallory to be denied")
		}
	})

	t.Run("list by owner", func(t *testing.T) {
		shares, err := store.ListSharesByOwner(ctx, "bob")
		if err != nil {
			t.Fatalf("failed to list shares: %v", err)
		}
		if len(shares) != 1 {
			t.Errorf("expected 1 share, got %d", len(shares))
		}
	})

	t.Run("delete cascades permissions", func(t *testing.T) {
		if err := store.DeleteShare(ctx, shareID); err != nil {
			t.Fatalf("failed to delete share: %v", err)
		}

		ok, _ := store.HasSharePermission(ctx, shareID, "alice")
		if ok {
			t.Error("expected permissions to be removed with the share")
		}

		if err := store.DeleteShare(ctx, shareID); !errors.Is(err, models.ErrShareNotFound) {
			t.Errorf("expected ErrShareNotFound, got %v", err)
		}
	})
}

func TestUserVolumeOperations(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	t.Run("create volume", func(t *testing.T) {
		volume := &models.UserVolume{
			UserID:       "alice",
			Label:        "projects",
			RealRootPath: "/mnt/projects",
			AccessMode:   models.AccessReadWrite,
		}
		id, err := store.CreateUserVolume(ctx, volume)
		if err != nil {
			t.Fatalf("failed to create volume: %v", err)
		}
		if id == "" {
			t.Error("expected non-empty volume ID")
		}
	})

	t.Run("duplicate label fails", func(t *testing.T) {
		volume := &models.UserVolume{
			UserID:       "alice",
			Label:        "projects",
			RealRootPath: "/mnt/other",
			AccessMode:   models.AccessReadWrite,
		}
		_, err := store.CreateUserVolume(ctx, volume)
		if !errors.Is(err, models.ErrDuplicateVolume) {
			t.Errorf("expected ErrDuplicateVolume, got %v", err)
		}
	})

	t.Run("duplicate root fails", func(t *testing.T) {
		volume := &models.UserVolume{
			UserID:       "alice",
			Label:        "other",
			RealRootPath: "/mnt/projects",
			AccessMode:   models.AccessReadWrite,
		}
		_, err := store.CreateUserVolume(ctx, volume)
		if !errors.Is(err, models.ErrDuplicateVolume) {
			t.Errorf("expected ErrDuplicateVolume, got %v", err)
		}
	})

	t.Run("get by label", func(t *testing.T) {
		volume, err := store.GetUserVolumeByLabel(ctx, "alice", "projects")
		if err != nil {
			t.Fatalf("failed to get volume: %v", err)
		}
		if volume.RealRootPath != "/mnt/projects" {
			t.Errorf("expected root '/mnt/projects', got %q", volume.RealRootPath)
		}
	})

	t.Run("label is scoped per user", func(t *testing.T) {
		_, err := store.GetUserVolumeByLabel(ctx, "bob", "projects")
		if !errors.Is(err, models.ErrVolumeNotFound) {
			t.Errorf("expected ErrVolumeNotFound, got %v", err)
		}
	})

	t.Run("update volume", func(t *testing.T) {
		volume, _ := store.GetUserVolumeByLabel(ctx, "alice", "projects")
		volume.AccessMode = models.AccessReadOnly

		if err := store.UpdateUserVolume(ctx, volume); err != nil {
			t.Fatalf("failed to update volume: %v", err)
		}

		updated, _ := store.GetUserVolumeByLabel(ctx, "alice", "projects")
		if !updated.ReadOnly() {
			t.Error("expected volume to be read-only after update")
		}
	})

	t.Run("delete volume", func(t *testing.T) {
		volume, _ := store.GetUserVolumeByLabel(ctx, "alice", "projects")
		if err := store.DeleteUserVolume(ctx, volume.ID); err != nil {
			t.Fatalf("failed to delete volume: %v", err)
		}
		if err := store.DeleteUserVolume(ctx, volume.ID); !errors.Is(err, models.ErrVolumeNotFound) {
			t.Errorf("expected ErrVolumeNotFound, got %v", err)
		}
	})
}

func TestGuestSessionOperations(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	now := time.Now()

	t.Run("create and get", func(t *testing.T) {
		session := &models.GuestSession{
			ShareID:   "share-1",
			ExpiresAt: now.Add(time.Hour),
		}
		id, err := store.CreateGuestSession(ctx, session)
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		got, err := store.GetGuestSession(ctx, id)
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.ShareID != "share-1" {
			t.Errorf("expected share 'share-1', got %q", got.ShareID)
		}
		if got.LastActivityAt.IsZero() {
			t.Error("expected last activity to be stamped on create")
		}
	})

	t.Run("touch session", func(t *testing.T) {
		session := &models.GuestSession{ShareID: "share-1", ExpiresAt: now.Add(time.Hour)}
		id, _ := store.CreateGuestSession(ctx, session)

		later := now.Add(30 * time.Minute)
		if err := store.TouchGuestSession(ctx, id, later); err != nil {
			t.Fatalf("failed to touch session: %v", err)
		}

		if err := store.TouchGuestSession(ctx, "nonexistent", later); !errors.Is(err, models.ErrGuestSessionNotFound) {
			t.Errorf("expected ErrGuestSessionNotFound, got %v", err)
		}
	})

	t.Run("sweep expired", func(t *testing.T) {
		expired := &models.GuestSession{ShareID: "share-1", ExpiresAt: now.Add(-time.Minute)}
		expiredID, _ := store.CreateGuestSession(ctx, expired)
		live := &models.GuestSession{ShareID: "share-1", ExpiresAt: now.Add(time.Hour)}
		liveID, _ := store.CreateGuestSession(ctx, live)

		n, err := store.DeleteExpiredGuestSessions(ctx, now)
		if err != nil {
			t.Fatalf("failed to sweep sessions: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 swept session, got %d", n)
		}

		if _, err := store.GetGuestSession(ctx, expiredID); !errors.Is(err, models.ErrGuestSessionNotFound) {
			t.Errorf("expected expired session to be gone, got %v", err)
		}
		if _, err := store.GetGuestSession(ctx, liveID); err != nil {
			t.Errorf("expected live session to survive, got %v", err)
		}
	})
}

func TestTrashOperations(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	newItem := func(t *testing.T, deletedBy string) *models.TrashItem {
		t.Helper()
		item := &models.TrashItem{
			DeletedBy:         deletedBy,
			SourceSpace:       models.SpaceVolume,
			SourcePath:        "volume/finance/q3.xlsx",
			SourceParent:      "volume/finance",
			SourceName:        "q3.xlsx",
			TrashAbsolutePath: "/srv/volume/.trash/uuid_q3.xlsx",
		}
		if _, err := store.CreateTrashItem(ctx, item); err != nil {
			t.Fatalf("failed to create trash item: %v", err)
		}
		return item
	}

	t.Run("create defaults status and time", func(t *testing.T) {
		item := newItem(t, "alice")
		got, err := store.GetTrashItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("failed to get trash item: %v", err)
		}
		if got.Status != models.TrashStatusTrashed {
			t.Errorf("expected status trashed, got %s", got.Status)
		}
		if got.DeletedAt.IsZero() {
			t.Error("expected deleted time to be stamped")
		}
	})

	t.Run("list excludes restored items", func(t *testing.T) {
		item := newItem(t, "carol")
		if err := store.MarkTrashItemRestored(ctx, item.ID, "carol", "volume/finance/q3.xlsx", time.Now()); err != nil {
			t.Fatalf("failed to restore: %v", err)
		}
		newItem(t, "carol")

		items, err := store.ListTrashItems(ctx, "carol")
		if err != nil {
			t.Fatalf("failed to list trash: %v", err)
		}
		if len(items) != 1 {
			t.Errorf("expected 1 listed item, got %d", len(items))
		}
	})

	t.Run("restore is a single transition", func(t *testing.T) {
		item := newItem(t, "alice")

		if err := store.MarkTrashItemRestored(ctx, item.ID, "alice", "volume/finance/q3 (1).xlsx", time.Now()); err != nil {
			t.Fatalf("failed to restore: %v", err)
		}

		got, _ := store.GetTrashItem(ctx, item.ID)
		if got.Status != models.TrashStatusRestored {
			t.Errorf("expected status restored, got %s", got.Status)
		}
		if got.RestoredPath != "volume/finance/q3 (1).xlsx" {
			t.Errorf("unexpected restored path %q", got.RestoredPath)
		}
		if got.RestoredAt == nil {
			t.Error("expected restored time to be set")
		}

		// Second restore loses the race against the first.
		err := store.MarkTrashItemRestored(ctx, item.ID, "alice", "elsewhere", time.Now())
		if !errors.Is(err, models.ErrAlreadyRestored) {
			t.Errorf("expected ErrAlreadyRestored, got %v", err)
		}
	})

	t.Run("restore checks ownership", func(t *testing.T) {
		item := newItem(t, "alice")
		err := store.MarkTrashItemRestored(ctx, item.ID, "mallory", "x", time.Now())
		if !errors.Is(err, models.ErrTrashItemNotFound) {
			t.Errorf("expected ErrTrashItemNotFound, got %v", err)
		}
	})

	t.Run("restore unknown item", func(t *testing.T) {
		err := store.MarkTrashItemRestored(ctx, "nonexistent", "alice", "x", time.Now())
		if !errors.Is(err, models.ErrTrashItemNotFound) {
			t.Errorf("expected ErrTrashItemNotFound, got %v", err)
		}
	})

	t.Run("reopen reverts a restored row", func(t *testing.T) {
		item := newItem(t, "alice")
		if err := store.MarkTrashItemRestored(ctx, item.ID, "alice", "volume/finance/q3.xlsx", time.Now()); err != nil {
			t.Fatalf("failed to restore: %v", err)
		}

		if err := store.ReopenTrashItem(ctx, item.ID); err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}

		got, _ := store.GetTrashItem(ctx, item.ID)
		if got.Status != models.TrashStatusTrashed {
			t.Errorf("expected status trashed, got %s", got.Status)
		}
		if got.RestoredPath != "" || got.RestoredAt != nil {
			t.Error("expected restore fields to be cleared")
		}

		// Only a restored row can be reopened.
		if err := store.ReopenTrashItem(ctx, item.ID); !errors.Is(err, models.ErrTrashItemNotFound) {
			t.Errorf("expected ErrTrashItemNotFound, got %v", err)
		}
	})
}

func TestSettingsOperations(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	t.Run("missing key reads empty", func(t *testing.T) {
		value, err := store.GetSetting(ctx, "nope")
		if err != nil {
			t.Fatalf("failed to get setting: %v", err)
		}
		if value != "" {
			t.Errorf("expected empty value, got %q", value)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		if err := store.SetSetting(ctx, "greeting", "hello"); err != nil {
			t.Fatalf("failed to set setting: %v", err)
		}
		if err := store.SetSetting(ctx, "greeting", "hi"); err != nil {
			t.Fatalf("failed to overwrite setting: %v", err)
		}

		value, _ := store.GetSetting(ctx, "greeting")
		if value != "hi" {
			t.Errorf("expected 'hi', got %q", value)
		}
	})

	t.Run("access rules round trip preserves order", func(t *testing.T) {
		rules := []models.AccessRule{
			{ID: "r1", Path: "volume/finance", Recursive: true, Permission: models.RuleHidden},
			{ID: "r2", Path: "volume/finance/public", Recursive: true, Permission: models.RuleReadWrite},
			{ID: "r3", Path: "volume/hr/handbook.pdf", Permission: models.RuleReadOnly},
		}
		if err := store.SetAccessRules(ctx, rules); err != nil {
			t.Fatalf("failed to store rules: %v", err)
		}

		got, err := store.GetAccessRules(ctx)
		if err != nil {
			t.Fatalf("failed to load rules: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 rules, got %d", len(got))
		}
		for i, id := range []string{"r1", "r2", "r3"} {
			if got[i].ID != id {
				t.Errorf("expected rule %s at index %d, got %s", id, i, got[i].ID)
			}
		}
	})

	t.Run("no rules document means no rules", func(t *testing.T) {
		if err := store.DeleteSetting(ctx, models.SettingAccessRules); err != nil {
			t.Fatalf("failed to delete rules document: %v", err)
		}
		rules, err := store.GetAccessRules(ctx)
		if err != nil {
			t.Fatalf("failed to load rules: %v", err)
		}
		if len(rules) != 0 {
			t.Errorf("expected no rules, got %d", len(rules))
		}
	})

	t.Run("invalid permission is rejected", func(t *testing.T) {
		err := store.SetAccessRules(ctx, []models.AccessRule{
			{ID: "r1", Path: "volume/x", Permission: "execute"},
		})
		if err == nil {
			t.Error("expected error for invalid permission")
		}
	})
}
