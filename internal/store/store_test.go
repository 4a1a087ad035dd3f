// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "koinonia-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}

	return db, cleanup
}

func createTestUser(t *testing.T, q *Queries, email string, admin bool) User {
	t.Helper()
	user, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:     email,
		Name:      "User " + email,
		IsAdmin:   admin,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return user
}

func TestCreateUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	q := New(db)
	user := createTestUser(t, q, "test@example.com", false)

	if user.ID == 0 {
		t.Error("user.ID should not be 0")
	}
	if user.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "test@example.com")
	}
	if user.IsAdmin {
		t.Error("IsAdmin = true, want false")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	q := New(db)
	createTestUser(t, q, "dup@example.com", false)

	_, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:     "dup@example.com",
		CreatedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected unique constraint error for duplicate email")
	}
}

func TestGetUserByEmail(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	created := createTestUser(t, q, "find@example.com", true)

	user, err := q.GetUserByEmail(ctx, "find@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("ID = %d, want %d", user.ID, created.ID)
	}
	if !user.IsAdmin {
		t.Error("IsAdmin = false, want true")
	}

	_, err = q.GetUserByEmail(ctx, "missing@example.com")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByEmail(missing) error = %v, want sql.ErrNoRows", err)
	}
}

func TestSetUserAdminAndCount(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := createTestUser(t, q, "promote@example.com", false)

	updated, err := q.SetUserAdmin(ctx, SetUserAdminParams{IsAdmin: true, ID: user.ID})
	if err != nil {
		t.Fatalf("SetUserAdmin: %v", err)
	}
	if !updated.IsAdmin {
		t.Error("IsAdmin = false after promotion")
	}

	count, err := q.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if count != 1 {
		t.Errorf("CountAdmins = %d, want 1", count)
	}

	_, err = q.SetUserAdmin(ctx, SetUserAdminParams{IsAdmin: true, ID: 9999})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("SetUserAdmin(missing) error = %v, want sql.ErrNoRows", err)
	}
}

func TestListUsersWithPostCount(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	author := createTestUser(t, q, "author@example.com", false)
	createTestUser(t, q, "reader@example.com", false)

	for _, title := range []string{"one", "two"} {
		if _, err := q.CreatePost(ctx, CreatePostParams{Title: title, AuthorID: author.ID, CreatedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	users, err := q.ListUsersWithPostCount(ctx)
	if err != nil {
		t.Fatalf("ListUsersWithPostCount: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}

	counts := map[string]int64{}
	for _, u := range users {
		counts[u.Email] = u.PostCount
	}
	if counts["author@example.com"] != 2 {
		t.Errorf("author post count = %d, want 2", counts["author@example.com"])
	}
	if counts["reader@example.com"] != 0 {
		t.Errorf("reader post count = %d, want 0", counts["reader@example.com"])
	}
}

func TestPostLifecycle(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	author := createTestUser(t, q, "writer@example.com", false)

	post, err := q.CreatePost(ctx, CreatePostParams{
		Title:     "Draft",
		Content:   "body",
		AuthorID:  author.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.Published {
		t.Error("new post should be unpublished")
	}

	drafts, err := q.ListDraftsByAuthor(ctx, author.ID)
	if err != nil {
		t.Fatalf("ListDraftsByAuthor: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != post.ID {
		t.Fatalf("drafts = %+v, want the created post", drafts)
	}

	published, err := q.PublishPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("PublishPost: %v", err)
	}
	if !published.Published {
		t.Error("Published = false after PublishPost")
	}

	drafts, err = q.ListDraftsByAuthor(ctx, author.ID)
	if err != nil {
		t.Fatalf("ListDraftsByAuthor: %v", err)
	}
	if len(drafts) != 0 {
		t.Errorf("len(drafts) = %d after publish, want 0", len(drafts))
	}

	feed, err := q.ListPublishedFeed(ctx, 6)
	if err != nil {
		t.Fatalf("ListPublishedFeed: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("len(feed) = %d, want 1", len(feed))
	}
	if feed[0].AuthorName != author.Name {
		t.Errorf("AuthorName = %q, want %q", feed[0].AuthorName, author.Name)
	}

	n, err := q.DeletePost(ctx, post.ID)
	if err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if n != 1 {
		t.Errorf("DeletePost affected %d rows, want 1", n)
	}

	_, err = q.GetPostByID(ctx, post.ID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPostByID after delete error = %v, want sql.ErrNoRows", err)
	}
}

func TestListPublishedFeed_OrderAndLimit(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	author := createTestUser(t, q, "feed@example.com", false)

	base := time.Now().UTC().Add(-time.Hour)
	var ids []int64
	for i := range 8 {
		p, err := q.CreatePost(ctx, CreatePostParams{
			Title:     "post",
			AuthorID:  author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		if _, err := q.PublishPost(ctx, p.ID); err != nil {
			t.Fatalf("PublishPost: %v", err)
		}
		ids = append(ids, p.ID)
	}

	feed, err := q.ListPublishedFeed(ctx, 6)
	if err != nil {
		t.Fatalf("ListPublishedFeed: %v", err)
	}
	if len(feed) != 6 {
		t.Fatalf("len(feed) = %d, want 6", len(feed))
	}
	if feed[0].ID != ids[len(ids)-1] {
		t.Errorf("first feed item = %d, want newest %d", feed[0].ID, ids[len(ids)-1])
	}
}

func TestSubmissionApprovalPartition(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	for _, table := range []SubmissionTable{TableTestimonies, TablePrayerPoints} {
		t.Run(string(table), func(t *testing.T) {
			var ids []int64
			for i := range 3 {
				s, err := q.CreateSubmission(ctx, table, CreateSubmissionParams{
					Body:      "text",
					Name:      sql.NullString{String: "Jo", Valid: i == 0},
					CreatedAt: time.Now().UTC(),
				})
				if err != nil {
					t.Fatalf("CreateSubmission: %v", err)
				}
				if s.Approved {
					t.Error("new submission should not be approved")
				}
				if s.Version != 1 {
					t.Errorf("Version = %d, want 1", s.Version)
				}
				ids = append(ids, s.ID)
			}

			approved, err := q.SetSubmissionApproval(ctx, table, SetSubmissionApprovalParams{Approved: true, ID: ids[0]})
			if err != nil {
				t.Fatalf("SetSubmissionApproval: %v", err)
			}
			if !approved.Approved || approved.Version != 2 {
				t.Errorf("approved = %v version = %d, want true/2", approved.Approved, approved.Version)
			}

			pending, err := q.ListSubmissionsByApproval(ctx, table, ListSubmissionsByApprovalParams{Approved: false, Limit: 10})
			if err != nil {
				t.Fatalf("ListSubmissionsByApproval: %v", err)
			}
			for _, s := range pending {
				if s.Approved {
					t.Errorf("pending list contains approved item %d", s.ID)
				}
			}
			if len(pending) != 2 {
				t.Errorf("len(pending) = %d, want 2", len(pending))
			}

			n, err := q.CountSubmissionsByApproval(ctx, table, true)
			if err != nil {
				t.Fatalf("CountSubmissionsByApproval: %v", err)
			}
			if n != 1 {
				t.Errorf("approved count = %d, want 1", n)
			}

			all, err := q.CountAllSubmissions(ctx, table)
			if err != nil {
				t.Fatalf("CountAllSubmissions: %v", err)
			}
			if all != 3 {
				t.Errorf("CountAllSubmissions = %d, want 3", all)
			}
		})
	}
}

func TestSetSubmissionApproval_VersionCheck(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	s, err := q.CreateSubmission(ctx, TablePrayerPoints, CreateSubmissionParams{Body: "pray", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}

	if _, err := q.SetSubmissionApproval(ctx, TablePrayerPoints, SetSubmissionApprovalParams{
		Approved: true, ID: s.ID, ExpectedVersion: 1,
	}); err != nil {
		t.Fatalf("SetSubmissionApproval(v1): %v", err)
	}

	_, err = q.SetSubmissionApproval(ctx, TablePrayerPoints, SetSubmissionApprovalParams{
		Approved: false, ID: s.ID, ExpectedVersion: 1,
	})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("stale version error = %v, want sql.ErrNoRows", err)
	}

	got, err := q.GetSubmission(ctx, TablePrayerPoints, s.ID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if !got.Approved {
		t.Error("stale update must not change the approval flag")
	}
}

func TestQueriesWithTx(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()
	q := New(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	createTestUser(t, q.WithTx(tx), "rolled-back@example.com", false)
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if _, err := q.GetUserByEmail(ctx, "rolled-back@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByEmail after rollback error = %v, want sql.ErrNoRows", err)
	}

	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	createTestUser(t, q.WithTx(tx), "committed@example.com", false)
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := q.GetUserByEmail(ctx, "committed@example.com"); err != nil {
		t.Errorf("GetUserByEmail after commit: %v", err)
	}
}

func TestSubmissionTable_Unknown(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	_, err := New(db).GetSubmission(context.Background(), SubmissionTable("users"), 1)
	if err == nil {
		t.Fatal("expected error for unknown submission table")
	}
}

func TestListSuspicious(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	author := createTestUser(t, q, "sus@example.com", false)

	for _, content := range []string{"clean text", "<SCRIPT>alert(1)</SCRIPT>", "<a href=\"javascript:x\">"} {
		if _, err := q.CreatePost(ctx, CreatePostParams{Title: "t", Content: content, AuthorID: author.ID, CreatedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}
	for _, body := range []string{"amen", "<img src=x onerror=alert(1)>"} {
		if _, err := q.CreateSubmission(ctx, TableTestimonies, CreateSubmissionParams{Body: body, CreatedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("CreateSubmission: %v", err)
		}
	}

	posts, err := q.ListSuspiciousPosts(ctx)
	if err != nil {
		t.Fatalf("ListSuspiciousPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("len(suspicious posts) = %d, want 2", len(posts))
	}

	subs, err := q.ListSuspiciousSubmissions(ctx, TableTestimonies)
	if err != nil {
		t.Fatalf("ListSuspiciousSubmissions: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("len(suspicious testimonies) = %d, want 1", len(subs))
	}
}

func TestModerationAudit(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	admin := createTestUser(t, q, "admin@example.com", true)

	for i, action := range []string{"approve", "reject"} {
		if _, err := q.CreateModerationAudit(ctx, CreateModerationAuditParams{
			DecisionID: "decision-" + action,
			ActorID:    sql.NullInt64{Int64: admin.ID, Valid: true},
			TargetKind: "testimony",
			TargetID:   int64(i + 1),
			Action:     action,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			t.Fatalf("CreateModerationAudit: %v", err)
		}
	}

	entries, err := q.ListModerationAudit(ctx, ListModerationAuditParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListModerationAudit: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Action != "reject" {
		t.Errorf("newest action = %q, want %q", entries[0].Action, "reject")
	}

	count, err := q.CountModerationAudit(ctx)
	if err != nil {
		t.Fatalf("CountModerationAudit: %v", err)
	}
	if count != 2 {
		t.Errorf("CountModerationAudit = %d, want 2", count)
	}

	target, err := q.ListAuditForTarget(ctx, ListAuditForTargetParams{TargetKind: "testimony", TargetID: 1})
	if err != nil {
		t.Fatalf("ListAuditForTarget: %v", err)
	}
	if len(target) != 1 {
		t.Errorf("len(target entries) = %d, want 1", len(target))
	}
}

func TestDeleteOldEvents(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC()

	for _, at := range []time.Time{now.Add(-48 * time.Hour), now} {
		if _, err := q.CreateEvent(ctx, CreateEventParams{
			Level: "warn", Category: "system", Message: "m", Metadata: "{}", CreatedAt: at,
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	n, err := q.DeleteOldEvents(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteOldEvents removed %d, want 1", n)
	}

	events, err := q.ListEvents(ctx, ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("len(events) = %d, want 1", len(events))
	}
}

func TestEnsureAdmins(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	createTestUser(t, q, "existing@example.com", false)

	if err := EnsureAdmins(ctx, db, []string{" Existing@example.com ", "new@example.com", ""}); err != nil {
		t.Fatalf("EnsureAdmins: %v", err)
	}

	for _, email := range []string{"existing@example.com", "new@example.com"} {
		u, err := q.GetUserByEmail(ctx, email)
		if err != nil {
			t.Fatalf("GetUserByEmail(%s): %v", email, err)
		}
		if !u.IsAdmin {
			t.Errorf("%s IsAdmin = false, want true", email)
		}
	}

	// running twice is a no-op
	if err := EnsureAdmins(ctx, db, []string{"new@example.com"}); err != nil {
		t.Fatalf("EnsureAdmins (second run): %v", err)
	}
	count, err := q.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if count != 2 {
		t.Errorf("CountAdmins = %d, want 2", count)
	}
}
