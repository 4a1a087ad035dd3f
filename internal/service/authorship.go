// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/koinonia/internal/cache"
	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/metrics"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/sanitize"
	"github.com/olegiv/koinonia/internal/store"
)

const feedPrefix = "feed:"

// Post limits
const (
	MaxTitleLength   = 200
	MaxContentLength = 50000
)

// DraftInput is the body of a new post.
type DraftInput struct {
	Title   string
	Content string
}

// AuthorshipService handles owner-gated post operations and the public feed.
type AuthorshipService struct {
	queries *store.Queries
	feed    *cache.TypedCache[[]store.PostWithAuthorRow]
	metrics *metrics.Metrics
}

// NewAuthorshipService creates a new AuthorshipService.
func NewAuthorshipService(db *sql.DB) *AuthorshipService {
	return &AuthorshipService{queries: store.New(db)}
}

// SetCache enables caching of the public feed.
func (s *AuthorshipService) SetCache(c cache.Cache, ttl time.Duration) {
	s.feed = cache.NewTypedCache[[]store.PostWithAuthorRow](c, ttl)
}

// SetMetrics sets the metrics recorder.
func (s *AuthorshipService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// CreateDraft stores a new unpublished post owned by caller. The caller's
// user row is created on first use.
func (s *AuthorshipService) CreateDraft(ctx context.Context, caller identity.Identity, in DraftInput) (model.Post, error) {
	if caller.Email == "" {
		return model.Post{}, ErrUnauthorized
	}

	title := strings.TrimSpace(sanitize.Sanitize(in.Title))
	content := strings.TrimSpace(sanitize.Sanitize(in.Content))
	if title == "" {
		return model.Post{}, validationError("title", "Title is required")
	}
	if len([]rune(title)) > MaxTitleLength {
		return model.Post{}, validationError("title", fmt.Sprintf("Title must be at most %d characters", MaxTitleLength))
	}
	if len([]rune(content)) > MaxContentLength {
		return model.Post{}, validationError("content", fmt.Sprintf("Content must be at most %d characters", MaxContentLength))
	}

	owner, err := ensureUser(ctx, s.queries, caller)
	if err != nil {
		return model.Post{}, err
	}

	post, err := s.queries.CreatePost(ctx, store.CreatePostParams{
		Title:     title,
		Content:   content,
		AuthorID:  owner.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return model.Post{}, storageError("create post", err, "author_id", owner.ID)
	}
	return toPost(post), nil
}

// Publish makes a draft public. Publishing an already published post is a
// no-op that returns the post unchanged.
func (s *AuthorshipService) Publish(ctx context.Context, caller identity.Identity, postID int64) (model.Post, error) {
	post, err := s.ownedPost(ctx, caller, postID)
	if err != nil {
		return model.Post{}, err
	}
	if post.Published {
		return toPost(post), nil
	}

	post, err = s.queries.PublishPost(ctx, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	if err != nil {
		return model.Post{}, storageError("publish post", err, "post_id", postID)
	}

	s.invalidateFeed(ctx)
	s.metrics.PostPublished()
	slog.Info("post published", "category", model.EventCategoryPost, "post_id", postID, "author_id", post.AuthorID)
	return toPost(post), nil
}

// Delete removes a post in any state. A missing post is reported before
// ownership is checked.
func (s *AuthorshipService) Delete(ctx context.Context, caller identity.Identity, postID int64) error {
	post, err := s.ownedPost(ctx, caller, postID)
	if err != nil {
		return err
	}

	n, err := s.queries.DeletePost(ctx, postID)
	if err != nil {
		return storageError("delete post", err, "post_id", postID)
	}
	if n == 0 {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}

	if post.Published {
		s.invalidateFeed(ctx)
	}
	slog.Info("post deleted", "category", model.EventCategoryPost, "post_id", postID, "author_id", post.AuthorID)
	return nil
}

// ListOwnDrafts returns the caller's unpublished posts, newest first.
func (s *AuthorshipService) ListOwnDrafts(ctx context.Context, caller identity.Identity) ([]model.Post, error) {
	email := model.NormalizeEmail(caller.Email)
	if email == "" {
		return nil, ErrUnauthorized
	}

	owner, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Post{}, nil
	}
	if err != nil {
		return nil, storageError("get user", err, "email", email)
	}

	rows, err := s.queries.ListDraftsByAuthor(ctx, owner.ID)
	if err != nil {
		return nil, storageError("list drafts", err, "author_id", owner.ID)
	}

	posts := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, toPost(row))
	}
	return posts, nil
}

// ListPublishedFeed returns up to limit published posts, newest first,
// with the author's display name only.
func (s *AuthorshipService) ListPublishedFeed(ctx context.Context, limit int) ([]model.FeedPost, error) {
	limit = model.ClampFeedLimit(limit)

	load := func() ([]store.PostWithAuthorRow, error) {
		return s.queries.ListPublishedFeed(ctx, int64(limit))
	}

	var (
		rows []store.PostWithAuthorRow
		err  error
	)
	if s.feed != nil {
		rows, err = s.feed.GetOrSet(ctx, feedPrefix+strconv.Itoa(limit), load)
	} else {
		rows, err = load()
	}
	if err != nil {
		return nil, storageError("list feed", err)
	}

	posts := make([]model.FeedPost, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, toFeedPost(row))
	}
	return posts, nil
}

// Get returns one post. Published posts are public; drafts are visible to
// their owner only and reported as not found to everyone else.
func (s *AuthorshipService) Get(ctx context.Context, caller identity.Identity, postID int64) (model.FeedPost, error) {
	row, err := s.queries.GetPostWithAuthor(ctx, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FeedPost{}, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	if err != nil {
		return model.FeedPost{}, storageError("get post", err, "post_id", postID)
	}
	if row.Published {
		return toFeedPost(row), nil
	}

	email := model.NormalizeEmail(caller.Email)
	if email == "" {
		return model.FeedPost{}, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	owner, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner.ID != row.AuthorID) {
		return model.FeedPost{}, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	if err != nil {
		return model.FeedPost{}, storageError("get user", err, "email", email)
	}
	return toFeedPost(row), nil
}

// ownedPost loads postID and checks that caller owns it.
func (s *AuthorshipService) ownedPost(ctx context.Context, caller identity.Identity, postID int64) (store.Post, error) {
	email := model.NormalizeEmail(caller.Email)
	if email == "" {
		return store.Post{}, ErrUnauthorized
	}

	post, err := s.queries.GetPostByID(ctx, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Post{}, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	if err != nil {
		return store.Post{}, storageError("get post", err, "post_id", postID)
	}

	requester, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Post{}, ErrNotOwner
	}
	if err != nil {
		return store.Post{}, storageError("get user", err, "email", email)
	}
	if requester.ID != post.AuthorID {
		return store.Post{}, ErrNotOwner
	}
	return post, nil
}

func (s *AuthorshipService) invalidateFeed(ctx context.Context) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Invalidate(ctx, feedPrefix); err != nil {
		slog.Warn("cache invalidation failed", "category", model.EventCategoryCache, "prefix", feedPrefix, "error", err)
	}
}

func toPost(p store.Post) model.Post {
	return model.Post{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Published: p.Published,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
	}
}

func toFeedPost(row store.PostWithAuthorRow) model.FeedPost {
	return model.FeedPost{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		HTML:      sanitize.EscapeAndLightMarkup(row.Content),
		Published: row.Published,
		CreatedAt: row.CreatedAt,
		Author:    model.PostAuthor{Name: row.AuthorName},
	}
}
