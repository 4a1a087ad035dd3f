// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/service"
	"github.com/olegiv/koinonia/internal/util"
)

// PostsHandler handles post authorship and the public feed.
type PostsHandler struct {
	posts *service.AuthorshipService
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(posts *service.AuthorshipService) *PostsHandler {
	return &PostsHandler{posts: posts}
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create handles POST /post.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.posts.CreateDraft(r.Context(), caller, service.DraftInput{Title: req.Title, Content: req.Content})
	if err != nil {
		writeServiceError(w, err, "Error creating post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// Publish handles PUT /publish/{id}.
func (h *PostsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	caller, _ := identity.FromContext(r.Context())

	post, err := h.posts.Publish(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, err, "Error publishing post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /post/{id}.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	caller, _ := identity.FromContext(r.Context())

	if err := h.posts.Delete(r.Context(), caller, id); err != nil {
		writeServiceError(w, err, "Error deleting post")
		return
	}
	writeMessage(w, http.StatusOK, "Post deleted successfully")
}

// Get handles GET /post/{id}.
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	caller, _ := identity.FromContext(r.Context())

	post, err := h.posts.Get(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, err, "Error fetching post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Feed handles GET /feed.
func (h *PostsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit := util.ParseIntOrZero(r.URL.Query().Get("limit"))
	posts, err := h.posts.ListPublishedFeed(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err, "Error fetching posts")
		return
	}
	if posts == nil {
		posts = []model.FeedPost{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// Drafts handles GET /drafts.
func (h *PostsHandler) Drafts(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	posts, err := h.posts.ListOwnDrafts(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err, "Error fetching drafts")
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := util.ParseInt64Positive(chi.URLParam(r, "id"))
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid post ID")
	}
	return id, ok
}
