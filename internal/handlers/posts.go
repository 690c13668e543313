package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jeremyjsx/blog/internal/posts"
)

const maxBodyBytes = 1 << 20

type PostsHandler struct {
	svc    *posts.Service
	logger *slog.Logger
}

func NewPostsHandler(svc *posts.Service, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		logger: logger,
	}
}

type deleteResponse struct {
	Message string `json:"message"`
}

func (h *PostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.svc.ListPosts(r.Context())
		if err != nil {
			h.logger.Error("list posts failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch blogs", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (h *PostsHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		post, err := h.svc.GetPost(r.Context(), id)
		if err != nil {
			h.writeStoreError(w, err, "Failed to fetch blog", "get post failed", id)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		post, err := h.svc.CreatePost(r.Context(), in)
		if err != nil {
			h.writeStoreError(w, err, "Failed to create blog", "create post failed", "")
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

func (h *PostsHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")
		post, err := h.svc.UpdatePost(r.Context(), id, in)
		if err != nil {
			h.writeStoreError(w, err, "Failed to update blog", "update post failed", id)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.svc.DeletePost(r.Context(), id); err != nil {
			h.writeStoreError(w, err, "Failed to delete blog", "delete post failed", id)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Message: "Blog post deleted successfully"})
	}
}

// decodeInput reads a create/update body and applies the required-field
// check. It writes the 400 response itself and reports false on failure.
func decodeInput(w http.ResponseWriter, r *http.Request) (posts.Input, bool) {
	var in posts.Input
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	// An empty body is treated as {} so the missing fields are reported.
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return posts.Input{}, false
	}
	if _, err := posts.Validate(in); err != nil {
		writeError(w, http.StatusBadRequest, "Title and body are required", err)
		return posts.Input{}, false
	}
	return in, true
}

// writeStoreError maps a service error onto a status code. Anything not
// recognized is a storage failure.
func (h *PostsHandler) writeStoreError(w http.ResponseWriter, err error, failMsg, logMsg, id string) {
	switch {
	case errors.Is(err, posts.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid blog ID format", nil)
	case errors.Is(err, posts.ErrNotFound):
		writeError(w, http.StatusNotFound, "Blog post not found", nil)
	case errors.Is(err, posts.ErrValidation):
		writeError(w, http.StatusBadRequest, failMsg, err)
	default:
		h.logger.Error(logMsg, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, failMsg, err)
	}
}
