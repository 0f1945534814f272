package handlers

import (
	"fmt"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/omarwdev/feedhub/internal/storage"
	"github.com/omarwdev/feedhub/internal/transport/http/middleware"
)

const maxUploadSize = 10 << 20 // 10 MiB

// UploadHandler accepts image bytes out-of-band from the post mutation. It
// stores them under a generated key and returns the reference path the client
// passes to createPost/updatePost. No database row is written here; an upload
// whose mutation never follows stays orphaned on purpose.
type UploadHandler struct {
	store storage.BlobStore
}

func NewUploadHandler(store storage.BlobStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// PostImage handles PUT /post-image. Unlike the rest of the pipeline, this
// endpoint enforces authentication itself: anonymous uploads are rejected
// before any bytes are read.
func (h *UploadHandler) PostImage(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	if !ident.Authenticated {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", "Invalid multipart body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "NO_FILE", "No image file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "NOT_AN_IMAGE", "Only image uploads are accepted")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := path.Join("images", fmt.Sprintf("%s%s", uuid.New(), ext))

	if err := h.store.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		log.Printf("ERROR storing upload: %v", err)
		writeError(w, http.StatusInternalServerError, "STORAGE_FAILED", "Could not store image")
		return
	}

	// Always forward slashes: the path ends up interpolated into URLs.
	writeJSON(w, http.StatusCreated, map[string]string{
		"filePath": filepath.ToSlash(key),
	})
}
