package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("creating part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestPostImageRejectsAnonymous(t *testing.T) {
	store := newFakeBlobStore()
	handler := withIdentity(NewUploadHandler(store).PostImage)

	body, contentType := multipartBody(t, "image", "a.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPut, "/post-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if store.Len() != 0 {
		t.Error("bytes were stored for a rejected upload")
	}
}

func TestPostImageRequiresFilePart(t *testing.T) {
	store := newFakeBlobStore()
	handler := withIdentity(NewUploadHandler(store).PostImage)

	body, contentType := multipartBody(t, "document", "a.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPut, "/post-image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, uuid.New()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if store.Len() != 0 {
		t.Error("bytes were stored without a file part")
	}
}

func TestPostImageFiltersContentType(t *testing.T) {
	store := newFakeBlobStore()
	handler := withIdentity(NewUploadHandler(store).PostImage)

	body, contentType := multipartBody(t, "image", "a.txt", "text/plain", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPut, "/post-image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, uuid.New()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostImageStoresAndReturnsPath(t *testing.T) {
	store := newFakeBlobStore()
	handler := withIdentity(NewUploadHandler(store).PostImage)

	body, contentType := multipartBody(t, "image", "photo.PNG", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPut, "/post-image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, uuid.New()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var resp struct {
		FilePath string `json:"filePath"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if !strings.HasPrefix(resp.FilePath, "images/") {
		t.Errorf("filePath = %q, want images/ prefix", resp.FilePath)
	}
	if strings.Contains(resp.FilePath, `\`) {
		t.Errorf("filePath %q contains backslashes", resp.FilePath)
	}
	if !strings.HasSuffix(resp.FilePath, ".png") {
		t.Errorf("filePath = %q, want lowercased .png extension", resp.FilePath)
	}
	if store.Len() != 1 {
		t.Fatalf("stored objects = %d, want 1", store.Len())
	}
}

func TestPostImageKeysNeverCollide(t *testing.T) {
	store := newFakeBlobStore()
	handler := withIdentity(NewUploadHandler(store).PostImage)
	token := mintToken(t, uuid.New())

	for i := 0; i < 3; i++ {
		body, contentType := multipartBody(t, "image", "same-name.png", "image/png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPut, "/post-image", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
	}

	if store.Len() != 3 {
		t.Errorf("stored objects = %d, want 3 distinct keys", store.Len())
	}
}
