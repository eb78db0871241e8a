package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"webapp/user-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadPic(t *testing.T, a *API, email, password, name, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, ct := multipartFile(t, name, contentType, content)
	return doRequest(a, http.MethodPost, "/user/self/pic", body,
		withBasicAuth(email, password),
		func(r *http.Request) { r.Header.Set("Content-Type", ct) })
}

func TestPicUpload(t *testing.T) {
	a, storage, _ := newTestAPI(t)
	user := createUser(t, a, "a@x.com", "secret1", true)

	w := uploadPic(t, a, "a@x.com", "secret1", "avatar.png", "image/png", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "avatar.png", resp["file_name"])
	assert.Equal(t, user.ID, resp["user_id"])
	assert.Contains(t, resp["url"], "profile-pics/"+user.ID)

	var image model.Image
	require.NoError(t, a.DB.Where("user_id = ?", user.ID).First(&image).Error)
	assert.Equal(t, pngBytes, storage.objects[image.S3Key])
}

func TestPicUploadJPEG(t *testing.T) {
	a, _, _ := newTestAPI(t)
	createUser(t, a, "a@x.com", "secret1", true)

	w := uploadPic(t, a, "a@x.com", "secret1", "avatar.jpg", "image/jpeg", jpegBytes)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPicUploadDuplicate(t *testing.T) {
	a, storage, _ := newTestAPI(t)
	user := createUser(t, a, "a@x.com", "secret1", true)

	w := uploadPic(t, a, "a@x.com", "secret1", "first.png", "image/png", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code)

	var original model.Image
	require.NoError(t, a.DB.Where("user_id = ?", user.ID).First(&original).Error)

	w = uploadPic(t, a, "a@x.com", "secret1", "second.png", "image/png", pngBytes)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The original row and blob are untouched, the loser's blob is gone
	var got model.Image
	require.NoError(t, a.DB.Where("user_id = ?", user.ID).First(&got).Error)
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, "first.png", got.FileName)

	assert.Len(t, storage.objects, 1)
	assert.Contains(t, storage.objects, original.S3Key)
}

func TestPicUploadUnsupportedType(t *testing.T) {
	a, storage, _ := newTestAPI(t)
	createUser(t, a, "a@x.com", "secret1", true)

	// Sniffing catches a GIF even when the declared type lies
	gif := append([]byte("GIF89a"), make([]byte, 32)...)
	w := uploadPic(t, a, "a@x.com", "secret1", "anim.png", "image/png", gif)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadPic(t, a, "a@x.com", "secret1", "doc.pdf", "application/pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, storage.objects)
}

func TestPicUploadNoFile(t *testing.T) {
	a, _, _ := newTestAPI(t)
	createUser(t, a, "a@x.com", "secret1", true)

	w := doRequest(a, http.MethodPost, "/user/self/pic", nil, withBasicAuth("a@x.com", "secret1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPicFetch(t *testing.T) {
	a, _, _ := newTestAPI(t)
	createUser(t, a, "a@x.com", "secret1", true)

	w := doRequest(a, http.MethodGet, "/user/self/pic", nil, withBasicAuth("a@x.com", "secret1"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = uploadPic(t, a, "a@x.com", "secret1", "avatar.png", "image/png", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(a, http.MethodGet, "/user/self/pic", nil, withBasicAuth("a@x.com", "secret1"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "avatar.png", resp["file_name"])
}

func TestPicDelete(t *testing.T) {
	a, storage, _ := newTestAPI(t)
	user := createUser(t, a, "a@x.com", "secret1", true)

	w := uploadPic(t, a, "a@x.com", "secret1", "avatar.png", "image/png", pngBytes)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(a, http.MethodDelete, "/user/self/pic", nil, withBasicAuth("a@x.com", "secret1"))
	require.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	require.NoError(t, a.DB.Model(model.Image{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, storage.objects)

	w = doRequest(a, http.MethodGet, "/user/self/pic", nil, withBasicAuth("a@x.com", "secret1"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPicDeleteNonexistent(t *testing.T) {
	a, storage, _ := newTestAPI(t)
	createUser(t, a, "a@x.com", "secret1", true)

	w := doRequest(a, http.MethodDelete, "/user/self/pic", nil, withBasicAuth("a@x.com", "secret1"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// No blob-store call happens when there is nothing to delete
	assert.Empty(t, storage.deletes)
}

func TestPicRequiresAuth(t *testing.T) {
	a, _, _ := newTestAPI(t)

	for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
		w := doRequest(a, method, "/user/self/pic", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, method)
	}
}
