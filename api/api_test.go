package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"webapp/user-api/middleware"
	"webapp/user-api/model"
	"webapp/user-api/security"
	"webapp/user-api/service"
	"webapp/user-api/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes []string
	failPut bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Put(_ context.Context, key, _, _, _ string, body io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPut {
		return errors.New("put failed")
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	f.objects[key] = b
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) URL(key string) string {
	return "https://test-bucket.s3.us-east-1.amazonaws.com/" + key
}

type fakePublisher struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
}

func (f *fakePublisher) Publish(_ context.Context, msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("publish failed")
	}

	f.messages = append(f.messages, msg)
	return nil
}

// testArgon uses cheap parameters so the hashing-heavy handler tests stay
// fast. The encoded format is identical to the production one
func testArgon() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestAPI(t *testing.T) (*API, *fakeStorage, *fakePublisher) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	viper.Set("upload.max_size", int64(5<<20))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(model.User{}, model.Image{}, model.EmailRecord{}))

	storage := newFakeStorage()
	pub := &fakePublisher{}

	a := &API{
		DB:       gdb,
		Argon:    testArgon(),
		Storage:  storage,
		Notifier: &service.Dispatcher{DB: gdb, Pub: pub},
	}

	router := gin.New()
	router.Use(middleware.NewRequestIDMiddleware())
	a.Router = router
	a.registerRoutes()

	return a, storage, pub
}

func createUser(t *testing.T, a *API, email, password string, verified bool) *model.User {
	t.Helper()

	hash, err := a.Argon.GenerateFromPassword(password)
	require.NoError(t, err)

	now := time.Now()
	user := &model.User{
		ID:             uuid.NewString(),
		Email:          email,
		Password:       hash,
		FirstName:      "Jane",
		LastName:       "Doe",
		IsVerified:     verified,
		AccountCreated: now,
		AccountUpdated: now,
	}

	if !verified {
		token, err := util.GenerateToken(32)
		require.NoError(t, err)

		expiry := now.Add(2 * time.Minute)
		user.VerificationToken = &token
		user.VerificationTokenExpiry = &expiry
	}

	require.NoError(t, a.DB.Create(user).Error)
	return user
}

func doRequest(a *API, method, path string, body io.Reader, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for _, o := range opts {
		o(req)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func asJSON(r *http.Request) {
	r.Header.Set("Content-Type", "application/json")
}

func withBasicAuth(email, password string) func(*http.Request) {
	return func(r *http.Request) {
		r.SetBasicAuth(email, password)
	}
}

// Minimal but sniffable image payloads
var (
	pngBytes  = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)
	jpegBytes = append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 64)...)
)

func multipartFile(t *testing.T, name, contentType string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)

	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}
