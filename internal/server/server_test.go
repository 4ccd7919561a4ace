package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/naka-gawa/candidate-stats/internal/domain"
	"github.com/naka-gawa/candidate-stats/internal/storage"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, req domain.ProfileRequest) string {
	args := m.Called(ctx, req)
	return args.String(0)
}

type failingSaver struct{}

func (failingSaver) Save(string, io.Reader) (string, error) { return "", errors.New("disk full") }

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestServer_Root(t *testing.T) {
	logger, _ := test.NewNullLogger()
	srv := New(new(mockSubmitter), nil, logger)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "candidate-stats backend running", rec.Body.String())
}

func TestServer_UserDetails(t *testing.T) {
	t.Run("with resume", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		fs := afero.NewMemMapFs()
		submitter := new(mockSubmitter)
		submitter.On("Submit", mock.Anything, domain.ProfileRequest{
			ProfileURL:      "https://github.com/alice",
			ResumeReference: filepath.Join("uploads", "cv.pdf"),
		}).Return("run-1")
		srv := New(submitter, storage.NewResumeStore(fs, "uploads", logger), logger)

		body, contentType := multipartBody(t, map[string]string{"githubUrl": "https://github.com/alice"}, "cv.pdf", "resume bytes")
		req := httptest.NewRequest(http.MethodPost, "/user/details", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "run-1", rec.Header().Get("X-Request-Id"))
		stored, err := afero.ReadFile(fs, filepath.Join("uploads", "cv.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "resume bytes", string(stored))
		submitter.AssertExpectations(t)

		last := hook.LastEntry()
		require.NotNil(t, last)
		assert.Equal(t, "request served", last.Message)
		assert.Equal(t, http.StatusOK, last.Data["status"])
	})

	t.Run("without resume", func(t *testing.T) {
		logger, _ := test.NewNullLogger()
		submitter := new(mockSubmitter)
		submitter.On("Submit", mock.Anything, domain.ProfileRequest{ProfileURL: "https://github.com/alice"}).Return("run-2")
		srv := New(submitter, failingSaver{}, logger)

		body, contentType := multipartBody(t, map[string]string{"githubUrl": "https://github.com/alice"}, "", "")
		req := httptest.NewRequest(http.MethodPost, "/user/details", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		submitter.AssertExpectations(t)
	})

	t.Run("url encoded form", func(t *testing.T) {
		logger, _ := test.NewNullLogger()
		submitter := new(mockSubmitter)
		submitter.On("Submit", mock.Anything, domain.ProfileRequest{ProfileURL: "https://github.com/bob"}).Return("run-3")
		srv := New(submitter, failingSaver{}, logger)

		form := url.Values{"githubUrl": {"https://github.com/bob"}}
		req := httptest.NewRequest(http.MethodPost, "/user/details", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		submitter.AssertExpectations(t)
	})

	t.Run("error case - missing githubUrl", func(t *testing.T) {
		logger, _ := test.NewNullLogger()
		submitter := new(mockSubmitter)
		srv := New(submitter, failingSaver{}, logger)

		body, contentType := multipartBody(t, map[string]string{}, "cv.pdf", "resume bytes")
		req := httptest.NewRequest(http.MethodPost, "/user/details", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"message": "githubUrl required"}`, rec.Body.String())
		submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("error case - resume cannot be stored", func(t *testing.T) {
		logger, _ := test.NewNullLogger()
		submitter := new(mockSubmitter)
		srv := New(submitter, failingSaver{}, logger)

		body, contentType := multipartBody(t, map[string]string{"githubUrl": "https://github.com/alice"}, "cv.pdf", "resume bytes")
		req := httptest.NewRequest(http.MethodPost, "/user/details", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"message": "failed to store resume"}`, rec.Body.String())
		submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("error case - wrong method", func(t *testing.T) {
		logger, _ := test.NewNullLogger()
		srv := New(new(mockSubmitter), failingSaver{}, logger)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/details", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
