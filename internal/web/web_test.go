// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/review"
	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const paperText = `Widgets at Scale
Abstract
We study widgets.
Introduction
Widgets are everywhere.
`

type fakeExtractor struct {
	texts map[string]string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, name string, _ []byte) (types.Document, error) {
	f.calls++
	if f.err != nil {
		return types.Document{}, f.err
	}
	return types.Document{Name: name, Pages: 3, Text: f.texts[name]}, nil
}

type fakeClient struct {
	prompts []string
	err     error
}

func (f *fakeClient) Complete(_ context.Context, req llm.Request) (string, error) {
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("reply %d", len(f.prompts)), nil
}

type harness struct {
	srv    *Server
	ex     *fakeExtractor
	client *fakeClient
	store  *session.MemoryStore
	cookie *http.Cookie
}

func newHarness(t *testing.T, mutate func(*types.Config)) *harness {
	t.Helper()
	cfg := types.Defaults()
	if mutate != nil {
		mutate(&cfg)
	}
	h := &harness{
		ex:     &fakeExtractor{texts: map[string]string{}},
		client: &fakeClient{},
		store:  session.NewMemoryStore(time.Hour, time.Minute),
	}
	srv, err := New(Deps{
		Config:     cfg,
		Store:      h.store,
		Extractor:  h.ex,
		Summarizer: summarize.New(h.client, cfg.AI.Model, 0),
		Reviewer:   review.New(h.ex, h.client, cfg.AI.Model, 0),
	})
	require.NoError(t, err)
	h.srv = srv
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name != types.Defaults().Session.CookieName {
			continue
		}
		if ck.MaxAge < 0 {
			h.cookie = nil
		} else {
			h.cookie = ck
		}
	}
	return rec
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) upload(t *testing.T, path, field string, names []string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, n := range names {
		w, err := mw.CreateFormFile(field, n)
		require.NoError(t, err)
		_, err = w.Write([]byte("%PDF-1.4 stand-in"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req)
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPaperPage_SetsSessionCookie(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/paper"`)
	require.NotNil(t, h.cookie)
	assert.True(t, session.ValidID(h.cookie.Value))
	assert.True(t, h.cookie.HttpOnly)
}

func TestUploadPaper_SummarizesSections(t *testing.T) {
	h := newHarness(t, nil)
	h.ex.texts["widgets.pdf"] = paperText

	rec := h.upload(t, "/paper", "pdf", []string{"widgets.pdf"}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Detected Sections")
	assert.Contains(t, body, "<h3>Abstract</h3>")
	assert.Contains(t, body, "<h3>Introduction</h3>")
	assert.Contains(t, body, "reply 1")
	assert.Contains(t, body, "reply 2")
	assert.Len(t, h.client.prompts, 2)

	sess, err := h.store.Load(context.Background(), h.cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "widgets.pdf", sess.FileName)
	assert.Equal(t, 3, sess.Pages)
	require.Len(t, sess.Summaries, 2)
	assert.Equal(t, "abstract", sess.Summaries[0].Title)
}

func TestUploadPaper_NoSectionsWarns(t *testing.T) {
	h := newHarness(t, nil)
	h.ex.texts["notes.pdf"] = "just some prose\nwith no headings at all\n"

	rec := h.upload(t, "/paper", "pdf", []string{"notes.pdf"}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No standard sections (Abstract, Introduction, etc.) found in this PDF.")
	assert.Empty(t, h.client.prompts)
}

func TestUploadPaper_ErrorsRenderInline(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		extErr  error
		maxSize int64
		want    string
	}{
		{
			name:  "missing file",
			files: nil,
			want:  "Please choose a PDF file to upload.",
		},
		{
			name:   "scanned PDF",
			files:  []string{"scan.pdf"},
			extErr: fmt.Errorf("scan.pdf: %w", convert.ErrNoText),
			want:   "Could not process scan.pdf: no text could be extracted.",
		},
		{
			name:   "broken PDF",
			files:  []string{"broken.pdf"},
			extErr: fmt.Errorf("broken.pdf: %w", convert.ErrUnreadablePDF),
			want:   "the file could not be read as a PDF.",
		},
		{
			name:    "too large",
			files:   []string{"big.pdf"},
			maxSize: 4,
			want:    "exceeds the 0 MB upload limit",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, func(c *types.Config) {
				if tc.maxSize > 0 {
					c.Extraction.MaxUploadBytes = tc.maxSize
				}
			})
			h.ex.err = tc.extErr

			rec := h.upload(t, "/paper", "pdf", tc.files, nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `class="banner error"`)
			assert.Contains(t, rec.Body.String(), tc.want)
			assert.Empty(t, h.client.prompts)
		})
	}
}

func TestAnalyze(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.postForm("/analyze", url.Values{"question": {"Why widgets?"}})
	assert.Contains(t, rec.Body.String(), "Upload a paper and summarize it first.")

	h.ex.texts["widgets.pdf"] = paperText
	h.upload(t, "/paper", "pdf", []string{"widgets.pdf"}, nil)

	rec = h.postForm("/analyze", url.Values{"question": {"   "}})
	assert.Contains(t, rec.Body.String(), "Please enter a research question.")
	assert.Len(t, h.client.prompts, 2)

	rec = h.postForm("/analyze", url.Values{"question": {"Why widgets?"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Research Assistant Analysis")
	assert.Contains(t, rec.Body.String(), "reply 3")
	require.Len(t, h.client.prompts, 3)
	assert.Contains(t, h.client.prompts[2], "Why widgets?")
	assert.Contains(t, h.client.prompts[2], "Abstract:\nreply 1")
}

func TestPaperDownloads(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, http.StatusNotFound, h.get("/paper/report.pdf").Code)
	assert.Equal(t, http.StatusNotFound, h.get("/paper/report.txt").Code)

	h.ex.texts["widgets.pdf"] = paperText
	h.upload(t, "/paper", "pdf", []string{"widgets.pdf"}, nil)
	h.postForm("/analyze", url.Values{"question": {"Why widgets?"}})

	rec := h.get("/paper/report.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="research_summary.txt"`)
	assert.Contains(t, rec.Body.String(), "Research Paper Summary")
	assert.Contains(t, rec.Body.String(), "Why widgets?")

	rec = h.get("/paper/report.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestReview_TooManyFilesWarnsWithoutProcessing(t *testing.T) {
	h := newHarness(t, nil)
	names := []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf", "f.pdf"}

	rec := h.upload(t, "/review", "pdfs", names, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please upload no more than 5 PDFs at a time.")
	assert.Zero(t, h.ex.calls)
	assert.Empty(t, h.client.prompts)
}

func TestReview_NoFilesWarns(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.upload(t, "/review", "pdfs", nil, map[string]string{"topic": "widgets"})
	assert.Contains(t, rec.Body.String(), "Please upload at least one PDF.")
}

func TestReview_GeneratesReviewAndExports(t *testing.T) {
	h := newHarness(t, nil)
	h.ex.texts["smith.pdf"] = "Widgets at Scale\nJane Smith, Raj Kumar\n2020\nAbstract\nWidgets."
	h.ex.texts["lee.pdf"] = "Gadget Theory Revisited\nMin Lee\n2019\nAbstract\nGadgets."

	rec := h.upload(t, "/review", "pdfs", []string{"smith.pdf", "lee.pdf"}, map[string]string{"topic": "widget design"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, `class="banner error"`)
	assert.Contains(t, body, "Literature Review")
	assert.Contains(t, body, "reply 3")
	require.Len(t, h.client.prompts, 3)
	assert.Contains(t, h.client.prompts[2], "widget design")

	sess, err := h.store.Load(context.Background(), h.cookie.Value)
	require.NoError(t, err)
	require.Len(t, sess.Documents, 2)
	assert.Equal(t, "widget design", sess.Topic)
	assert.Equal(t, "reply 3", sess.Review)

	bib := h.get("/review/references.bib")
	require.Equal(t, http.StatusOK, bib.Code)
	assert.Equal(t, 2, strings.Count(bib.Body.String(), "@article{"))

	csl := h.get("/review/references.yaml")
	require.Equal(t, http.StatusOK, csl.Code)
	assert.Contains(t, csl.Body.String(), "title:")

	txt := h.get("/review/report.txt")
	require.Equal(t, http.StatusOK, txt.Code)
	assert.Contains(t, txt.Body.String(), "References")

	pdf := h.get("/review/report.pdf")
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.True(t, bytes.HasPrefix(pdf.Body.Bytes(), []byte("%PDF")))
}

func TestReview_ExportsBeforeReview(t *testing.T) {
	h := newHarness(t, nil)
	for _, path := range []string{"/review/report.pdf", "/review/report.txt", "/review/references.bib", "/review/references.yaml"} {
		assert.Equal(t, http.StatusNotFound, h.get(path).Code, path)
	}
}

func TestReview_FailureKeepsPreviousState(t *testing.T) {
	h := newHarness(t, nil)
	h.ex.texts["smith.pdf"] = "Widgets at Scale\nJane Smith\n2020\nAbstract\nWidgets."
	h.upload(t, "/review", "pdfs", []string{"smith.pdf"}, nil)

	h.ex.err = fmt.Errorf("bad.pdf: %w", convert.ErrUnreadablePDF)
	rec := h.upload(t, "/review", "pdfs", []string{"bad.pdf"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Literature review failed:")
	sess, err := h.store.Load(context.Background(), h.cookie.Value)
	require.NoError(t, err)
	assert.Len(t, sess.Documents, 1)
	assert.Equal(t, "reply 2", sess.Review)
}

func TestReset(t *testing.T) {
	h := newHarness(t, nil)
	h.ex.texts["widgets.pdf"] = paperText
	h.upload(t, "/paper", "pdf", []string{"widgets.pdf"}, nil)
	require.NotNil(t, h.cookie)
	id := h.cookie.Value

	rec := h.postForm("/reset", url.Values{"next": {"/review"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/review", rec.Header().Get("Location"))
	assert.Nil(t, h.cookie)
	_, err := h.store.Load(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestUnknownSessionStartsFresh(t *testing.T) {
	h := newHarness(t, nil)
	h.cookie = &http.Cookie{Name: types.Defaults().Session.CookieName, Value: "not-a-uuid"}

	rec := h.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, h.cookie)
	assert.NotEqual(t, "not-a-uuid", h.cookie.Value)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, h.get("/analyze").Code)
}

func TestCORSConfig(t *testing.T) {
	tests := []struct {
		name   string
		cfg    types.ServerConfig
		origin string
		want   bool
	}{
		{"dev allows any", types.ServerConfig{Env: "development", AllowedOrigins: []string{"https://ok.example"}}, "https://other.example", true},
		{"prod listed", types.ServerConfig{Env: "production", AllowedOrigins: []string{"https://ok.example"}}, "https://ok.example", true},
		{"prod unlisted", types.ServerConfig{Env: "production", AllowedOrigins: []string{"https://ok.example"}}, "https://evil.example", false},
		{"prod without list", types.ServerConfig{Env: "production"}, "https://any.example", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, corsConfig(tc.cfg).AllowOriginFunc(tc.origin))
		})
	}
}

func TestNew_RejectsBadSectionMode(t *testing.T) {
	cfg := types.Defaults()
	cfg.Sections.Mode = "headings"
	client := &fakeClient{}
	ex := &fakeExtractor{}
	_, err := New(Deps{
		Config:     cfg,
		Store:      session.NewMemoryStore(time.Hour, time.Minute),
		Extractor:  ex,
		Summarizer: summarize.New(client, "gpt-4", 0),
		Reviewer:   review.New(ex, client, "gpt-4", 0),
	})
	assert.Error(t, err)
}

func TestSave_RefreshesSessionCookie(t *testing.T) {
	h := newHarness(t, nil)
	h.get("/")
	require.NotNil(t, h.cookie)
	id := h.cookie.Value

	h.ex.texts["widgets.pdf"] = paperText
	h.upload(t, "/paper", "pdf", []string{"widgets.pdf"}, nil)

	rec := h.postForm("/analyze", url.Values{"question": {"Why widgets?"}})

	var refreshed *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == types.Defaults().Session.CookieName {
			refreshed = ck
		}
	}
	require.NotNil(t, refreshed, "analyze should re-issue the session cookie")
	assert.Equal(t, id, refreshed.Value)
	assert.Equal(t, int(types.Defaults().Session.TTL.Seconds()), refreshed.MaxAge)
	assert.True(t, refreshed.HttpOnly)
}

func TestModelFailure_RendersInlineAndRecovers(t *testing.T) {
	h := newHarness(t, nil)
	h.ex.texts["widgets.pdf"] = paperText

	h.client.err = errors.New("upstream unavailable")
	rec := h.upload(t, "/paper", "pdf", []string{"widgets.pdf"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="banner error"`)
	assert.Contains(t, rec.Body.String(), "upstream unavailable")

	sess, err := h.store.Load(context.Background(), h.cookie.Value)
	require.NoError(t, err)
	assert.Len(t, sess.Sections, 2)
	assert.Empty(t, sess.Summaries)

	h.client.err = nil
	rec = h.upload(t, "/paper", "pdf", []string{"widgets.pdf"}, nil)
	assert.NotContains(t, rec.Body.String(), `class="banner error"`)
	assert.Contains(t, rec.Body.String(), "<h3>Abstract</h3>")

	h.client.err = errors.New("upstream unavailable")
	rec = h.postForm("/analyze", url.Values{"question": {"Why widgets?"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Analysis failed: ")
	assert.Contains(t, rec.Body.String(), "<h3>Abstract</h3>")

	h.client.err = nil
	rec = h.postForm("/analyze", url.Values{"question": {"Why widgets?"}})
	assert.NotContains(t, rec.Body.String(), `class="banner error"`)
	assert.Contains(t, rec.Body.String(), "Research Assistant Analysis")

	sess, err = h.store.Load(context.Background(), h.cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "Why widgets?", sess.Question)
	assert.NotEmpty(t, sess.Analysis)
}
