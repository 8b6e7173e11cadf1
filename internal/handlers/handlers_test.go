package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/config"
	"portfolio/internal/content"
	"portfolio/internal/db"
	"portfolio/internal/docstore"
	"portfolio/internal/gate"
	"portfolio/internal/retry"
	"portfolio/internal/summary"
)

func newTestHandler(t *testing.T) (*Handler, *docstore.Store) {
	t.Helper()
	dbc, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dbc.Close() })
	require.NoError(t, db.Migrate(dbc))
	store := docstore.New(dbc)

	summarizer := summary.NewClient("test-key", "http://127.0.0.1:0/v1", "gpt-4o-mini")
	h := New(
		store,
		content.NewAdapter(store, content.Blogs, content.NormalizeBlog, retry.None),
		content.NewAdapter(store, content.Comments, content.NormalizeComment, retry.None),
		content.NewAdapter(store, content.Links, content.NormalizeLink, retry.None),
		gate.NewStoreVerifier(store, retry.None),
		summarizer,
		&config.Site{Owner: "Ansh Tiwari"},
	)
	return h, store
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndSite(t *testing.T) {
	h, _ := newTestHandler(t)
	router := h.Routes()

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/site", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var site config.Site
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &site))
	assert.Equal(t, "Ansh Tiwari", site.Owner)
}

func TestListBlogsWithQueryAndCategory(t *testing.T) {
	h, store := newTestHandler(t)
	router := h.Routes()
	ctx := context.Background()

	_, err := store.Insert(ctx, "blogs", map[string]any{
		"title": "Shipping the shell", "category": "Tech", "date": "2025-02-01T00:00:00Z",
	})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "blogs", map[string]any{
		"title": "Territory devlog", "category": "Games", "date": "2025-03-01T00:00:00Z",
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/blogs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []content.BlogPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "Territory devlog", posts[0].Title) // newest first

	rec = doJSON(t, router, http.MethodGet, "/api/blogs?category=Games", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "Territory devlog", posts[0].Title)

	rec = doJSON(t, router, http.MethodGet, "/api/blogs?q=shell&category=Games", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.Empty(t, posts)
}

func TestBlogCategoriesRail(t *testing.T) {
	h, store := newTestHandler(t)
	router := h.Routes()
	ctx := context.Background()

	_, err := store.Insert(ctx, "blogs", map[string]any{"title": "a", "category": "Games", "date": "2025-01-02T00:00:00Z"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "blogs", map[string]any{"title": "b", "category": "Tech", "date": "2025-01-03T00:00:00Z"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/blogs/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rail []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rail))
	assert.Equal(t, []string{"all", "Tech", "Games"}, rail)
}

func TestSubmitCommentValidation(t *testing.T) {
	h, store := newTestHandler(t)
	router := h.Routes()

	rec := doJSON(t, router, http.MethodPost, "/api/comments", `{"fields":{"message":"  "}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Comment message cannot be empty.", resp["error"])

	docs, err := store.List(context.Background(), "comments", docstore.FieldCreatedAt)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSubmitCommentCreated(t *testing.T) {
	h, store := newTestHandler(t)
	router := h.Routes()

	rec := doJSON(t, router, http.MethodPost, "/api/comments",
		`{"fields":{"name":"Kabir","message":"great work","project":"rizzervit"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["id"])

	fields, err := store.GetDocument(context.Background(), "comments/"+resp["id"])
	require.NoError(t, err)
	assert.Equal(t, "great work", fields["message"])
}

func TestSubmitBlogGate(t *testing.T) {
	h, store := newTestHandler(t)
	router := h.Routes()
	ctx := context.Background()

	body := `{"fields":{"title":"T","author":"A","content":"body text"},"secret":"wrong"}`

	// no secret document configured yet
	rec := doJSON(t, router, http.MethodPost, "/api/blogs", body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Password configuration error. Please contact admin.", resp["error"])

	require.NoError(t, store.Put(ctx, "secrets", "blog_password", map[string]any{"value": "letmein"}))

	rec = doJSON(t, router, http.MethodPost, "/api/blogs", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Good try noob", resp["error"])

	docs, err := store.List(ctx, "blogs", "date")
	require.NoError(t, err)
	assert.Empty(t, docs)

	rec = doJSON(t, router, http.MethodPost, "/api/blogs",
		`{"fields":{"title":"T","author":"A","content":"body text"},"secret":"letmein"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	docs, err = store.List(ctx, "blogs", "date")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestSubmitLinkWithTagsAndLanguages(t *testing.T) {
	h, store := newTestHandler(t)
	router := h.Routes()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "secrets", "links_password", map[string]any{"value": "open"}))

	rec := doJSON(t, router, http.MethodPost, "/api/links",
		`{"fields":{"title":"Shell","description":"a shell","websiteUrl":"https://example.com","tags":["Game","Education"],"languages":"C, Go"},"secret":"open"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	fields, err := store.GetDocument(ctx, "links/"+resp["id"])
	require.NoError(t, err)
	assert.Equal(t, []any{"Game", "Education"}, fields["tags"])
	assert.Equal(t, []any{"C", "Go"}, fields["languages"])
}

func TestSubmitRejectsBadBody(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h.Routes(), http.MethodPost, "/api/comments", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarizeEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Short summary."}}]}`)
	}))
	defer ts.Close()

	h, _ := newTestHandler(t)
	h.summarizer = summary.NewClient("test-key", ts.URL+"/v1", "gpt-4o-mini")
	router := h.Routes()

	rec := doJSON(t, router, http.MethodPost, "/api/summarize", `{"title":"T","content":"long post body"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Short summary.", resp["summary"])

	rec = doJSON(t, router, http.MethodPost, "/api/summarize", `{"title":"T","content":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLiveCommentsStreamsSnapshots(t *testing.T) {
	h, store := newTestHandler(t)
	router := h.Routes()
	ctx := context.Background()

	_, err := store.Insert(ctx, "comments", map[string]any{"message": "already here"})
	require.NoError(t, err)

	reqCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/comments/live", nil).WithContext(reqCtx)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "data: "), "body: %q", body)
	assert.Contains(t, body, "already here")
}
