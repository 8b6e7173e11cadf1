package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"portfolio/internal/config"
	"portfolio/internal/content"
	"portfolio/internal/docstore"
	"portfolio/internal/gate"
	"portfolio/internal/summary"
	"portfolio/internal/workflow"
)

type Handler struct {
	store      *docstore.Store
	blogs      *content.Adapter[content.BlogPost]
	comments   *content.Adapter[content.Comment]
	links      *content.Adapter[content.ProjectLink]
	verifier   gate.Verifier
	summarizer *summary.Client
	site       *config.Site
}

func New(
	store *docstore.Store,
	blogs *content.Adapter[content.BlogPost],
	comments *content.Adapter[content.Comment],
	links *content.Adapter[content.ProjectLink],
	verifier gate.Verifier,
	summarizer *summary.Client,
	site *config.Site,
) *Handler {
	if site == nil {
		site = &config.Site{}
	}
	return &Handler{
		store:      store,
		blogs:      blogs,
		comments:   comments,
		links:      links,
		verifier:   verifier,
		summarizer: summarizer,
		site:       site,
	}
}

func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/site", h.Site).Methods(http.MethodGet)
	r.HandleFunc("/api/summarize", h.Summarize).Methods(http.MethodPost)

	r.HandleFunc("/api/blogs", h.ListBlogs).Methods(http.MethodGet)
	r.HandleFunc("/api/blogs", h.SubmitBlog).Methods(http.MethodPost)
	r.HandleFunc("/api/blogs/live", h.LiveBlogs).Methods(http.MethodGet)
	r.HandleFunc("/api/blogs/categories", h.BlogCategories).Methods(http.MethodGet)

	r.HandleFunc("/api/comments", h.ListComments).Methods(http.MethodGet)
	r.HandleFunc("/api/comments", h.SubmitComment).Methods(http.MethodPost)
	r.HandleFunc("/api/comments/live", h.LiveComments).Methods(http.MethodGet)

	r.HandleFunc("/api/links", h.ListLinks).Methods(http.MethodGet)
	r.HandleFunc("/api/links", h.SubmitLink).Methods(http.MethodPost)
	r.HandleFunc("/api/links/live", h.LiveLinks).Methods(http.MethodGet)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Site(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.site)
}

func (h *Handler) ListBlogs(w http.ResponseWriter, r *http.Request)    { listRecords(h.blogs, w, r) }
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) { listRecords(h.comments, w, r) }
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request)    { listRecords(h.links, w, r) }

func (h *Handler) LiveBlogs(w http.ResponseWriter, r *http.Request)    { liveRecords(h.blogs, w, r) }
func (h *Handler) LiveComments(w http.ResponseWriter, r *http.Request) { liveRecords(h.comments, w, r) }
func (h *Handler) LiveLinks(w http.ResponseWriter, r *http.Request)    { liveRecords(h.links, w, r) }

func (h *Handler) SubmitBlog(w http.ResponseWriter, r *http.Request) {
	h.submitRecord(content.Blogs, w, r)
}

func (h *Handler) SubmitComment(w http.ResponseWriter, r *http.Request) {
	h.submitRecord(content.Comments, w, r)
}

func (h *Handler) SubmitLink(w http.ResponseWriter, r *http.Request) {
	h.submitRecord(content.Links, w, r)
}

// BlogCategories serves the category rail: "all" plus every category present
// in the current blog set, in record order.
func (h *Handler) BlogCategories(w http.ResponseWriter, r *http.Request) {
	records, err := h.blogs.Fetch(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, loadFailedMsg(h.blogs.Kind()))
		return
	}
	writeJSON(w, http.StatusOK, content.CategoryRail(records))
}

func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	text, err := h.summarizer.Summarize(r.Context(), req.Title, req.Content)
	if errors.Is(err, summary.ErrContentRequired) {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	} else if err != nil {
		writeError(w, http.StatusBadGateway, summary.FailedMessage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": text})
}

func listRecords[T content.Record](a *content.Adapter[T], w http.ResponseWriter, r *http.Request) {
	records, err := a.Fetch(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, loadFailedMsg(a.Kind()))
		return
	}
	q := r.URL.Query().Get("q")
	selector := r.URL.Query().Get(a.Kind().SelectorParam)
	writeJSON(w, http.StatusOK, content.Visible(records, q, selector))
}

// liveRecords streams the full record set as server-sent events: one data
// event per store change, each carrying the complete current list. The
// subscription is released when the client goes away, unconditionally.
func liveRecords[T content.Record](a *content.Adapter[T], w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	stream, err := a.Stream(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, loadFailedMsg(a.Kind()))
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case set, ok := <-stream.C:
			if !ok {
				return
			}
			if set.Err != nil {
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", loadFailedMsg(a.Kind()))
				flusher.Flush()
				return
			}
			data, err := json.Marshal(set.Records)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

type submitRequest struct {
	Fields map[string]any `json:"fields"`
	Secret string         `json:"secret"`
}

// submitRecord drives one full submission: open composer, set fields,
// validate, pass the gate when the kind requires it, persist. The workflow's
// error taxonomy maps onto HTTP statuses.
func (h *Handler) submitRecord(kind content.Kind, w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	c := workflow.New(kind, h.store, h.verifier)
	if err := c.Open(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	c.SetForm(formValues(req.Fields))

	err := c.Submit(ctx)
	if err == nil && c.State() == workflow.StateGatePending {
		c.SetSecret(req.Secret)
		err = c.VerifySecret(ctx)
	}

	var verr *content.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"id": c.LastID()})
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, gate.ErrSecretMismatch):
		writeError(w, http.StatusUnauthorized, workflow.MsgWrongSecret)
	case errors.Is(err, gate.ErrSecretMissing):
		writeError(w, http.StatusServiceUnavailable, workflow.MsgSecretUnconfigured)
	case errors.Is(err, workflow.ErrPersist):
		writeError(w, http.StatusBadGateway, kind.FailedSaveMsg)
	default:
		writeError(w, http.StatusBadGateway, workflow.MsgVerifyFailed)
	}
}

// formValues flattens a JSON field map into form values. String lists (the
// links tag multi-select) become repeated values; scalars are stringified.
func formValues(fields map[string]any) url.Values {
	values := url.Values{}
	for key, v := range fields {
		switch t := v.(type) {
		case string:
			values.Set(key, t)
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					values.Add(key, s)
				}
			}
		case nil:
			// absent
		default:
			values.Set(key, fmt.Sprint(t))
		}
	}
	return values
}

func loadFailedMsg(kind content.Kind) string {
	return "Failed to load " + kind.Name + ". Please try again later."
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
