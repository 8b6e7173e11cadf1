package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"portfolio/internal/docstore"
)

var created = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeBlogDefaults(t *testing.T) {
	doc := docstore.Document{ID: "b1", Fields: map[string]any{}, CreatedAt: created}
	got := NormalizeBlog(doc)

	assert.Equal(t, BlogPost{
		ID:       "b1",
		Title:    "Untitled",
		Author:   "Unknown",
		Date:     "2025-06-01T12:00:00Z",
		ReadTime: 3,
	}, got)
}

func TestNormalizeBlogKeepsStoredValues(t *testing.T) {
	doc := docstore.Document{
		ID: "b2",
		Fields: map[string]any{
			"title":    "Hello",
			"subtitle": "", // present but empty stays empty
			"author":   "Ansh",
			"date":     "2025-01-05T00:00:00Z",
			"category": "Games",
			"readTime": float64(7),
			"image":    "https://example.com/x.png",
		},
		CreatedAt: created,
	}
	got := NormalizeBlog(doc)

	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "", got.Subtitle)
	assert.Equal(t, "Ansh", got.Author)
	assert.Equal(t, "Games", got.Category)
	assert.Equal(t, 7, got.ReadTime)
	assert.Equal(t, "https://example.com/x.png", got.Image)
}

func TestNormalizeBlogRejectsNonPositiveReadTime(t *testing.T) {
	doc := docstore.Document{ID: "b3", Fields: map[string]any{"readTime": float64(0)}, CreatedAt: created}
	assert.Equal(t, 3, NormalizeBlog(doc).ReadTime)

	doc.Fields["readTime"] = "fast"
	assert.Equal(t, 3, NormalizeBlog(doc).ReadTime)
}

func TestNormalizeCommentDefaults(t *testing.T) {
	tests := []struct {
		name        string
		fields      map[string]any
		wantName    string
		wantProject string
	}{
		{"absent fields", map[string]any{}, "Anonymous", "other"},
		{"empty strings also default", map[string]any{"name": "", "project": ""}, "Anonymous", "other"},
		{"stored values kept", map[string]any{"name": "Kabir", "project": "uniman"}, "Kabir", "uniman"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeComment(docstore.Document{ID: "c", Fields: tt.fields, CreatedAt: created})
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantProject, got.Project)
			assert.Equal(t, created, got.Timestamp)
		})
	}
}

func TestNormalizeLinkDefaults(t *testing.T) {
	got := NormalizeLink(docstore.Document{ID: "l1", Fields: map[string]any{}, CreatedAt: created})

	assert.Equal(t, "Untitled", got.Title)
	assert.Equal(t, "Solo Project", got.ProjectType)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, []string{}, got.Languages)

	got = NormalizeLink(docstore.Document{
		ID: "l2",
		Fields: map[string]any{
			"tags":      []any{"Game", "AI/ML"},
			"languages": []any{"Go", "Rust"},
		},
		CreatedAt: created,
	})
	assert.Equal(t, []string{"Game", "AI/ML"}, got.Tags)
	assert.Equal(t, []string{"Go", "Rust"}, got.Languages)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	doc := docstore.Document{
		ID:        "x",
		Fields:    map[string]any{"title": "Hello", "readTime": float64(4)},
		CreatedAt: created,
	}
	assert.Equal(t, NormalizeBlog(doc), NormalizeBlog(doc))

	cdoc := docstore.Document{ID: "y", Fields: map[string]any{"message": "hi"}, CreatedAt: created}
	assert.Equal(t, NormalizeComment(cdoc), NormalizeComment(cdoc))

	ldoc := docstore.Document{ID: "z", Fields: map[string]any{"languages": []any{"C"}}, CreatedAt: created}
	assert.Equal(t, NormalizeLink(ldoc), NormalizeLink(ldoc))
}
