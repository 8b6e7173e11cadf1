package content

import (
	"strings"
	"time"

	"portfolio/internal/docstore"
)

// BlogPost is a published blog entry. Image and Category are optional;
// ReadTime is an estimate in minutes.
type BlogPost struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
	ReadTime int    `json:"readTime"`
}

// Comment is visitor feedback attached to one of the showcased projects.
type Comment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Project   string    `json:"project"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ProjectLink is an external project entry with type, tags and the languages
// it was built in.
type ProjectLink struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	WebsiteURL  string   `json:"websiteUrl"`
	ProjectType string   `json:"projectType"`
	Tags        []string `json:"tags"`
	Languages   []string `json:"languages"`
	Date        string   `json:"date"`
}

// NormalizeBlog turns a raw document into a BlogPost, filling absent fields
// with their documented defaults. Pure: the same document always yields the
// same record.
func NormalizeBlog(doc docstore.Document) BlogPost {
	f := doc.Fields
	return BlogPost{
		ID:       doc.ID,
		Title:    str(f, "title", "Untitled"),
		Subtitle: str(f, "subtitle", ""),
		Content:  str(f, "content", ""),
		Author:   str(f, "author", "Unknown"),
		Date:     str(f, "date", doc.CreatedAt.UTC().Format(time.RFC3339)),
		Image:    str(f, "image", ""),
		Category: str(f, "category", ""),
		ReadTime: positive(f, "readTime", 3),
	}
}

// NormalizeComment turns a raw document into a Comment. Blank names read as
// "Anonymous" and blank projects as "other"; the timestamp is the store's
// creation time.
func NormalizeComment(doc docstore.Document) Comment {
	f := doc.Fields
	return Comment{
		ID:        doc.ID,
		Name:      strOr(f, "name", "Anonymous"),
		Project:   strOr(f, "project", "other"),
		Message:   str(f, "message", ""),
		Timestamp: doc.CreatedAt,
	}
}

// NormalizeLink turns a raw document into a ProjectLink with defaults filled.
func NormalizeLink(doc docstore.Document) ProjectLink {
	f := doc.Fields
	return ProjectLink{
		ID:          doc.ID,
		Title:       str(f, "title", "Untitled"),
		Description: str(f, "description", ""),
		ImageURL:    str(f, "imageUrl", ""),
		WebsiteURL:  str(f, "websiteUrl", ""),
		ProjectType: str(f, "projectType", "Solo Project"),
		Tags:        strList(f, "tags"),
		Languages:   strList(f, "languages"),
		Date:        str(f, "date", doc.CreatedAt.UTC().Format(time.RFC3339)),
	}
}

func (b BlogPost) SearchText() []string {
	return []string{b.Title, b.Subtitle, b.Author}
}

func (b BlogPost) CategoryValues() []string {
	if b.Category == "" {
		return nil
	}
	return []string{b.Category}
}

func (c Comment) SearchText() []string {
	return []string{c.Message, c.Name}
}

func (c Comment) CategoryValues() []string {
	return []string{c.Project}
}

func (l ProjectLink) SearchText() []string {
	return []string{l.Title, l.Description, strings.Join(l.Languages, " ")}
}

func (l ProjectLink) CategoryValues() []string {
	return l.Tags
}

// str returns the field as a string, or def when the key is absent or not a
// string. An empty string that is actually stored counts as present.
func str(f map[string]any, key, def string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return def
}

// strOr is like str but also treats an empty stored string as absent.
func strOr(f map[string]any, key, def string) string {
	if v, ok := f[key].(string); ok && v != "" {
		return v
	}
	return def
}

// positive returns the field as a positive integer, or def otherwise.
// Decoded JSON numbers arrive as float64.
func positive(f map[string]any, key string, def int) int {
	if v, ok := f[key].(float64); ok && v > 0 {
		return int(v)
	}
	return def
}

func strList(f map[string]any, key string) []string {
	out := []string{}
	if vs, ok := f[key].([]any); ok {
		for _, v := range vs {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
