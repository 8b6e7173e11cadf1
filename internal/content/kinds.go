package content

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"portfolio/internal/docstore"
)

// Enumerations shared with the composer UI. Tags are multi-select; the
// others are single-choice.
var (
	BlogCategories   = []string{"Tech", "Games", "Projects", "Life"}
	CommentProjects  = []string{"fam app", "uniman", "territory control games", "rizzervit", "unix shell", "other"}
	LinkProjectTypes = []string{"Group Project", "Solo Project", "Assignment"}
	LinkTags         = []string{"AI/ML", "Education", "Vibe Coding", "Game", "RealWorld", "Embedded systems"}
)

const (
	maxCommentLen     = 500
	maxBlogContentLen = 20000
)

// ValidationError is a recoverable, field-level submission failure. The
// composer keeps its state and shows the message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Kind describes one content kind: where its documents live, how they are
// ordered, whether submissions are gated behind the shared secret, and how a
// composer form is validated and turned into a persisted field set. The
// three kinds differ only in this descriptor.
type Kind struct {
	Name          string
	OrderField    string
	Gated         bool
	SecretDoc     string
	SelectorParam string
	FailedSaveMsg string
	Defaults      func() url.Values
	Validate      func(url.Values) error
	Build         func(url.Values, time.Time) map[string]any
}

var Blogs = Kind{
	Name:          "blogs",
	OrderField:    "date",
	Gated:         true,
	SecretDoc:     "blog_password",
	SelectorParam: "category",
	FailedSaveMsg: "Failed to publish post. Please try again.",
	Defaults:      func() url.Values { return url.Values{} },
	Validate:      validateBlog,
	Build:         buildBlog,
}

var Comments = Kind{
	Name:          "comments",
	OrderField:    docstore.FieldCreatedAt,
	Gated:         false,
	SelectorParam: "project",
	FailedSaveMsg: "Failed to post comment. Please try again.",
	Defaults: func() url.Values {
		return url.Values{"name": {"Anonymous"}, "project": {"fam app"}}
	},
	Validate: validateComment,
	Build:    buildComment,
}

var Links = Kind{
	Name:          "links",
	OrderField:    docstore.FieldCreatedAt,
	Gated:         true,
	SecretDoc:     "links_password",
	SelectorParam: "tag",
	FailedSaveMsg: "Failed to upload link. Please try again.",
	Defaults: func() url.Values {
		return url.Values{"projectType": {"Solo Project"}}
	},
	Validate: validateLink,
	Build:    buildLink,
}

func validateBlog(v url.Values) error {
	if strings.TrimSpace(v.Get("title")) == "" ||
		strings.TrimSpace(v.Get("author")) == "" ||
		strings.TrimSpace(v.Get("content")) == "" {
		return &ValidationError{Message: "Please fill in all required fields"}
	}
	if len(v.Get("content")) > maxBlogContentLen {
		return &ValidationError{Message: "Post content is too long."}
	}
	if c := v.Get("category"); c != "" && !slices.Contains(BlogCategories, c) {
		return &ValidationError{Message: "Please choose a valid category."}
	}
	return nil
}

func buildBlog(v url.Values, now time.Time) map[string]any {
	body := strings.TrimSpace(v.Get("content"))
	date := strings.TrimSpace(v.Get("date"))
	if date == "" {
		date = now.UTC().Format(time.RFC3339)
	}
	readTime, _ := strconv.Atoi(v.Get("readTime"))
	if readTime <= 0 {
		readTime = estimateReadTime(body)
	}
	fields := map[string]any{
		"title":    strings.TrimSpace(v.Get("title")),
		"subtitle": strings.TrimSpace(v.Get("subtitle")),
		"content":  body,
		"author":   strings.TrimSpace(v.Get("author")),
		"date":     date,
		"readTime": readTime,
	}
	if img := strings.TrimSpace(v.Get("image")); img != "" {
		fields["image"] = img
	}
	if cat := v.Get("category"); cat != "" {
		fields["category"] = cat
	}
	return fields
}

// estimateReadTime assumes 200 words per minute, minimum one minute.
func estimateReadTime(body string) int {
	minutes := (len(strings.Fields(body)) + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func validateComment(v url.Values) error {
	msg := strings.TrimSpace(v.Get("message"))
	if msg == "" {
		return &ValidationError{Message: "Comment message cannot be empty."}
	}
	if len(msg) > maxCommentLen {
		return &ValidationError{Message: "Comment message is too long."}
	}
	if p := v.Get("project"); p != "" && !slices.Contains(CommentProjects, p) {
		return &ValidationError{Message: "Unknown project."}
	}
	return nil
}

func buildComment(v url.Values, _ time.Time) map[string]any {
	name := strings.TrimSpace(v.Get("name"))
	if name == "" {
		name = "Anonymous"
	}
	project := v.Get("project")
	if project == "" {
		project = "fam app"
	}
	return map[string]any{
		"name":    name,
		"project": project,
		"message": strings.TrimSpace(v.Get("message")),
	}
}

func validateLink(v url.Values) error {
	if strings.TrimSpace(v.Get("title")) == "" ||
		strings.TrimSpace(v.Get("description")) == "" ||
		strings.TrimSpace(v.Get("websiteUrl")) == "" {
		return &ValidationError{Message: "Please fill in all required fields"}
	}
	if pt := v.Get("projectType"); pt != "" && !slices.Contains(LinkProjectTypes, pt) {
		return &ValidationError{Message: "Unknown project type."}
	}
	for _, tag := range v["tags"] {
		if !slices.Contains(LinkTags, tag) {
			return &ValidationError{Message: "Unknown tag: " + tag}
		}
	}
	return nil
}

func buildLink(v url.Values, now time.Time) map[string]any {
	languages := []string{}
	for _, tok := range strings.Split(v.Get("languages"), ",") {
		if t := strings.TrimSpace(tok); t != "" {
			languages = append(languages, t)
		}
	}
	projectType := v.Get("projectType")
	if projectType == "" {
		projectType = "Solo Project"
	}
	tags := v["tags"]
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"title":       strings.TrimSpace(v.Get("title")),
		"description": strings.TrimSpace(v.Get("description")),
		"imageUrl":    strings.TrimSpace(v.Get("imageUrl")),
		"websiteUrl":  strings.TrimSpace(v.Get("websiteUrl")),
		"projectType": projectType,
		"tags":        tags,
		"languages":   languages,
		"date":        now.Format("1/2/2006"),
	}
}
