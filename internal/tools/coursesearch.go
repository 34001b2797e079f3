package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/llm"
)

type searchInput struct {
	Query        string `json:"query"`
	CourseName   string `json:"course_name"`
	LessonNumber *int   `json:"lesson_number"`
}

// CourseSearchTool retrieves course-content chunks from the vector store and
// formats them into a single text block for the model. Citations for the most
// recent call are kept until the registry collects and resets them.
type CourseSearchTool struct {
	store Store

	mu          sync.Mutex
	lastSources []Source
}

// NewCourseSearchTool constructs the tool over a vector store.
func NewCourseSearchTool(s Store) *CourseSearchTool {
	return &CourseSearchTool{store: s}
}

func (t *CourseSearchTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: llm.InputSchema{
			Type: "object",
			Properties: map[string]llm.Property{
				"query":         {Type: "string", Description: "What to search for in the course content"},
				"course_name":   {Type: "string", Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')"},
				"lesson_number": {Type: "integer", Description: "Specific lesson number to search within (e.g. 1, 2, 3)"},
			},
			Required: []string{"query"},
		},
	}
}

// Execute runs a filtered search and formats the results. Store failures are
// returned as text for the model and leave tracked sources untouched.
func (t *CourseSearchTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var args searchInput
	if err := json.Unmarshal(input, &args); err != nil {
		return "", fmt.Errorf("invalid search input: %w", err)
	}

	results := t.store.Search(ctx, args.Query, args.CourseName, args.LessonNumber)
	if results.Err != "" {
		return results.Err, nil
	}
	if results.IsEmpty() {
		t.setSources(nil)
		msg := "No relevant content found"
		if args.CourseName != "" {
			msg += fmt.Sprintf(" in course '%s'", args.CourseName)
		}
		if args.LessonNumber != nil {
			msg += fmt.Sprintf(" in lesson %d", *args.LessonNumber)
		}
		return msg + ".", nil
	}

	blocks := make([]string, 0, len(results.Documents))
	sources := make([]Source, 0, len(results.Documents))
	for i, doc := range results.Documents {
		var meta map[string]any
		if i < len(results.Metadata) {
			meta = results.Metadata[i]
		}
		title, _ := meta["course_title"].(string)
		if title == "" {
			title = "unknown"
		}
		lesson, hasLesson := lessonNumber(meta)

		header := title
		source := Source{Text: title}
		if hasLesson {
			header = fmt.Sprintf("%s - Lesson %d", title, lesson)
			source.Text = header
			source.URL = t.store.GetLessonLink(ctx, title, lesson)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", header, doc))
		sources = append(sources, source)
	}
	t.setSources(sources)
	return strings.Join(blocks, "\n\n"), nil
}

// LastSources returns the citations from the most recent successful call.
func (t *CourseSearchTool) LastSources() []Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Source, len(t.lastSources))
	copy(out, t.lastSources)
	return out
}

// ResetSources clears the citation buffer.
func (t *CourseSearchTool) ResetSources() {
	t.setSources(nil)
}

func (t *CourseSearchTool) setSources(sources []Source) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSources = sources
}

// lessonNumber extracts a lesson number from metadata, tolerating the
// numeric widening a JSON round trip introduces.
func lessonNumber(meta map[string]any) (int, bool) {
	switch v := meta["lesson_number"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
