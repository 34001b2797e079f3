package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type memoryChunk struct {
	courseTitle  string
	lessonNumber *int
	content      string
}

// MemoryStore is a dependency-free store with naive lexical scoring. It backs
// mock mode and tests where a database is unavailable.
type MemoryStore struct {
	mu         sync.RWMutex
	maxResults int
	courses    map[string]string         // title -> course link
	lessons    map[string]map[int]string // title -> lesson number -> link
	chunks     []memoryChunk
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(maxResults int) *MemoryStore {
	return &MemoryStore{
		maxResults: maxResults,
		courses:    map[string]string{},
		lessons:    map[string]map[int]string{},
	}
}

// AddCourse registers course metadata.
func (s *MemoryStore) AddCourse(title, link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[title] = link
}

// AddLesson registers a lesson link for a course.
func (s *MemoryStore) AddLesson(courseTitle string, lessonNumber int, link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lessons[courseTitle] == nil {
		s.lessons[courseTitle] = map[int]string{}
	}
	s.lessons[courseTitle][lessonNumber] = link
}

// AddChunk stores a content chunk. lessonNumber may be nil.
func (s *MemoryStore) AddChunk(courseTitle string, lessonNumber *int, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, memoryChunk{courseTitle: courseTitle, lessonNumber: lessonNumber, content: content})
}

func (s *MemoryStore) Search(ctx context.Context, query, courseName string, lessonNumber *int) SearchResults {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resolved := ""
	if courseName != "" {
		title, ok := s.resolveCourseName(courseName)
		if !ok {
			return ErrorResults(fmt.Sprintf("No course found matching '%s'", courseName))
		}
		resolved = title
	}

	terms := strings.Fields(strings.ToLower(query))
	type scored struct {
		chunk memoryChunk
		score int
	}
	var candidates []scored
	for _, c := range s.chunks {
		if resolved != "" && c.courseTitle != resolved {
			continue
		}
		if lessonNumber != nil && (c.lessonNumber == nil || *c.lessonNumber != *lessonNumber) {
			continue
		}
		lower := strings.ToLower(c.content)
		score := 0
		for _, term := range terms {
			if strings.Contains(lower, term) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{chunk: c, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > s.maxResults {
		candidates = candidates[:s.maxResults]
	}

	var results SearchResults
	for _, cand := range candidates {
		meta := map[string]any{MetaCourseTitle: cand.chunk.courseTitle}
		if cand.chunk.lessonNumber != nil {
			meta[MetaLessonNumber] = *cand.chunk.lessonNumber
		}
		results.Documents = append(results.Documents, cand.chunk.content)
		results.Metadata = append(results.Metadata, meta)
		results.Distances = append(results.Distances, 1-float64(cand.score)/float64(max(len(terms), 1)))
	}
	return results
}

func (s *MemoryStore) GetLessonLink(ctx context.Context, courseTitle string, lessonNumber int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lessons[courseTitle][lessonNumber]
}

func (s *MemoryStore) resolveCourseName(name string) (string, bool) {
	if _, ok := s.courses[name]; ok {
		return name, true
	}
	lower := strings.ToLower(name)
	titles := make([]string, 0, len(s.courses))
	for title := range s.courses {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		if strings.Contains(strings.ToLower(title), lower) {
			return title, true
		}
	}
	return "", false
}
