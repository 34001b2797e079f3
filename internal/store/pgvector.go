package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"go.uber.org/zap"
)

// PGVectorStore keeps course metadata and embedded content chunks in
// Postgres and serves ranked similarity search via pgvector.
type PGVectorStore struct {
	pool       *pgxpool.Pool
	embedder   Embedder
	maxResults int
	dimensions int
	logger     *zap.Logger
}

// NewPool opens a pgx pool with pgvector types registered on every connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// NewPGVectorStore constructs a store. maxResults caps every search;
// dimensions must match the embedder's output width.
func NewPGVectorStore(pool *pgxpool.Pool, embedder Embedder, maxResults, dimensions int, logger *zap.Logger) *PGVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PGVectorStore{pool: pool, embedder: embedder, maxResults: maxResults, dimensions: dimensions, logger: logger}
}

// EnsureSchema creates the extension and tables if they do not exist.
func (s *PGVectorStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS courses (
			title TEXT PRIMARY KEY,
			link TEXT,
			instructor TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS lessons (
			course_title TEXT NOT NULL REFERENCES courses(title) ON DELETE CASCADE,
			lesson_number INT NOT NULL,
			title TEXT,
			link TEXT,
			PRIMARY KEY (course_title, lesson_number)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id BIGSERIAL PRIMARY KEY,
			course_title TEXT NOT NULL,
			lesson_number INT,
			content TEXT NOT NULL,
			embedding vector(%d)
		)`, s.dimensions),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// AddCourse upserts course metadata.
func (s *PGVectorStore) AddCourse(ctx context.Context, title, link, instructor string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO courses (title, link, instructor) VALUES ($1, $2, $3)
		 ON CONFLICT (title) DO UPDATE SET link = EXCLUDED.link, instructor = EXCLUDED.instructor`,
		title, link, instructor)
	return err
}

// AddLesson upserts a lesson row for a course.
func (s *PGVectorStore) AddLesson(ctx context.Context, courseTitle string, lessonNumber int, title, link string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lessons (course_title, lesson_number, title, link) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (course_title, lesson_number) DO UPDATE SET title = EXCLUDED.title, link = EXCLUDED.link`,
		courseTitle, lessonNumber, title, link)
	return err
}

// AddChunk embeds content and stores it. lessonNumber may be nil for
// course-level material.
func (s *PGVectorStore) AddChunk(ctx context.Context, courseTitle string, lessonNumber *int, content string) error {
	vec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed chunk: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO chunks (course_title, lesson_number, content, embedding) VALUES ($1, $2, $3, $4)`,
		courseTitle, lessonNumber, content, pgvector.NewVector(vec))
	return err
}

// Search embeds the query and returns the closest chunks, optionally
// restricted to a resolved course name and/or lesson number. Failures are
// reported inside SearchResults, never as a Go error.
func (s *PGVectorStore) Search(ctx context.Context, query, courseName string, lessonNumber *int) SearchResults {
	resolved := ""
	if courseName != "" {
		title, err := s.resolveCourseName(ctx, courseName)
		if err != nil {
			s.logger.Debug("course resolution failed", zap.String("course", courseName), zap.Error(err))
			return ErrorResults(fmt.Sprintf("No course found matching '%s'", courseName))
		}
		resolved = title
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return ErrorResults(fmt.Sprintf("Search error: %v", err))
	}

	var (
		where []string
		args  []any
	)
	args = append(args, pgvector.NewVector(vec))
	if resolved != "" {
		args = append(args, resolved)
		where = append(where, fmt.Sprintf("course_title = $%d", len(args)))
	}
	if lessonNumber != nil {
		args = append(args, *lessonNumber)
		where = append(where, fmt.Sprintf("lesson_number = $%d", len(args)))
	}
	sql := `SELECT content, course_title, lesson_number, embedding <=> $1 FROM chunks`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT %d", s.maxResults)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return ErrorResults(fmt.Sprintf("Search error: %v", err))
	}
	defer rows.Close()

	var results SearchResults
	for rows.Next() {
		var (
			content  string
			title    string
			lesson   *int
			distance float64
		)
		if err := rows.Scan(&content, &title, &lesson, &distance); err != nil {
			return ErrorResults(fmt.Sprintf("Search error: %v", err))
		}
		meta := map[string]any{MetaCourseTitle: title}
		if lesson != nil {
			meta[MetaLessonNumber] = *lesson
		}
		results.Documents = append(results.Documents, content)
		results.Metadata = append(results.Metadata, meta)
		results.Distances = append(results.Distances, distance)
	}
	if err := rows.Err(); err != nil {
		return ErrorResults(fmt.Sprintf("Search error: %v", err))
	}
	return results
}

// GetLessonLink returns the deep link for a lesson, or "" when unknown.
func (s *PGVectorStore) GetLessonLink(ctx context.Context, courseTitle string, lessonNumber int) string {
	var link *string
	err := s.pool.QueryRow(ctx,
		`SELECT link FROM lessons WHERE course_title = $1 AND lesson_number = $2`,
		courseTitle, lessonNumber).Scan(&link)
	if err != nil || link == nil {
		return ""
	}
	return *link
}

// resolveCourseName maps a partial course name to a stored title: exact
// match first, then a case-insensitive substring match.
func (s *PGVectorStore) resolveCourseName(ctx context.Context, name string) (string, error) {
	var title string
	err := s.pool.QueryRow(ctx, `SELECT title FROM courses WHERE title = $1`, name).Scan(&title)
	if err == nil {
		return title, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	err = s.pool.QueryRow(ctx,
		`SELECT title FROM courses WHERE title ILIKE '%' || $1 || '%' ORDER BY title LIMIT 1`,
		name).Scan(&title)
	if err != nil {
		return "", err
	}
	return title, nil
}
