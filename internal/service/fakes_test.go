package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/noah-isme/gpa-transcript-api/internal/models"
	appErrors "github.com/noah-isme/gpa-transcript-api/pkg/errors"
)

type fakeCourseRepo struct {
	mu        sync.Mutex
	courses   []models.Course
	listErr   error
	createErr error
	deleteErr error
	listCalls int
	nextID    int
}

func (f *fakeCourseRepo) ListByUser(ctx context.Context, userID string) ([]models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Course, 0)
	for _, c := range f.courses {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	course.ID = "c" + strconv.Itoa(f.nextID)
	f.courses = append(f.courses, *course)
	return nil
}

func (f *fakeCourseRepo) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, c := range f.courses {
		if c.ID == id && c.UserID == userID {
			f.courses = append(f.courses[:i], f.courses[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// memoryCache stores JSON payloads like the Redis repository does.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func intPtr(v int) *int {
	return &v
}

func draft(code, semester, session string, ch, score int) models.CourseDraft {
	return models.CourseDraft{
		CourseCode:  code,
		CourseTitle: code + " title",
		Semester:    semester,
		Session:     session,
		Level:       "100l",
		CreditHours: ch,
		Score:       intPtr(score),
	}
}
