package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	students map[string]Student // keyed by admission number
}

// NewMemoryRepository builds an in-memory student store for testing and
// development. It enforces the same uniqueness rules as the Postgres schema.
func NewMemoryRepository() Repository {
	return &memoryRepository{students: make(map[string]Student)}
}

func (r *memoryRepository) Create(_ context.Context, student Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.students[student.AdmissionNumber]; exists {
		return ErrDuplicateAdmission
	}
	if student.Email != "" {
		for _, existing := range r.students {
			if existing.Email == student.Email {
				return ErrDuplicateEmail
			}
		}
	}
	r.students[student.AdmissionNumber] = student
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, student := range r.students {
		if student.ID == id {
			return student, nil
		}
	}
	return Student{}, ErrNotFound
}

func (r *memoryRepository) FindByAdmissionNumber(_ context.Context, admissionNumber string) (Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.students[admissionNumber]
	if !ok {
		return Student{}, ErrNotFound
	}
	return student, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if email == "" {
		return Student{}, ErrNotFound
	}
	for _, student := range r.students {
		if student.Email == email {
			return student, nil
		}
	}
	return Student{}, ErrNotFound
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for admission, student := range r.students {
		if student.ID == id {
			student.PasswordHash = hash
			r.students[admission] = student
			return nil
		}
	}
	return ErrNotFound
}
