package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates all entity repositories behind a single handle.
type Repository interface {
	// Test domain
	Test() TestRepository
	TestQuestion() TestQuestionRepository

	// Question domain
	Question() QuestionRepository

	// Attempt domain
	Attempt() AttemptRepository
	Answer() AnswerRepository

	// People domain
	User() UserRepository
	Student() StudentRepository
	Staff() StaffRepository

	// Organization domain
	Batch() BatchRepository
	Course() CourseRepository
	Subject() SubjectRepository

	// Supporting domain
	Notification() NotificationRepository
	Video() VideoRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err is a missing-record error from the store.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
