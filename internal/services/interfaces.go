package services

import (
	"context"
	"io"
	"time"

	"gorm.io/datatypes"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/validator"
)

// ===== REQUEST / RESPONSE DTOs =====

type CreateTestRequest = validator.TestCreateRequest
type UpdateTestRequest = validator.TestUpdateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type CreateStudentRequest = validator.StudentCreateRequest
type UpdateStudentRequest = validator.StudentUpdateRequest
type CreateStaffRequest = validator.StaffCreateRequest
type UpdateStaffRequest = validator.StaffUpdateRequest
type CreateVideoRequest = validator.VideoCreateRequest
type UpdateVideoRequest = validator.VideoUpdateRequest

type TestListResponse struct {
	Tests  []*models.Test `json:"tests"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type AddQuestionRequest struct {
	QuestionID    uint     `json:"question_id" validate:"required"`
	Order         int      `json:"order" validate:"min=0"`
	MarksOverride *float64 `json:"marks_override" validate:"omitempty,min=0"`
}

type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	AnswerText string `json:"answer_text"`
}

type AutoSaveRequest struct {
	Answers []SubmitAnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

// QuestionForAttempt is the student-facing view of a question. Correct
// answers and explanations never leave the server during an attempt.
type QuestionForAttempt struct {
	ID      uint                `json:"id"`
	Type    models.QuestionType `json:"type"`
	Text    string              `json:"text"`
	Options datatypes.JSON      `json:"options,omitempty"`
	Marks   float64             `json:"marks"`
	Order   int                 `json:"order"`
}

type AttemptStartResponse struct {
	Attempt      *models.TestAttempt   `json:"attempt"`
	Test         *models.Test          `json:"test"`
	Questions    []*QuestionForAttempt `json:"questions"`
	Resumed      bool                  `json:"resumed"`
	SavedAnswers map[uint]string       `json:"saved_answers,omitempty"`
}

type AnswerReview struct {
	QuestionID    uint    `json:"question_id"`
	QuestionText  string  `json:"question_text"`
	GivenAnswer   string  `json:"given_answer"`
	CorrectAnswer string  `json:"correct_answer,omitempty"`
	Explanation   string  `json:"explanation,omitempty"`
	IsCorrect     bool    `json:"is_correct"`
	MarksObtained float64 `json:"marks_obtained"`
}

type AttemptResultResponse struct {
	Attempt *models.TestAttempt `json:"attempt"`
	Answers []*AnswerReview     `json:"answers"`
}

type AttemptListResponse struct {
	Attempts []*models.TestAttempt `json:"attempts"`
	Total    int64                 `json:"total"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

// TimeStatus reports how much attempt time is left and how urgent that is.
// Level is one of "none", "notice", "warning", "critical", "ended".
type TimeStatus struct {
	RemainingSeconds int       `json:"remaining_seconds"`
	Deadline         time.Time `json:"deadline"`
	GraceSeconds     int       `json:"grace_seconds"`
	Level            string    `json:"level"`
}

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	Unread        int64                  `json:"unread"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
}

type VideoListResponse struct {
	Videos []*models.Video `json:"videos"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type DownloadGrant struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type UserListResponse struct {
	Users  []*models.User `json:"users"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type StaffListResponse struct {
	Staff  []*models.Staff `json:"staff"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ===== SERVICE INTERFACES =====

type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest, creatorID uint) (*models.Test, error)
	GetByID(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.Test, error)
	List(ctx context.Context, filters repositories.TestFilters, userID uint, role models.UserRole) (*TestListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateTestRequest, userID uint) (*models.Test, error)
	Delete(ctx context.Context, id uint, userID uint) error

	// Lifecycle actions
	Publish(ctx context.Context, id uint, userID uint) (*models.Test, error)
	Start(ctx context.Context, id uint, userID uint) (*models.Test, error)
	Complete(ctx context.Context, id uint, userID uint) (*models.Test, error)
	Archive(ctx context.Context, id uint, userID uint) (*models.Test, error)
	MoveToDraft(ctx context.Context, id uint, userID uint) (*models.Test, error)
	PublishResults(ctx context.Context, id uint, userID uint) (*models.Test, error)

	// Question management
	AddQuestion(ctx context.Context, testID uint, req *AddQuestionRequest, userID uint) error
	AddQuestions(ctx context.Context, testID uint, reqs []AddQuestionRequest, userID uint) error
	RemoveQuestion(ctx context.Context, testID, questionID uint, userID uint) error
	ReorderQuestions(ctx context.Context, testID uint, orders []repositories.QuestionOrder, userID uint) error
	UpdateQuestionMarks(ctx context.Context, testID, questionID uint, marks *float64, userID uint) error
	GetQuestions(ctx context.Context, testID uint, userID uint, role models.UserRole) ([]*models.TestQuestion, error)

	GetStats(ctx context.Context, testID uint, userID uint) (*repositories.TestStats, error)
}

type AttemptService interface {
	Start(ctx context.Context, testID uint, studentID uint) (*AttemptStartResponse, error)
	SubmitAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest, studentID uint) error
	AutoSave(ctx context.Context, attemptID uint, req *AutoSaveRequest, studentID uint) error
	Complete(ctx context.Context, attemptID uint, studentID uint) (*models.TestAttempt, error)
	GetResult(ctx context.Context, attemptID uint, userID uint, role models.UserRole) (*AttemptResultResponse, error)
	GetTimeStatus(ctx context.Context, attemptID uint, studentID uint) (*TimeStatus, error)
	ListByStudent(ctx context.Context, studentID uint, filters repositories.AttemptFilters) (*AttemptListResponse, error)
	ListByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters, userID uint) (*AttemptListResponse, error)
}

type ScoringService interface {
	FinalizeAttempt(ctx context.Context, attempt *models.TestAttempt, test *models.Test) error
	GetLeaderboard(ctx context.Context, testID uint, limit int, userID uint, role models.UserRole) ([]*repositories.LeaderboardEntry, error)
	GetStudentSummary(ctx context.Context, studentID uint) (*repositories.StudentTestSummary, error)
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID uint) (*models.Question, error)
	CreateBatch(ctx context.Context, reqs []CreateQuestionRequest, creatorID uint) (*ImportResult, error)
	GetByID(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.Question, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID uint) (*models.Question, error)
	Delete(ctx context.Context, id uint, userID uint) error
	List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)
	ImportXLSX(ctx context.Context, r io.Reader, creatorID uint) (*ImportResult, error)
}

type NotificationService interface {
	NotifyAll(ctx context.Context, typ models.NotificationType, title, message string, payload interface{}) error
	NotifyBatches(ctx context.Context, batchIDs []uint, typ models.NotificationType, title, message string, payload interface{}) error
	NotifyUser(ctx context.Context, userID uint, typ models.NotificationType, title, message string, payload interface{}) error
	ListForUser(ctx context.Context, userID uint, filters repositories.NotificationFilters) (*NotificationListResponse, error)
	MarkRead(ctx context.Context, id uint, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type VideoService interface {
	Create(ctx context.Context, req *CreateVideoRequest, creatorID uint) (*models.Video, error)
	GetByID(ctx context.Context, id uint, role models.UserRole) (*models.Video, error)
	Update(ctx context.Context, id uint, req *UpdateVideoRequest, userID uint) (*models.Video, error)
	Delete(ctx context.Context, id uint, userID uint) error
	List(ctx context.Context, filters repositories.VideoFilters, role models.UserRole) (*VideoListResponse, error)
	SetPublished(ctx context.Context, id uint, published bool, userID uint) (*models.Video, error)

	AuthorizeDownload(ctx context.Context, videoID uint, userID uint, role models.UserRole) (*DownloadGrant, error)
	ResolveDownload(ctx context.Context, token string) (*models.Video, error)
}

type StudentService interface {
	Create(ctx context.Context, req *CreateStudentRequest, actorID uint) (*models.StudentProfile, error)
	GetByID(ctx context.Context, id uint) (*models.StudentProfile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.StudentProfile, error)
	Update(ctx context.Context, id uint, req *UpdateStudentRequest, actorID uint) (*models.StudentProfile, error)
	Delete(ctx context.Context, id uint, actorID uint) error
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	GetSummary(ctx context.Context, userID uint) (*repositories.StudentTestSummary, error)
}

type StaffService interface {
	Create(ctx context.Context, req *CreateStaffRequest, actorID uint) (*models.Staff, error)
	GetByID(ctx context.Context, id uint) (*models.Staff, error)
	Update(ctx context.Context, id uint, req *UpdateStaffRequest, actorID uint) (*models.Staff, error)
	Delete(ctx context.Context, id uint, actorID uint) error
	List(ctx context.Context, limit, offset int) (*StaffListResponse, error)
}

type OrgService interface {
	CreateBatch(ctx context.Context, batch *models.Batch) (*models.Batch, error)
	GetBatch(ctx context.Context, id uint) (*models.Batch, error)
	UpdateBatch(ctx context.Context, id uint, batch *models.Batch) (*models.Batch, error)
	DeleteBatch(ctx context.Context, id uint) error
	ListBatches(ctx context.Context, limit, offset int) ([]*models.Batch, int64, error)

	CreateCourse(ctx context.Context, course *models.Course) (*models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uint, course *models.Course) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uint) error
	ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, int64, error)

	CreateSubject(ctx context.Context, subject *models.Subject) (*models.Subject, error)
	GetSubject(ctx context.Context, id uint) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id uint, subject *models.Subject) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id uint) error
	ListSubjects(ctx context.Context, limit, offset int) ([]*models.Subject, int64, error)
}

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	RequestPasswordOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

// ServiceManager wires every service together and owns their lifecycle.
type ServiceManager interface {
	Test() TestService
	Attempt() AttemptService
	Scoring() ScoringService
	Question() QuestionService
	Notification() NotificationService
	Video() VideoService
	Student() StudentService
	Staff() StaffService
	Org() OrgService
	Auth() AuthService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
