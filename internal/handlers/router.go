package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edstack/exam-service/internal/auth"
	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/services"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

type HandlerManager struct {
	testHandler         *TestHandler
	attemptHandler      *AttemptHandler
	questionHandler     *QuestionHandler
	notificationHandler *NotificationHandler
	videoHandler        *VideoHandler
	studentHandler      *StudentHandler
	staffHandler        *StaffHandler
	orgHandler          *OrgHandler
	authHandler         *AuthHandler
	authMiddleware      *AuthMiddleware
	healthCheck         func(c *gin.Context)
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	tokens *auth.TokenManager,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		testHandler:         NewTestHandler(serviceManager.Test(), serviceManager.Scoring(), validator, logger),
		attemptHandler:      NewAttemptHandler(serviceManager.Attempt(), validator, logger),
		questionHandler:     NewQuestionHandler(serviceManager.Question(), validator, logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		videoHandler:        NewVideoHandler(serviceManager.Video(), logger),
		studentHandler:      NewStudentHandler(serviceManager.Student(), serviceManager.Scoring(), logger),
		staffHandler:        NewStaffHandler(serviceManager.Staff(), logger),
		orgHandler:          NewOrgHandler(serviceManager.Org(), logger),
		authHandler:         NewAuthHandler(serviceManager.Auth(), validator, logger),
		authMiddleware:      NewAuthMiddleware(tokens, userRepo),
		healthCheck: func(c *gin.Context) {
			if err := serviceManager.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "exam-service"})
		},
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	staffOnly := hm.authMiddleware.RequireRole(models.RoleTeacher, models.RoleAdmin)
	adminOnly := hm.authMiddleware.RequireRole(models.RoleAdmin)
	studentOnly := hm.authMiddleware.RequireRole(models.RoleStudent)

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/login", hm.authHandler.Login)
	v1.POST("/auth/password/otp", hm.authHandler.RequestPasswordOTP)
	v1.POST("/auth/password/reset", hm.authHandler.ResetPassword)

	// Download tokens carry their own authorization, minted per user with
	// a short TTL and burned on first use.
	v1.GET("/videos/download/:token", hm.videoHandler.ResolveDownload)

	authed := v1.Group("")
	authed.Use(hm.authMiddleware.Authenticate())
	{
		authed.GET("/auth/profile", hm.authHandler.GetProfile)

		// Test routes
		tests := authed.Group("/tests")
		{
			tests.POST("", staffOnly, hm.testHandler.CreateTest)
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.PUT("/:id", staffOnly, hm.testHandler.UpdateTest)
			tests.DELETE("/:id", staffOnly, hm.testHandler.DeleteTest)

			// Lifecycle actions
			tests.POST("/:id/publish", staffOnly, hm.testHandler.PublishTest)
			tests.POST("/:id/start", staffOnly, hm.testHandler.StartTest)
			tests.POST("/:id/complete", staffOnly, hm.testHandler.CompleteTest)
			tests.POST("/:id/archive", staffOnly, hm.testHandler.ArchiveTest)
			tests.POST("/:id/draft", staffOnly, hm.testHandler.MoveTestToDraft)
			tests.POST("/:id/results/publish", staffOnly, hm.testHandler.PublishTestResults)

			// Question management
			tests.GET("/:id/questions", hm.testHandler.GetTestQuestions)
			tests.POST("/:id/questions", staffOnly, hm.testHandler.AddQuestionToTest)
			tests.POST("/:id/questions/batch", staffOnly, hm.testHandler.AddQuestionsToTest)
			tests.PUT("/:id/questions/reorder", staffOnly, hm.testHandler.ReorderTestQuestions)
			tests.DELETE("/:id/questions/:question_id", staffOnly, hm.testHandler.RemoveQuestionFromTest)
			tests.PUT("/:id/questions/:question_id/marks", staffOnly, hm.testHandler.UpdateTestQuestionMarks)

			tests.GET("/:id/stats", staffOnly, hm.testHandler.GetTestStats)
			tests.GET("/:id/leaderboard", hm.testHandler.GetLeaderboard)
		}

		// Attempt routes
		attempts := authed.Group("/attempts")
		{
			attempts.POST("/start", studentOnly, hm.attemptHandler.StartAttempt)
			attempts.GET("", hm.attemptHandler.ListMyAttempts)
			attempts.POST("/:id/answer", studentOnly, hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/autosave", studentOnly, hm.attemptHandler.AutoSaveAnswers)
			attempts.POST("/:id/complete", studentOnly, hm.attemptHandler.CompleteAttempt)
			attempts.GET("/:id/result", hm.attemptHandler.GetAttemptResult)
			attempts.GET("/:id/time", studentOnly, hm.attemptHandler.GetTimeStatus)
			attempts.GET("/test/:test_id", staffOnly, hm.attemptHandler.ListTestAttempts)
		}

		// Question bank routes
		questions := authed.Group("/questions")
		questions.Use(staffOnly)
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.POST("/batch", hm.questionHandler.CreateQuestionsBatch)
			questions.POST("/import", hm.questionHandler.ImportQuestions)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		// Notification routes
		notifications := authed.Group("/notifications")
		{
			notifications.POST("/broadcast", staffOnly, hm.notificationHandler.Broadcast)
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.GET("/unread-count", hm.notificationHandler.GetUnreadCount)
			notifications.POST("/read-all", hm.notificationHandler.MarkAllNotificationsRead)
			notifications.POST("/:id/read", hm.notificationHandler.MarkNotificationRead)
		}

		// Video routes
		videos := authed.Group("/videos")
		{
			videos.POST("", staffOnly, hm.videoHandler.CreateVideo)
			videos.GET("", hm.videoHandler.ListVideos)
			videos.GET("/:id", hm.videoHandler.GetVideo)
			videos.PUT("/:id", staffOnly, hm.videoHandler.UpdateVideo)
			videos.DELETE("/:id", staffOnly, hm.videoHandler.DeleteVideo)
			videos.PUT("/:id/publish", staffOnly, hm.videoHandler.SetVideoPublished)
			videos.POST("/:id/download", hm.videoHandler.AuthorizeDownload)
		}

		// Student routes
		students := authed.Group("/students")
		{
			students.GET("/me", studentOnly, hm.studentHandler.GetMyProfile)
			students.GET("/me/summary", studentOnly, hm.studentHandler.GetMySummary)

			students.POST("", staffOnly, hm.studentHandler.CreateStudent)
			students.GET("", staffOnly, hm.studentHandler.ListStudents)
			students.GET("/:id", staffOnly, hm.studentHandler.GetStudent)
			students.PUT("/:id", staffOnly, hm.studentHandler.UpdateStudent)
			students.DELETE("/:id", adminOnly, hm.studentHandler.DeleteStudent)
			students.GET("/:id/summary", staffOnly, hm.studentHandler.GetStudentSummary)
		}

		// Staff routes - Admins only
		staff := authed.Group("/staff")
		staff.Use(adminOnly)
		{
			staff.POST("", hm.staffHandler.CreateStaff)
			staff.GET("", hm.staffHandler.ListStaff)
			staff.GET("/:id", hm.staffHandler.GetStaff)
			staff.PUT("/:id", hm.staffHandler.UpdateStaff)
			staff.DELETE("/:id", hm.staffHandler.DeleteStaff)
		}

		// Organization routes
		batches := authed.Group("/batches")
		{
			batches.POST("", staffOnly, hm.orgHandler.CreateBatch)
			batches.GET("", hm.orgHandler.ListBatches)
			batches.GET("/:id", hm.orgHandler.GetBatch)
			batches.PUT("/:id", staffOnly, hm.orgHandler.UpdateBatch)
			batches.DELETE("/:id", adminOnly, hm.orgHandler.DeleteBatch)
		}

		courses := authed.Group("/courses")
		{
			courses.POST("", staffOnly, hm.orgHandler.CreateCourse)
			courses.GET("", hm.orgHandler.ListCourses)
			courses.GET("/:id", hm.orgHandler.GetCourse)
			courses.PUT("/:id", staffOnly, hm.orgHandler.UpdateCourse)
			courses.DELETE("/:id", adminOnly, hm.orgHandler.DeleteCourse)
		}

		subjects := authed.Group("/subjects")
		{
			subjects.POST("", staffOnly, hm.orgHandler.CreateSubject)
			subjects.GET("", hm.orgHandler.ListSubjects)
			subjects.GET("/:id", hm.orgHandler.GetSubject)
			subjects.PUT("/:id", staffOnly, hm.orgHandler.UpdateSubject)
			subjects.DELETE("/:id", adminOnly, hm.orgHandler.DeleteSubject)
		}
	}

	// Health check endpoint
	router.GET("/health", hm.healthCheck)
}
