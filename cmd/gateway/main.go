package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openqbank/qbank/internal/activity"
	api "github.com/openqbank/qbank/internal/api/http"
	auth "github.com/openqbank/qbank/internal/auth/middleware"
	"github.com/openqbank/qbank/internal/bank"
	"github.com/openqbank/qbank/internal/config"
	"github.com/openqbank/qbank/internal/course"
	"github.com/openqbank/qbank/internal/curriculum"
	"github.com/openqbank/qbank/internal/db"
	"github.com/openqbank/qbank/internal/exam"
	"github.com/openqbank/qbank/internal/rbac"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	examStore := exam.NewSQLStore(dbh)
	bankStore := bank.NewSQLStore(dbh)
	curriculumStore := curriculum.NewSQLStore(dbh)
	courseStore := course.NewSQLStore(dbh)
	activityStore := activity.NewSQLStore(dbh)

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.BcryptCost)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: cfg.CORSCredentials,
		MaxAge:           300,
	}))

	// Public
	r.Post("/auth/signup", auth.SignupHandler(authSvc, dbh))
	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Exams
		pr.With(rbac.Require("exam:view")).Get("/exams", api.ListExamsHandler(examStore))
		pr.With(rbac.Require("exam:view")).Get("/exams/count", api.CountExamsHandler(examStore))
		pr.With(rbac.Require("exam:view")).Get("/exams/{examID}", api.GetExamHandler(examStore))
		pr.With(rbac.Require("exam:create")).Post("/exams", api.CreateExamHandler(examStore))
		pr.With(rbac.Require("exam:update")).Put("/exams/{examID}", api.UpdateExamHandler(examStore))
		pr.With(rbac.Require("exam:delete")).Delete("/exams/{examID}", api.DeleteExamHandler(examStore))

		// Attempt flow
		pr.With(rbac.Require("attempt:create")).Post("/exams/{examID}/verify-access", api.VerifyAccessHandler(examStore))
		pr.With(rbac.Require("attempt:create")).Post("/exams/{examID}/start", api.StartAttemptHandler(examStore))
		pr.With(rbac.Require("attempt:save")).Post("/exams/{examID}/response", api.SaveResponseHandler(examStore))
		pr.With(rbac.Require("attempt:submit")).Post("/exams/{examID}/submit", api.SubmitHandler(examStore))
		pr.With(rbac.Require("attempt:view")).Get("/exams/{examID}/attempt", api.GetAttemptHandler(examStore))
		pr.With(rbac.Require("exam:recalculate")).Post("/exams/{examID}/recalculate", api.RecalculateHandler(examStore))
		pr.With(rbac.Require("exam:view")).Get("/exams/{examID}/leaderboard", api.LeaderboardHandler(examStore))

		// Question bank
		pr.With(rbac.Require("question:view")).Get("/questions", api.ListQuestionsHandler(bankStore))
		pr.With(rbac.Require("question:view")).Get("/questions/count", api.CountQuestionsHandler(bankStore))
		pr.With(rbac.Require("question:view")).Get("/questions/stats", api.QuestionStatsHandler(bankStore))
		pr.With(rbac.Require("question:view")).Get("/questions/recent", api.RecentQuestionsHandler(bankStore))
		pr.With(rbac.Require("question:view")).Get("/questions/subjects", api.QuestionSubjectsHandler(bankStore))
		pr.With(rbac.Require("question:create")).Post("/questions", api.CreateQuestionHandler(bankStore))
		pr.With(rbac.Require("question:update")).Put("/questions/{questionID}", api.UpdateQuestionHandler(bankStore))
		pr.With(rbac.Require("question:delete")).Delete("/questions/{questionID}", api.DeleteQuestionHandler(bankStore))
		pr.With(rbac.Require("question:delete")).Delete("/questions/import/{batchID}", api.DeleteImportBatchHandler(bankStore))
		pr.With(rbac.Require("import:questions")).Post("/import/questions", api.ImportQuestionsHandler(bankStore))

		// Curriculum tree
		pr.With(rbac.Require("curriculum:view")).Get("/curriculum/classes", api.ListClassesHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:create")).Post("/curriculum/classes", api.CreateClassHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:update")).Put("/curriculum/classes/{classID}", api.RenameClassHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:delete")).Delete("/curriculum/classes/{classID}", api.DeleteClassHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:view")).Get("/curriculum/classes/{classID}/subjects", api.ListSubjectsHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:create")).Post("/curriculum/classes/{classID}/subjects", api.CreateSubjectHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:update")).Put("/curriculum/subjects/{subjectID}", api.RenameSubjectHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:delete")).Delete("/curriculum/subjects/{subjectID}", api.DeleteSubjectHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:view")).Get("/curriculum/subjects/{subjectID}/chapters", api.ListChaptersHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:create")).Post("/curriculum/subjects/{subjectID}/chapters", api.CreateChapterHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:update")).Put("/curriculum/chapters/{chapterID}", api.RenameChapterHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:delete")).Delete("/curriculum/chapters/{chapterID}", api.DeleteChapterHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:view")).Get("/curriculum/chapters/{chapterID}/topics", api.ListTopicsHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:create")).Post("/curriculum/chapters/{chapterID}/topics", api.CreateTopicHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:update")).Put("/curriculum/topics/{topicID}", api.RenameTopicHandler(curriculumStore))
		pr.With(rbac.Require("curriculum:delete")).Delete("/curriculum/topics/{topicID}", api.DeleteTopicHandler(curriculumStore))

		// Courses
		pr.With(rbac.Require("course:view")).Get("/courses", api.ListCoursesHandler(courseStore))
		pr.With(rbac.Require("course:view")).Get("/courses/{courseID}", api.GetCourseHandler(courseStore))
		pr.With(rbac.Require("course:create")).Post("/courses", api.CreateCourseHandler(courseStore))
		pr.With(rbac.Require("course:update")).Put("/courses/{courseID}", api.UpdateCourseHandler(courseStore))
		pr.With(rbac.Require("course:delete")).Delete("/courses/{courseID}", api.DeleteCourseHandler(courseStore))
		pr.With(rbac.Require("course:update")).Post("/courses/{courseID}/content", api.AddCourseContentHandler(courseStore))
		pr.With(rbac.Require("course:update")).Put("/courses/{courseID}/content/{contentID}", api.UpdateCourseContentHandler(courseStore))
		pr.With(rbac.Require("course:delete")).Delete("/courses/{courseID}/content/{contentID}", api.DeleteCourseContentHandler(courseStore))

		// Users (admin)
		pr.With(rbac.Require("users:manage")).Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("users:manage")).Post("/users", api.CreateUserHandler(dbh, cfg.BcryptCost))
		pr.With(rbac.Require("users:manage")).Put("/users/{userID}", api.UpdateUserHandler(dbh, cfg.BcryptCost))
		pr.With(rbac.Require("users:manage")).Delete("/users/{userID}", api.DeleteUserHandler(dbh))
		pr.Post("/users/change-password", api.ChangePasswordHandler(dbh, cfg.BcryptCost))

		// Student dashboard
		pr.With(rbac.Require("student:results")).Get("/student/exams", api.StudentResultsHandler(examStore))
		pr.With(rbac.Require("student:stats")).Get("/student/stats", api.StudentStatsHandler(examStore))

		// Activity feed
		pr.With(rbac.Require("activity:log")).Post("/activity", api.LogActivityHandler(activityStore))
		pr.With(rbac.Require("activity:view")).Get("/activity/recent", api.RecentActivityHandler(activityStore))
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
