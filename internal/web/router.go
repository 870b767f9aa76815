package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zat/initiative/internal/handlers"
)

func Router(e *handlers.Env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Public
	r.Get("/healthz", handlers.Health(e))
	r.Post("/tg/webhook", handlers.TelegramWebhook(e))
	r.Get("/qr/{token}.png", handlers.QR(e))

	// Student check-in, reached by scanning a session QR code
	r.Get("/attend/{token}", handlers.AttendShow(e))
	r.Post("/attend/{token}/{action}", handlers.AttendAction(e))

	r.Route("/admin", func(ar chi.Router) {
		ar.Post("/login", handlers.AdminLogin(e))
		ar.With(handlers.RequireAdmin(e)).Post("/logout", handlers.AdminLogout(e))

		ar.Route("/api", func(ag chi.Router) {
			ag.Use(handlers.RequireAdmin(e))

			ag.Get("/me", handlers.AdminMe(e))
			ag.Get("/dashboard", handlers.Dashboard(e))
			ag.Get("/capacity", handlers.Capacity(e))

			// Courses
			ag.Get("/courses", handlers.ListCourses(e))
			ag.Post("/courses", handlers.CreateCourse(e))
			ag.Get("/courses/{id}", handlers.GetCourse(e))
			ag.Patch("/courses/{id}", handlers.UpdateCourse(e))
			ag.Delete("/courses/{id}", handlers.DeleteCourse(e))

			// Groups
			ag.Get("/groups", handlers.ListGroups(e))
			ag.Post("/groups", handlers.CreateGroup(e))
			ag.Get("/groups/{id}", handlers.GetGroup(e))
			ag.Patch("/groups/{id}", handlers.UpdateGroup(e))
			ag.Delete("/groups/{id}", handlers.DeleteGroup(e))

			// Students
			ag.Get("/students", handlers.ListStudents(e))
			ag.Post("/students", handlers.CreateStudent(e))
			ag.Get("/students/{id}", handlers.GetStudent(e))
			ag.Patch("/students/{id}", handlers.UpdateStudent(e))
			ag.Delete("/students/{id}", handlers.DeleteStudent(e))
			ag.Post("/students/{id}/move", handlers.MoveStudent(e))

			// Sessions & attendance
			ag.Get("/sessions", handlers.ListSessions(e))
			ag.Post("/sessions", handlers.CreateSession(e))
			ag.Get("/sessions/{id}", handlers.GetSession(e))
			ag.Patch("/sessions/{id}", handlers.UpdateSession(e))
			ag.Delete("/sessions/{id}", handlers.DeleteSession(e))
			ag.Post("/sessions/{id}/attendance", handlers.MarkAttendance(e))

			// CSV
			ag.Get("/export/students.csv", handlers.ExportStudentsCSV(e))
			ag.Get("/export/groups/{id}.csv", handlers.ExportGroupCSV(e))
		})
	})

	return r
}
