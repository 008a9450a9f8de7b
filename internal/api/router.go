package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"medassist-backend/internal/config"
	"medassist-backend/internal/handlers"
	"medassist-backend/internal/models"
	"medassist-backend/pkg/httputil"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler        *handlers.AuthHandler
	ChatHandler        *handlers.ChatHandlers
	DoctorHandler      *handlers.DoctorHandlers
	AppointmentHandler *handlers.AppointmentHandlers
	Config             *config.Config
}

func allowedOrigins(frontendURL string) []string {
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	for _, o := range strings.Split(frontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// requestTimeoutMargin covers the work around a completion call: session
// lookup, the transcript write and encoding the response.
const requestTimeoutMargin = 30 * time.Second

// RequestTimeout is the per-request deadline for a given completion timeout.
func RequestTimeout(aiTimeout time.Duration) time.Duration {
	if aiTimeout <= 0 {
		aiTimeout = 30 * time.Second
	}
	return aiTimeout + requestTimeoutMargin
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	if deps.AuthHandler == nil || deps.ChatHandler == nil || deps.DoctorHandler == nil || deps.AppointmentHandler == nil {
		panic("handler dependency is nil in router setup")
	}

	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout(deps.Config.AI.Timeout)))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(deps.Config.FrontendURL),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	authenticate := JwtAuthMiddleware(deps.Config.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httputil.RespondJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "MedAssist API is running"})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.AuthHandler.HandleRegister)
			r.Post("/login", deps.AuthHandler.HandleLogin)
			r.With(authenticate).Get("/me", deps.AuthHandler.HandleMe)
		})

		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", deps.DoctorHandler.HandleListDoctors)
			r.Get("/specializations", deps.DoctorHandler.HandleListSpecializations)
			r.Get("/{doctorID}", deps.DoctorHandler.HandleGetDoctor)
			r.With(authenticate, RequireRole(models.RoleDoctor)).Post("/", deps.DoctorHandler.HandleUpsertProfile)
		})

		// --- Authenticated Routes (JWT Required) ---
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/ai/chat", func(r chi.Router) {
				r.Post("/", deps.ChatHandler.HandleSendMessage)
				r.Get("/history", deps.ChatHandler.HandleGetHistory)
				r.Delete("/history", deps.ChatHandler.HandleClearHistory)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Post("/", deps.AppointmentHandler.HandleCreate)
				r.Get("/", deps.AppointmentHandler.HandleList)
				r.Get("/{appointmentID}", deps.AppointmentHandler.HandleGet)
				r.Put("/{appointmentID}", deps.AppointmentHandler.HandleUpdate)
				r.Delete("/{appointmentID}", deps.AppointmentHandler.HandleCancel)
			})
		})
	})

	return r
}
