package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/studyquiz/backend/internal/generator"
	"github.com/studyquiz/backend/internal/identity"
	"github.com/studyquiz/backend/internal/idgen"
	"github.com/studyquiz/backend/internal/middleware"
	"github.com/studyquiz/backend/internal/models"
	"github.com/studyquiz/backend/internal/quizzes"
	"github.com/studyquiz/backend/internal/session"
	"github.com/studyquiz/backend/internal/store"
)

func main() {
	// Open the device-local store and run migrations
	st, err := store.Open(getEnv("STUDYQUIZ_DB", "studyquiz.db"))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	// Seed the id generator past every persisted id
	ids := idgen.New()
	users, err := st.Load()
	if err != nil {
		log.Fatalf("Failed to load store: %v", err)
	}
	observeIDs(ids, users)

	// Repositories and services
	userRepo := identity.NewRepository(st, ids)
	quizRepo := quizzes.NewRepository(userRepo, ids)
	gen := generator.NewGenerator()
	sessions := session.NewManager(quizRepo, quizRepo)

	// Handlers
	authHandler := identity.NewHandler(userRepo)
	quizHandler := quizzes.NewHandler(quizRepo, gen)
	sessionHandler := session.NewHandler(sessions)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.RequireSession(st))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods("PUT")

	protected.HandleFunc("/quizzes", quizHandler.ListQuizzes).Methods("GET")
	protected.HandleFunc("/quizzes", quizHandler.CreateQuiz).Methods("POST")
	protected.HandleFunc("/quizzes/generate", quizHandler.GenerateQuiz).Methods("POST")
	protected.HandleFunc("/quizzes/{id}", quizHandler.GetQuiz).Methods("GET")
	protected.HandleFunc("/quizzes/{id}", quizHandler.UpdateQuiz).Methods("PUT")
	protected.HandleFunc("/quizzes/{id}", quizHandler.DeleteQuiz).Methods("DELETE")

	protected.HandleFunc("/results", quizHandler.ListResults).Methods("GET")
	protected.HandleFunc("/results/{id}", quizHandler.DeleteResult).Methods("DELETE")

	protected.HandleFunc("/sessions", sessionHandler.Start).Methods("POST")
	protected.HandleFunc("/sessions/current", sessionHandler.GetCurrent).Methods("GET")
	protected.HandleFunc("/sessions/current/answer", sessionHandler.SelectOption).Methods("POST")
	protected.HandleFunc("/sessions/current/goto", sessionHandler.GoTo).Methods("POST")
	protected.HandleFunc("/sessions/current/next", sessionHandler.Next).Methods("POST")
	protected.HandleFunc("/sessions/current/previous", sessionHandler.Previous).Methods("POST")
	protected.HandleFunc("/sessions/current/submit", sessionHandler.Submit).Methods("POST")
	protected.HandleFunc("/sessions/current", sessionHandler.End).Methods("DELETE")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := getEnv("PORT", "8080")

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// observeIDs walks every persisted record so the generator never reissues
// an existing id.
func observeIDs(ids *idgen.Generator, users map[int64]models.UserRecord) {
	for _, u := range users {
		ids.Observe(u.ID)
		for _, q := range u.CreatedQuizzes {
			ids.Observe(q.ID)
			for _, question := range q.Questions {
				ids.Observe(question.ID)
			}
		}
		for _, res := range u.AttemptHistory {
			ids.Observe(res.ID)
		}
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
