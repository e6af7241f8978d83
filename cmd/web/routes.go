package main

import (
	"net/http"

	"github.com/rs/cors"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	standard := func(next http.Handler) http.Handler {
		return app.recoverPanic(app.logAndTraceRequest(secureHeaders(app.timeout(next))))
	}

	mux.Handle("POST /api/profiles/{id}/generate", standard(http.HandlerFunc(app.generatePlanPOST)))
	mux.Handle("POST /api/profiles/{id}/generate/training", standard(http.HandlerFunc(app.generateTrainingPOST)))
	mux.Handle("POST /api/profiles/{id}/generate/nutrition", standard(http.HandlerFunc(app.generateNutritionPOST)))

	mux.Handle("GET /api/programs/{publicID}", standard(http.HandlerFunc(app.programGET)))
	mux.Handle("GET /api/exercises/{id}/info", standard(http.HandlerFunc(app.exerciseInfoGET)))

	mux.Handle("GET /api/healthy", standard(http.HandlerFunc(app.healthy)))

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)
}
