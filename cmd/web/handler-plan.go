package main

import (
	"net/http"

	"github.com/mlefevre/fitplan/internal/errors"
	"github.com/mlefevre/fitplan/internal/plan"
)

// generatePlanPOST generates and persists a complete program for the profile
// in the URL.
func (app *application) generatePlanPOST(w http.ResponseWriter, r *http.Request) {
	profileID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	program, err := app.planService.GeneratePlan(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, newProgramResponse(program))
}

// generateTrainingPOST generates the training half on its own. The result is
// returned to the caller without being persisted.
func (app *application) generateTrainingPOST(w http.ResponseWriter, r *http.Request) {
	profileID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	training, err := app.planService.GenerateTrainingPlan(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, newTrainingResponse(training))
}

// generateNutritionPOST generates the nutrition half on its own, without
// persisting it.
func (app *application) generateNutritionPOST(w http.ResponseWriter, r *http.Request) {
	profileID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	nutrition, err := app.planService.GenerateNutritionPlan(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, newNutritionResponse(nutrition))
}
