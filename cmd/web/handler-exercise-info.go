package main

import (
	"bytes"
	"net/http"

	"github.com/mlefevre/fitplan/internal/errors"
	"github.com/mlefevre/fitplan/internal/plan"
	"github.com/yuin/goldmark"
)

type exerciseInfoResponse struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Muscle          string   `json:"muscle"`
	Level           string   `json:"level"`
	Equipment       []string `json:"equipment"`
	DescriptionHTML string   `json:"descriptionHtml"`
}

// exerciseInfoGET handles GET requests to view exercise information. The
// catalog stores descriptions as Markdown, the response carries rendered
// HTML.
func (app *application) exerciseInfoGET(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	exercise, err := app.planService.GetExercise(r.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	var description bytes.Buffer
	if err = goldmark.Convert([]byte(exercise.DescriptionMarkdown), &description); err != nil {
		app.serverError(w, r, errors.Wrap(err, "render exercise description"))
		return
	}

	app.writeJSON(w, r, http.StatusOK, exerciseInfoResponse{
		ID:              exercise.ID,
		Name:            exercise.Name,
		Muscle:          exercise.Muscle,
		Level:           string(exercise.Level),
		Equipment:       exercise.Equipment,
		DescriptionHTML: description.String(),
	})
}
