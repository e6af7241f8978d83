package main

import (
	"net/http"
	"time"

	"github.com/mlefevre/fitplan/internal/errors"
	"github.com/mlefevre/fitplan/internal/plan"
)

type programResponse struct {
	PublicID    string            `json:"publicId"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Start       string            `json:"start"`
	End         string            `json:"end"`
	Training    trainingResponse  `json:"training"`
	Nutrition   nutritionResponse `json:"nutrition"`
}

type trainingResponse struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Sessions    []sessionResponse `json:"sessions"`
}

type nutritionResponse struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Slots       []mealSlotResponse `json:"slots"`
}

type sessionResponse struct {
	Date            string                 `json:"date"`
	Time            string                 `json:"time"`
	Name            string                 `json:"name"`
	Note            string                 `json:"note,omitempty"`
	DurationMinutes int                    `json:"durationMinutes"`
	Completed       bool                   `json:"completed"`
	Exercises       []exerciseLinkResponse `json:"exercises"`
}

type exerciseLinkResponse struct {
	ExerciseID  int    `json:"exerciseId"`
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	RestSeconds int    `json:"restSeconds"`
}

type mealSlotResponse struct {
	Date     string             `json:"date"`
	Time     string             `json:"time"`
	MealType string             `json:"mealType"`
	Note     string             `json:"note,omitempty"`
	Dishes   []dishLinkResponse `json:"dishes"`
}

type dishLinkResponse struct {
	DishID   int    `json:"dishId"`
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Quantity int    `json:"quantity"`
}

func newProgramResponse(program plan.Program) programResponse {
	return programResponse{
		PublicID:    program.PublicID,
		Name:        program.Name,
		Description: program.Description,
		Start:       program.Start.Format(time.DateOnly),
		End:         program.End.Format(time.DateOnly),
		Training:    newTrainingResponse(program.Training),
		Nutrition:   newNutritionResponse(program.Nutrition),
	}
}

func newTrainingResponse(sub plan.TrainingSubProgram) trainingResponse {
	sessions := make([]sessionResponse, 0, len(sub.Sessions))
	for _, session := range sub.Sessions {
		exercises := make([]exerciseLinkResponse, 0, len(session.Exercises))
		for _, link := range session.Exercises {
			exercises = append(exercises, exerciseLinkResponse{
				ExerciseID:  link.ExerciseID,
				Name:        link.Name,
				Sets:        link.Sets,
				Reps:        link.Reps,
				RestSeconds: link.RestSeconds,
			})
		}
		sessions = append(sessions, sessionResponse{
			Date:            session.Date.Format(time.DateOnly),
			Time:            session.Time,
			Name:            session.Name,
			Note:            session.Note,
			DurationMinutes: session.DurationMinutes,
			Completed:       session.Completed,
			Exercises:       exercises,
		})
	}
	return trainingResponse{
		Name:        sub.Name,
		Description: sub.Description,
		Sessions:    sessions,
	}
}

func newNutritionResponse(sub plan.NutritionSubProgram) nutritionResponse {
	slots := make([]mealSlotResponse, 0, len(sub.Slots))
	for _, slot := range sub.Slots {
		dishes := make([]dishLinkResponse, 0, len(slot.Dishes))
		for _, link := range slot.Dishes {
			dishes = append(dishes, dishLinkResponse{
				DishID:   link.DishID,
				Name:     link.Name,
				Calories: link.Calories,
				Quantity: link.Quantity,
			})
		}
		slots = append(slots, mealSlotResponse{
			Date:     slot.Date.Format(time.DateOnly),
			Time:     slot.Time,
			MealType: slot.MealType,
			Note:     slot.Note,
			Dishes:   dishes,
		})
	}
	return nutritionResponse{
		Name:        sub.Name,
		Description: sub.Description,
		Slots:       slots,
	}
}

// programGET handles GET requests to retrieve a generated program by its
// public ID.
func (app *application) programGET(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("publicID")

	program, err := app.planService.GetProgram(r.Context(), publicID)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, newProgramResponse(program))
}
