package plan

import "time"

// Sex is the declared sex used by the calorie formulas.
type Sex string

const (
	SexMale   Sex = "Homme"
	SexFemale Sex = "Femme"
)

// Level is the self-reported experience level of a profile or the difficulty
// of an exercise.
type Level string

const (
	LevelBeginner     Level = "Débutant"
	LevelIntermediate Level = "Intermédiaire"
	LevelAdvanced     Level = "Avancé"
)

// ObjectiveCategory is the goal a generated program works towards.
type ObjectiveCategory string

const (
	ObjectiveWeightLoss ObjectiveCategory = "Perte de poids"
	ObjectiveMuscleGain ObjectiveCategory = "Prise de masse"
	ObjectiveEndurance  ObjectiveCategory = "Endurance"
)

// HealthContext lists declared conditions. It is read-only input to the rule
// trees, never medical advice.
type HealthContext struct {
	MedicalConditions  []string
	PhysicalConditions []string
}

// DietRegime describes eating style and food restrictions.
type DietRegime struct {
	Style        string
	Restrictions []string
}

// Profile is the immutable snapshot of a user that a generation run reads.
type Profile struct {
	ID              int
	Age             int
	WeightKg        float64
	// Height is stored in centimeters or meters depending on the data
	// source. Use HeightMeters or HeightCm.
	Height          float64
	Sex             Sex
	Level           Level
	WeeklyFrequency int
	// AvailableDays holds French weekday names, e.g. "Lundi".
	AvailableDays []string
	PreferredTime string
	Equipment     []string
	Health        HealthContext
	Diet          DietRegime
}

// heightUnitThreshold separates meter values from centimeter values. Nobody
// is 3 meters tall and nobody is 3 centimeters tall.
const heightUnitThreshold = 3

// HeightMeters returns the height normalized to meters.
func (p Profile) HeightMeters() float64 {
	if p.Height > heightUnitThreshold {
		return p.Height / 100
	}
	return p.Height
}

// HeightCm returns the height normalized to centimeters.
func (p Profile) HeightCm() float64 {
	return p.HeightMeters() * 100
}

// BMI is weight in kilograms divided by squared height in meters.
func (p Profile) BMI() float64 {
	m := p.HeightMeters()
	if m == 0 {
		return 0
	}
	return p.WeightKg / (m * m)
}

// Objective is the time-bounded goal a program is generated for.
type Objective struct {
	ID        int
	ProfileID int
	Category  ObjectiveCategory
	Start     time.Time
	End       time.Time
}

// DurationDays is the inclusive day count from start to end.
func (o Objective) DurationDays() int {
	return int(o.End.Sub(o.Start).Hours()/24) + 1
}

// Exercise is a catalog entry. Equipment lists the tags required to perform
// it; an empty list means bodyweight.
type Exercise struct {
	ID                  int
	Name                string
	Muscle              string
	Level               Level
	DescriptionMarkdown string
	Equipment           []string
}

// DishCategory is the course a dish belongs to.
type DishCategory string

const (
	DishStarter DishCategory = "entrée"
	DishMain    DishCategory = "plat"
	DishDessert DishCategory = "dessert"
)

// Dish is a catalog entry. Tags feed the food exclusion rules; MealTypes
// restricts the slots a dish fits, empty meaning any.
type Dish struct {
	ID                  int
	Name                string
	Category            DishCategory
	Calories            int
	DescriptionMarkdown string
	Tags                []string
	MealTypes           []string
}

// ExerciseLink ties an exercise into a session with its prescription. Order
// within the session is the slice position.
type ExerciseLink struct {
	ExerciseID  int
	Name        string
	Reps        int
	Sets        int
	RestSeconds int
}

// Session is one dated training appointment.
type Session struct {
	Date            time.Time
	Time            string
	Name            string
	Note            string
	DurationMinutes int
	Completed       bool
	Exercises       []ExerciseLink
}

// DishLink ties a dish into a meal slot. Order within the slot is the slice
// position.
type DishLink struct {
	DishID   int
	Name     string
	Calories int
	Quantity int
}

// MealSlot is one dated meal appointment.
type MealSlot struct {
	Date     time.Time
	Time     string
	MealType string
	Note     string
	Dishes   []DishLink
}

// TrainingSubProgram is the training half of a generated program.
type TrainingSubProgram struct {
	Name        string
	Description string
	Sessions    []Session
}

// NutritionSubProgram is the nutrition half of a generated program.
type NutritionSubProgram struct {
	Name        string
	Description string
	Slots       []MealSlot
}

// Program is the generated aggregate: exactly one training and one nutrition
// sub-program over the objective's date range.
type Program struct {
	ID          int
	PublicID    string
	Name        string
	Description string
	Start       time.Time
	End         time.Time
	ProfileID   int
	Training    TrainingSubProgram
	Nutrition   NutritionSubProgram
}
