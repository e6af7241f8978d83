package plan

import (
	"fmt"
	"math"

	"github.com/mlefevre/fitplan/internal/decision"
)

// Macros is the daily gram targets derived from the calorie budget.
type Macros struct {
	ProteinG int
	CarbsG   int
	FatG     int
}

// macroSplit holds calorie fractions per macronutrient. Fractions sum to 1.
type macroSplit struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

// slotKind drives the dish composition of a meal slot.
type slotKind string

const (
	// slotSnack gets a single light dish.
	slotSnack slotKind = "snack"
	// slotMain gets a main dish plus optional starter and dessert.
	slotMain slotKind = "main"
)

// MealSlotTemplate describes one recurring daily meal.
type MealSlotTemplate struct {
	Type string
	Time string
	Kind slotKind
}

// NutritionParameters is the resolved rule output the nutrition assembler
// consumes.
type NutritionParameters struct {
	DailyCalories int
	Macros        Macros
	MealTemplate  []MealSlotTemplate
	ExcludedFoods []string
}

// bmrCoefficients are the linear Harris-Benedict terms over kg, cm and
// years.
type bmrCoefficients struct {
	Base   float64
	Weight float64
	Height float64
	Age    float64
}

var bmrTree = decision.Branch("sex", decision.Equal, string(SexMale),
	decision.Leaf(bmrCoefficients{Base: 88.362, Weight: 13.397, Height: 4.799, Age: 5.677}),
	decision.Leaf(bmrCoefficients{Base: 447.593, Weight: 9.247, Height: 3.098, Age: 4.330}))

// activityTree maps weekly training frequency to the activity multiplier.
var activityTree = decision.Branch("frequency", decision.Less, 1,
	decision.Leaf(1.2),
	decision.Branch("frequency", decision.LessOrEqual, 2,
		decision.Leaf(1.375),
		decision.Branch("frequency", decision.LessOrEqual, 5,
			decision.Leaf(1.55),
			decision.Branch("frequency", decision.Equal, 6,
				decision.Leaf(1.725),
				decision.Leaf(1.9)))))

// objectiveCalorieTree applies the surplus or deficit for the goal.
var objectiveCalorieTree = decision.Branch("objective", decision.Equal, string(ObjectiveWeightLoss),
	decision.Leaf(-400),
	decision.Branch("objective", decision.Equal, string(ObjectiveMuscleGain),
		decision.Leaf(400),
		decision.Leaf(0)))

var macroSplitTree = decision.Branch("objective", decision.Equal, string(ObjectiveWeightLoss),
	decision.Leaf(macroSplit{Protein: 0.35, Carbs: 0.35, Fat: 0.30}),
	decision.Branch("objective", decision.Equal, string(ObjectiveMuscleGain),
		decision.Leaf(macroSplit{Protein: 0.25, Carbs: 0.50, Fat: 0.25}),
		decision.Leaf(macroSplit{Protein: 0.30, Carbs: 0.40, Fat: 0.30})))

var (
	mealTemplateFive = []MealSlotTemplate{
		{Type: "Petit-déjeuner", Time: "08:00", Kind: slotSnack},
		{Type: "Collation matin", Time: "10:30", Kind: slotSnack},
		{Type: "Déjeuner", Time: "12:30", Kind: slotMain},
		{Type: "Collation après-midi", Time: "16:30", Kind: slotSnack},
		{Type: "Dîner", Time: "19:30", Kind: slotMain},
	}

	mealTemplateFour = []MealSlotTemplate{
		{Type: "Petit-déjeuner", Time: "08:00", Kind: slotSnack},
		{Type: "Déjeuner", Time: "12:30", Kind: slotMain},
		{Type: "Collation", Time: "16:30", Kind: slotSnack},
		{Type: "Dîner", Time: "19:30", Kind: slotMain},
	}
)

// mealTemplateTree picks the daily slot layout. Muscle gain eats more often.
var mealTemplateTree = decision.Branch("objective", decision.Equal, string(ObjectiveMuscleGain),
	decision.Leaf(mealTemplateFive),
	decision.Leaf(mealTemplateFour))

// nutritionBMITree corrects the calorie budget for body mass index.
var nutritionBMITree = decision.Branch("bmi", decision.Greater, 30,
	decision.Leaf(-200),
	decision.Branch("bmi", decision.Greater, 25,
		decision.Leaf(-100),
		decision.Branch("bmi", decision.Less, 18.5,
			decision.Leaf(150),
			decision.Leaf(0))))

// foodExclusionForest maps diet style, restrictions and conditions to dish
// tags that must not appear in any meal.
var foodExclusionForest = decision.Forest[string]{
	decision.Branch("diet", decision.Equal, "Végétarien",
		decision.Leaf([]string{"Viande", "Poisson", "Fruits de mer"}),
		decision.Leaf([]string(nil))),
	decision.Branch("diet", decision.Equal, "Végétalien",
		decision.Leaf([]string{"Viande", "Poisson", "Fruits de mer", "Œufs", "Produits laitiers"}),
		decision.Leaf([]string(nil))),
	decision.Branch("restrictions", decision.Includes, "Gluten",
		decision.Leaf([]string{"Gluten", "Pain", "Pâtes"}),
		decision.Leaf([]string(nil))),
	decision.Branch("restrictions", decision.Includes, "Lactose",
		decision.Leaf([]string{"Produits laitiers", "Lait", "Fromage"}),
		decision.Leaf([]string(nil))),
	decision.Branch("restrictions", decision.Includes, "Noix",
		decision.Leaf([]string{"Noix", "Arachides", "Amandes"}),
		decision.Leaf([]string(nil))),
	decision.Branch("medicalConditions", decision.Includes, "Diabète",
		decision.Leaf([]string{"Sucre", "Sucreries", "Sodas"}),
		decision.Leaf([]string(nil))),
}

const (
	caloriesPerGramProtein = 4
	caloriesPerGramCarbs   = 4
	caloriesPerGramFat     = 9
)

// ResolveNutritionParameters runs the nutrition rule trees for a profile and
// objective. The daily target is Harris-Benedict BMR scaled by activity, then
// shifted by the objective and BMI corrections.
func ResolveNutritionParameters(profile Profile, objective Objective) (NutritionParameters, error) {
	ctx := ruleContext(profile, objective)

	coeffs, err := decision.Evaluate(bmrTree, ctx)
	if err != nil {
		return NutritionParameters{}, fmt.Errorf("resolve BMR coefficients: %w", err)
	}
	bmr := coeffs.Base +
		coeffs.Weight*profile.WeightKg +
		coeffs.Height*profile.HeightCm() -
		coeffs.Age*float64(profile.Age)

	activity, err := decision.Evaluate(activityTree, ctx)
	if err != nil {
		return NutritionParameters{}, fmt.Errorf("resolve activity multiplier: %w", err)
	}

	objectiveAdj, err := decision.Evaluate(objectiveCalorieTree, ctx)
	if err != nil {
		return NutritionParameters{}, fmt.Errorf("resolve objective adjustment: %w", err)
	}

	bmiAdj, err := decision.Evaluate(nutritionBMITree, ctx)
	if err != nil {
		return NutritionParameters{}, fmt.Errorf("resolve BMI adjustment: %w", err)
	}

	daily := int(math.Round(bmr*activity + float64(objectiveAdj) + float64(bmiAdj)))

	split, err := decision.Evaluate(macroSplitTree, ctx)
	if err != nil {
		return NutritionParameters{}, fmt.Errorf("resolve macro split: %w", err)
	}

	template, err := decision.Evaluate(mealTemplateTree, ctx)
	if err != nil {
		return NutritionParameters{}, fmt.Errorf("resolve meal template: %w", err)
	}

	excluded, err := foodExclusionForest.Evaluate(ctx)
	if err != nil {
		return NutritionParameters{}, fmt.Errorf("resolve food exclusions: %w", err)
	}

	kcal := float64(daily)
	return NutritionParameters{
		DailyCalories: daily,
		Macros: Macros{
			ProteinG: int(math.Round(kcal * split.Protein / caloriesPerGramProtein)),
			CarbsG:   int(math.Round(kcal * split.Carbs / caloriesPerGramCarbs)),
			FatG:     int(math.Round(kcal * split.Fat / caloriesPerGramFat)),
		},
		MealTemplate:  template,
		ExcludedFoods: excluded,
	}, nil
}
