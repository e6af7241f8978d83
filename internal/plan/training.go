package plan

import (
	"fmt"

	"github.com/mlefevre/fitplan/internal/decision"
)

// SplitPlan is the weekly structure a training program follows. Template
// holds one muscle-group list per session; the assembler cycles through it.
type SplitPlan struct {
	ID          string
	Name        string
	Description string
	Template    [][]string
}

// Volume is the per-exercise prescription.
type Volume struct {
	Sets        int
	Reps        int
	RestSeconds int
}

func (v Volume) add(adj Volume) Volume {
	return Volume{
		Sets:        v.Sets + adj.Sets,
		Reps:        v.Reps + adj.Reps,
		RestSeconds: v.RestSeconds + adj.RestSeconds,
	}
}

// TrainingParameters is the resolved rule output the training assembler
// consumes.
type TrainingParameters struct {
	Split           SplitPlan
	Volume          Volume
	ExcludedMuscles []string
}

// heavyEquipment gates the loaded splits. A profile owning none of these
// trains bodyweight regardless of frequency.
var heavyEquipment = []string{"Barbell", "Dumbbells", "Gym"}

var (
	splitFullBody = SplitPlan{
		ID:          "full-body",
		Name:        "Full-Body",
		Description: "Tout le corps à chaque séance, adapté aux fréquences basses.",
		Template: [][]string{
			{"Pectoraux", "Dos", "Quadriceps", "Ischio-jambiers", "Épaules", "Abdominaux"},
		},
	}

	splitPushPullLegs = SplitPlan{
		ID:          "push-pull-legs",
		Name:        "Push/Pull/Legs",
		Description: "Rotation poussée, tirage, jambes sur trois séances.",
		Template: [][]string{
			{"Pectoraux", "Épaules", "Triceps"},
			{"Dos", "Biceps", "Avant-bras"},
			{"Quadriceps", "Ischio-jambiers", "Fessiers", "Mollets"},
		},
	}

	splitUpperLower = SplitPlan{
		ID:          "upper-lower",
		Name:        "Haut/Bas",
		Description: "Alternance haut du corps et bas du corps sur quatre séances.",
		Template: [][]string{
			{"Pectoraux", "Dos", "Épaules", "Biceps", "Triceps"},
			{"Quadriceps", "Ischio-jambiers", "Fessiers", "Mollets", "Abdominaux"},
		},
	}

	splitFiveWay = SplitPlan{
		ID:          "five-way",
		Name:        "Split 5 jours",
		Description: "Un groupe musculaire principal par séance.",
		Template: [][]string{
			{"Pectoraux"},
			{"Dos", "Lombaires"},
			{"Quadriceps", "Ischio-jambiers", "Fessiers", "Mollets"},
			{"Épaules", "Abdominaux"},
			{"Biceps", "Triceps", "Avant-bras"},
		},
	}

	splitBodyweight = SplitPlan{
		ID:          "bodyweight",
		Name:        "Poids du corps",
		Description: "Circuit sans matériel en trois rotations.",
		Template: [][]string{
			{"Pectoraux", "Triceps", "Abdominaux"},
			{"Quadriceps", "Fessiers", "Mollets"},
			{"Dos", "Abdominaux"},
		},
	}
)

// splitTree selects the weekly split. Profiles without heavy equipment always
// land on the bodyweight split; the rest follow the frequency ladder.
var splitTree = decision.Branch("equipment", decision.Intersects, heavyEquipment,
	decision.Branch("frequency", decision.LessOrEqual, 2,
		decision.Leaf(splitFullBody),
		decision.Branch("frequency", decision.Equal, 3,
			decision.Leaf(splitPushPullLegs),
			decision.Branch("frequency", decision.Equal, 4,
				decision.Leaf(splitUpperLower),
				decision.Leaf(splitFiveWay)))),
	decision.Leaf(splitBodyweight))

// levelGate builds the innermost volume gate on experience level.
func levelGate(beginner, intermediate, advanced Volume) *decision.Node[Volume] {
	return decision.Branch("level", decision.Equal, string(LevelBeginner),
		decision.Leaf(beginner),
		decision.Branch("level", decision.Equal, string(LevelIntermediate),
			decision.Leaf(intermediate),
			decision.Leaf(advanced)))
}

// volumeTree resolves base sets/reps/rest: equipment, then objective, then
// level.
var volumeTree = decision.Branch("equipment", decision.Intersects, heavyEquipment,
	decision.Branch("objective", decision.Equal, string(ObjectiveMuscleGain),
		levelGate(
			Volume{Sets: 3, Reps: 8, RestSeconds: 120},
			Volume{Sets: 4, Reps: 8, RestSeconds: 105},
			Volume{Sets: 5, Reps: 6, RestSeconds: 120}),
		levelGate(
			Volume{Sets: 3, Reps: 12, RestSeconds: 75},
			Volume{Sets: 4, Reps: 10, RestSeconds: 75},
			Volume{Sets: 4, Reps: 12, RestSeconds: 60})),
	decision.Branch("objective", decision.Equal, string(ObjectiveMuscleGain),
		levelGate(
			Volume{Sets: 3, Reps: 12, RestSeconds: 90},
			Volume{Sets: 4, Reps: 12, RestSeconds: 75},
			Volume{Sets: 4, Reps: 15, RestSeconds: 60}),
		levelGate(
			Volume{Sets: 3, Reps: 15, RestSeconds: 60},
			Volume{Sets: 3, Reps: 18, RestSeconds: 45},
			Volume{Sets: 4, Reps: 20, RestSeconds: 45})))

// ageAdjustmentTree lengthens rest for older profiles.
var ageAdjustmentTree = decision.Branch("age", decision.GreaterOrEqual, 61,
	decision.Leaf(Volume{RestSeconds: 40}),
	decision.Branch("age", decision.GreaterOrEqual, 40,
		decision.Leaf(Volume{RestSeconds: 20}),
		decision.Leaf(Volume{})))

// bmiAdjustmentTree lengthens rest for higher body mass indexes.
var bmiAdjustmentTree = decision.Branch("bmi", decision.Greater, 30,
	decision.Leaf(Volume{RestSeconds: 30}),
	decision.Branch("bmi", decision.Greater, 25,
		decision.Leaf(Volume{RestSeconds: 15}),
		decision.Leaf(Volume{})))

// cardioRiskConditions trigger the cautious volume adjustment.
var cardioRiskConditions = []string{"Problèmes cardiaques", "Asthme", "Hypertension"}

var healthAdjustmentTree = decision.Branch("medicalConditions", decision.Intersects, cardioRiskConditions,
	decision.Leaf(Volume{Sets: -1, Reps: -2, RestSeconds: 60}),
	decision.Leaf(Volume{}))

// muscleExclusionForest maps declared physical conditions to muscles a
// session must not target. Rules are independent and cumulative.
var muscleExclusionForest = decision.Forest[string]{
	decision.Branch("physicalConditions", decision.Includes, "Mal de dos",
		decision.Leaf([]string{"Dos", "Lombaires"}),
		decision.Leaf([]string(nil))),
	decision.Branch("physicalConditions", decision.Includes, "Douleur aux jambes",
		decision.Leaf([]string{"Quadriceps", "Ischio-jambiers", "Mollets"}),
		decision.Leaf([]string(nil))),
	decision.Branch("physicalConditions", decision.Includes, "Douleur aux bras",
		decision.Leaf([]string{"Biceps", "Triceps", "Avant-bras"}),
		decision.Leaf([]string(nil))),
	decision.Branch("physicalConditions", decision.Includes, "Douleur aux épaules",
		decision.Leaf([]string{"Épaules"}),
		decision.Leaf([]string(nil))),
	decision.Branch("physicalConditions", decision.Includes, "Douleur à la poitrine",
		decision.Leaf([]string{"Pectoraux"}),
		decision.Leaf([]string(nil))),
}

// ruleContext builds the attribute map all trees evaluate against.
func ruleContext(profile Profile, objective Objective) decision.Context {
	return decision.Context{
		"equipment":          expandEquipment(profile.Equipment),
		"frequency":          profile.WeeklyFrequency,
		"objective":          string(objective.Category),
		"level":              string(profile.Level),
		"age":                profile.Age,
		"bmi":                profile.BMI(),
		"sex":                string(profile.Sex),
		"medicalConditions":  profile.Health.MedicalConditions,
		"physicalConditions": profile.Health.PhysicalConditions,
		"diet":               profile.Diet.Style,
		"restrictions":       profile.Diet.Restrictions,
	}
}

// ResolveTrainingParameters runs the training rule trees for a profile and
// objective. Adjustments are additive and applied without clamping.
func ResolveTrainingParameters(profile Profile, objective Objective) (TrainingParameters, error) {
	ctx := ruleContext(profile, objective)

	split, err := decision.Evaluate(splitTree, ctx)
	if err != nil {
		return TrainingParameters{}, fmt.Errorf("resolve split: %w", err)
	}

	volume, err := decision.Evaluate(volumeTree, ctx)
	if err != nil {
		return TrainingParameters{}, fmt.Errorf("resolve volume: %w", err)
	}

	for _, tree := range []*decision.Node[Volume]{ageAdjustmentTree, bmiAdjustmentTree, healthAdjustmentTree} {
		adj, adjErr := decision.Evaluate(tree, ctx)
		if adjErr != nil {
			return TrainingParameters{}, fmt.Errorf("resolve volume adjustment: %w", adjErr)
		}
		volume = volume.add(adj)
	}

	excluded, err := muscleExclusionForest.Evaluate(ctx)
	if err != nil {
		return TrainingParameters{}, fmt.Errorf("resolve muscle exclusions: %w", err)
	}

	return TrainingParameters{
		Split:           split,
		Volume:          volume,
		ExcludedMuscles: excluded,
	}, nil
}
