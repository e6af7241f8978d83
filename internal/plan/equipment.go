package plan

// gymBundle is the equipment a standard gym membership gives access to. The
// "Gym" tag expands into this bundle before any rule consults the set.
var gymBundle = []string{
	"Barbell",
	"Dumbbells",
	"Bench",
	"Kettlebell",
	"Machine",
	"Cable",
	"Pull-up Bar",
	"Resistance Bands",
}

// expandEquipment returns tags with the "Gym" bundle unfolded, deduplicated
// and in stable order. The input slice is not modified.
func expandEquipment(tags []string) []string {
	expanded := make([]string, 0, len(tags))
	seen := make(map[string]struct{})
	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		expanded = append(expanded, tag)
	}
	for _, tag := range tags {
		add(tag)
		if tag == "Gym" {
			for _, bundled := range gymBundle {
				add(bundled)
			}
		}
	}
	return expanded
}
