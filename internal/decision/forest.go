package decision

// Forest is a set of independent exclusion rules. Each tree yields a list of
// excluded items; the forest result is their deduplicated union.
type Forest[T comparable] []*Node[[]T]

// Evaluate runs every tree against ctx and merges the leaf lists, keeping the
// first occurrence of each item.
func (f Forest[T]) Evaluate(ctx Context) ([]T, error) {
	var merged []T
	seen := make(map[T]struct{})
	for _, tree := range f {
		items, err := Evaluate(tree, ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged, nil
}
