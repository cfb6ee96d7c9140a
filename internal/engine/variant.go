package engine

// selectVariant returns the single variant matching the device, nil when
// there are no candidates, or an error explaining why none matched.
func (m *matcherSet) selectVariant(candidates []*Variant) (*Variant, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	var matched []*Variant
	for _, v := range candidates {
		if m.matchesVariant(v.Targeting) {
			matched = append(matched, v)
		}
	}
	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		for _, dm := range m.variantMatchers {
			if err := dm.CheckVariants(candidates); err != nil {
				return nil, err
			}
		}
		return nil, invariant("no variant matches the device although every dimension is supported")
	default:
		nums := make([]int, len(matched))
		for i, v := range matched {
			nums[i] = v.Number
		}
		return nil, invariant("variants %v all match the device", nums)
	}
}
