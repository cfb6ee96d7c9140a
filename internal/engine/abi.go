package engine

import (
	"cmp"
	"slices"
	"strings"
)

var abis64 = map[string]bool{
	"arm64-v8a": true,
	"x86_64":    true,
	"mips64":    true,
	"riscv64":   true,
}

func newAbiAxis(d Device) *axis[string] {
	return &axis[string]{
		dim:     DimensionAbi,
		present: len(d.Abis) > 0,
		device:  listString(d.Abis),
		variant: func(t VariantTargeting) *ValueSet[string] { return t.Abi },
		apk:     func(t ApkTargeting) *ValueSet[string] { return t.Abi },
		match: func(vs *ValueSet[string]) bool {
			best, ok := preferredAbi(d.Abis, vs.all())
			if len(vs.Values) == 0 {
				return !ok
			}
			return ok && slices.Contains(vs.Values, best)
		},
		supports: func(vs *ValueSet[string]) bool { return containsAny(d.Abis, vs.all()) },
		format:   func(v string) string { return v },
	}
}

// preferredAbi returns the first device ABI, in device preference order,
// that appears in candidates.
func preferredAbi(device, candidates []string) (string, bool) {
	for _, abi := range device {
		if slices.Contains(candidates, abi) {
			return abi, true
		}
	}
	return "", false
}

func newMultiAbiAxis(d Device) *axis[[]string] {
	return &axis[[]string]{
		dim:     DimensionMultiAbi,
		present: len(d.Abis) > 0,
		device:  listString(d.Abis),
		variant: func(t VariantTargeting) *ValueSet[[]string] { return t.MultiAbi },
		apk:     func(t ApkTargeting) *ValueSet[[]string] { return t.MultiAbi },
		match: func(vs *ValueSet[[]string]) bool {
			best, ok := bestAbiSet(d.Abis, vs.all())
			if len(vs.Values) == 0 {
				return !ok
			}
			return ok && slices.ContainsFunc(vs.Values, func(s []string) bool { return sameAbiSet(s, best) })
		},
		supports: func(vs *ValueSet[[]string]) bool {
			return slices.ContainsFunc(vs.all(), func(s []string) bool { return abiSetContained(d.Abis, s) })
		},
		format: func(s []string) string {
			sorted := slices.Clone(s)
			slices.Sort(sorted)
			return "{" + strings.Join(sorted, ",") + "}"
		},
	}
}

func abiSetContained(device, set []string) bool {
	if len(set) == 0 {
		return false
	}
	for _, abi := range set {
		if !slices.Contains(device, abi) {
			return false
		}
	}
	return true
}

func sameAbiSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, abi := range a {
		if !slices.Contains(b, abi) {
			return false
		}
	}
	return true
}

// bestAbiSet picks, among the sets the device can run entirely, the one
// ranked highest by compareAbiSets.
func bestAbiSet(device []string, sets [][]string) ([]string, bool) {
	var best []string
	found := false
	for _, s := range sets {
		if !abiSetContained(device, s) {
			continue
		}
		if !found || compareAbiSets(device, s, best) > 0 {
			best, found = s, true
		}
	}
	return best, found
}

// compareAbiSets orders two device-compatible ABI sets: larger sets first,
// then sets carrying a 64-bit ABI, then by device preference of their ABIs.
func compareAbiSets(device, a, b []string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	if a64, b64 := hasAbi64(a), hasAbi64(b); a64 != b64 {
		if a64 {
			return 1
		}
		return -1
	}
	// Lower device indices are preferred, hence the reversed comparison.
	return slices.Compare(deviceIndices(device, b), deviceIndices(device, a))
}

func hasAbi64(set []string) bool {
	return slices.ContainsFunc(set, func(abi string) bool { return abis64[abi] })
}

func deviceIndices(device, set []string) []int {
	idx := make([]int, 0, len(set))
	for _, abi := range set {
		idx = append(idx, slices.Index(device, abi))
	}
	slices.Sort(idx)
	return idx
}
