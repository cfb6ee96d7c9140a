package engine

func master(path string) Split { return Split{Path: path, Master: true} }

func abiSplit(path, abi string, alts ...string) Split {
	return Split{Path: path, Targeting: ApkTargeting{Abi: &ValueSet[string]{Values: []string{abi}, Alternatives: alts}}}
}

func langSplit(path string, values []string, alts ...string) Split {
	return Split{Path: path, Targeting: ApkTargeting{Language: &ValueSet[string]{Values: values, Alternatives: alts}}}
}

func densitySplit(path string, alias string, alts ...string) Split {
	vs := &ValueSet[ScreenDensity]{Values: []ScreenDensity{{Alias: alias}}}
	for _, a := range alts {
		vs.Alternatives = append(vs.Alternatives, ScreenDensity{Alias: a})
	}
	return Split{Path: path, Targeting: ApkTargeting{Density: vs}}
}

func module(name string, delivery DeliveryType, splits ...Split) Module {
	return Module{Name: name, Kind: ModuleFeature, Delivery: delivery, Splits: splits}
}

func sdkTargeting(min int, alts ...int) VariantTargeting {
	return VariantTargeting{Sdk: &ValueSet[int]{Values: []int{min}, Alternatives: alts}}
}

func splitArchive(modules ...Module) *Archive {
	return &Archive{Variants: []Variant{{Number: 1, Targeting: sdkTargeting(21), Modules: modules}}}
}

func mustDevice(spec DeviceSpec) Device {
	d, err := ParseDevice(spec)
	if err != nil {
		panic(err)
	}
	return d
}

func paths(apks []MatchedApk) []string {
	out := make([]string, len(apks))
	for i, a := range apks {
		out[i] = a.Path
	}
	return out
}

func intPtr(v int) *int { return &v }
