package engine

// moduleFilter is the normalized module restriction of a request.
type moduleFilter struct {
	all   bool
	names map[string]bool
}

func newModuleFilter(modules []string) (moduleFilter, error) {
	f := moduleFilter{}
	if modules == nil {
		return f, nil
	}
	f.names = make(map[string]bool, len(modules))
	for _, name := range modules {
		switch name {
		case "":
			return f, invalidRequest("module filter contains an empty module name")
		case AllModules:
			f.all = true
		default:
			f.names[name] = true
		}
	}
	if f.all && len(f.names) > 0 {
		return f, invalidRequest("%s cannot be combined with explicit module names", AllModules)
	}
	if !f.all && len(f.names) == 0 {
		return f, invalidRequest("module filter is empty")
	}
	return f, nil
}

func (f moduleFilter) restricted() bool { return f.names != nil }

// eligibleModules returns the modules of v to install, in variant order,
// closed over their dependencies.
func (m *ApkMatcher) eligibleModules(v *Variant) ([]*Module, error) {
	byName := make(map[string]int, len(v.Modules))
	for i := range v.Modules {
		byName[v.Modules[i].Name] = i
	}

	visited := make([]bool, len(v.Modules))
	var queue []int
	visit := func(i int) {
		if !visited[i] {
			visited[i] = true
			queue = append(queue, i)
		}
	}
	for i := range v.Modules {
		mod := &v.Modules[i]
		if m.opts.InstantOnly && !mod.Instant {
			continue
		}
		if m.startsEligible(mod) {
			visit(i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, dep := range v.Modules[i].Dependencies {
			j, ok := byName[dep]
			if !ok {
				return nil, invariant("module %q depends on %q which variant %d does not contain",
					v.Modules[i].Name, dep, v.Number)
			}
			visit(j)
		}
	}

	out := make([]*Module, 0, len(v.Modules))
	for i := range v.Modules {
		if visited[i] {
			out = append(out, &v.Modules[i])
		}
	}
	return out, nil
}

// startsEligible decides whether a module is installed before dependency
// closure. Ineligible conditional modules are left out even when requested,
// by name or through AllModules.
func (m *ApkMatcher) startsEligible(mod *Module) bool {
	if mod.Name == BaseModule {
		return true
	}
	if mod.Delivery == DeliveryConditional {
		ok := m.matchers.matchesCondition(mod.Condition)
		if !ok {
			m.log.Debug().Str("module", mod.Name).Str("condition", describeCondition(mod.Condition)).
				Msg("conditional module does not apply to device")
		}
		return ok
	}
	if m.filter.all || m.filter.names[mod.Name] {
		return true
	}
	switch mod.Delivery {
	case DeliveryInstallTime, "":
		return !mod.isAsset() || m.opts.IncludeInstallTimeAssetModules
	default:
		return false
	}
}
