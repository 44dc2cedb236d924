package scope

// Evaluate resolves a list of scope configurations against one marshal's
// context and returns the single winning declaration under "most specific
// wins". Ties on specificity break by ascending lexical order of the
// candidate context id, so results never depend on configuration order or
// map iteration order.
//
// Evaluate never fails: malformed configurations, unknown scope/target
// combinations and stale entity references all degrade to "no match".
func Evaluate(configs []Configuration, mctx *MarshalContext, lookup CheckpointAreas) MatchResult {
	if mctx == nil || len(configs) == 0 {
		return NoMatch()
	}

	var best *candidate
	for i := range configs {
		c, ok := matchConfiguration(&configs[i], mctx, lookup)
		if !ok {
			continue
		}
		if best == nil || c.beats(*best) {
			tmp := c
			best = &tmp
		}
	}

	if best == nil {
		return NoMatch()
	}
	return MatchResult{
		IsRelevant:  true,
		Winning:     best.config,
		Specificity: best.specificity,
		ContextType: ContextTypeFor(best.config.Scope),
		ContextID:   best.contextID,
	}
}

// AllRelevantContexts returns every completion context the marshal can reach
// for the winning configuration. For personal scopes that is the single
// winning context; for shared scopes it enumerates every matching checkpoint
// or area, including access derived from area-lead roles, so a lead sees the
// whole of their jurisdiction rather than only the first match.
func AllRelevantContexts(configs []Configuration, mctx *MarshalContext, lookup CheckpointAreas) []Context {
	res := Evaluate(configs, mctx, lookup)
	if !res.IsRelevant {
		return nil
	}

	cfg := res.Winning
	if !cfg.Scope.IsShared() {
		return []Context{{Type: res.ContextType, ID: res.ContextID}}
	}

	ctype := ContextTypeFor(cfg.Scope)
	var ids []string
	switch cfg.Target {
	case TargetCheckpoint:
		ids = reachableCheckpoints(cfg, mctx, lookup)
	case TargetArea:
		if cfg.Scope == OnePerCheckpoint {
			ids = reachableCheckpointsInAreas(cfg, mctx, lookup)
		} else {
			ids = reachableAreas(cfg, mctx)
		}
	default:
		ids = []string{res.ContextID}
	}

	contexts := make([]Context, 0, len(ids))
	for _, id := range ids {
		contexts = append(contexts, Context{Type: ctype, ID: id})
	}
	return contexts
}

type candidate struct {
	config      *Configuration
	specificity Specificity
	contextID   string
}

// beats implements the (specificity, contextID) ordering.
func (c candidate) beats(other candidate) bool {
	if c.specificity != other.specificity {
		return c.specificity < other.specificity
	}
	return c.contextID < other.contextID
}

func matchConfiguration(cfg *Configuration, mctx *MarshalContext, lookup CheckpointAreas) (candidate, bool) {
	if cfg.Scope == TypeUnknown {
		return candidate{}, false
	}

	switch cfg.Target {
	case TargetMarshal:
		return matchMarshalTarget(cfg, mctx)
	case TargetCheckpoint:
		return matchCheckpointTarget(cfg, mctx, lookup)
	case TargetArea:
		if cfg.Scope == OnePerCheckpoint {
			return matchCheckpointsWithinAreas(cfg, mctx, lookup)
		}
		return matchAreaTarget(cfg, mctx)
	default:
		return candidate{}, false
	}
}

func matchMarshalTarget(cfg *Configuration, mctx *MarshalContext) (candidate, bool) {
	if !cfg.ContainsID(AllMarshals) && !cfg.ContainsID(mctx.MarshalID()) {
		return candidate{}, false
	}
	return candidate{config: cfg, specificity: SpecificityMarshal, contextID: mctx.MarshalID()}, true
}

func matchCheckpointTarget(cfg *Configuration, mctx *MarshalContext, lookup CheckpointAreas) (candidate, bool) {
	all := cfg.ContainsID(AllCheckpoints)

	// Direct assignments first, in assignment order.
	for _, cp := range mctx.AssignedCheckpoints() {
		if all || cfg.ContainsID(cp) {
			return candidate{
				config:      cfg,
				specificity: SpecificityCheckpoint,
				contextID:   checkpointContextID(cfg, mctx, cp),
			}, true
		}
	}

	// An area lead matches checkpoints inside their areas without a direct
	// assignment, but only for the scopes leads administer.
	if cfg.Scope == OnePerCheckpoint || cfg.Scope == OneLeadPerArea {
		for _, cp := range namedCheckpoints(cfg, lookup, all) {
			if mctx.LeadsAnyOf(lookup.AreasOf(cp)) {
				return candidate{config: cfg, specificity: SpecificityCheckpoint, contextID: cp}, true
			}
		}
	}

	return candidate{}, false
}

// matchCheckpointsWithinAreas handles an Area-typed configuration scoped
// OnePerCheckpoint: one completion per checkpoint, restricted to checkpoints
// inside the named areas.
func matchCheckpointsWithinAreas(cfg *Configuration, mctx *MarshalContext, lookup CheckpointAreas) (candidate, bool) {
	all := cfg.ContainsID(AllAreas)
	for _, cp := range mctx.AssignedCheckpoints() {
		areas := lookup.AreasOf(cp)
		if len(areas) == 0 {
			continue
		}
		if all || intersectsIDs(areas, cfg) {
			return candidate{config: cfg, specificity: SpecificityCheckpoint, contextID: cp}, true
		}
	}

	// An area lead matches every checkpoint of a named (or sentinel-expanded)
	// area they lead, without a direct assignment; first one in lexical order
	// wins, matching the enumeration in reachableCheckpointsInAreas.
	for _, cp := range lookup.SortedIDs() {
		for _, area := range lookup.AreasOf(cp) {
			if !mctx.LeadsArea(area) {
				continue
			}
			if all || cfg.ContainsID(area) {
				return candidate{config: cfg, specificity: SpecificityCheckpoint, contextID: cp}, true
			}
		}
	}
	return candidate{}, false
}

func matchAreaTarget(cfg *Configuration, mctx *MarshalContext) (candidate, bool) {
	all := cfg.ContainsID(AllAreas)

	switch cfg.Scope {
	case OneLeadPerArea, EveryAreaLead:
		area, ok := firstLeadArea(cfg, mctx, all)
		if !ok {
			return candidate{}, false
		}
		contextID := area
		if cfg.Scope == EveryAreaLead {
			contextID = mctx.MarshalID()
		}
		return candidate{config: cfg, specificity: SpecificityArea, contextID: contextID}, true

	case EveryoneInAreas, OnePerArea:
		// OnePerArea additionally admits the area's leads so they can clear
		// shared tasks for areas they did not personally staff.
		allowLead := cfg.Scope == OnePerArea
		area, ok := firstMemberArea(cfg, mctx, all, allowLead)
		if !ok {
			return candidate{}, false
		}
		contextID := area
		if cfg.Scope == EveryoneInAreas {
			contextID = mctx.MarshalID()
		}
		return candidate{config: cfg, specificity: SpecificityArea, contextID: contextID}, true

	default:
		return candidate{}, false
	}
}

// firstLeadArea finds the first named area the marshal leads, in id-list
// order; the sentinel expands to the lexically smallest led area.
func firstLeadArea(cfg *Configuration, mctx *MarshalContext, all bool) (string, bool) {
	if all {
		leads := mctx.LeadAreas()
		if len(leads) == 0 {
			return "", false
		}
		return leads[0], true
	}
	for _, id := range cfg.IDs {
		if mctx.LeadsArea(id) {
			return id, true
		}
	}
	return "", false
}

func firstMemberArea(cfg *Configuration, mctx *MarshalContext, all, allowLead bool) (string, bool) {
	if all {
		candidates := mctx.AssignedAreas()
		if allowLead {
			candidates = mergeSorted(candidates, mctx.LeadAreas())
		}
		if len(candidates) == 0 {
			return "", false
		}
		return candidates[0], true
	}
	for _, id := range cfg.IDs {
		if mctx.IsInArea(id) || (allowLead && mctx.LeadsArea(id)) {
			return id, true
		}
	}
	return "", false
}

// checkpointContextID applies the personal-vs-shared context rule for
// checkpoint-typed configurations.
func checkpointContextID(cfg *Configuration, mctx *MarshalContext, checkpointID string) string {
	if cfg.Scope.IsPersonal() {
		return mctx.MarshalID()
	}
	return checkpointID
}

// namedCheckpoints returns the checkpoints a configuration names, in id-list
// order, or every known checkpoint in lexical order when the sentinel is
// present.
func namedCheckpoints(cfg *Configuration, lookup CheckpointAreas, all bool) []string {
	if all {
		return lookup.SortedIDs()
	}
	ids := make([]string, 0, len(cfg.IDs))
	for _, id := range cfg.IDs {
		if id == AllCheckpoints {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// reachableCheckpoints enumerates every checkpoint a marshal can reach for a
// checkpoint-typed shared configuration: direct assignments in assignment
// order, then lead-derived checkpoints in lexical order.
func reachableCheckpoints(cfg *Configuration, mctx *MarshalContext, lookup CheckpointAreas) []string {
	all := cfg.ContainsID(AllCheckpoints)
	seen := make(map[string]struct{})
	var out []string

	for _, cp := range mctx.AssignedCheckpoints() {
		if all || cfg.ContainsID(cp) {
			appendUnique(&out, seen, cp)
		}
	}

	if cfg.Scope == OnePerCheckpoint || cfg.Scope == OneLeadPerArea {
		for _, cp := range namedCheckpoints(cfg, lookup, all) {
			if mctx.LeadsAnyOf(lookup.AreasOf(cp)) {
				appendUnique(&out, seen, cp)
			}
		}
	}
	return out
}

// reachableCheckpointsInAreas enumerates checkpoints for an Area-typed
// OnePerCheckpoint configuration: assigned checkpoints inside the named
// areas, plus every checkpoint of a named area the marshal leads.
func reachableCheckpointsInAreas(cfg *Configuration, mctx *MarshalContext, lookup CheckpointAreas) []string {
	all := cfg.ContainsID(AllAreas)
	seen := make(map[string]struct{})
	var out []string

	for _, cp := range mctx.AssignedCheckpoints() {
		areas := lookup.AreasOf(cp)
		if len(areas) == 0 {
			continue
		}
		if all || intersectsIDs(areas, cfg) {
			appendUnique(&out, seen, cp)
		}
	}

	for _, cp := range lookup.SortedIDs() {
		for _, area := range lookup.AreasOf(cp) {
			if !mctx.LeadsArea(area) {
				continue
			}
			if all || cfg.ContainsID(area) {
				appendUnique(&out, seen, cp)
				break
			}
		}
	}
	return out
}

// reachableAreas enumerates areas for OnePerArea / OneLeadPerArea
// configurations.
func reachableAreas(cfg *Configuration, mctx *MarshalContext) []string {
	all := cfg.ContainsID(AllAreas)
	leadOnly := cfg.Scope == OneLeadPerArea

	seen := make(map[string]struct{})
	var out []string

	if all {
		if !leadOnly {
			for _, area := range mctx.AssignedAreas() {
				appendUnique(&out, seen, area)
			}
		}
		for _, area := range mctx.LeadAreas() {
			appendUnique(&out, seen, area)
		}
		return out
	}

	for _, id := range cfg.IDs {
		if leadOnly {
			if mctx.LeadsArea(id) {
				appendUnique(&out, seen, id)
			}
			continue
		}
		if mctx.IsInArea(id) || mctx.LeadsArea(id) {
			appendUnique(&out, seen, id)
		}
	}
	return out
}

func intersectsIDs(areas []string, cfg *Configuration) bool {
	for _, a := range areas {
		if cfg.ContainsID(a) {
			return true
		}
	}
	return false
}

func appendUnique(out *[]string, seen map[string]struct{}, id string) {
	if _, ok := seen[id]; ok {
		return
	}
	seen[id] = struct{}{}
	*out = append(*out, id)
}

// mergeSorted merges two lexically sorted id slices, dropping duplicates.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
