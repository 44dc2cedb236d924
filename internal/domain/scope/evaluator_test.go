package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookup() CheckpointAreas {
	return CheckpointAreas{
		"cp-a": {"area-1"},
		"cp-b": {"area-1"},
		"cp-c": {"area-2"},
		"cp-d": {"area-2", "area-3"},
		"cp-e": nil,
	}
}

func TestEvaluate_MostSpecificWins(t *testing.T) {
	lookup := testLookup()

	tests := []struct {
		name        string
		configs     []Configuration
		mctx        *MarshalContext
		wantMatch   bool
		wantScope   Type
		wantSpec    Specificity
		wantCtxType ContextType
		wantCtxID   string
	}{
		{
			name: "marshal target beats area target regardless of order",
			configs: []Configuration{
				{Scope: OnePerArea, Target: TargetArea, IDs: []string{"area-1"}},
				{Scope: SpecificPeople, Target: TargetMarshal, IDs: []string{"m1"}},
			},
			mctx:        NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			wantMatch:   true,
			wantScope:   SpecificPeople,
			wantSpec:    SpecificityMarshal,
			wantCtxType: ContextPersonal,
			wantCtxID:   "m1",
		},
		{
			name: "marshal target beats area target in reverse order",
			configs: []Configuration{
				{Scope: SpecificPeople, Target: TargetMarshal, IDs: []string{"m1"}},
				{Scope: OnePerArea, Target: TargetArea, IDs: []string{"area-1"}},
			},
			mctx:      NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			wantMatch: true,
			wantScope: SpecificPeople,
			wantSpec:  SpecificityMarshal,
			wantCtxID: "m1",
		},
		{
			name: "checkpoint target beats area target",
			configs: []Configuration{
				{Scope: EveryoneInAreas, Target: TargetArea, IDs: []string{"area-1"}},
				{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{"cp-a"}},
			},
			mctx:        NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			wantMatch:   true,
			wantScope:   OnePerCheckpoint,
			wantSpec:    SpecificityCheckpoint,
			wantCtxType: ContextCheckpoint,
			wantCtxID:   "cp-a",
		},
		{
			name: "equal specificity ties break by ascending context id",
			configs: []Configuration{
				{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{"cp-b"}},
				{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{"cp-a"}},
			},
			mctx:      NewMarshalContext("m1", []string{"cp-b", "cp-a"}, []string{"area-1"}, nil),
			wantMatch: true,
			wantSpec:  SpecificityCheckpoint,
			wantCtxID: "cp-a",
		},
		{
			name: "no configuration matches",
			configs: []Configuration{
				{Scope: SpecificPeople, Target: TargetMarshal, IDs: []string{"m2"}},
				{Scope: OnePerArea, Target: TargetArea, IDs: []string{"area-9"}},
			},
			mctx:      NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			wantMatch: false,
		},
		{
			name:      "empty configuration list",
			configs:   nil,
			mctx:      NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.configs, tt.mctx, lookup)

			assert.Equal(t, tt.wantMatch, res.IsRelevant)
			assert.Equal(t, tt.wantMatch, res.Winning != nil, "IsRelevant must mirror Winning")

			if !tt.wantMatch {
				assert.Equal(t, SpecificityNone, res.Specificity)
				return
			}

			require.NotNil(t, res.Winning)
			if tt.wantScope != TypeUnknown {
				assert.Equal(t, tt.wantScope, res.Winning.Scope)
			}
			if tt.wantSpec != 0 {
				assert.Equal(t, tt.wantSpec, res.Specificity)
			}
			assert.Equal(t, tt.wantCtxID, res.ContextID)
			assert.Equal(t, ContextTypeFor(res.Winning.Scope), res.ContextType)
		})
	}
}

func TestEvaluate_SentinelEquivalence(t *testing.T) {
	lookup := testLookup()
	mctx := NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil)

	explicit := Evaluate([]Configuration{
		{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{"cp-a"}},
	}, mctx, lookup)
	sentinel := Evaluate([]Configuration{
		{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{AllCheckpoints}},
	}, mctx, lookup)

	assert.Equal(t, explicit.IsRelevant, sentinel.IsRelevant)
	assert.Equal(t, explicit.Specificity, sentinel.Specificity)
	assert.Equal(t, explicit.ContextType, sentinel.ContextType)
	assert.Equal(t, explicit.ContextID, sentinel.ContextID)
}

func TestEvaluate_SentinelsAreCaseSensitive(t *testing.T) {
	mctx := NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil)

	res := Evaluate([]Configuration{
		{Scope: SpecificPeople, Target: TargetMarshal, IDs: []string{"all_marshals"}},
	}, mctx, testLookup())

	assert.False(t, res.IsRelevant, "lowercase sentinel is an ordinary non-matching id")
}

func TestEvaluate_SentinelFirstByAssignmentOrder(t *testing.T) {
	// cp-c sorts after cp-a but was assigned first; the sentinel must follow
	// assignment order, not lexical order.
	mctx := NewMarshalContext("m1", []string{"cp-c", "cp-a"}, []string{"area-1", "area-2"}, nil)

	res := Evaluate([]Configuration{
		{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{AllCheckpoints}},
	}, mctx, testLookup())

	require.True(t, res.IsRelevant)
	assert.Equal(t, "cp-c", res.ContextID)
}

func TestEvaluate_CheckpointTargetPersonalScope(t *testing.T) {
	// EveryoneAtCheckpoints is personal: the context is the marshal, not the
	// checkpoint.
	mctx := NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil)

	res := Evaluate([]Configuration{
		{Scope: EveryoneAtCheckpoints, Target: TargetCheckpoint, IDs: []string{"cp-a"}},
	}, mctx, testLookup())

	require.True(t, res.IsRelevant)
	assert.Equal(t, ContextPersonal, res.ContextType)
	assert.Equal(t, "m1", res.ContextID)
	assert.Equal(t, SpecificityCheckpoint, res.Specificity)
}

func TestEvaluate_AreaLeadCheckpointExtension(t *testing.T) {
	lookup := testLookup()
	// m1 leads area-1 but is not assigned anywhere.
	lead := NewMarshalContext("m1", nil, nil, []string{"area-1"})

	tests := []struct {
		name      string
		cfg       Configuration
		wantMatch bool
		wantCtxID string
	}{
		{
			name:      "OnePerCheckpoint matches via led area",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{"cp-b"}},
			wantMatch: true,
			wantCtxID: "cp-b",
		},
		{
			name:      "OneLeadPerArea matches via led area",
			cfg:       Configuration{Scope: OneLeadPerArea, Target: TargetCheckpoint, IDs: []string{"cp-a"}},
			wantMatch: true,
			wantCtxID: "cp-a",
		},
		{
			name:      "EveryoneAtCheckpoints does not extend to leads",
			cfg:       Configuration{Scope: EveryoneAtCheckpoints, Target: TargetCheckpoint, IDs: []string{"cp-a"}},
			wantMatch: false,
		},
		{
			name:      "checkpoint outside led areas does not match",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{"cp-c"}},
			wantMatch: false,
		},
		{
			name:      "sentinel expands to lexically first led checkpoint",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{AllCheckpoints}},
			wantMatch: true,
			wantCtxID: "cp-a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate([]Configuration{tt.cfg}, lead, lookup)
			assert.Equal(t, tt.wantMatch, res.IsRelevant)
			if tt.wantMatch {
				assert.Equal(t, tt.wantCtxID, res.ContextID)
			}
		})
	}
}

func TestEvaluate_AreaScopedOnePerCheckpoint(t *testing.T) {
	lookup := testLookup()

	tests := []struct {
		name      string
		cfg       Configuration
		mctx      *MarshalContext
		wantMatch bool
		wantCtxID string
	}{
		{
			name:      "first assigned checkpoint inside named area",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{"area-2"}},
			mctx:      NewMarshalContext("m1", []string{"cp-a", "cp-c", "cp-d"}, []string{"area-1", "area-2", "area-3"}, nil),
			wantMatch: true,
			wantCtxID: "cp-c",
		},
		{
			name:      "sentinel matches first assigned checkpoint with any area",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{AllAreas}},
			mctx:      NewMarshalContext("m1", []string{"cp-e", "cp-b"}, []string{"area-1"}, nil),
			wantMatch: true,
			wantCtxID: "cp-b",
		},
		{
			name:      "no assigned checkpoint inside named areas",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{"area-3"}},
			mctx:      NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			wantMatch: false,
		},
		{
			name: "context type is checkpoint even though target is area",
			cfg:  Configuration{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{"area-1"}},
			mctx: NewMarshalContext("m1", []string{"cp-b"}, []string{"area-1"}, nil),

			wantMatch: true,
			wantCtxID: "cp-b",
		},
		{
			name:      "lead without assignment matches first led checkpoint",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{"area-1"}},
			mctx:      NewMarshalContext("m1", nil, nil, []string{"area-1"}),
			wantMatch: true,
			wantCtxID: "cp-a",
		},
		{
			name:      "sentinel admits a lead of any area",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{AllAreas}},
			mctx:      NewMarshalContext("m1", nil, nil, []string{"area-3"}),
			wantMatch: true,
			wantCtxID: "cp-d",
		},
		{
			name:      "lead of an unnamed area does not match",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{"area-2"}},
			mctx:      NewMarshalContext("m1", nil, nil, []string{"area-1"}),
			wantMatch: false,
		},
		{
			name:      "assigned checkpoint beats led checkpoint",
			cfg:       Configuration{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{"area-1", "area-2"}},
			mctx:      NewMarshalContext("m1", []string{"cp-c"}, []string{"area-2"}, []string{"area-1"}),
			wantMatch: true,
			wantCtxID: "cp-c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate([]Configuration{tt.cfg}, tt.mctx, lookup)
			assert.Equal(t, tt.wantMatch, res.IsRelevant)
			if tt.wantMatch {
				assert.Equal(t, SpecificityCheckpoint, res.Specificity)
				assert.Equal(t, ContextCheckpoint, res.ContextType)
				assert.Equal(t, tt.wantCtxID, res.ContextID)
			}
		})
	}
}

func TestEvaluate_AreaTargets(t *testing.T) {
	lookup := testLookup()

	tests := []struct {
		name        string
		cfg         Configuration
		mctx        *MarshalContext
		wantMatch   bool
		wantCtxType ContextType
		wantCtxID   string
	}{
		{
			name:        "OneLeadPerArea requires lead role",
			cfg:         Configuration{Scope: OneLeadPerArea, Target: TargetArea, IDs: []string{"area-1"}},
			mctx:        NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			wantMatch:   false,
			wantCtxType: ContextArea,
		},
		{
			name:        "OneLeadPerArea shared area context for lead",
			cfg:         Configuration{Scope: OneLeadPerArea, Target: TargetArea, IDs: []string{"area-1"}},
			mctx:        NewMarshalContext("m1", nil, nil, []string{"area-1"}),
			wantMatch:   true,
			wantCtxType: ContextArea,
			wantCtxID:   "area-1",
		},
		{
			name:        "EveryAreaLead is personal per lead",
			cfg:         Configuration{Scope: EveryAreaLead, Target: TargetArea, IDs: []string{AllAreas}},
			mctx:        NewMarshalContext("m1", nil, nil, []string{"area-2"}),
			wantMatch:   true,
			wantCtxType: ContextPersonal,
			wantCtxID:   "m1",
		},
		{
			name:        "EveryoneInAreas matches assigned marshal personally",
			cfg:         Configuration{Scope: EveryoneInAreas, Target: TargetArea, IDs: []string{"area-1"}},
			mctx:        NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			wantMatch:   true,
			wantCtxType: ContextPersonal,
			wantCtxID:   "m1",
		},
		{
			name:      "EveryoneInAreas does not admit leads",
			cfg:       Configuration{Scope: EveryoneInAreas, Target: TargetArea, IDs: []string{"area-1"}},
			mctx:      NewMarshalContext("m1", nil, nil, []string{"area-1"}),
			wantMatch: false,
		},
		{
			name:        "OnePerArea admits assigned marshals",
			cfg:         Configuration{Scope: OnePerArea, Target: TargetArea, IDs: []string{"area-1"}},
			mctx:        NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			wantMatch:   true,
			wantCtxType: ContextArea,
			wantCtxID:   "area-1",
		},
		{
			name:        "OnePerArea admits leads without assignment",
			cfg:         Configuration{Scope: OnePerArea, Target: TargetArea, IDs: []string{"area-2"}},
			mctx:        NewMarshalContext("m1", nil, nil, []string{"area-2"}),
			wantMatch:   true,
			wantCtxType: ContextArea,
			wantCtxID:   "area-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate([]Configuration{tt.cfg}, tt.mctx, lookup)
			assert.Equal(t, tt.wantMatch, res.IsRelevant)
			if tt.wantMatch {
				assert.Equal(t, SpecificityArea, res.Specificity)
				assert.Equal(t, tt.wantCtxType, res.ContextType)
				assert.Equal(t, tt.wantCtxID, res.ContextID)
			}
		})
	}
}

func TestEvaluate_MissingCheckpointLookupEntries(t *testing.T) {
	// cp-x is a stale reference: assigned to the marshal but absent from the
	// lookup. It must be skipped, not break the whole evaluation.
	mctx := NewMarshalContext("m1", []string{"cp-x", "cp-a"}, []string{"area-1"}, nil)

	res := Evaluate([]Configuration{
		{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{"area-1"}},
	}, mctx, testLookup())

	require.True(t, res.IsRelevant)
	assert.Equal(t, "cp-a", res.ContextID)
}

func TestEvaluate_Determinism(t *testing.T) {
	lookup := testLookup()
	configs := []Configuration{
		{Scope: OnePerArea, Target: TargetArea, IDs: []string{AllAreas}},
		{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{AllCheckpoints}},
		{Scope: SpecificPeople, Target: TargetMarshal, IDs: []string{"m1"}},
	}
	mctx := NewMarshalContext("m1", []string{"cp-d", "cp-b"}, []string{"area-1", "area-2", "area-3"}, []string{"area-3"})

	first := Evaluate(configs, mctx, lookup)
	for i := 0; i < 50; i++ {
		again := Evaluate(configs, mctx, lookup)
		require.Equal(t, first, again)
	}
}

func TestEvaluate_PersonalBeatsSharedArea(t *testing.T) {
	// m1 assigned only to cp-a in area-1; SpecificPeople must beat OnePerArea.
	lookup := CheckpointAreas{"cp-a": {"area-1"}}
	mctx := NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil)

	res := Evaluate([]Configuration{
		{Scope: OnePerArea, Target: TargetArea, IDs: []string{"area-1"}},
		{Scope: SpecificPeople, Target: TargetMarshal, IDs: []string{"m1"}},
	}, mctx, lookup)

	require.True(t, res.IsRelevant)
	assert.Equal(t, SpecificPeople, res.Winning.Scope)
	assert.Equal(t, SpecificityMarshal, res.Specificity)
	assert.Equal(t, ContextPersonal, res.ContextType)
	assert.Equal(t, "m1", res.ContextID)
}

func TestAllRelevantContexts(t *testing.T) {
	lookup := testLookup()

	tests := []struct {
		name    string
		configs []Configuration
		mctx    *MarshalContext
		want    []Context
	}{
		{
			name: "personal scope returns single winning context",
			configs: []Configuration{
				{Scope: SpecificPeople, Target: TargetMarshal, IDs: []string{"m1"}},
			},
			mctx: NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			want: []Context{{Type: ContextPersonal, ID: "m1"}},
		},
		{
			name: "shared checkpoint scope enumerates all assigned checkpoints",
			configs: []Configuration{
				{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{AllCheckpoints}},
			},
			mctx: NewMarshalContext("m1", []string{"cp-c", "cp-a"}, []string{"area-1", "area-2"}, nil),
			want: []Context{
				{Type: ContextCheckpoint, ID: "cp-c"},
				{Type: ContextCheckpoint, ID: "cp-a"},
			},
		},
		{
			name: "lead sees every checkpoint in their jurisdiction",
			configs: []Configuration{
				{Scope: OnePerCheckpoint, Target: TargetCheckpoint, IDs: []string{AllCheckpoints}},
			},
			mctx: NewMarshalContext("m1", []string{"cp-c"}, []string{"area-2"}, []string{"area-1"}),
			want: []Context{
				{Type: ContextCheckpoint, ID: "cp-c"},
				{Type: ContextCheckpoint, ID: "cp-a"},
				{Type: ContextCheckpoint, ID: "cp-b"},
			},
		},
		{
			name: "area-scoped OnePerCheckpoint includes led area checkpoints",
			configs: []Configuration{
				{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{"area-1"}},
			},
			mctx: NewMarshalContext("m1", nil, nil, []string{"area-1"}),
			want: []Context{
				{Type: ContextCheckpoint, ID: "cp-a"},
				{Type: ContextCheckpoint, ID: "cp-b"},
			},
		},
		{
			name: "OnePerArea enumerates assigned and led areas",
			configs: []Configuration{
				{Scope: OnePerArea, Target: TargetArea, IDs: []string{"area-1", "area-2", "area-3"}},
			},
			mctx: NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, []string{"area-3"}),
			want: []Context{
				{Type: ContextArea, ID: "area-1"},
				{Type: ContextArea, ID: "area-3"},
			},
		},
		{
			name: "OneLeadPerArea enumerates led areas only",
			configs: []Configuration{
				{Scope: OneLeadPerArea, Target: TargetArea, IDs: []string{AllAreas}},
			},
			mctx: NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, []string{"area-2", "area-3"}),
			want: []Context{
				{Type: ContextArea, ID: "area-2"},
				{Type: ContextArea, ID: "area-3"},
			},
		},
		{
			name: "irrelevant item yields no contexts",
			configs: []Configuration{
				{Scope: SpecificPeople, Target: TargetMarshal, IDs: []string{"m2"}},
			},
			mctx: NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, nil),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllRelevantContexts(tt.configs, tt.mctx, lookup)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllRelevantContexts_AreaScopedOnePerCheckpointDeduplicates(t *testing.T) {
	lookup := testLookup()
	// Assigned to cp-a and leading area-1: cp-a must appear once.
	mctx := NewMarshalContext("m1", []string{"cp-a"}, []string{"area-1"}, []string{"area-1"})

	got := AllRelevantContexts([]Configuration{
		{Scope: OnePerCheckpoint, Target: TargetArea, IDs: []string{"area-1"}},
	}, mctx, lookup)

	assert.Equal(t, []Context{
		{Type: ContextCheckpoint, ID: "cp-a"},
		{Type: ContextCheckpoint, ID: "cp-b"},
	}, got)
}
