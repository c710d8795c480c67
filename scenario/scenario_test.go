package scenario

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/relvar/execution"
	"github.com/cube2222/relvar/relvar"
)

// snapshotRecorder keeps the snapshots it was asked to print.
type snapshotRecorder struct {
	printed map[string][][]relvar.Row
}

func (r *snapshotRecorder) Print(source relvar.Source) error {
	r.printed[source.Name()] = append(r.printed[source.Name()], source.Snapshot())
	return nil
}

func purchase(id int, name string, order int, total float64) relvar.Row {
	return relvar.NewRow(map[string]any{
		"id":    id,
		"name":  name,
		"shop":  "main",
		"label": name,
		"order": order,
		"total": total,
	})
}

func TestScenario(t *testing.T) {
	scenario, err := ReadFile("testdata/shop.yml")
	require.NoError(t, err)
	require.Len(t, scenario.Relvars, 3)
	require.Len(t, scenario.Views, 4)
	require.Len(t, scenario.Steps, 6)

	for _, scheduling := range []execution.Scheduling{execution.SchedulingFIFO, execution.SchedulingTopological} {
		t.Run(scheduling.String(), func(t *testing.T) {
			env, err := Build(execution.NewLoop(execution.WithScheduling(scheduling)), scenario)
			require.NoError(t, err)
			assert.Equal(t, []string{"customers", "orders", "banned", "allowed", "names", "tagged", "purchases"}, env.Names)
			assert.Len(t, env.Visualizers(), 7)

			printer := &snapshotRecorder{printed: map[string][][]relvar.Row{}}
			require.NoError(t, Play(env, scenario.Steps, printer))

			printed := printer.printed["purchases"]
			require.Len(t, printed, 3)
			assert.ElementsMatch(t, []relvar.Row{purchase(1, "alice", 100, 20), purchase(2, "bob", 101, 5.5)}, printed[0])
			assert.ElementsMatch(t, []relvar.Row{purchase(1, "alice", 100, 25)}, printed[1])
			assert.ElementsMatch(t, []relvar.Row{purchase(1, "alice", 100, 25), purchase(2, "bob", 101, 5.5)}, printed[2])

			env.Close()
			assert.Equal(t, 0, env.Bases["customers"].Subscribers())
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown type",
			yaml: `
relvars:
  - {name: a, spec: {id: date}, key: [id]}
`,
			wantErr: "unknown type 'date'",
		},
		{
			name: "invalid initial rows",
			yaml: `
relvars:
  - {name: a, spec: {id: number}, key: [id], rows: [{id: x}]}
`,
			wantErr: "couldn't insert initial rows",
		},
		{
			name: "duplicate name",
			yaml: `
relvars:
  - {name: a, spec: {id: number}, key: [id]}
  - {name: a, spec: {id: number}, key: [id]}
`,
			wantErr: "name a is used twice",
		},
		{
			name: "unknown source",
			yaml: `
relvars:
  - {name: a, spec: {id: number}, key: [id]}
views:
  - {name: v, op: union, sources: [a, b]}
`,
			wantErr: "unknown source b",
		},
		{
			name: "unknown operator",
			yaml: `
relvars:
  - {name: a, spec: {id: number}, key: [id]}
views:
  - {name: v, op: group, sources: [a]}
`,
			wantErr: "unknown operator 'group'",
		},
		{
			name: "schema error",
			yaml: `
relvars:
  - {name: a, spec: {id: number}, key: [id]}
views:
  - {name: v, op: project, sources: [a], attributes: [nope]}
`,
			wantErr: "schema error in project",
		},
		{
			name: "unknown field",
			yaml: `
relvars:
  - {name: a, spec: {id: number}, key: [id], primary: true}
`,
			wantErr: "field primary not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := Parse(strings.NewReader(tt.yaml))
			if err == nil {
				_, err = Build(execution.NewLoop(), scenario)
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPlayErrors(t *testing.T) {
	scenario, err := Parse(strings.NewReader(`
relvars:
  - {name: a, spec: {id: number}, key: [id]}
views:
  - {name: v, op: project, sources: [a], attributes: [id]}
`))
	require.NoError(t, err)

	tests := []struct {
		name    string
		step    Step
		wantErr string
	}{
		{name: "mutating a view", step: Step{Insert: "v"}, wantErr: "v is a view"},
		{name: "unknown relvar", step: Step{Remove: "nope"}, wantErr: "unknown relvar nope"},
		{name: "invalid rows", step: Step{Insert: "a", Rows: []map[string]any{{"id": "x"}}}, wantErr: "rows don't match spec"},
		{name: "update length mismatch", step: Step{Update: "a", Rows: []map[string]any{{"id": 1}}}, wantErr: "got 0 keys and 1 rows"},
		{name: "no action", step: Step{}, wantErr: "step has no action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Build(execution.NewLoop(), scenario)
			require.NoError(t, err)
			err = Play(env, []Step{tt.step}, &snapshotRecorder{printed: map[string][][]relvar.Row{}})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
