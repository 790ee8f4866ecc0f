package tmpl

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRenderExamples(t *testing.T) {
	cases := []struct {
		name string
		text string
		ctx  Context
		want string
	}{
		{
			name: "flag off",
			text: "Name: {{NAME}}{{#if_X}} X-on{{/if_X}}",
			ctx:  Context{"NAME": "a", "X": false},
			want: "Name: a",
		},
		{
			name: "flag on",
			text: "Name: {{NAME}}{{#if_X}} X-on{{/if_X}}",
			ctx:  Context{"NAME": "a", "X": true},
			want: "Name: a X-on",
		},
		{
			name: "scalar list",
			text: "{{#each ITEMS}}[{{this}}]{{/each}}",
			ctx:  Context{"ITEMS": []string{"a", "b"}},
			want: "[a][b]",
		},
		{
			name: "record list",
			text: "{{#each SERVICES}}{{container_name}};{{/each}}",
			ctx: Context{"SERVICES": []map[string]any{
				{"container_name": "db"},
				{"container_name": "cache"},
			}},
			want: "db;cache;",
		},
		{
			name: "outer names visible in body",
			text: "{{#each ITEMS}}{{PREFIX}}{{this}} {{/each}}",
			ctx:  Context{"ITEMS": []any{1, 2}, "PREFIX": "#"},
			want: "#1 #2 ",
		},
		{
			name: "record field shadows outer name",
			text: "{{#each ITEMS}}{{name}}{{/each}}/{{name}}",
			ctx: Context{
				"name":  "outer",
				"ITEMS": []map[string]string{{"name": "inner"}},
			},
			want: "inner/outer",
		},
		{
			name: "spaces inside markers",
			text: "{{ NAME }}{{#if_X }}!{{/if_X}}",
			ctx:  Context{"NAME": "a", "X": "yes"},
			want: "a!",
		},
		{
			name: "foreign template syntax is literal",
			text: "docker ps --format '{{.Names}}\t{{.Status}}' {{NAME}}",
			ctx:  Context{"NAME": "x"},
			want: "docker ps --format '{{.Names}}\t{{.Status}}' x",
		},
		{
			name: "scalars",
			text: "{{B}} {{I}} {{F}} {{N}}",
			ctx:  Context{"B": true, "I": 3, "F": 1.5, "N": nil},
			want: "true 3 1.5 ",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Render(tc.text, tc.ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderWithoutMarkersIsIdentity(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"line one\nline two\n",
		"single { braces } and f\"{x}\"",
		"}} stray closing delimiters }}",
		"unicode ✓ ✗ ⚠ 🏥",
	}
	for _, in := range inputs {
		got, err := Render(in, nil)
		if err != nil {
			t.Fatalf("render %q: %v", in, err)
		}
		if got != in {
			t.Fatalf("render %q = %q", in, got)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	text := "{{A}}{{#each L}}<{{k}}={{v}}>{{/each}}{{#if_F}}{{B}}{{/if_F}}"
	ctx := Context{
		"A": "a",
		"B": "b",
		"F": true,
		"L": []map[string]any{{"k": "x", "v": 1}, {"k": "y", "v": 2}},
	}
	first, err := Render(text, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Render(text, ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("render %d = %q, want %q", i, again, first)
		}
	}
}

func TestRenderSkippedBodyNeedsNoKeys(t *testing.T) {
	text := "start{{#if_OFF}}{{MISSING}}{{#each ALSO_MISSING}}{{x}}{{/each}}{{#if_NOPE}}{{/if_NOPE}}{{/if_OFF}}end"
	got, err := Render(text, Context{"OFF": false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "startend" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRenderIterationCounts(t *testing.T) {
	text := "{{#each L}}{{this}},{{/each}}"

	got, err := Render(text, Context{"L": []string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("empty list rendered %q", got)
	}

	got, err = Render(text, Context{"L": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("nil list rendered %q", got)
	}

	items := []string{"c", "a", "b", "a"}
	got, err = Render(text, Context{"L": items})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "c,a,b,a," {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRenderIterationInsideConditional(t *testing.T) {
	text := "{{#if_ON}}[{{#each L}}{{this}}{{/each}}]{{/if_ON}}"

	got, err := Render(text, Context{"ON": true, "L": []string{"x", "y"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "[xy]" {
		t.Fatalf("unexpected output: %q", got)
	}

	got, err = Render(text, Context{"ON": false, "L": "not a list"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRenderNestedIteration(t *testing.T) {
	text := "{{#each GROUPS}}{{name}}:{{#each items}}{{this}}{{/each}};{{/each}}"
	ctx := Context{"GROUPS": []any{
		map[string]any{"name": "a", "items": []any{1, 2}},
		map[string]any{"name": "b", "items": []any{}},
	}}
	got, err := Render(text, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a:12;b:;" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRenderUndefinedVariable(t *testing.T) {
	cases := []struct {
		text string
		ctx  Context
		name string
	}{
		{"hello {{NAME}}", Context{}, "NAME"},
		{"{{#if_X}}x{{/if_X}}", Context{}, "X"},
		{"{{#each L}}{{/each}}", Context{}, "L"},
		{"{{#each L}}{{missing}}{{/each}}", Context{"L": []string{"a"}}, "missing"},
	}
	for _, tc := range cases {
		got, err := Render(tc.text, tc.ctx)
		if !errors.Is(err, ErrUndefinedVariable) {
			t.Fatalf("render %q: expected undefined variable, got %v", tc.text, err)
		}
		var undefined *UndefinedVariableError
		if !errors.As(err, &undefined) || undefined.Name != tc.name {
			t.Fatalf("render %q: expected name %q, got %v", tc.text, tc.name, err)
		}
		if got != "" {
			t.Fatalf("render %q: partial output %q", tc.text, got)
		}
	}
}

func TestRenderUndefinedVariablePosition(t *testing.T) {
	_, err := Render("line one\n  {{NAME}}", Context{})
	var undefined *UndefinedVariableError
	if !errors.As(err, &undefined) {
		t.Fatalf("expected undefined variable, got %v", err)
	}
	if undefined.Pos != (Pos{Line: 2, Column: 3}) {
		t.Fatalf("unexpected position: %+v", undefined.Pos)
	}
	if !strings.Contains(err.Error(), "template:2:3") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestRenderNotIterable(t *testing.T) {
	_, err := Render("{{#each L}}x{{/each}}", Context{"L": "abc"})
	if !errors.Is(err, ErrNotIterable) {
		t.Fatalf("expected not iterable, got %v", err)
	}
	_, err = Render("{{#each L}}x{{/each}}", Context{"L": map[string]any{"a": 1}})
	if !errors.Is(err, ErrNotIterable) {
		t.Fatalf("expected not iterable for map, got %v", err)
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{"", false},
		{"false", false},
		{"0", false},
		{"yes", true},
		{0, false},
		{2, true},
		{uint8(1), true},
		{0.0, false},
		{0.5, true},
		{[]string{}, false},
		{[]string{"a"}, true},
		{map[string]any{}, false},
		{map[string]any{"a": 1}, true},
	}
	for _, tc := range cases {
		if got := Truthy(tc.value); got != tc.want {
			t.Fatalf("Truthy(%#v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
