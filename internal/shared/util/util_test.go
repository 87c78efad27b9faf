package util

import "testing"

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./pkg/worker.py  ", expected: "pkg/worker.py"},
		{name: "Relative", input: "pkg/../tasks.py", expected: "tasks.py"},
		{name: "Windows", input: `pkg\tasks.py`, expected: "pkg/tasks.py"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizePatternPath(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestContainsPathSeparator(t *testing.T) {
	t.Parallel()

	for value, expected := range map[string]bool{
		"pkg/*.py": true,
		`pkg\*.py`: true,
		"*_pb2.py": false,
	} {
		if got := ContainsPathSeparator(value); got != expected {
			t.Fatalf("ContainsPathSeparator(%q) = %v, want %v", value, got, expected)
		}
	}
}

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	keys := SortedStringKeys(map[string]int{"b": 2, "a": 1, "c": 3})
	expected := []string{"a", "b", "c"}
	if len(keys) != len(expected) {
		t.Fatalf("expected %d keys, got %d", len(expected), len(keys))
	}
	for i, key := range expected {
		if keys[i] != key {
			t.Fatalf("expected %q at %d, got %q", key, i, keys[i])
		}
	}
}

func TestPlural(t *testing.T) {
	if Plural(1, "call", "calls") != "call" || Plural(2, "call", "calls") != "calls" || Plural(0, "call", "calls") != "calls" {
		t.Fatal("unexpected plural forms")
	}
}
