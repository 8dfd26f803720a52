package testutil

import "testing"

// Given opens a scenario subtest describing the starting state. Together with
// When and Then it keeps full-stack test output readable as a scenario
// transcript without pulling in a BDD framework.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Given", desc, fn)
}

// When runs a scenario subtest describing the action under test.
func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "When", desc, fn)
}

// Then runs a scenario subtest asserting the observable result.
func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Then", desc, fn)
}

func step(t *testing.T, word, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(word+" "+desc, fn)
}
