package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	LastStatus() int
	LastBody() []byte
}

// RegisterSteps registers generic request and assertion step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expected int) error {
	if s.tc.LastStatus() != expected {
		return fmt.Errorf("expected status %d, got %d (body: %s)",
			expected, s.tc.LastStatus(), s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, needle string) error {
	if !strings.Contains(string(s.tc.LastBody()), needle) {
		return fmt.Errorf("response body does not contain %q: %s", needle, s.tc.LastBody())
	}
	return nil
}
