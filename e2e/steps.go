package e2e

import (
	"github.com/cucumber/godog"

	"anchorage/e2e/steps/common"
	"anchorage/e2e/steps/truststore"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register truststore-specific steps
	truststore.RegisterSteps(ctx, tc)
}
