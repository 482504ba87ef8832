package e2e

import (
	"github.com/cucumber/godog"

	"neuroease/e2e/steps/common"
	"neuroease/e2e/steps/screening"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	screening.RegisterSteps(ctx, tc)
}
