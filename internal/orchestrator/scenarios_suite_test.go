package orchestrator

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/goleak"
)

// scenarioT bridges the testify-flavored helpers in orchestrator_test.go
// (newHarness, writeSQLFile, newTestOrchestrator) into the ginkgo specs
// below, which run inside a single *testing.T captured here.
var scenarioT *testing.T

func TestOrchestratorScenarios(t *testing.T) {
	scenarioT = t
	RegisterFailHandler(Fail)
	RunSpecs(t, "Orchestrator Scenario Suite")
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
