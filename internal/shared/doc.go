// Package shared holds helpers used across the incident tools.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// structured logs, and small CSV fixture helpers used by the pipeline,
// exporter and command tests:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := testutil.WriteFixture(t, "in.csv", testutil.FiveRowScenario)
//	    ...
//	    testutil.AssertLogContains(t, handler, slog.LevelInfo, "stage completed")
//	}
package shared
