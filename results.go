package main

import (
	"fmt"
	"io"

	"github.com/apichallenges/contract-tests/challenges"
	"github.com/apichallenges/contract-tests/framework"
)

// PrintResults writes the ordered verdicts followed by a one-line summary.
func PrintResults(out io.Writer, results framework.Results, verdicts []challenges.Verdict) {
	if len(verdicts) > 0 {
		fmt.Fprintln(out, "Verdicts:")
	}
	for _, v := range verdicts {
		if v.Passed {
			passedColor.Fprint(out, "  PASS")
			fmt.Fprintf(out, " %s (%d)\n", v.ScenarioName, v.ActualStatus)
			continue
		}
		failedColor.Fprint(out, "  FAIL")
		if v.ActualStatus == 0 {
			fmt.Fprintf(out, " %s (expected %d, no response)\n", v.ScenarioName, v.ExpectedStatus)
		} else {
			fmt.Fprintf(out, " %s (expected %d, got %d)\n", v.ScenarioName, v.ExpectedStatus, v.ActualStatus)
		}
		if v.Detail != "" {
			fmt.Fprintf(out, "       %s\n", v.Detail)
		}
	}

	passed, failed, skipped := results.Counts()
	fmt.Fprintln(out)
	summary := passedColor
	if !results.OK() {
		summary = failedColor
	}
	summary.Fprintf(out, "%d passed, %d failed, %d skipped\n", passed, failed, skipped)
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  FAILED: %s\n", f.TestID)
	}
}
