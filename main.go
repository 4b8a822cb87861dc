package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/apichallenges/contract-tests/challenges"
	"github.com/apichallenges/contract-tests/framework"
	"github.com/apichallenges/contract-tests/transport"
)

const preflightTimeout = time.Second * 30

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	var params commandParams
	if !params.Read(args, errOut) {
		return 1
	}

	catalog, err := loadCatalog(params.catalogFile)
	if err != nil {
		fmt.Fprintf(errOut, "Catalog error: %s\n", err)
		return 1
	}
	if params.list {
		catalog.Describe(out)
		return 0
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(out, "", log.LstdFlags)
	}

	sender := transport.NewHTTPTransport(transport.Options{
		Timeout:           params.timeout,
		RequestsPerSecond: params.rate,
	})

	ctx, cancel := context.WithTimeout(context.Background(), params.runTimeout)
	defer cancel()

	if err := transport.AwaitReachable(ctx, sender, params.sandboxURL, preflightTimeout, out); err != nil {
		fmt.Fprintf(errOut, "Sandbox error: %s\n", err)
		return 1
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters, catalog.DisabledCount(), params.unverified)

	fmt.Fprintln(out, "Running test suite")

	testLogger := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results, verdicts, err := challenges.RunTestSuite(
		ctx,
		sender,
		catalog,
		challenges.SuiteConfig{
			BaseURL:         params.sandboxURL,
			Credentials:     challenges.Credentials{Username: params.username, Password: params.password},
			TokenPrefix:     params.tokenPrefix,
			IncludeDisabled: params.unverified,
			BootstrapLogger: mainDebugLogger,
		},
		params.filters.AsFilter,
		testLogger,
	)
	if err != nil {
		fmt.Fprintf(errOut, "Session bootstrap failed: %s\n", err)
		return 1
	}

	fmt.Fprintln(out)
	PrintResults(out, results, verdicts)
	if !results.OK() {
		return 1
	}
	return 0
}

func loadCatalog(path string) (*challenges.Catalog, error) {
	if path == "" {
		return challenges.DefaultCatalog()
	}
	return challenges.LoadFile(path)
}
