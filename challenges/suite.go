package challenges

import (
	"context"

	"github.com/apichallenges/contract-tests/framework"
	"github.com/apichallenges/contract-tests/transport"
)

type SuiteConfig struct {
	BaseURL         string
	Credentials     Credentials
	TokenPrefix     string
	IncludeDisabled bool

	// BootstrapLogger, if set, receives the requests made before any scenario runs.
	BootstrapLogger framework.Logger
}

// RunTestSuite bootstraps a session and runs the whole catalog with it. A bootstrap failure is
// returned as an error and no scenario is run; every other failure is recorded in the results.
func RunTestSuite(
	ctx context.Context,
	sender transport.Sender,
	catalog *Catalog,
	config SuiteConfig,
	filter framework.Filter,
	testLogger framework.TestLogger,
) (framework.Results, []Verdict, error) {
	bootstrapper := &Bootstrapper{
		BaseURL:     config.BaseURL,
		Sender:      transport.WithLogger(sender, config.BootstrapLogger),
		Credentials: config.Credentials,
		TokenPrefix: config.TokenPrefix,
	}
	session, err := bootstrapper.Bootstrap(ctx)
	if err != nil {
		return framework.Results{}, nil, err
	}

	runner := &Runner{
		Builder:         &Builder{BaseURL: config.BaseURL, Credentials: config.Credentials},
		Sender:          sender,
		IncludeDisabled: config.IncludeDisabled,
	}
	var verdicts []Verdict
	results := framework.Run(filter, testLogger, func(c *framework.Context) {
		verdicts = runner.Run(ctx, c, session, catalog)
	})
	return results, verdicts, nil
}
