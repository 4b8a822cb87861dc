package challenges

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/apichallenges/contract-tests/framework"
	"github.com/apichallenges/contract-tests/sandboxtwin"
	"github.com/apichallenges/contract-tests/transport"

	"github.com/stretchr/testify/require"
)

func newTwinServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(sandboxtwin.New(sandboxtwin.Options{}).Handler())
	t.Cleanup(server.Close)
	return server
}

func newSender() transport.Sender {
	return transport.NewHTTPTransport(transport.Options{})
}

func loadDefaultCatalog(t *testing.T) *Catalog {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return c
}

func runAgainst(t *testing.T, baseURL string, catalog *Catalog, includeDisabled bool, filter framework.Filter) (framework.Results, []Verdict) {
	results, verdicts, err := RunTestSuite(
		context.Background(),
		newSender(),
		catalog,
		SuiteConfig{BaseURL: baseURL, IncludeDisabled: includeDisabled},
		filter,
		nil,
	)
	require.NoError(t, err)
	return results, verdicts
}

func verdictsByName(verdicts []Verdict) map[string]Verdict {
	ret := make(map[string]Verdict, len(verdicts))
	for _, v := range verdicts {
		ret[v.ScenarioName] = v
	}
	return ret
}

func strPtr(s string) *string { return &s }
