package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/apichallenges/contract-tests/framework"
)

const (
	defaultSandboxURL = "https://apichallenges.herokuapp.com"
	defaultTimeout    = 15 * time.Second
	defaultRunTimeout = 2 * time.Minute
)

type commandParams struct {
	sandboxURL  string
	catalogFile string
	username    string
	password    string
	tokenPrefix string
	timeout     time.Duration
	runTimeout  time.Duration
	rate        float64
	filters     framework.RegexFilters
	unverified  bool
	list        bool
	debug       bool
	debugAll    bool
}

func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.sandboxURL, "url", defaultSandboxURL, "base URL of the sandbox under test")
	fs.StringVar(&c.catalogFile, "catalog", "", "scenario catalog file to use instead of the built-in one")
	fs.StringVar(&c.username, "username", "admin", "account used for the secret token exchange")
	fs.StringVar(&c.password, "password", "password", "password of the account")
	fs.StringVar(&c.tokenPrefix, "token-prefix", "", "fixed prefix to strip from the X-AUTH-TOKEN header")
	fs.DurationVar(&c.timeout, "timeout", defaultTimeout, "timeout for each request")
	fs.DurationVar(&c.runTimeout, "run-timeout", defaultRunTimeout, "timeout for the whole run")
	fs.Float64Var(&c.rate, "rate", 0, "maximum requests per second (0 means unlimited)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select scenarios to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select scenarios not to run")
	fs.BoolVar(&c.unverified, "unverified", false, "also run scenarios whose expected outcome is unverified")
	fs.BoolVar(&c.list, "list", false, "print the scenario catalog and exit")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed scenarios")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all scenarios")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if c.sandboxURL == "" {
		fmt.Fprintln(errOut, "-url must not be empty")
		fs.Usage()
		return false
	}
	if c.runTimeout <= 0 {
		fmt.Fprintln(errOut, "-run-timeout must be positive")
		return false
	}
	return true
}
