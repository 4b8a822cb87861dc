// Package framework contains the domain-independent part of the contract test harness.
//
// The general model is:
//
// 1. A run is a tree of Contexts: the root, one child per catalog group, and one leaf per
// scenario. A leaf is similar to Go's *testing.T: it accumulates failures, can be skipped,
// and implements require.TestingT so that testify assertions work with it.
//
// 2. Each leaf captures its own debug output, which a TestLogger can print only for failed
// scenarios.
//
// 3. A Filter built from -run/-skip regexes decides which scenarios are executed.
//
// The code that knows what a scenario is, and how to send it to the sandbox, lives in the
// challenges package.
package framework
