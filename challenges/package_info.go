// Package challenges contains the API Challenges contract itself: the scenario catalog, session
// bootstrap, request building, outcome verification, and the runner that executes the catalog
// in order against one challenger session.
//
// Infrastructure that is not specific to this contract, such as test ids, result collection,
// and HTTP transport, lives in the framework and transport packages.
package challenges
