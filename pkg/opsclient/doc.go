// Package opsclient provides the primary entry point for constructing an
// identity ops API client that implements the ops.Client interface.
//
// It layers endpoint normalization, HTTP transport, session handling and the
// query cache on top of the resource interfaces and types defined in the ops
// package. Most applications should import opsclient to build a client, then
// use the returned ops.Client to reach resource-specific clients, for example
// Identity(), Alerts(), Payments(), etc.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/identity-console/pkg/ops"
//	  "github.com/fivetwenty-io/identity-console/pkg/opsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // With a bearer token you already have:
//	  cli, err := opsclient.NewWithToken("https://ops.example.com", "eyJhbGciOi...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or log in once and reuse the stored session:
//	  _, err = opsclient.Login(ctx, &ops.Config{APIEndpoint: "https://ops.example.com"},
//	    sessionPath, "user", "pass")
//	  cli, err = opsclient.NewWithSession(&ops.Config{APIEndpoint: "https://ops.example.com"}, sessionPath)
//	  if err != nil { log.Fatal(err) }
//
//	  alerts, err := cli.Alerts().List(ctx, ops.NewQueryParams().WithLimit(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = alerts
//	}
//
// # Sessions
//
// NewWithSession reads the bearer token from a YAML session file. When the
// backend answers 401, or the token's exp claim has passed, the session file
// is removed and Config.OnUnauthorized is called.
//
// # Helpers
//
// The package also provides NewWithEndpoint and NewWithToken, which wrap New
// with the appropriate configuration, and Login, Logout and CurrentProfile
// for session management.
package opsclient
