// Package ops provides types, interfaces, and helpers for working with the
// identity operations backend API.
//
// # Overview
//
// The ops package defines the view models (Person, Alert, ReconciliationItem,
// ...) and the interfaces of the per-area clients (IdentityClient,
// AlertsClient, ...). A concrete implementation is provided by the opsclient
// package, which wires configuration, transport, session handling and the
// query cache.
//
// Getting a client
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
//	  cli, err := opsclient.New(&ops.Config{APIEndpoint: "https://ops.example.com", AccessToken: token})
//	  if err != nil { log.Fatal(err) }
//
//	  alerts, err := cli.Alerts().List(ctx, ops.NewQueryParams().WithLimit(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = alerts
//	}
//
// # Queries and pagination
//
// QueryParams carries limit/offset and flat filters. Every list endpoint
// answers with a ListResponse whose Pager gives the page math used by the
// dashboard. PaginationIterator walks all pages.
//
// # Errors
//
// Every call fails with *APIError. A zero StatusCode means no response was
// received. IsNotFound, IsUnauthorized, IsServerError and IsRetryable branch
// on the common cases.
//
// # Query cache
//
// Reads go through QueryCache: results are fresh for StaleTime, then served
// stale while a background revalidation runs. Concurrent reads of the same
// key share one request and retryable failures are retried with exponential
// backoff. Mutations call Invalidate so the next read refetches.
package ops
