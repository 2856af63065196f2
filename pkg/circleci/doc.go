// Package circleci provides types, interfaces, and helpers for working with
// the CircleCI REST API (v1.1 and v2).
//
// # Overview
//
// The circleci package defines the domain types (e.g., Pipeline, Workflow,
// Job, Build, Context, Schedule) and the interfaces for resource-oriented
// clients (e.g., PipelinesClient, WorkflowsClient). A concrete implementation
// of these clients is provided by the cciclient package, which wires
// configuration, transport, authentication, and retry policy. Most consumers
// should import cciclient to construct a client and then interact with the
// resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/circleci-client/pkg/cciclient"
//	  "github.com/fivetwenty-io/circleci-client/pkg/circleci"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := cciclient.New(ctx, &circleci.Config{Token: "my-token"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Fetch the signed-in user
//	  me, err := cli.Users().Me(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = me
//	}
//
// # Queries and pagination
//
// v2 list endpoints paginate with continuation tokens. Resource clients
// expose both single-page calls (returning a ListResponse with the next page
// token) and flattening variants that follow tokens transparently:
//
//	pipelines, err := cli.Pipelines().ListForProjectAll(ctx, "gh/org/repo", nil, nil)
//	if err != nil { /* handle error */ }
//	_ = pipelines
//
// Lazy iteration is available through Pager:
//
//	pager := circleci.NewPager(ctx, func(ctx context.Context, token string) (*circleci.ListResponse[circleci.Pipeline], error) {
//	  return cli.Pipelines().ListForProject(ctx, "gh/org/repo", circleci.NewQueryParams().WithPageToken(token))
//	})
//	for pager.HasNext() {
//	  pipeline, err := pager.Next()
//	  if err != nil { break }
//	  _ = pipeline
//	}
//
// # Errors
//
// Failures surface as typed errors: ConfigError for bad client setup,
// TransportError for network-level failures, APIError for non-2xx responses
// (carrying status code and body), and ParseError for undecodable success
// bodies. Helpers such as IsNotFound, IsRateLimited, and IsServerError make
// it easy to branch on common cases.
//
// # Introspection
//
// The client records the final request/response pair of the most recent call.
// LastExchange, DumpLastExchange, and SprintJSON support debugging without
// ever exposing the API token, which is redacted at record time.
//
// # Interceptors and caching
//
// The package includes generic building blocks such as request/response
// interceptors (for logging, auth headers, metrics, rate limiting, circuit
// breaking) and a simple pluggable Cache abstraction with in-memory and NATS
// JetStream KV backends. The cciclient package composes these pieces for a
// sensible default client; applications with advanced needs can also use
// these primitives directly.
package circleci
