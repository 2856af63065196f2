// Package cciclient provides the primary entry point for constructing a
// CircleCI API client that implements the circleci.Client interface.
//
// It layers configuration, HTTP transport, authentication, and response
// caching on top of the resource interfaces and types defined in the circleci
// package. Most applications should import cciclient to build a client, then
// use the returned circleci.Client to access resource-specific clients, for
// example Pipelines(), Workflows(), Insights(), etc.
//
// Quick start
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
//
//	  // Minimal: a personal API token against the public endpoint.
//	  cli, err := cciclient.NewWithToken(ctx, "", "my-token")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with full configuration, including a self-hosted server:
//	  cli, err = cciclient.New(ctx, &circleci.Config{
//	    BaseURL: "https://circleci.example.com/api",
//	    Token:   "my-token",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or from the environment (CIRCLE_TOKEN, CIRCLE_API_URL):
//	  cli, err = cciclient.NewFromEnv(ctx)
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the circleci.Client interface
//	  me, err := cli.Users().Me(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = me
//	}
//
// # Authentication
//
// Every request carries the token both as the username of an HTTP Basic
// authorization header (with an empty password) and as a Circle-Token header,
// so the client works against endpoints that accept either style. Tokens
// never appear in logs or in the request dumps available through
// DumpLastExchange; the recorded headers are redacted at capture time.
//
// # TLS and self-hosted servers
//
// For CircleCI server installations with self-signed certificates, set
// Config.SkipTLSVerify=true. This only disables verification for the
// constructed client and should not be used against circleci.com.
//
// # Helpers
//
// The package also provides NewWithInterceptors for callers that want to
// observe or short-circuit requests with a circleci.InterceptorChain, for
// example to add metrics, rate-limit tracking, or a circuit breaker.
package cciclient
