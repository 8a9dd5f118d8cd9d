// Package spacetraders provides a client for the SpaceTraders game API.
//
// SpaceTraders is a multiplayer trading game played entirely over HTTP. This
// package wraps its REST endpoints in typed operations, paces every outbound
// request to stay under the API rate limit and normalizes failures into a
// small set of error kinds.
//
// # Architecture
//
//   - Client: the facade exposing one method per endpoint
//   - Scheduler: FIFO admission with a minimum interval between requests
//   - Classifier: turns HTTP outcomes into *Error values
//   - Mapper: pure functions from decoded payloads to records
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := spacetraders.NewClient(token, logger,
//		spacetraders.WithMinInterval(500*time.Millisecond),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Stop(context.Background())
//
//	if err := client.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	ships, err := client.GetShipListings(ctx, "OE", "MK-I")
//
// Start must complete before any call other than GetStatus and GetAccount.
// Earlier calls fail with an invalid-input error wrapping ErrNotReady.
//
// # Errors
//
// Every operation returns either its record or an *Error. Use errors.Is with
// the kind sentinels, or KindOf:
//
//	if errors.Is(err, spacetraders.ErrUpstreamValidation) {
//		// the API rejected the request
//	}
//
// Errors are also delivered to subscribers registered with Subscribe.
package spacetraders
