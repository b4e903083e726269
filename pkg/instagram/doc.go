// Package instagram implements the provider-facing side of the
// downloader: endpoint construction, response models, an HTTP client
// that classifies failures into the retry taxonomy, and the adapter
// that exposes it all to the session engine as a Fetcher.
//
// The client never retries and never sleeps beyond the hard request
// rate guard; pacing, retries and rate-limit cooldowns all live in the
// engine where they are testable against a scripted fetcher.
package instagram
