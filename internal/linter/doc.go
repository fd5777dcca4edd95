// Package linter finds Stripe API keys in document text and turns each match
// into a positioned diagnostic. Scan and ShouldScan are pure: publishing the
// result is the caller's job.
package linter
