// Package converge detects when an asynchronous canvas render has finished
// by polling snapshot fingerprints until they hold stable. Fixed delays
// cannot bound worst-case render latency; fingerprint polling adapts to the
// content while the policy timeout bounds the worst case.
package converge
