// Package compose renders the per-segment split-screen core clip with at
// most one degraded fallback retry.
package compose
