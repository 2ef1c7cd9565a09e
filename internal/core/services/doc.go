// Package services implements the core business logic: source
// registry, file scanning, change detection, reconciliation and
// retrieval. Services depend only on domain types and ports.
package services
