// Package domain contains the core business entities for document
// synchronisation and retrieval: data sources, file fingerprints,
// chunk metadata, reconciliation plans and sync reports.
package domain
