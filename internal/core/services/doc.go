// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The connector registry holds the live adapters. One unified service per
// capability fans out to them and merges the results. The Orchestrator
// fronts the services with lifecycle management, a short-lived result
// cache, cross-source search and next-action ranking.
//
// Services are pure Go with no CGO.
package services
