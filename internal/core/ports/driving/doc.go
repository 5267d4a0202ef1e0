// Package driving holds the operations the hub offers its front ends.
//
// The CLI, the HTTP API, the MCP server and the TUI all talk to the core
// through Orchestrator, ConnectorCatalogue, RefreshHistory and Scheduler;
// none of them reach a provider adapter directly. The services package
// implements every interface here.
package driving
