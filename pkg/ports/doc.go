/*
Package ports defines the driven ports (interfaces) for impulse.

These interfaces decouple the simulator and its transports from concrete
storage backends, so funnels and personas can live in memory, on disk or in
Redis without the callers noticing.

# Key Interfaces

  - DefinitionStore: persists funnel and persona definitions between runs.
  - Controller: the run-control surface that transports (HTTP, MCP) drive.
*/
package ports
