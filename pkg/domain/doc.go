/*
Package domain contains the core models of the impulse funnel simulator.

It defines personas and their trait vectors, funnels with their steps and
abandonment triggers, the customers spawned during a run and the outcome
records the run aggregates. This package is kept pure and free of I/O,
randomness and persistence so that every other layer can depend on it.

# Key Entities

  - Persona / Traits: the behavioral template copied into each customer.
  - Funnel / Step / Trigger: the ordered stages and their abandonment causes.
  - Customer: the per-run state (step index, dwell time, terminal status).
  - Aggregate / AbandonmentRecord: the outcomes consumed by analytics.
*/
package domain
