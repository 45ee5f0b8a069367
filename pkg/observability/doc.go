/*
Package observability turns a simulation run into numbers people can read.

It includes the outcome Aggregator that the simulator commits every tick into,
the post-run Summary used by analytics views, and Prometheus-backed lifecycle
hooks for live monitoring.
*/
package observability
