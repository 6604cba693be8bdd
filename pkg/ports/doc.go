/*
Package ports defines the ports (interfaces) for the Flipper engine.

These interfaces decouple the pipeline from external implementations, allowing
the engine to work with various agents, publishers, storage backends and trend
sources, and letting driving adapters trigger runs without knowing the wiring.

# Key Interfaces

  - Pipeline: Runs the provision, agent, publish sequence once per trigger.
  - Agent: Produces the analysis artifacts inside a provisioned workspace.
  - Publisher: Commits and pushes workspace changes, gated on a real diff.
  - Provisioner: Prepares the workspace (checkout, environment) for a run.
  - RunStore: Persists run records.
  - RunArchive: Keeps a durable, human-readable history of finished runs.
  - DistributedLocker: Provides distributed locking so runs never overlap.
*/
package ports
