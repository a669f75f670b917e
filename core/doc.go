// Package core holds the small set of types shared across crewmesh packages:
// identifier generation and the role-based content model exchanged with
// language model providers. Higher layers (agent loop, tool dispatch, model
// adapters) depend on these shapes so they remain decoupled from vendor SDKs.
package core
