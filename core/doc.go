// Package core contains the canonical trigger domain contracts, entities,
// and orchestration logic. Lower-level adapters must depend on this package;
// core must not depend on storage or transport adapters.
package core
