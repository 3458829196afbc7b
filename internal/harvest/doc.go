// Package harvest talks to the remote time-entry service: today's entries
// and project catalog, entry create/update, the server timer flag, and the
// service status probe.
//
// Two Gateway implementations exist: Client over the HTTP API with basic
// auth, and MemoryGateway, an in-process stand-in used by demo mode and the
// session tests. MemoryGateway stamps updated_at on every write, which is the
// only behavior the core's recency heuristic depends on.
//
// All calls accept a context and surface transport and decode failures as
// wrapped errors; CheckStatus additionally returns ErrServiceDown when the
// service answers but reports itself down.
package harvest
