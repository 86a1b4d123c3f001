// Package booking stores booking requests from the public site and
// announces every change to authenticated realtime subscribers.
//
// Service.Create and Service.UpdateStatus broadcast EventCreated and
// EventUpdated with realtime.TargetAuth, so only admin streams see
// customer data. PGStore persists to PostgreSQL using the goose
// migrations returned by Migrations; MemoryStore keeps everything in
// process.
package booking
