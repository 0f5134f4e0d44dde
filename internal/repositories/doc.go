// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
//
// Key implementations:
//   - [UserRepository] : team member accounts with soft deletes and admin lookups
//   - [TokenRepository] : OAuth credentials, encrypted at rest with a [shared.SecretBox]
//   - [WishRepository] : the track queue, keeping positions 1-based and contiguous
//   - [SettingsRepository] : a persisted key/value store for runtime settings
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs
// and creation timestamps. The [NextSequence] function atomically increments
// per-table sequence counters in dedicated sequence tables.
package repositories
