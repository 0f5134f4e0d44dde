// Package models defines domain entities and persistence interfaces for the
// wunschbox team music wishlist service.
//
// The package contains two categories of types:
//
// 1. Persistent entities backed by database tables:
//   - [User] : team member accounts with a role flag
//   - [Token] : per (user, provider) OAuth credentials, stored encrypted
//   - [Wish] : a queued track request with an explicit queue position
//
// 2. The [Repository] interface describing standard CRUD access used by the
// repositories package.
//
// Entities carry exported fields and a Validate method; repositories own ID
// generation and timestamp bookkeeping.
package models
