// Package models defines the core domain models for SyncPlan.
//
// # Planning
//
//   - Group: people who plan together, each member with a role
//   - Event: a scheduled meeting with per-attendee RSVP responses
//   - AvailabilityInterval: a user's free/busy window on one calendar date
//   - MeetingSuggestion: a derived candidate slot scored by attendance
//
// # Bill splitting
//
//   - Bill: a saved split session (items, participants, method, tip, tax)
//   - BillItem: one priced line, shared by the participants assigned to it
//   - SplitResult: derived per-participant share, never stored
//   - Settlement: a payment between group members that clears debt
//
// # Design Principles
//
// 1. **IDs over pointers**: relationships use ID strings, never pointers
// 2. **Derived data is recomputed**: SplitResult and MeetingSuggestion are
// regenerated from current state on demand and have no storage
// 3. **Money is float64**: rounding to cents happens only when a figure is
// reported (see package calculator)
package models
