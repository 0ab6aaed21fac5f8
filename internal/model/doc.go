// Package model defines shared data types used across the realtime agent.
//
// Conventions:
//   - Timestamps: time.Time, transported as RFC 3339 strings
//   - User and notification IDs: opaque strings as issued by the console API
//   - Ticket IDs: int64, matching the console's ticket numbering
package model
