// Package activityfeedservice projects campaign notification events into a
// per-campaign activity trail inside the funding-core context.
//
// The module consumes every campaign.* topic through a deduplicating worker
// and serves paged reads over the projected entries. It holds no funding
// state of its own.
package activityfeedservice
