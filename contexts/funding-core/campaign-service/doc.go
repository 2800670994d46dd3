// Package campaignservice implements the campaign funding ledger inside the
// funding-core context.
//
// The module owns campaign lifecycle orchestration (create/contribute),
// backer-weighted disposition voting, disbursement and refund settlement, and
// campaign event production through an outbox-backed relay. It keeps business
// rules in application/domain layers and isolates infrastructure concerns
// behind ports and adapters.
package campaignservice
