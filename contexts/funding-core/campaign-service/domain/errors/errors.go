package errors

import "errors"

var (
	// Validation failures reject the call before any mutation.
	ErrInvalidParameters = errors.New("campaign parameters are invalid")
	ErrBelowMinimum      = errors.New("contribution is below the campaign minimum")
	ErrAboveMaximum      = errors.New("contribution is above the campaign maximum")
	ErrModeNotAllowed    = errors.New("funding mode is not allowed for this campaign")

	ErrCampaignNotFound = errors.New("campaign not found")

	// State conflicts: the operation is invalid for the current status.
	ErrCampaignInactive     = errors.New("campaign is not active")
	ErrDeadlinePassed       = errors.New("campaign deadline has passed")
	ErrVotingNotStarted     = errors.New("voting has not started")
	ErrVotingAlreadyStarted = errors.New("voting has already started")
	ErrVotingNotAvailable   = errors.New("voting requires a reached target or a passed deadline")
	ErrVotingClosed         = errors.New("voting is closed")
	ErrAlreadyVoted         = errors.New("voter has already voted on this campaign")
	ErrNoContribution       = errors.New("caller holds no non-refunded contribution")
	ErrNotCompleted         = errors.New("campaign is not completed")
	ErrAlreadyReleased      = errors.New("funds have already been released")
	ErrRefundsNotAvailable  = errors.New("refunds are not available for this campaign")
	ErrNoRefundableAmount   = errors.New("no refundable amount remains")
	ErrMilestoneNotFound    = errors.New("milestone not found")
	ErrMilestoneCompleted   = errors.New("milestone is already completed")

	ErrNotCreator = errors.New("caller is not the campaign creator")

	// ErrTransferFailed is the only class that can surface after partial
	// computation; the triggering operation rolls its bookkeeping back.
	ErrTransferFailed = errors.New("value transfer failed")
)
