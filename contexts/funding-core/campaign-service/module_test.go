package campaignservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	campaignservice "fundry/contexts/funding-core/campaign-service"
	"fundry/contexts/funding-core/campaign-service/domain/entities"
	domainerrors "fundry/contexts/funding-core/campaign-service/domain/errors"
	httptransport "fundry/contexts/funding-core/campaign-service/transport/http"
)

var launch = time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)

func newTestModule(t *testing.T) campaignservice.Module {
	t.Helper()
	module := campaignservice.NewInMemoryModule(nil)
	module.Store.SetNow(launch)
	return module
}

func createRequest(modes ...string) httptransport.CreateCampaignRequest {
	if len(modes) == 0 {
		modes = []string{"donation", "all_or_nothing"}
	}
	return httptransport.CreateCampaignRequest{
		Name:            "Field Recorder Kit",
		Description:     "Portable recording gear for the archive",
		TargetAmount:    10_000,
		Deadline:        launch.Add(30 * 24 * time.Hour).Format(time.RFC3339),
		AllowedModes:    modes,
		MinContribution: 10,
		MaxContribution: 5_000,
	}
}

func mustCreate(t *testing.T, module campaignservice.Module, req httptransport.CreateCampaignRequest) httptransport.CampaignResponse {
	t.Helper()
	resp, err := module.Handler.CreateCampaignHandler(context.Background(), "creator-1", req)
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return resp
}

func mustContribute(t *testing.T, module campaignservice.Module, backer string, campaignID, amount int64) httptransport.CampaignResponse {
	t.Helper()
	resp, err := module.Handler.ContributeHandler(context.Background(), backer, campaignID,
		httptransport.ContributeRequest{Amount: amount, Mode: "donation"})
	if err != nil {
		t.Fatalf("contribute %d from %s: %v", amount, backer, err)
	}
	return resp
}

func TestCreateCampaignAssignsSequentialIDs(t *testing.T) {
	module := newTestModule(t)
	for want := int64(0); want < 3; want++ {
		resp := mustCreate(t, module, createRequest())
		if resp.CampaignID != want {
			t.Fatalf("expected campaign id %d, got %d", want, resp.CampaignID)
		}
		if resp.Status != "active" {
			t.Fatalf("expected active status, got %s", resp.Status)
		}
	}
	count, err := module.Handler.CampaignCountHandler(context.Background())
	if err != nil {
		t.Fatalf("campaign count: %v", err)
	}
	if count.Count != 3 {
		t.Fatalf("expected count 3, got %d", count.Count)
	}
}

func TestCreateCampaignRejectsInvalidInput(t *testing.T) {
	module := newTestModule(t)

	past := createRequest()
	past.Deadline = launch.Add(-time.Hour).Format(time.RFC3339)
	if _, err := module.Handler.CreateCampaignHandler(context.Background(), "creator-1", past); !errors.Is(err, domainerrors.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for past deadline, got %v", err)
	}

	badMode := createRequest("donation", "equity")
	if _, err := module.Handler.CreateCampaignHandler(context.Background(), "creator-1", badMode); !errors.Is(err, domainerrors.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for unknown mode, got %v", err)
	}

	// Rejected requests must not consume an id.
	resp := mustCreate(t, module, createRequest())
	if resp.CampaignID != 0 {
		t.Fatalf("expected first accepted campaign to get id 0, got %d", resp.CampaignID)
	}
}

func TestContributionBoundariesAreInclusive(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	ctx := context.Background()

	if _, err := module.Handler.ContributeHandler(ctx, "backer-1", campaign.CampaignID,
		httptransport.ContributeRequest{Amount: 9, Mode: "donation"}); !errors.Is(err, domainerrors.ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
	if _, err := module.Handler.ContributeHandler(ctx, "backer-1", campaign.CampaignID,
		httptransport.ContributeRequest{Amount: 5_001, Mode: "donation"}); !errors.Is(err, domainerrors.ErrAboveMaximum) {
		t.Fatalf("expected ErrAboveMaximum, got %v", err)
	}
	if _, err := module.Handler.ContributeHandler(ctx, "backer-1", campaign.CampaignID,
		httptransport.ContributeRequest{Amount: 100, Mode: "keep_it_all"}); !errors.Is(err, domainerrors.ErrModeNotAllowed) {
		t.Fatalf("expected ErrModeNotAllowed, got %v", err)
	}

	mustContribute(t, module, "backer-1", campaign.CampaignID, 10)
	resp := mustContribute(t, module, "backer-1", campaign.CampaignID, 5_000)
	if resp.RaisedAmount != 5_010 {
		t.Fatalf("expected raised 5010, got %d", resp.RaisedAmount)
	}
	if resp.BackersCount != 1 {
		t.Fatalf("backer must be counted once, got %d", resp.BackersCount)
	}
}

func TestRaisedAmountMatchesLedger(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	ctx := context.Background()

	mustContribute(t, module, "backer-1", campaign.CampaignID, 500)
	mustContribute(t, module, "backer-2", campaign.CampaignID, 750)
	resp := mustContribute(t, module, "backer-1", campaign.CampaignID, 250)

	ledger, err := module.Handler.ContributionsHandler(ctx, campaign.CampaignID, "")
	if err != nil {
		t.Fatalf("list contributions: %v", err)
	}
	var total int64
	for _, entry := range ledger.Items {
		if !entry.Refunded {
			total += entry.Amount
		}
	}
	if total != resp.RaisedAmount {
		t.Fatalf("raised %d diverges from ledger sum %d", resp.RaisedAmount, total)
	}
}

func TestReachingTargetCompletesImmediately(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	ctx := context.Background()

	mustContribute(t, module, "backer-1", campaign.CampaignID, 5_000)
	resp := mustContribute(t, module, "backer-2", campaign.CampaignID, 5_000)
	if resp.Status != "completed" {
		t.Fatalf("expected completed at target, got %s", resp.Status)
	}
	if resp.Deadline != launch.Format(time.RFC3339) {
		t.Fatalf("expected deadline collapsed to now, got %s", resp.Deadline)
	}

	if _, err := module.Handler.ContributeHandler(ctx, "backer-3", campaign.CampaignID,
		httptransport.ContributeRequest{Amount: 100, Mode: "donation"}); !errors.Is(err, domainerrors.ErrCampaignInactive) {
		t.Fatalf("expected ErrCampaignInactive after completion, got %v", err)
	}
}

func TestDeadlineTransitionIsLazy(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	mustContribute(t, module, "backer-1", campaign.CampaignID, 500)

	module.Store.SetNow(launch.Add(31 * 24 * time.Hour))

	// Queries derive the transition on the snapshot without persisting it.
	snapshot, err := module.Handler.GetCampaignHandler(context.Background(), campaign.CampaignID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if snapshot.Status != "under_voting" {
		t.Fatalf("expected derived under_voting, got %s", snapshot.Status)
	}
	stored, err := module.Store.GetCampaign(context.Background(), campaign.CampaignID)
	if err != nil {
		t.Fatalf("stored campaign: %v", err)
	}
	if stored.Status != entities.StatusActive {
		t.Fatalf("stored status must stay stale after a query, got %s", stored.Status)
	}

	// A mutating touch persists it even though the touch itself is rejected.
	_, err = module.Handler.ContributeHandler(context.Background(), "backer-2", campaign.CampaignID,
		httptransport.ContributeRequest{Amount: 100, Mode: "donation"})
	if !errors.Is(err, domainerrors.ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed past deadline, got %v", err)
	}
	stored, _ = module.Store.GetCampaign(context.Background(), campaign.CampaignID)
	if stored.Status != entities.StatusUnderVoting {
		t.Fatalf("expected persisted under_voting after mutating touch, got %s", stored.Status)
	}

	// Further contributions to the settled campaign report the deadline,
	// not a generic inactive status.
	_, err = module.Handler.ContributeHandler(context.Background(), "backer-3", campaign.CampaignID,
		httptransport.ContributeRequest{Amount: 100, Mode: "donation"})
	if !errors.Is(err, domainerrors.ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed on settled campaign, got %v", err)
	}
}

func TestMissedDeadlineWithoutAllOrNothingExpires(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest("donation", "keep_it_all"))
	mustContribute(t, module, "backer-1", campaign.CampaignID, 500)

	module.Store.SetNow(launch.Add(31 * 24 * time.Hour))
	snapshot, err := module.Handler.GetCampaignHandler(context.Background(), campaign.CampaignID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if snapshot.Status != "expired" {
		t.Fatalf("expected expired, got %s", snapshot.Status)
	}
}

func startVotingAfterDeadline(t *testing.T, module campaignservice.Module, campaignID int64) {
	t.Helper()
	module.Store.SetNow(launch.Add(31 * 24 * time.Hour))
	if _, err := module.Handler.StartVotingHandler(context.Background(), "creator-1", campaignID); err != nil {
		t.Fatalf("start voting: %v", err)
	}
}

func TestStartVotingPreconditions(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	mustContribute(t, module, "backer-1", campaign.CampaignID, 500)
	ctx := context.Background()

	if _, err := module.Handler.StartVotingHandler(ctx, "creator-1", campaign.CampaignID); !errors.Is(err, domainerrors.ErrVotingNotAvailable) {
		t.Fatalf("expected ErrVotingNotAvailable before deadline, got %v", err)
	}

	module.Store.SetNow(launch.Add(31 * 24 * time.Hour))
	if _, err := module.Handler.StartVotingHandler(ctx, "backer-1", campaign.CampaignID); !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}

	resp, err := module.Handler.StartVotingHandler(ctx, "creator-1", campaign.CampaignID)
	if err != nil {
		t.Fatalf("start voting: %v", err)
	}
	if resp.Status != "under_voting" {
		t.Fatalf("expected under_voting, got %s", resp.Status)
	}

	if _, err := module.Handler.StartVotingHandler(ctx, "creator-1", campaign.CampaignID); !errors.Is(err, domainerrors.ErrVotingAlreadyStarted) {
		t.Fatalf("expected ErrVotingAlreadyStarted, got %v", err)
	}
}

func TestCastVoteWeightAndQuorum(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	ctx := context.Background()

	mustContribute(t, module, "backer-1", campaign.CampaignID, 400)
	mustContribute(t, module, "backer-1", campaign.CampaignID, 100)
	mustContribute(t, module, "backer-2", campaign.CampaignID, 300)
	mustContribute(t, module, "backer-3", campaign.CampaignID, 200)
	mustContribute(t, module, "backer-4", campaign.CampaignID, 50)
	startVotingAfterDeadline(t, module, campaign.CampaignID)

	status, err := module.Handler.VotingStatusHandler(ctx, campaign.CampaignID)
	if err != nil {
		t.Fatalf("voting status: %v", err)
	}
	// 4 backers by headcount, quorum is floor(4/2).
	if status.RequiredVotes != 2 {
		t.Fatalf("expected required votes 2, got %d", status.RequiredVotes)
	}

	if _, err := module.Handler.CastVoteHandler(ctx, "outsider", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "donation"}); !errors.Is(err, domainerrors.ErrNoContribution) {
		t.Fatalf("expected ErrNoContribution, got %v", err)
	}

	if _, err := module.Handler.CastVoteHandler(ctx, "backer-1", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "donation"}); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(ctx, "backer-1", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "all_or_nothing"}); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	status, _ = module.Handler.VotingStatusHandler(ctx, campaign.CampaignID)
	// Weight is the voter's summed non-refunded total at cast time.
	if status.ModeTallies["donation"] != 500 {
		t.Fatalf("expected donation tally 500, got %d", status.ModeTallies["donation"])
	}
	if status.VotingClosed {
		t.Fatalf("one vote of four backers must not close the vote")
	}

	// The second vote reaches the headcount quorum and closes immediately.
	resp, err := module.Handler.CastVoteHandler(ctx, "backer-2", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "all_or_nothing"})
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	// Donation leads 500 to 300, the shortfall stands, and the campaign
	// still completes with the raised funds.
	if resp.Status != "completed" {
		t.Fatalf("expected completed after quorum, got %s", resp.Status)
	}
	if resp.CurrentMode != "donation" {
		t.Fatalf("expected donation winner, got %s", resp.CurrentMode)
	}

	if _, err := module.Handler.CastVoteHandler(ctx, "backer-3", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "donation"}); !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed after quorum, got %v", err)
	}
}

func TestAllOrNothingWinWithShortfallFailsCampaign(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	ctx := context.Background()

	mustContribute(t, module, "backer-1", campaign.CampaignID, 700)
	mustContribute(t, module, "backer-2", campaign.CampaignID, 300)
	startVotingAfterDeadline(t, module, campaign.CampaignID)

	resp, err := module.Handler.CastVoteHandler(ctx, "backer-1", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "all_or_nothing"})
	if err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if resp.Status != "failed" {
		t.Fatalf("expected failed campaign, got %s", resp.Status)
	}

	refund, err := module.Handler.RefundHandler(ctx, "backer-2", campaign.CampaignID)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refund.Amount != 300 {
		t.Fatalf("expected refund 300, got %d", refund.Amount)
	}
	if refund.Campaign.RaisedAmount != 700 {
		t.Fatalf("expected raised 700 after refund, got %d", refund.Campaign.RaisedAmount)
	}
	if got := module.Treasury.Balance("backer-2"); got != 300 {
		t.Fatalf("expected backer-2 balance 300, got %d", got)
	}

	if _, err := module.Handler.RefundHandler(ctx, "backer-2", campaign.CampaignID); !errors.Is(err, domainerrors.ErrNoRefundableAmount) {
		t.Fatalf("expected ErrNoRefundableAmount on repeat refund, got %v", err)
	}
}

func TestTiedVoteResolvesToLowerOrdinal(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	ctx := context.Background()

	mustContribute(t, module, "backer-1", campaign.CampaignID, 400)
	mustContribute(t, module, "backer-2", campaign.CampaignID, 400)
	// Two silent backers raise the headcount quorum to two ballots.
	mustContribute(t, module, "backer-3", campaign.CampaignID, 50)
	mustContribute(t, module, "backer-4", campaign.CampaignID, 50)
	startVotingAfterDeadline(t, module, campaign.CampaignID)

	if _, err := module.Handler.CastVoteHandler(ctx, "backer-1", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "all_or_nothing"}); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	// Exactly tied weights: donation holds the lower ordinal and wins, so
	// the shortfall does not fail the campaign.
	resp, err := module.Handler.CastVoteHandler(ctx, "backer-2", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "donation"})
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if resp.CurrentMode != "donation" {
		t.Fatalf("expected tie to resolve to donation, got %s", resp.CurrentMode)
	}
	if resp.Status != "completed" {
		t.Fatalf("expected completed, got %s", resp.Status)
	}
}

func TestVotingWindowExpiryFinalizesWithZeroVotes(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	ctx := context.Background()

	mustContribute(t, module, "backer-1", campaign.CampaignID, 500)
	startVotingAfterDeadline(t, module, campaign.CampaignID)

	module.Store.SetNow(launch.Add(31*24*time.Hour + 73*time.Hour))
	if _, err := module.Handler.CastVoteHandler(ctx, "backer-1", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "donation"}); !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed after window, got %v", err)
	}

	status, err := module.Handler.VotingStatusHandler(ctx, campaign.CampaignID)
	if err != nil {
		t.Fatalf("voting status: %v", err)
	}
	if !status.VotingClosed {
		t.Fatalf("expected closed vote after window expiry")
	}
	// Zero ballots: the first-ordinal mode wins and the funds are accepted.
	if status.CurrentMode != "donation" || status.Status != "completed" {
		t.Fatalf("expected donation/completed, got %s/%s", status.CurrentMode, status.Status)
	}
}

func TestReleaseFundsSplitsFee(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	ctx := context.Background()

	mustContribute(t, module, "backer-1", campaign.CampaignID, 5_000)
	mustContribute(t, module, "backer-2", campaign.CampaignID, 5_000)

	if _, err := module.Handler.ReleaseFundsHandler(ctx, "backer-1", campaign.CampaignID); !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}

	resp, err := module.Handler.ReleaseFundsHandler(ctx, "creator-1", campaign.CampaignID)
	if err != nil {
		t.Fatalf("release funds: %v", err)
	}
	// 250 bps of 10000 with floor division.
	if resp.Fee != 250 || resp.Payout != 9_750 {
		t.Fatalf("expected fee 250 / payout 9750, got %d / %d", resp.Fee, resp.Payout)
	}
	if got := module.Treasury.Balance("creator-1"); got != 9_750 {
		t.Fatalf("expected creator balance 9750, got %d", got)
	}
	if got := module.Treasury.Balance(campaignservice.DefaultAdminAccount); got != 250 {
		t.Fatalf("expected admin balance 250, got %d", got)
	}

	if _, err := module.Handler.ReleaseFundsHandler(ctx, "creator-1", campaign.CampaignID); !errors.Is(err, domainerrors.ErrAlreadyReleased) {
		t.Fatalf("expected ErrAlreadyReleased, got %v", err)
	}
}

func TestReleaseFundsRollsBackOnTransferFailure(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	ctx := context.Background()

	mustContribute(t, module, "backer-1", campaign.CampaignID, 5_000)
	mustContribute(t, module, "backer-2", campaign.CampaignID, 5_000)

	boom := errors.New("ledger offline")
	module.Treasury.FailAll(boom)
	if _, err := module.Handler.ReleaseFundsHandler(ctx, "creator-1", campaign.CampaignID); !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	stored, _ := module.Store.GetCampaign(ctx, campaign.CampaignID)
	if stored.FundsReleased {
		t.Fatalf("funds-released flag must roll back on transfer failure")
	}
	if got := module.Treasury.Balance("creator-1"); got != 0 {
		t.Fatalf("no balance may move on a failed release, got %d", got)
	}

	module.Treasury.FailAll(nil)
	if _, err := module.Handler.ReleaseFundsHandler(ctx, "creator-1", campaign.CampaignID); err != nil {
		t.Fatalf("retry after clearing failure: %v", err)
	}
}

func TestRefundRollsBackOnTransferFailure(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest("donation", "keep_it_all"))
	ctx := context.Background()

	mustContribute(t, module, "backer-1", campaign.CampaignID, 500)
	module.Store.SetNow(launch.Add(31 * 24 * time.Hour))

	boom := errors.New("wallet unreachable")
	module.Treasury.FailRecipient("backer-1", boom)
	if _, err := module.Handler.RefundHandler(ctx, "backer-1", campaign.CampaignID); !errors.Is(err, domainerrors.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	stored, _ := module.Store.GetCampaign(ctx, campaign.CampaignID)
	if stored.RaisedAmount != 500 {
		t.Fatalf("raised amount must be restored, got %d", stored.RaisedAmount)
	}
	ledger, _ := module.Handler.ContributionsHandler(ctx, campaign.CampaignID, "backer-1")
	for _, entry := range ledger.Items {
		if entry.Refunded {
			t.Fatalf("refunded flags must be rolled back: %+v", entry)
		}
	}

	module.Treasury.FailRecipient("backer-1", nil)
	refund, err := module.Handler.RefundHandler(ctx, "backer-1", campaign.CampaignID)
	if err != nil {
		t.Fatalf("retry refund: %v", err)
	}
	if refund.Amount != 500 {
		t.Fatalf("expected refund 500, got %d", refund.Amount)
	}
}

func TestRefundRejectedWhileCompleted(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	mustContribute(t, module, "backer-1", campaign.CampaignID, 5_000)
	mustContribute(t, module, "backer-2", campaign.CampaignID, 5_000)

	if _, err := module.Handler.RefundHandler(context.Background(), "backer-1", campaign.CampaignID); !errors.Is(err, domainerrors.ErrRefundsNotAvailable) {
		t.Fatalf("expected ErrRefundsNotAvailable, got %v", err)
	}
}

func TestMilestoneLifecycle(t *testing.T) {
	module := newTestModule(t)
	deadline := launch.Add(30 * 24 * time.Hour)
	req := createRequest("milestone_based")
	req.Milestones = []httptransport.MilestoneRequest{
		{Description: "prototype", Amount: 4_000, Deadline: deadline.Add(-10 * 24 * time.Hour).Format(time.RFC3339)},
		{Description: "production", Amount: 6_000, Deadline: deadline.Format(time.RFC3339)},
	}
	campaign := mustCreate(t, module, req)
	ctx := context.Background()

	if _, err := module.Handler.CompleteMilestoneHandler(ctx, "backer-1", campaign.CampaignID, 0); !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}
	if _, err := module.Handler.CompleteMilestoneHandler(ctx, "creator-1", campaign.CampaignID, 5); !errors.Is(err, domainerrors.ErrMilestoneNotFound) {
		t.Fatalf("expected ErrMilestoneNotFound, got %v", err)
	}

	resp, err := module.Handler.CompleteMilestoneHandler(ctx, "creator-1", campaign.CampaignID, 0)
	if err != nil {
		t.Fatalf("complete milestone: %v", err)
	}
	if !resp.Milestones[0].Completed || resp.Milestones[1].Completed {
		t.Fatalf("exactly the first milestone must be completed: %+v", resp.Milestones)
	}
	if _, err := module.Handler.CompleteMilestoneHandler(ctx, "creator-1", campaign.CampaignID, 0); !errors.Is(err, domainerrors.ErrMilestoneCompleted) {
		t.Fatalf("expected ErrMilestoneCompleted, got %v", err)
	}
}

func TestMilestoneSumMustMatchTarget(t *testing.T) {
	module := newTestModule(t)
	req := createRequest("milestone_based")
	req.Milestones = []httptransport.MilestoneRequest{
		{Description: "only", Amount: 9_999, Deadline: req.Deadline},
	}
	if _, err := module.Handler.CreateCampaignHandler(context.Background(), "creator-1", req); !errors.Is(err, domainerrors.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for milestone sum mismatch, got %v", err)
	}
}

func TestListCampaignsByCreatorAndBacker(t *testing.T) {
	module := newTestModule(t)
	ctx := context.Background()
	first := mustCreate(t, module, createRequest())
	second := mustCreate(t, module, createRequest())
	mustContribute(t, module, "backer-1", second.CampaignID, 100)

	mine, err := module.Handler.ListByCreatorHandler(ctx, "creator-1")
	if err != nil {
		t.Fatalf("list by creator: %v", err)
	}
	if len(mine.Items) != 2 || mine.Items[0].CampaignID != first.CampaignID {
		t.Fatalf("unexpected creator listing: %+v", mine.Items)
	}

	backed, err := module.Handler.ListByBackerHandler(ctx, "backer-1")
	if err != nil {
		t.Fatalf("list by backer: %v", err)
	}
	if len(backed.Items) != 1 || backed.Items[0].CampaignID != second.CampaignID {
		t.Fatalf("unexpected backer listing: %+v", backed.Items)
	}
}

func TestEveryMutationLeavesANotification(t *testing.T) {
	module := newTestModule(t)
	campaign := mustCreate(t, module, createRequest())
	mustContribute(t, module, "backer-1", campaign.CampaignID, 500)
	startVotingAfterDeadline(t, module, campaign.CampaignID)
	if _, err := module.Handler.CastVoteHandler(context.Background(), "backer-1", campaign.CampaignID,
		httptransport.CastVoteRequest{Mode: "donation"}); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	// create + contribute + voting_started + vote_cast.
	if got := module.Store.PendingOutboxCount(); got != 4 {
		t.Fatalf("expected 4 pending notifications, got %d", got)
	}
}
