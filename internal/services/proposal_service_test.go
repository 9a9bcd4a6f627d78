package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/models"
)

func TestProposalSubmit_CreatesPendingAndSeedsChannel(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	price := int64(25000)
	proposal, err := env.proposals.Submit(SubmitProposalInput{
		MissionID:  mission.ID,
		DesignerID: designer.ID,
		Message:    "I can deliver in three days",
		PriceCents: &price,
	})
	require.NoError(t, err)
	require.Equal(t, models.ProposalStatusPending, proposal.Status)

	messages := env.channelMessages(t, mission.ID, creator.ID, designer.ID)
	require.Len(t, messages, 1)
	require.True(t, messages[0].System)
	require.Contains(t, messages[0].Body, "I can deliver in three days")
	require.Contains(t, messages[0].Body, "250.00 EUR")
}

func TestProposalSubmit_Guards(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	// empty message
	_, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: designer.ID, Message: "   ",
	})
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	// creators cannot propose
	_, err = env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: creator.ID, Message: "hi",
	})
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	// duplicate proposal for the same pair
	_, err = env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: designer.ID, Message: "first",
	})
	require.NoError(t, err)
	_, err = env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: designer.ID, Message: "second",
	})
	require.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestProposalSubmit_RequiresOpenMission(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	other := env.createUser(t, "other@example.com", models.RoleDesigner)
	mission := env.acceptedMission(t, creator, designer)

	_, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: other.ID, Message: "late to the party",
	})
	require.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
}

func TestProposalSubmit_SubscriptionEnforced(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	gated := NewProposalService(env.proposalRepo, env.missionRepo, env.userRepo, env.subsRepo, env.messaging, true)

	_, err := gated.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: designer.ID, Message: "hi",
	})
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	// activating the subscription opens the gate
	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	require.NoError(t, env.billing.HandleProcessorEvent(ProcessorEvent{
		Type:             "subscription.paid",
		UserID:           designer.ID,
		Plan:             "pro",
		CurrentPeriodEnd: &periodEnd,
	}))

	_, err = gated.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: designer.ID, Message: "hi",
	})
	require.NoError(t, err)
}

func TestProposalAccept_AssignsMissionAndRejectsSiblings(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	winner := env.createUser(t, "winner@example.com", models.RoleDesigner)
	loser := env.createUser(t, "loser@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	winning, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: winner.ID, Message: "pick me",
	})
	require.NoError(t, err)
	losing, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: loser.ID, Message: "no, me",
	})
	require.NoError(t, err)

	accepted, err := env.proposals.Accept(winning.ID, creator.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProposalStatusAccepted, accepted.Status)

	reloadedMission, err := env.missionRepo.FindByID(mission.ID)
	require.NoError(t, err)
	require.Equal(t, models.MissionStatusInProgress, reloadedMission.Status)
	require.NotNil(t, reloadedMission.AssignedDesignerID)
	require.Equal(t, winner.ID, *reloadedMission.AssignedDesignerID)

	reloadedLosing, err := env.proposalRepo.FindByID(losing.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProposalStatusRejected, reloadedLosing.Status)
}

func TestProposalAccept_OnlyOnePerMission(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	first := env.createUser(t, "first@example.com", models.RoleDesigner)
	second := env.createUser(t, "second@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	p1, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: first.ID, Message: "one",
	})
	require.NoError(t, err)
	p2, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: second.ID, Message: "two",
	})
	require.NoError(t, err)

	_, err = env.proposals.Accept(p1.ID, creator.ID)
	require.NoError(t, err)

	// the second acceptance must never yield two assignees
	_, err = env.proposals.Accept(p2.ID, creator.ID)
	require.Error(t, err)
	require.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
}

func TestProposalAccept_CreatorOnly(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	proposal, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: designer.ID, Message: "hi",
	})
	require.NoError(t, err)

	_, err = env.proposals.Accept(proposal.ID, designer.ID)
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestProposalWithdraw_DesignerOwnPendingOnly(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	proposal, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: designer.ID, Message: "hi",
	})
	require.NoError(t, err)

	_, err = env.proposals.Withdraw(proposal.ID, creator.ID)
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	withdrawn, err := env.proposals.Withdraw(proposal.ID, designer.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProposalStatusWithdrawn, withdrawn.Status)

	// a withdrawn proposal cannot be accepted
	_, err = env.proposals.Accept(proposal.ID, creator.ID)
	require.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
}

func TestProposalList_DesignerSeesOnlyTheirOwn(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	first := env.createUser(t, "first@example.com", models.RoleDesigner)
	second := env.createUser(t, "second@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	_, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: first.ID, Message: "one",
	})
	require.NoError(t, err)
	_, err = env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: second.ID, Message: "two",
	})
	require.NoError(t, err)

	all, err := env.proposals.ListByMission(mission.ID, creator.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := env.proposals.ListByMission(mission.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, first.ID, mine[0].DesignerID)
}

func TestProposalList_PendingOnClosedMissionSurfacesAsRejected(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	proposal, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: designer.ID, Message: "hi",
	})
	require.NoError(t, err)

	// simulate a crash that closed the mission without rejecting proposals
	require.NoError(t, env.db.Model(&models.Mission{}).
		Where("id = ?", mission.ID).
		Update("status", models.MissionStatusCancelled).Error)

	listed, err := env.proposals.ListByMission(mission.ID, designer.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, models.ProposalStatusRejected, listed[0].Status)

	// the stored row is untouched; only the read is corrected
	stored, err := env.proposalRepo.FindByID(proposal.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProposalStatusPending, stored.Status)

	// and accepting the stale PENDING proposal is refused
	_, err = env.proposals.Accept(proposal.ID, creator.ID)
	require.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
}
