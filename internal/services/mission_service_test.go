package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/elky431-debug/creax-backend/internal/errors"
	"github.com/elky431-debug/creax-backend/internal/models"
)

func TestMissionCreate_Validation(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)

	mission := env.createOpenMission(t, creator)
	require.Equal(t, models.MissionStatusOpen, mission.Status)
	require.Nil(t, mission.AssignedDesignerID)

	_, err := env.missions.Create(CreateMissionInput{
		CreatorID: creator.ID, Title: "", Category: "logo",
	})
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = env.missions.Create(CreateMissionInput{
		CreatorID: designer.ID, Title: "Logo", Category: "logo",
	})
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestMissionList_Filters(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)

	_, err := env.missions.Create(CreateMissionInput{
		CreatorID: creator.ID, Title: "Banner for launch", Category: "banner",
	})
	require.NoError(t, err)
	_, err = env.missions.Create(CreateMissionInput{
		CreatorID: creator.ID, Title: "Logo refresh", Category: "logo",
	})
	require.NoError(t, err)

	category := "logo"
	missions, total, err := env.missions.List(ListMissionsInput{Category: &category, Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, missions, 1)
	require.Equal(t, "Logo refresh", missions[0].Title)

	missions, total, err = env.missions.List(ListMissionsInput{Search: "banner", Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Banner for launch", missions[0].Title)
}

func TestMissionCancel_RejectsPendingProposals(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	mission := env.createOpenMission(t, creator)

	proposal, err := env.proposals.Submit(SubmitProposalInput{
		MissionID: mission.ID, DesignerID: designer.ID, Message: "hi",
	})
	require.NoError(t, err)

	// only the creator
	_, err = env.missions.Cancel(mission.ID, designer.ID)
	require.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	cancelled, err := env.missions.Cancel(mission.ID, creator.ID)
	require.NoError(t, err)
	require.Equal(t, models.MissionStatusCancelled, cancelled.Status)

	reloaded, err := env.proposalRepo.FindByID(proposal.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProposalStatusRejected, reloaded.Status)

	// cancelling a terminal mission is refused
	_, err = env.missions.Cancel(mission.ID, creator.ID)
	require.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
}

func TestMissionCancel_InProgressNarratesToChannel(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	mission := env.acceptedMission(t, creator, designer)

	_, err := env.missions.Cancel(mission.ID, creator.ID)
	require.NoError(t, err)

	messages := env.channelMessages(t, mission.ID, creator.ID, designer.ID)
	require.NotEmpty(t, messages)
	require.Contains(t, messages[len(messages)-1].Body, "cancelled")
}

func TestMissionDelete_CascadesAndRemovesAssets(t *testing.T) {
	env := setupTestEnv(t)
	creator := env.createUser(t, "creator@example.com", models.RoleCreator)
	designer := env.createUser(t, "designer@example.com", models.RoleDesigner)
	mission := env.acceptedMission(t, creator, designer)

	deliveries := env.deliveries(t)
	delivery, err := deliveries.SubmitProtected(SubmitProtectedInput{
		MissionID:   mission.ID,
		DesignerID:  designer.ID,
		Data:        pngBytes(t, 100, 100),
		ContentType: "image/png",
		AmountCents: 10000,
	})
	require.NoError(t, err)

	// deletion requires a terminal status
	err = env.missions.Delete(mission.ID, creator.ID)
	require.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))

	_, err = env.missions.Cancel(mission.ID, creator.ID)
	require.NoError(t, err)

	require.NoError(t, env.missions.Delete(mission.ID, creator.ID))

	_, err = env.missions.Get(mission.ID)
	require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	var proposalCount, deliveryCount, channelCount, messageCount int64
	env.db.Model(&models.Proposal{}).Where("mission_id = ?", mission.ID).Count(&proposalCount)
	env.db.Model(&models.Delivery{}).Where("mission_id = ?", mission.ID).Count(&deliveryCount)
	env.db.Model(&models.Channel{}).Where("mission_id = ?", mission.ID).Count(&channelCount)
	env.db.Model(&models.Message{}).Count(&messageCount)
	require.Zero(t, proposalCount)
	require.Zero(t, deliveryCount)
	require.Zero(t, channelCount)
	require.Zero(t, messageCount)

	// the stored blob is gone too
	_, _, err = env.store.Get(delivery.ProtectedRef)
	require.Error(t, err)
}
