package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/elky431-debug/creax-backend/internal/models"
	"github.com/elky431-debug/creax-backend/internal/protection"
	"github.com/elky431-debug/creax-backend/internal/repository"
	"github.com/elky431-debug/creax-backend/internal/storage"
)

type testEnv struct {
	db *gorm.DB

	userRepo     repository.UserRepository
	missionRepo  repository.MissionRepository
	proposalRepo repository.ProposalRepository
	deliveryRepo repository.DeliveryRepository
	channelRepo  repository.ChannelRepository
	subsRepo     repository.SubscriptionRepository

	messaging *MessagingService
	auth      *AuthService
	missions  *MissionService
	proposals *ProposalService
	billing   *BillingService

	store  *storage.DiskStore
	engine *protection.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Mission{},
		&models.Proposal{},
		&models.Delivery{},
		&models.Channel{},
		&models.Message{},
		&models.Subscription{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	engine, err := protection.NewEngine(protection.Config{Brand: "CreaX"})
	require.NoError(t, err)

	env := &testEnv{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		missionRepo:  repository.NewMissionRepository(db),
		proposalRepo: repository.NewProposalRepository(db),
		deliveryRepo: repository.NewDeliveryRepository(db),
		channelRepo:  repository.NewChannelRepository(db),
		subsRepo:     repository.NewSubscriptionRepository(db),
		store:        store,
		engine:       engine,
	}

	env.messaging = NewMessagingService(env.channelRepo)
	env.auth = NewAuthService(env.userRepo)
	env.missions = NewMissionService(env.missionRepo, env.proposalRepo, env.deliveryRepo, env.userRepo, env.messaging, env.store)
	env.proposals = NewProposalService(env.proposalRepo, env.missionRepo, env.userRepo, env.subsRepo, env.messaging, false)
	env.billing = NewBillingService(env.subsRepo, "https://pay.example.com")

	return env
}

func (env *testEnv) deliveries(t *testing.T) *DeliveryService {
	t.Helper()
	return NewDeliveryService(
		env.deliveryRepo, env.missionRepo, env.userRepo, env.messaging,
		env.store, env.engine, 72*time.Hour, 336*time.Hour,
	)
}

func (env *testEnv) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		DisplayName:  email,
		Role:         role,
	}
	if role == models.RoleDesigner {
		user.PayoutDetails = "IBAN FR76 0000 1111 2222"
	}
	require.NoError(t, env.userRepo.Create(user))
	return user
}

func (env *testEnv) createOpenMission(t *testing.T, creator *models.User) *models.Mission {
	t.Helper()

	mission, err := env.missions.Create(CreateMissionInput{
		CreatorID:   creator.ID,
		Title:       "Logo refresh",
		Description: "Refresh our logo",
		Category:    "logo",
		BudgetRange: models.Budget100To500,
	})
	require.NoError(t, err)
	return mission
}

// acceptedMission runs the happy path up to an assigned, in-progress
// mission and returns the mission reloaded from the database.
func (env *testEnv) acceptedMission(t *testing.T, creator, designer *models.User) *models.Mission {
	t.Helper()

	mission := env.createOpenMission(t, creator)
	proposal, err := env.proposals.Submit(SubmitProposalInput{
		MissionID:  mission.ID,
		DesignerID: designer.ID,
		Message:    "I can do this",
	})
	require.NoError(t, err)

	_, err = env.proposals.Accept(proposal.ID, creator.ID)
	require.NoError(t, err)

	reloaded, err := env.missionRepo.FindByID(mission.ID)
	require.NoError(t, err)
	return reloaded
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (env *testEnv) channelMessages(t *testing.T, missionID, creatorID, designerID uint64) []models.Message {
	t.Helper()

	channel, err := env.messaging.EnsureChannel(missionID, creatorID, designerID)
	require.NoError(t, err)

	messages, err := env.channelRepo.ListMessages(channel.ID)
	require.NoError(t, err)
	return messages
}
