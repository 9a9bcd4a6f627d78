package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/elky431-debug/creax-backend/internal/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

// The transition UPDATE must be conditioned on the delivery still holding
// the expected status, so a lost race surfaces as zero affected rows
// instead of silently overwriting the winner's write.
func TestDeliveryTransition_GuardsOnCurrentStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDeliveryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `deliveries` SET").WithArgs(
		string(models.DeliveryStatusValidated),
		sqlmock.AnyArg(),
		uint64(7),
		string(models.DeliveryStatusProtectedSent),
	).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Transition(7, models.DeliveryStatusProtectedSent, map[string]interface{}{
		"status": models.DeliveryStatusValidated,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryTransition_StaleStatusWhenNoRowMatches(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDeliveryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `deliveries`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Transition(7, models.DeliveryStatusValidated, map[string]interface{}{
		"status": models.DeliveryStatusPaid,
	})
	require.ErrorIs(t, err, ErrStaleStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryFinalize_RollsBackWhenMissionAlreadyClosed(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDeliveryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `deliveries`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `missions`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	delivery := &models.Delivery{ID: 7, MissionID: 3}
	err := repo.Finalize(delivery, map[string]interface{}{
		"status": models.DeliveryStatusFinalSent,
	})
	require.ErrorIs(t, err, ErrStaleStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}
