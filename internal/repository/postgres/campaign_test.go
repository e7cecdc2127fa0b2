package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/service/campaign"
)

func TestCampaignGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM campaigns`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewCampaignRepo(db).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, campaign.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE campaigns SET status = \$1`).
		WithArgs(domain.CampaignSending, "camp-1", domain.CampaignDraft).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewCampaignRepo(db).TransitionStatus(context.Background(), "camp-1", domain.CampaignDraft, domain.CampaignSending)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE campaigns SET status = \$1`).
		WithArgs(domain.CampaignSending, "camp-1", domain.CampaignDraft).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("camp-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = NewCampaignRepo(db).TransitionStatus(context.Background(), "camp-1", domain.CampaignDraft, domain.CampaignSending)
	assert.ErrorIs(t, err, campaign.ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE campaigns SET status = \$1`).
		WithArgs(domain.CampaignSending, "missing", domain.CampaignDraft).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err = NewCampaignRepo(db).TransitionStatus(context.Background(), "missing", domain.CampaignDraft, domain.CampaignSending)
	assert.ErrorIs(t, err, campaign.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteSend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec(`UPDATE campaigns`).
		WithArgs(domain.CampaignSent, now, 150, "camp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewCampaignRepo(db).CompleteSend(context.Background(), "camp-1", domain.CampaignSent, &now, 150)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
