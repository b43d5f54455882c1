package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industriassp/storefront/internal/domain"
	"github.com/industriassp/storefront/pkg/database"
)

var customerColumns = []string{"id", "document_type", "name", "document", "address", "phone", "frequency"}

func setupCustomerRepo(t *testing.T) (pgxmock.PgxPoolIface, *CustomerRepository) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewCustomerRepository(mock)
}

func TestCustomerRepository_Search(t *testing.T) {
	mock, repo := setupCustomerRepo(t)

	rows := pgxmock.NewRows(customerColumns).
		AddRow("c-1", "dni", "Maria Lopez", "45678912", "Av. Grau 123", "999111222", 7).
		AddRow("c-2", "ruc", "Ferreteria Lopez SAC", "20123456789", "", "", 3)
	mock.ExpectQuery("SELECT id, document_type, name").
		WithArgs("lop", 10).
		WillReturnRows(rows)

	got, err := repo.Search(context.Background(), "lop", domain.FilterAny, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Maria Lopez", got[0].Name)
	assert.Equal(t, domain.DocumentDNI, got[0].Type)
	assert.Equal(t, 7, got[0].Freq)
	assert.Equal(t, domain.DocumentRUC, got[1].Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_SearchFiltersByDocumentType(t *testing.T) {
	mock, repo := setupCustomerRepo(t)

	rows := pgxmock.NewRows(customerColumns).
		AddRow("c-2", "ruc", "Ferreteria Lopez SAC", "20123456789", "", "", 3)
	mock.ExpectQuery("SELECT id, document_type, name").
		WithArgs("201", "ruc", 10).
		WillReturnRows(rows)

	got, err := repo.Search(context.Background(), "201", domain.FilterRUC, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "20123456789", got[0].Document)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_SearchDeduplicates(t *testing.T) {
	mock, repo := setupCustomerRepo(t)

	rows := pgxmock.NewRows(customerColumns).
		AddRow("c-1", "dni", "Maria Lopez", "45678912", "", "", 7).
		AddRow("c-9", "dni", "Maria Lopez Duplicada", "45678912", "", "", 1)
	mock.ExpectQuery("SELECT id, document_type, name").
		WithArgs("456", 10).
		WillReturnRows(rows)

	got, err := repo.Search(context.Background(), "456", domain.FilterAny, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-1", got[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_SearchUnknownTypeNormalized(t *testing.T) {
	mock, repo := setupCustomerRepo(t)

	rows := pgxmock.NewRows(customerColumns).
		AddRow("c-3", "", "Cliente Sin Documento", "", "", "", 0)
	mock.ExpectQuery("SELECT id, document_type, name").
		WithArgs("cliente", 10).
		WillReturnRows(rows)

	got, err := repo.Search(context.Background(), "cliente", domain.FilterAny, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.DocumentUnknown, got[0].Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_SearchClampsLimit(t *testing.T) {
	mock, repo := setupCustomerRepo(t)

	mock.ExpectQuery("SELECT id, document_type, name").
		WithArgs("lop", 10).
		WillReturnRows(pgxmock.NewRows(customerColumns))

	got, err := repo.Search(context.Background(), "lop", domain.FilterAny, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_SearchQueryError(t *testing.T) {
	mock, repo := setupCustomerRepo(t)

	mock.ExpectQuery("SELECT id, document_type, name").
		WithArgs("x", 10).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.Search(context.Background(), "x", domain.FilterAny, 10)
	assert.ErrorContains(t, err, "search customers")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_IncrementFrequency(t *testing.T) {
	mock, repo := setupCustomerRepo(t)

	mock.ExpectExec("UPDATE customers SET frequency").
		WithArgs("c-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.IncrementFrequency(context.Background(), "c-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_IncrementFrequencyError(t *testing.T) {
	mock, repo := setupCustomerRepo(t)

	mock.ExpectExec("UPDATE customers SET frequency").
		WithArgs("c-1").
		WillReturnError(errors.New("down"))

	err := repo.IncrementFrequency(context.Background(), "c-1")
	assert.ErrorContains(t, err, "increment customer frequency")
	assert.NoError(t, mock.ExpectationsWereMet())
}
