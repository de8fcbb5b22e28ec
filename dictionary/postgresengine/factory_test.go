package postgresengine_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdata/temporal-dictionaries-go/dictionary"
	"github.com/refdata/temporal-dictionaries-go/dictionary/postgresengine"
)

func Test_Factory_RejectsNilConnection(t *testing.T) {
	_, err := postgresengine.NewDictionaryStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, dictionary.ErrNilDatabaseConnection)

	_, err = postgresengine.NewDictionaryStoreFromSQLX(nil)
	assert.ErrorIs(t, err, dictionary.ErrNilDatabaseConnection)

	_, err = postgresengine.NewDictionaryStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, dictionary.ErrNilDatabaseConnection)
}

func Test_Factory_RejectsEmptyTablePrefix(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = postgresengine.NewDictionaryStoreFromSQLDB(db, postgresengine.WithTablePrefix(""))

	assert.ErrorIs(t, err, dictionary.ErrEmptyTablePrefix)
}

func Test_Factory_RejectsNonPositiveRebuildConcurrency(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = postgresengine.NewDictionaryStoreFromSQLDB(db, postgresengine.WithRebuildConcurrency(0))

	assert.Error(t, err)
}

func Test_Factory_AcceptsOptions(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = postgresengine.NewDictionaryStoreFromSQLDB(db,
		postgresengine.WithTablePrefix("refdata"),
		postgresengine.WithRebuildConcurrency(4),
	)

	assert.NoError(t, err)
}

func Test_CustomTablePrefix_IsUsedInStatements(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := postgresengine.NewDictionaryStoreFromSQLDB(db, postgresengine.WithTablePrefix("refdata"))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM "refdata" WHERE \("id" = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "code", "description", "start_date", "finish_date",
			"id_status", "id_type", "created_at", "updated_at",
		}))

	_, err = store.GetDictionary(t.Context(), 5)

	assert.ErrorIs(t, err, dictionary.ErrDictionaryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
