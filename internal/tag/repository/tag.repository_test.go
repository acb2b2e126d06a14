package repository

import (
	"testing"
	"time"

	"learn2learn/internal/tag/model"
	"learn2learn/pkg/apperr"
	"learn2learn/pkg/pagination"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*TagRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTagRepository(db), mock
}

func TestCreateTag(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO tags").
		WithArgs("t1", "biology").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	tag := &model.Tag{ID: "t1", Name: "biology"}
	require.NoError(t, repo.Create(tag))
	assert.Equal(t, now, tag.CreatedAt)
}

func TestCreateTagDuplicateName(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO tags").
		WithArgs("t2", "biology").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "tags_name_key"})

	err := repo.Create(&model.Tag{ID: "t2", Name: "biology"})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.CodeOf(err))
	assert.Equal(t, map[string]string{"name": "has already been taken"}, apperr.FieldsOf(err))
}

func TestUpdateTagNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE tags SET name").
		WithArgs("renamed", "ghost").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	err := repo.Update(&model.Tag{ID: "ghost", Name: "renamed"})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestUpdateTagDuplicateName(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE tags SET name").
		WithArgs("taken", "t1").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "tags_name_key"})

	err := repo.Update(&model.Tag{ID: "t1", Name: "taken"})
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.CodeOf(err))
}

func TestDeleteTagDetachesThenDeletes(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tag_notes WHERE tag_id").
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM tags WHERE id").
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete("t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTagNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tag_notes WHERE tag_id").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM tags WHERE id").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete("ghost")
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestPopularCarriesCounts(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`ORDER BY notes_count DESC, t\.id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at", "notes_count"}).
			AddRow("tx", "bio", now, now, 3).
			AddRow("ty", "exam", now, now, 1).
			AddRow("tz", "todo", now, now, 0))

	tags, err := repo.Popular()
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "tx", tags[0].ID)
	require.NotNil(t, tags[0].NotesCount)
	assert.EqualValues(t, 3, *tags[0].NotesCount)
	assert.EqualValues(t, 1, *tags[1].NotesCount)
}

func TestUnused(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE tn\.id IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow("tz", "todo", now, now))

	tags, err := repo.Unused()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "todo", tags[0].Name)
	assert.Nil(t, tags[0].NotesCount)
}

func TestListWithCountsAndCursor(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE t\.name > \$1 GROUP BY t\.id, t\.name, t\.created_at, t\.updated_at ORDER BY t\.name ASC LIMIT \$2`).
		WithArgs("biology", 16).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at", "notes_count"}).
			AddRow("ty", "chemistry", now, now, 2))

	tags, err := repo.List(true, &pagination.NameCursor{Name: "biology"}, 16)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "chemistry", tags[0].Name)
	require.NotNil(t, tags[0].NotesCount)
	assert.EqualValues(t, 2, *tags[0].NotesCount)
}

func TestListPlain(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT t\.id, t\.name, t\.created_at, t\.updated_at FROM tags t ORDER BY t\.name ASC LIMIT \$1`).
		WithArgs(16).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow("tx", "bio", now, now))

	tags, err := repo.List(false, nil, 16)
	require.NoError(t, err)
	require.Len(t, tags, 1)
}
