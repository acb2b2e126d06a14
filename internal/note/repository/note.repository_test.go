package repository

import (
	"testing"
	"time"

	"learn2learn/internal/note/model"
	"learn2learn/pkg/apperr"
	"learn2learn/pkg/pagination"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*NoteRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewNoteRepository(db), mock
}

func TestCreateWithTags(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO notes").
		WithArgs("n1", "Mitosis", "Cells divide in phases", "user1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	// Empty current set, both tags get attached.
	mock.ExpectQuery("SELECT tag_id FROM tag_notes").
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}))
	mock.ExpectExec("INSERT INTO tag_notes").
		WithArgs(sqlmock.AnyArg(), "tag-a", "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tag_notes").
		WithArgs(sqlmock.AnyArg(), "tag-b", "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	note := &model.Note{ID: "n1", Title: "Mitosis", Content: "Cells divide in phases", UserID: "user1"}
	require.NoError(t, repo.Create(note, []string{"tag-b", "tag-a", "tag-b"}))
	assert.Equal(t, now, note.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnknownTagFailsCleanly(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO notes").
		WithArgs("n1", "Mitosis", "Cells divide in phases", "user1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery("SELECT tag_id FROM tag_notes").
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}))
	mock.ExpectExec("INSERT INTO tag_notes").
		WithArgs(sqlmock.AnyArg(), "ghost", "n1").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "tag_notes_tag_id_fkey"})
	mock.ExpectRollback()

	note := &model.Note{ID: "n1", Title: "Mitosis", Content: "Cells divide in phases", UserID: "user1"}
	err := repo.Create(note, []string{"ghost"})
	require.Error(t, err)
	assert.Equal(t, apperr.Reference, apperr.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnknownTechnique(t *testing.T) {
	repo, mock := newMockRepo(t)
	techID := "missing-technique"

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO notes").
		WithArgs("n1", "Mitosis", "Cells divide in phases", "user1", techID).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "notes_learning_technic_id_fkey"})
	mock.ExpectRollback()

	note := &model.Note{ID: "n1", Title: "Mitosis", Content: "Cells divide in phases", UserID: "user1", TechniqueID: &techID}
	err := repo.Create(note, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.Reference, apperr.CodeOf(err))
	assert.Equal(t, map[string]string{"technique_id": "unknown learning technique"}, apperr.FieldsOf(err))
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT n.id, n.title, n.content, n.user_id, n.learning_technic_id").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id", "learning_technic_id", "created_at", "updated_at"}))

	_, err := repo.GetByID("nope")
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestGetByIDPopulatesTags(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT n.id, n.title, n.content, n.user_id, n.learning_technic_id").
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id", "learning_technic_id", "created_at", "updated_at"}).
			AddRow("n1", "Mitosis", "Cells divide in phases", "user1", nil, now, now))
	mock.ExpectQuery("FROM tag_notes tn JOIN tags t").
		WithArgs(pq.Array([]string{"n1"})).
		WillReturnRows(sqlmock.NewRows([]string{"note_id", "id", "name", "created_at", "updated_at"}).
			AddRow("n1", "tag-a", "bio", now, now).
			AddRow("n1", "tag-b", "exam", now, now))

	note, err := repo.GetByID("n1")
	require.NoError(t, err)
	require.Len(t, note.Tags, 2)
	assert.Equal(t, "bio", note.Tags[0].Name)
	assert.Equal(t, "exam", note.Tags[1].Name)
}

func TestSyncTagsDiffsNotReplaces(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	// Current set {a, b}, target {b, c}: remove a, add c, leave b untouched.
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE notes SET title").
		WithArgs("Mitosis", "Cells divide in phases", nil, "n1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery("SELECT tag_id FROM tag_notes").
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}).AddRow("tag-a").AddRow("tag-b"))
	mock.ExpectExec("DELETE FROM tag_notes WHERE note_id").
		WithArgs("n1", pq.Array([]string{"tag-a"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tag_notes").
		WithArgs(sqlmock.AnyArg(), "tag-c", "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	note := &model.Note{ID: "n1", Title: "Mitosis", Content: "Cells divide in phases", UserID: "user1"}
	tags := []string{"tag-b", "tag-c"}
	require.NoError(t, repo.Update(note, &tags))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncTagsIdempotent(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	// Target equals current: no association statements at all.
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE notes SET title").
		WithArgs("Mitosis", "Cells divide in phases", nil, "n1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery("SELECT tag_id FROM tag_notes").
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}).AddRow("tag-a").AddRow("tag-b"))
	mock.ExpectCommit()

	note := &model.Note{ID: "n1", Title: "Mitosis", Content: "Cells divide in phases", UserID: "user1"}
	tags := []string{"tag-a", "tag-b"}
	require.NoError(t, repo.Update(note, &tags))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmptyTagSetDetachesAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE notes SET title").
		WithArgs("Mitosis", "Cells divide in phases", nil, "n1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery("SELECT tag_id FROM tag_notes").
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}).AddRow("tag-a"))
	mock.ExpectExec("DELETE FROM tag_notes WHERE note_id").
		WithArgs("n1", pq.Array([]string{"tag-a"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	note := &model.Note{ID: "n1", Title: "Mitosis", Content: "Cells divide in phases", UserID: "user1"}
	tags := []string{}
	require.NoError(t, repo.Update(note, &tags))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNeverTouchesOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	// The statement carries title, content, technique and id only; there is
	// no way to smuggle a user_id change through this repository.
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE notes SET title = \$1, content = \$2, learning_technic_id = \$3, updated_at = NOW\(\)\s+WHERE id = \$4`).
		WithArgs("New title", "Cells divide in phases", nil, "n1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectCommit()

	note := &model.Note{ID: "n1", Title: "New title", Content: "Cells divide in phases", UserID: "attacker"}
	require.NoError(t, repo.Update(note, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithTagFilterAndCursor(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	cursorAt := now.Add(-time.Hour)

	mock.ExpectQuery(`FROM notes n JOIN tag_notes tn ON tn\.note_id = n\.id AND tn\.tag_id = \$1 WHERE n\.user_id = \$2 AND \(n\.created_at, n\.id\) < \(\$3, \$4\) ORDER BY n\.created_at DESC, n\.id DESC LIMIT \$5`).
		WithArgs("tag-a", "user1", cursorAt, "n5", 16).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id", "learning_technic_id", "created_at", "updated_at"}).
			AddRow("n4", "Older", "body goes here", "user1", nil, cursorAt.Add(-time.Minute), now))
	mock.ExpectQuery("FROM tag_notes tn JOIN tags t").
		WithArgs(pq.Array([]string{"n4"})).
		WillReturnRows(sqlmock.NewRows([]string{"note_id", "id", "name", "created_at", "updated_at"}).
			AddRow("n4", "tag-a", "bio", now, now))

	notes, err := repo.List("user1", ListQuery{
		Order:  model.OrderNewest,
		TagID:  "tag-a",
		Cursor: &pagination.TimeCursor{CreatedAt: cursorAt, ID: "n5"},
		Limit:  16,
	})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "n4", notes[0].ID)
	require.Len(t, notes[0].Tags, 1)
	assert.Equal(t, "bio", notes[0].Tags[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOldestOrder(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE n\.user_id = \$1 ORDER BY n\.created_at ASC, n\.id ASC LIMIT \$2`).
		WithArgs("user1", 16).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id", "learning_technic_id", "created_at", "updated_at"}))

	notes, err := repo.List("user1", ListQuery{Order: model.OrderOldest, Limit: 16})
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCascadesAssociations(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tag_notes WHERE note_id").
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM notes WHERE id").
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete("n1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
