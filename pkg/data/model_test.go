package data

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(name string) *ModelRecord {
	return &ModelRecord{
		Name:      name,
		Source:    "file://model.json",
		Artifact:  []byte(`{"tree":{}}`),
		Metadata:  []byte(`{"model_type":"DecisionTreeClassifier"}`),
		ModelType: "DecisionTreeClassifier",
	}
}

func assertRegistry(t *testing.T, db *sql.DB) {
	t.Helper()

	r := testRecord("default")
	require.NoError(t, SaveModel(db, r))
	assert.Equal(t, Checksum(r.Artifact, r.Metadata), r.Checksum)
	assert.False(t, r.ImportedAt.IsZero())

	got, err := GetModel(db, "default")
	require.NoError(t, err)
	assert.Equal(t, r.Name, got.Name)
	assert.Equal(t, r.Source, got.Source)
	assert.Equal(t, r.Artifact, got.Artifact)
	assert.Equal(t, r.Metadata, got.Metadata)
	assert.Equal(t, r.Checksum, got.Checksum)
	assert.Equal(t, r.ModelType, got.ModelType)
	assert.WithinDuration(t, r.ImportedAt, got.ImportedAt, time.Second)

	// replace
	r2 := testRecord("default")
	r2.Source = "github://org/repo@v2"
	r2.Artifact = []byte(`{"tree":{"v":2}}`)
	r2.ImportedAt = time.Now().UTC().Add(time.Minute)
	require.NoError(t, SaveModel(db, r2))

	got, err = GetModel(db, "default")
	require.NoError(t, err)
	assert.Equal(t, "github://org/repo@v2", got.Source)
	assert.NotEqual(t, r.Checksum, got.Checksum)

	other := testRecord("candidate")
	other.ImportedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, SaveModel(db, other))

	list, err := ListModels(db)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "default", list[0].Name)
	assert.Equal(t, "candidate", list[1].Name)
	assert.Nil(t, list[0].Artifact)

	require.NoError(t, DeleteModel(db, "candidate"))
	assert.ErrorIs(t, DeleteModel(db, "candidate"), ErrModelNotFound)

	_, err = GetModel(db, "candidate")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestModelRegistry_SQLite(t *testing.T) {
	assertRegistry(t, setupTestDB(t))
}

func TestSaveModel_Invalid(t *testing.T) {
	db := setupTestDB(t)

	assert.Error(t, SaveModel(db, nil))
	assert.Error(t, SaveModel(db, &ModelRecord{}))
	assert.Error(t, SaveModel(db, &ModelRecord{Name: "x", Artifact: []byte("{}")}))
}

func TestModelRegistry_NilDB(t *testing.T) {
	assert.ErrorIs(t, SaveModel(nil, testRecord("x")), errDBNotInitialized)

	_, err := GetModel(nil, "x")
	assert.ErrorIs(t, err, errDBNotInitialized)

	_, err = ListModels(nil)
	assert.ErrorIs(t, err, errDBNotInitialized)

	assert.ErrorIs(t, DeleteModel(nil, "x"), errDBNotInitialized)
}

func TestModelRecord_Verify(t *testing.T) {
	db := setupTestDB(t)

	r := testRecord("tampered")
	r.Checksum = Checksum([]byte(`{"tree":{"v":0}}`), r.Metadata)
	require.NoError(t, SaveModel(db, r))

	got, err := GetModel(db, "tampered")
	require.NoError(t, err)
	assert.ErrorIs(t, got.Verify(), ErrChecksumMismatch)

	require.NoError(t, SaveModel(db, testRecord("intact")))
	got, err = GetModel(db, "intact")
	require.NoError(t, err)
	assert.NoError(t, got.Verify())
}

func TestListModels_Empty(t *testing.T) {
	list, err := ListModels(setupTestDB(t))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("a"), []byte("b"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Checksum([]byte("a"), []byte("b")))
	assert.NotEqual(t, a, Checksum([]byte("b"), []byte("a")))
}
