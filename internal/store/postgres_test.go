package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow plays back one documents row; a nil uploadedBy stands for SQL NULL.
type fakeRow struct {
	id, courseID    uuid.UUID
	title, fileName string
	url             string
	uploadedBy      *uuid.UUID
	createdAt       time.Time
	err             error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*uuid.UUID) = r.id
	*dest[1].(*uuid.UUID) = r.courseID
	*dest[2].(*string) = r.title
	*dest[3].(*string) = r.fileName
	*dest[4].(*string) = r.url
	*dest[5].(**uuid.UUID) = r.uploadedBy
	*dest[6].(*time.Time) = r.createdAt
	return nil
}

func TestScanDocumentNullUploadedBy(t *testing.T) {
	row := &fakeRow{
		id:        uuid.New(),
		courseID:  uuid.New(),
		title:     "Orphaned upload",
		fileName:  "orphan.pdf",
		createdAt: time.Now(),
	}

	doc, err := scanDocument(row)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, doc.UploadedBy)
	assert.Equal(t, row.id, doc.ID)
	assert.Equal(t, "Orphaned upload", doc.Title)
}

func TestScanDocumentWithUploader(t *testing.T) {
	uploader := uuid.New()
	row := &fakeRow{
		id:         uuid.New(),
		courseID:   uuid.New(),
		title:      "Attributed upload",
		uploadedBy: &uploader,
		createdAt:  time.Now(),
	}

	doc, err := scanDocument(row)
	require.NoError(t, err)
	assert.Equal(t, uploader, doc.UploadedBy)
}

func TestScanDocumentPropagatesError(t *testing.T) {
	scanErr := errors.New("bad row")
	_, err := scanDocument(&fakeRow{err: scanErr})
	assert.ErrorIs(t, err, scanErr)
}
