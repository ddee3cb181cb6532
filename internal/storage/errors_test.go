package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	other := errors.New("syntax error")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"conn done", sql.ErrConnDone, ErrStoreUnavailable},
		{"bad conn", driver.ErrBadConn, ErrStoreUnavailable},
		{"already classified", errors.Join(ErrEncoding, other), ErrEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "op: ")
		})
	}

	assert.NoError(t, classify("op", nil))

	err := classify("op", other)
	assert.ErrorIs(t, err, other)
	for _, class := range errorClasses {
		assert.NotErrorIs(t, err, class)
	}
}

func TestClassify_KeepsDriverError(t *testing.T) {
	storage := setupTestDB(t)

	_, err := storage.db.Exec(`INSERT INTO note_tag_cross_ref (note_id, tag_id) VALUES (1, 1)`)
	assert.NotNil(t, classifyDriverError(err))

	classified := classify("insert", err)
	assert.ErrorIs(t, classified, ErrConstraintViolation)
	// The native driver error stays reachable
	assert.ErrorIs(t, classified, err)
}
