package csvimport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionSelectsEverything(t *testing.T) {
	s, err := NewSession(" Name , Email \n Ann , a@example.com \nBob,b@example.com\n", 0, "admin-1", time.Now())
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, []string{"Name", "Email"}, s.Headers)
	assert.Equal(t, []string{"0", "1"}, s.SelectedRowIDs)
	assert.Equal(t, []string{"Ann", "a@example.com"}, s.Rows[0].Columns)
	assert.Equal(t, 1, s.Columns.Email)
	assert.Equal(t, ",", s.Delimiter)
}

func TestNewSessionErrors(t *testing.T) {
	_, err := NewSession("Name,Email\n", 0, "admin-1", time.Now())
	assert.ErrorIs(t, err, ErrNoDataRows)

	_, err = NewSession("", 0, "admin-1", time.Now())
	assert.ErrorIs(t, err, ErrNoDataRows)

	_, err = NewSession("Name,Email\nAnn,a@example.com\n", 10, "admin-1", time.Now())
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSessionSelect(t *testing.T) {
	s, err := NewSession("Name\nA\nB\nC\n", 0, "admin-1", time.Now())
	require.NoError(t, err)

	require.NoError(t, s.Select([]string{"2", "0", "2"}))
	assert.Equal(t, []string{"2", "0"}, s.SelectedRowIDs)

	rows := s.SelectedRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "0", rows[0].ID, "selected rows come back in file order")
	assert.Equal(t, "2", rows[1].ID)

	assert.ErrorIs(t, s.Select([]string{"9"}), ErrUnknownRow)
	assert.Equal(t, []string{"2", "0"}, s.SelectedRowIDs, "failed select leaves selection untouched")

	require.NoError(t, s.Select(nil))
	assert.Empty(t, s.SelectedRows())
}
