package mysql

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeStructured_NullForms(t *testing.T) {
	for _, ns := range []sql.NullString{{}, {String: "", Valid: true}, {String: "null", Valid: true}} {
		d, err := decodeStructured(ns)
		require.NoError(t, err)
		require.Nil(t, d)
	}
}

func TestStringOrDash(t *testing.T) {
	require.Equal(t, "-", stringOrDash("  "))
	require.Equal(t, "u", stringOrDash("u"))
}
