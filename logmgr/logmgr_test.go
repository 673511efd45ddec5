package logmgr_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"keeldb/logmgr"
)

func TestAppendReturnsIncreasingLSNs(t *testing.T) {
	t.Parallel()

	lm, err := logmgr.Open(filepath.Join(t.TempDir(), "wal.log"))
	require.NoError(t, err)
	defer lm.Close()

	lsn1, err := lm.Append(logmgr.LogRecord{Data: []byte("first")})
	require.NoError(t, err)

	lsn2, err := lm.Append(logmgr.LogRecord{Data: []byte("second")})
	require.NoError(t, err)

	require.Greater(t, int64(lsn2), int64(lsn1))
}

func TestFlushIsIdempotentAndNoError(t *testing.T) {
	t.Parallel()

	lm, err := logmgr.Open(filepath.Join(t.TempDir(), "wal.log"))
	require.NoError(t, err)
	defer lm.Close()

	lsn, err := lm.Append(logmgr.LogRecord{Data: []byte("record")})
	require.NoError(t, err)

	require.NoError(t, lm.Flush(lsn))
	require.NoError(t, lm.Flush(lsn))
}

func TestReopenResumesLSNSequence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wal.log")

	lm1, err := logmgr.Open(path)
	require.NoError(t, err)
	_, err = lm1.Append(logmgr.LogRecord{Data: []byte("abc")})
	require.NoError(t, err)
	require.NoError(t, lm1.Close())

	lm2, err := logmgr.Open(path)
	require.NoError(t, err)
	defer lm2.Close()

	lsn, err := lm2.Append(logmgr.LogRecord{Data: []byte("def")})
	require.NoError(t, err)
	require.Greater(t, int64(lsn), int64(0))
}
