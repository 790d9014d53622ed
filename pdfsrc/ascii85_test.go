// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfsrc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaReader_PassesThroughValidBytesUntilTerminator(t *testing.T) {
	// '!' and 'u' are valid ASCII85 alphabet bytes; 'x','y','z' are not and
	// get zeroed; '~>' is the ASCII85 EOD marker and stops processing.
	src := []byte("!uxyz~>A")
	r := newAlphaReader(bytes.NewReader(src))

	buf := make([]byte, len(src))
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(src), n)

	assert.Equal(t, byte('!'), buf[0])
	assert.Equal(t, byte('u'), buf[1])
	for i := 2; i < len(src); i++ {
		assert.Equalf(t, byte(0), buf[i], "buf[%d] should be zeroed once past the terminator or an invalid byte", i)
	}
}

func TestAlphaReader_AllValidBytesPreserved(t *testing.T) {
	src := []byte("!!!!!")
	r := newAlphaReader(bytes.NewReader(src))

	buf := make([]byte, len(src))
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(src), n)
	assert.Equal(t, src, buf)
}
