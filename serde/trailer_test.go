package serde_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascherickal/vortex/serde"
)

func TestTrailerEncodeDecodeRoundTrip(t *testing.T) {
	tr := serde.Trailer{SchemaOffset: 16, FooterOffset: 4096}
	buf := tr.Encode()
	require.Len(t, buf, serde.TrailerSize)

	got, err := serde.DecodeTrailer(buf)
	require.NoError(t, err)
	assert.Equal(t, tr, got)
}

func TestDecodeTrailerRejectsBadMagic(t *testing.T) {
	tr := serde.Trailer{SchemaOffset: 0, FooterOffset: 8}
	buf := tr.Encode()
	buf[16] = 'X'
	_, err := serde.DecodeTrailer(buf)
	assert.Error(t, err)
}

func TestDecodeTrailerRejectsWrongSize(t *testing.T) {
	_, err := serde.DecodeTrailer(make([]byte, 5))
	assert.Error(t, err)
}
