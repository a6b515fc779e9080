package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagedb/internal/utils"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	tt := []struct {
		name   string
		pageID utils.PageID
		data   []byte
	}{
		{name: "empty data", pageID: 1, data: nil},
		{name: "short data", pageID: 2, data: []byte("hello")},
		{name: "full data", pageID: 3, data: make([]byte, DataSize)},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			p := NewTestPage(tc.pageID, tc.data)
			buf := p.Serialize()
			require.Len(t, buf, utils.PageSize)

			got, err := Deserialize(buf)
			require.NoError(t, err)
			assert.Equal(t, tc.pageID, got.Header.PageID)
			assert.Equal(t, p.Data, got.Data)
		})
	}
}

func TestDeserializeRejectsWrongSize(t *testing.T) {
	_, err := Deserialize(make([]byte, 10))
	assert.ErrorIs(t, err, ErrBadSize)
}

func TestDeserializeRejectsCorruption(t *testing.T) {
	p := NewTestPage(5, []byte("payload"))
	buf := p.Serialize()
	buf[HeaderSize] ^= 0xFF // flip every bit of a data byte without touching the checksum

	_, err := Deserialize(buf)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestResetZeroesMetadataAndData(t *testing.T) {
	p := NewTestPage(7, []byte("payload"))
	p.PinCount = 3
	p.Dirty = true

	p.Reset()

	assert.Zero(t, p.Header.PageID)
	assert.Zero(t, p.PinCount)
	assert.False(t, p.Dirty)
	assert.Equal(t, [DataSize]byte{}, p.Data)
}

func TestLatchIsIndependentOfMetadata(t *testing.T) {
	p := NewTestPage(1, nil)
	p.RLock()
	p.PinCount = 1 // metadata writes don't go through the content latch
	p.RUnlock()
}
