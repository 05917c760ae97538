package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueKeyDistinctForSameName(t *testing.T) {
	a := uniqueKey("crew_documents/scan.pdf")
	b := uniqueKey("crew_documents/scan.pdf")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "crew_documents/scan_"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
}

func TestUniqueKeySanitizesName(t *testing.T) {
	key := uniqueKey("crew_documents/my scan (1)?.pdf")

	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, "(")
	assert.NotContains(t, key, "?")
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	key, err := store.Put(ctx, "crew_documents/scan.pdf", "application/pdf", strings.NewReader("hello"))
	require.NoError(t, err)

	obj, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.EqualValues(t, 5, obj.ContentLength)

	_, err = store.Get(ctx, "missing")
	assert.Error(t, err)
}
