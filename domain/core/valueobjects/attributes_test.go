package valueobjects

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanAttributeIDsFindsNestedReferences(t *testing.T) {
	author := uuid.New().String()
	parent := uuid.New().String()
	tag := uuid.New().String()

	attrs := map[string]interface{}{
		"title":      "a post",
		"created_by": author,
		"thread": map[string]interface{}{
			"parent": parent,
			"depth":  float64(3),
			"open":   true,
		},
		"tags":  []interface{}{tag, "plain-text-tag", nil},
		"score": 4.5,
	}

	ids := ScanAttributeIDs(attrs)

	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	assert.ElementsMatch(t, []string{author, parent, tag}, values)
}

func TestScanAttributeIDsDeduplicates(t *testing.T) {
	ref := uuid.New().String()
	attrs := map[string]interface{}{
		"a": ref,
		"b": []interface{}{ref, map[string]interface{}{"c": ref}},
	}

	ids := ScanAttributeIDs(attrs)
	require.Len(t, ids, 1)
	assert.Equal(t, ref, ids[0].String())
}

func TestScanAttributeIDsIgnoresIDShapedNoise(t *testing.T) {
	attrs := map[string]interface{}{
		"hex":     "6fa459ea6fa459ea6fa459ea",
		"braced":  "{" + uuid.New().String() + "}",
		"urn":     "urn:uuid:" + uuid.New().String(),
		"number":  float64(42),
		"boolean": false,
		"empty":   "",
	}

	assert.Empty(t, ScanAttributeIDs(attrs))
}

func TestIsRawID(t *testing.T) {
	assert.True(t, IsRawID(uuid.New().String()))
	assert.False(t, IsRawID(""))
	assert.False(t, IsRawID("urn:uuid:"+uuid.New().String()))
	assert.False(t, IsRawID("{"+uuid.New().String()+"}"))
}
