package ids

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "cortex-backend/pkg/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for i := 0; i < 50; i++ {
		raw := uuid.New().String()

		token := Encode(raw)
		require.NotEmpty(t, token)
		assert.Len(t, token, 22)

		decoded, err := Decode(token)
		require.NoError(t, err)
		assert.Equal(t, raw, decoded)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	raw := uuid.New().String()
	assert.Equal(t, Encode(raw), Encode(raw))
}

func TestEncodeRejectsMalformedRawID(t *testing.T) {
	assert.Empty(t, Encode(""))
	assert.Empty(t, Encode("not-a-uuid"))
	assert.Empty(t, Encode("6fa459ea"))
}

func TestDecodeRejectsNonTokenInput(t *testing.T) {
	cases := []string{
		"",
		"short",
		uuid.New().String(),                // bare UUID, never encoded
		"6fa459ea6fa459ea6fa459ea",         // hex that resembles a raw id
		"AAAAAAAAAAAAAAAAAAAAA!",           // right length, bad alphabet
		Encode(uuid.New().String()) + "AA", // too long
	}

	for _, c := range cases {
		_, err := Decode(c)
		require.Error(t, err, "input %q", c)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidToken))
	}
}

func TestIsValidToken(t *testing.T) {
	token := Encode(uuid.New().String())
	assert.True(t, IsValidToken(token))

	assert.False(t, IsValidToken(""))
	assert.False(t, IsValidToken(uuid.New().String()))
	assert.False(t, IsValidToken("AAAAAAAAAAAAAAAAAAAAA!"))
}
