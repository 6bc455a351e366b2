package repository

import (
	"testing"
	"time"

	tokendomain "classnest-backend/internal/token/domain"

	"github.com/stretchr/testify/assert"
)

func TestTokenColumns_PushKind(t *testing.T) {
	now := time.Now()
	token := "tok-A"

	cols := tokenColumns(tokendomain.KindPush, &token, now)

	assert.Equal(t, &token, cols["fcm_token"])
	assert.Equal(t, now, cols["fcm_token_updated_at"])
	assert.NotContains(t, cols, "voip_token")
}

func TestTokenColumns_VoIPKind(t *testing.T) {
	now := time.Now()

	cols := tokenColumns(tokendomain.KindVoIP, nil, now)

	assert.Contains(t, cols, "voip_token")
	assert.Nil(t, cols["voip_token"])
	assert.NotContains(t, cols, "fcm_token")
}

func TestTokenColumns_NeverTouchesPlatform(t *testing.T) {
	now := time.Now()
	token := "tok-A"

	// Clearing one kind must not blank the user's platform while the other
	// kind's token is still registered; only the save path sets platform.
	for _, kind := range []tokendomain.Kind{tokendomain.KindPush, tokendomain.KindVoIP} {
		assert.NotContains(t, tokenColumns(kind, nil, now), "platform")
		assert.NotContains(t, tokenColumns(kind, &token, now), "platform")
	}
}
