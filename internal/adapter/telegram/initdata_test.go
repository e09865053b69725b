package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "12345:test-bot-token"

func signInitData(t *testing.T, values url.Values, botToken string) string {
	t.Helper()

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func validInitData(t *testing.T, authDate time.Time) string {
	values := url.Values{}
	values.Set("user", `{"id":123456789,"first_name":"Ada","last_name":"Lovelace","username":"ada"}`)
	values.Set("auth_date", fmt.Sprintf("%d", authDate.Unix()))
	values.Set("query_id", "AAE1")
	return signInitData(t, values, testBotToken)
}

func TestValidateInitData(t *testing.T) {
	initData := validInitData(t, time.Now())

	user, err := ValidateInitData(initData, testBotToken, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), user.ID)
	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, "Ada Lovelace", user.DisplayName())
}

func TestValidateInitDataWrongToken(t *testing.T) {
	initData := validInitData(t, time.Now())

	_, err := ValidateInitData(initData, "99999:other-token", time.Hour)
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestValidateInitDataTampered(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"id":123456789,"first_name":"Ada"}`)
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Unix()))
	initData := signInitData(t, values, testBotToken)

	// swap the signed user for another account
	tampered := strings.Replace(initData, "123456789", "987654321", 1)

	_, err := ValidateInitData(tampered, testBotToken, time.Hour)
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestValidateInitDataExpired(t *testing.T) {
	initData := validInitData(t, time.Now().Add(-48*time.Hour))

	_, err := ValidateInitData(initData, testBotToken, 24*time.Hour)
	assert.ErrorIs(t, err, ErrInitDataExpired)
}

func TestValidateInitDataNoHash(t *testing.T) {
	_, err := ValidateInitData("user=%7B%22id%22%3A1%7D&auth_date=1", testBotToken, 0)
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestWebAppUserDisplayNameFallback(t *testing.T) {
	u := &WebAppUser{Username: "ghost"}
	assert.Equal(t, "ghost", u.DisplayName())

	u = &WebAppUser{FirstName: "Solo"}
	assert.Equal(t, "Solo", u.DisplayName())
}
