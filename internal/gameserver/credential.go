package gameserver

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// credentialTTL is the validity window the game server expects on service
// credentials. Tokens are minted fresh for every outbound call and never
// cached or persisted.
const credentialTTL = time.Hour

// Issuer mints short-lived signed credentials identifying this backend
// ("cms") to the game server. Stateless; safe for concurrent use.
type Issuer struct {
	secret string
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer { return &Issuer{secret: secret, now: time.Now} }

// Issue returns a signed credential. Fails with *ConfigError when no
// shared secret is configured, before any signing attempt.
func (i *Issuer) Issue() (string, error) {
	if i.secret == "" {
		return "", &ConfigError{Missing: "game_server.service_secret"}
	}
	now := i.now()
	claims := jwt.MapClaims{
		"service":   "cms",
		"timestamp": now.UnixMilli(),
		"iat":       now.Unix(),
		"exp":       now.Add(credentialTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.secret))
}
