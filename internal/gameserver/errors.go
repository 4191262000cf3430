package gameserver

import "fmt"

// ConfigError reports a required game-server setting that is absent from
// configuration. It is raised before any signing or network attempt.
type ConfigError struct {
	Missing string // config key, e.g. "game_server.service_secret"
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("game server not configured: %s missing", e.Missing)
}

// AuthError means the game server rejected the service credential (HTTP 401).
// It is never treated as ordinary domain data, whatever the body says.
type AuthError struct {
	Body string
}

func (e *AuthError) Error() string { return "game server authentication failed" }

// UnavailableError covers transport failures and upstream 5xx responses.
// Status is 0 when the request never produced a response.
type UnavailableError struct {
	Status int
	Body   string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("game server unreachable: %v", e.Err)
	}
	return fmt.Sprintf("game server error: status=%d", e.Status)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
