package account

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// ID is the stable identifier of a stored account. It never changes once
// assigned, even when the login is edited.
type ID string

// ServerTag is one of a small fixed set of acceptable server values.
// Unrecognized raw input coerces to DefaultServer rather than failing.
type ServerTag string

const (
	ServerMain ServerTag = "Main"
	ServerPvP  ServerTag = "PvP"
	ServerPvE  ServerTag = "PvE"
	ServerTest ServerTag = "Test"
)

// DefaultServer is applied when a server value is absent or unrecognized.
const DefaultServer = ServerMain

var canonicalServers = []ServerTag{ServerMain, ServerPvP, ServerPvE, ServerTest}

// NormalizeServer maps raw input to a canonical ServerTag. Matching is
// case-insensitive; anything unrecognized yields DefaultServer.
func NormalizeServer(raw string) ServerTag {
	v := strings.TrimSpace(raw)
	for _, t := range canonicalServers {
		if strings.EqualFold(v, string(t)) {
			return t
		}
	}
	return DefaultServer
}

// Account is one user-configured credential set for launching a
// game-client session.
type Account struct {
	ID          ID        `json:"id"`
	Login       string    `json:"login"`
	Secret      string    `json:"secret"`
	Server      ServerTag `json:"server"`
	Character   string    `json:"character,omitempty"`
	Description string    `json:"description,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	SourcePath  string    `json:"source_path,omitempty"` // script file the account was last observed in
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Candidate is a partially populated account recovered from an existing
// launch script. It is never persisted automatically; callers confirm it
// before it enters the store.
type Candidate struct {
	Account
}

// Complete reports whether the candidate carries the minimum required
// fields (login and secret). Incomplete candidates are discarded.
func (c Candidate) Complete() bool {
	return c.Login != "" && c.Secret != ""
}

// NewID returns a fresh random account identifier.
func NewID() ID {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return ID(hex.EncodeToString(b))
}
