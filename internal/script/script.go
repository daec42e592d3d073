// Package script renders accounts into launch scripts and parses existing
// scripts back into account candidates. The script format is a plain
// line-oriented .bat file: "::"-prefixed comment lines for the human
// operator, followed by one invocation line with whitespace-delimited
// key:value parameters in a fixed order.
package script

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/eastway/batchlaunch/internal/account"
)

const (
	// Extension of launch scripts; matched case-insensitively when scanning.
	Extension = ".bat"

	commentMarker = "::"
	launchMode    = "startbypatcher"
	gameToken     = "game:cpw"
)

// RenderOptions controls the divergent parts of script generation.
type RenderOptions struct {
	// IncludeCharacter fills the role: parameter from the account's
	// character name. The canonical path leaves it blank.
	IncludeCharacter bool
}

// Render produces launch-script text for the account and resolved
// executable path. Comment lines are provenance for the operator only and
// are never required for parsing the credentials back.
func Render(a account.Account, exePath string, opts RenderOptions) string {
	dir := filepath.Dir(exePath)
	exe := filepath.Base(exePath)

	var b strings.Builder
	fmt.Fprintf(&b, "%s Account: %s\r\n", commentMarker, a.Login)
	fmt.Fprintf(&b, "%s Server: %s\r\n", commentMarker, a.Server)
	if a.Character != "" {
		fmt.Fprintf(&b, "%s Character: %s\r\n", commentMarker, a.Character)
	}
	if a.Description != "" {
		fmt.Fprintf(&b, "%s Description: %s\r\n", commentMarker, a.Description)
	}
	if a.Owner != "" {
		fmt.Fprintf(&b, "%s Owner: %s\r\n", commentMarker, a.Owner)
	}
	fmt.Fprintf(&b, "%s Generated: %s\r\n", commentMarker, time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("@echo off\r\n")
	fmt.Fprintf(&b, "cd /d \"%s\"\r\n", dir)

	role := ""
	if opts.IncludeCharacter {
		role = a.Character
	}
	fmt.Fprintf(&b, "start \"\" \"%s\" %s %s user:%s pwd:%s role:%s", exe, launchMode, gameToken, a.Login, a.Secret, role)
	if a.Server != "" {
		fmt.Fprintf(&b, " server:%s", a.Server)
	}
	b.WriteString("\r\n")
	return b.String()
}

// Parse extracts a partial account from script text. Inline key:value
// tokens win; comment metadata is the fallback when the inline token was
// absent (or, for the character name, empty). The server value is always
// normalized to the canonical enumeration.
func Parse(text string) account.Candidate {
	var (
		login, secret, role string
		rawServer           string
		haveLogin           bool
		haveServer          bool
		haveRole            bool

		cmtAccount, cmtServer, cmtCharacter string
		cmtDescription, cmtOwner            string
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, commentMarker) {
			key, val, ok := splitComment(strings.TrimPrefix(trimmed, commentMarker))
			if !ok {
				continue
			}
			switch key {
			case "account":
				setIfEmpty(&cmtAccount, val)
			case "server":
				setIfEmpty(&cmtServer, val)
			case "character":
				setIfEmpty(&cmtCharacter, val)
			case "description":
				setIfEmpty(&cmtDescription, val)
			case "owner":
				setIfEmpty(&cmtOwner, val)
			}
			continue
		}
		for _, tok := range strings.Fields(trimmed) {
			switch {
			case strings.HasPrefix(tok, "user:") && !haveLogin:
				login = strings.Trim(tok[len("user:"):], `"`)
				haveLogin = true
			case strings.HasPrefix(tok, "pwd:") && secret == "":
				secret = strings.Trim(tok[len("pwd:"):], `"`)
			case strings.HasPrefix(tok, "server:") && !haveServer:
				rawServer = strings.Trim(tok[len("server:"):], `"`)
				haveServer = true
			case strings.HasPrefix(tok, "role:") && !haveRole:
				role = strings.Trim(tok[len("role:"):], `"`)
				haveRole = true
			}
		}
	}

	if !haveLogin || login == "" {
		login = cmtAccount
	}
	if !haveServer || rawServer == "" {
		rawServer = cmtServer
	}
	character := role
	if character == "" {
		character = cmtCharacter
	}

	c := account.Candidate{}
	c.Login = login
	c.Secret = secret
	c.Server = account.NormalizeServer(rawServer)
	c.Character = character
	c.Description = cmtDescription
	c.Owner = cmtOwner
	return c
}

// splitComment parses "<Key>: <value>" after the comment marker.
func splitComment(rest string) (key, val string, ok bool) {
	rest = strings.TrimSpace(rest)
	i := strings.IndexByte(rest, ':')
	if i <= 0 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(rest[:i])), strings.TrimSpace(rest[i+1:]), true
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
