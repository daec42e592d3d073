package script

import (
	"strings"
	"testing"

	"github.com/eastway/batchlaunch/internal/account"
)

func testAccount() account.Account {
	return account.Account{
		ID:          "a1",
		Login:       "alice",
		Secret:      "secret",
		Server:      account.ServerMain,
		Character:   "Маша",
		Description: "main farmer",
		Owner:       "bob",
	}
}

func TestRenderInvocationLine(t *testing.T) {
	text := Render(testAccount(), "/games/pw/element/ElementClient.exe", RenderOptions{})
	if !strings.Contains(text, "start \"\" \"ElementClient.exe\" startbypatcher game:cpw user:alice pwd:secret role: server:Main") {
		t.Fatalf("invocation line missing or wrong:\n%s", text)
	}
	if !strings.Contains(text, "@echo off\r\n") {
		t.Fatalf("missing @echo off:\n%s", text)
	}
	if !strings.HasPrefix(text, ":: Account: alice\r\n") {
		t.Fatalf("missing account comment:\n%s", text)
	}
}

func TestRenderIncludeCharacter(t *testing.T) {
	text := Render(testAccount(), "/games/pw/ElementClient.exe", RenderOptions{IncludeCharacter: true})
	if !strings.Contains(text, "role:Маша") {
		t.Fatalf("role parameter not filled:\n%s", text)
	}
}

func TestRenderOmitsEmptyComments(t *testing.T) {
	a := account.Account{Login: "x", Secret: "y", Server: account.ServerMain}
	text := Render(a, "/g/ElementClient.exe", RenderOptions{})
	for _, banned := range []string{":: Character:", ":: Description:", ":: Owner:"} {
		if strings.Contains(text, banned) {
			t.Fatalf("empty field rendered %q:\n%s", banned, text)
		}
	}
}

func TestRenderCRLF(t *testing.T) {
	text := Render(testAccount(), "/g/ElementClient.exe", RenderOptions{})
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, "\r\n") {
			t.Fatalf("line missing CRLF terminator: %q", line)
		}
	}
}

func TestParseInvocation(t *testing.T) {
	c := Parse(`start "" "ElementClient.exe" startbypatcher game:cpw user:alice pwd:secret server:Main`)
	if c.Login != "alice" || c.Secret != "secret" || c.Server != account.ServerMain {
		t.Fatalf("parsed %+v", c)
	}
	if !c.Complete() {
		t.Fatal("candidate with login and secret must be complete")
	}
}

func TestParseRoundTrip(t *testing.T) {
	a := testAccount()
	c := Parse(Render(a, "/g/element/ElementClient.exe", RenderOptions{IncludeCharacter: true}))
	if c.Login != a.Login {
		t.Fatalf("login %q want %q", c.Login, a.Login)
	}
	if c.Secret != a.Secret {
		t.Fatalf("secret %q want %q", c.Secret, a.Secret)
	}
	if c.Server != a.Server {
		t.Fatalf("server %q want %q", c.Server, a.Server)
	}
	if c.Character != a.Character {
		t.Fatalf("character %q want %q", c.Character, a.Character)
	}
	if c.Description != a.Description {
		t.Fatalf("description %q want %q", c.Description, a.Description)
	}
	if c.Owner != a.Owner {
		t.Fatalf("owner %q want %q", c.Owner, a.Owner)
	}
}

func TestParseCommentFallback(t *testing.T) {
	c := Parse(":: Account: carol\r\n:: Server: pvp\r\n:: Character: Hex\r\nstart \"\" \"ElementClient.exe\" startbypatcher game:cpw user: pwd:pw role:")
	if c.Login != "carol" {
		t.Fatalf("login %q, want comment fallback", c.Login)
	}
	if c.Server != account.ServerPvP {
		t.Fatalf("server %q, want normalized PvP", c.Server)
	}
	if c.Character != "Hex" {
		t.Fatalf("character %q, want comment fallback", c.Character)
	}
	if c.Secret != "pw" {
		t.Fatalf("secret %q", c.Secret)
	}
}

func TestParseInlineWinsOverComment(t *testing.T) {
	c := Parse(":: Account: carol\nstart \"\" \"x.exe\" startbypatcher game:cpw user:alice pwd:pw role:Hex")
	if c.Login != "alice" {
		t.Fatalf("login %q, inline token must win", c.Login)
	}
	if c.Character != "Hex" {
		t.Fatalf("character %q", c.Character)
	}
}

func TestParseFirstTokenWins(t *testing.T) {
	c := Parse("start x user:first pwd:pw\nstart y user:second pwd:other")
	if c.Login != "first" {
		t.Fatalf("login %q, first occurrence must win", c.Login)
	}
	if c.Secret != "pw" {
		t.Fatalf("secret %q", c.Secret)
	}
}

func TestParseUnknownServerNormalized(t *testing.T) {
	c := Parse("start x user:a pwd:b server:Weird")
	if c.Server != account.DefaultServer {
		t.Fatalf("server %q, want default for unknown tag", c.Server)
	}
}

func TestParseEmpty(t *testing.T) {
	c := Parse("")
	if c.Complete() {
		t.Fatal("empty text must not yield a complete candidate")
	}
	if c.Server != account.DefaultServer {
		t.Fatalf("server %q, want default", c.Server)
	}
}

func TestParseQuotedValues(t *testing.T) {
	c := Parse(`start x user:"alice" pwd:"s3cret"`)
	if c.Login != "alice" || c.Secret != "s3cret" {
		t.Fatalf("parsed %+v, quotes must be stripped", c)
	}
}
