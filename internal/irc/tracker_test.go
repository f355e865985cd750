package irc

import "testing"

func TestSplitStatus(t *testing.T) {
	tests := []struct {
		entry        string
		wantPrefixes string
		wantNick     string
	}{
		{"alice", "", "alice"},
		{"@alice", "@", "alice"},
		{"+bob", "+", "bob"},
		{"~&carol", "~&", "carol"},
		{"@", "@", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		prefixes, nick := splitStatus(tt.entry)
		if prefixes != tt.wantPrefixes || nick != tt.wantNick {
			t.Errorf("splitStatus(%q) = (%q, %q), want (%q, %q)",
				tt.entry, prefixes, nick, tt.wantPrefixes, tt.wantNick)
		}
	}
}

func TestRankSort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"@", "@"},
		{"+@", "@+"},
		{"+%@&~", "~&@%+"},
		{"@x+", "@+"},
	}
	for _, tt := range tests {
		if got := rankSort(tt.in); got != tt.want {
			t.Errorf("rankSort(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrackerGrantRevoke(t *testing.T) {
	tr := newTracker()
	tr.set("#test", "alice", "")

	if got := tr.prefix("#test", "alice"); got != "" {
		t.Errorf("prefix before grant = %q, want \"\"", got)
	}

	tr.grant("#test", "alice", '+')
	if got := tr.prefix("#test", "alice"); got != "+" {
		t.Errorf("prefix after +v = %q, want \"+\"", got)
	}

	// A higher status shadows the lower one without dropping it.
	tr.grant("#test", "alice", '@')
	if got := tr.prefix("#test", "alice"); got != "@" {
		t.Errorf("prefix after +o = %q, want \"@\"", got)
	}

	tr.revoke("#test", "alice", '@')
	if got := tr.prefix("#test", "alice"); got != "+" {
		t.Errorf("prefix after -o = %q, want \"+\"", got)
	}

	tr.revoke("#test", "alice", '+')
	if got := tr.prefix("#test", "alice"); got != "" {
		t.Errorf("prefix after -v = %q, want \"\"", got)
	}
}

func TestTrackerGrantIdempotent(t *testing.T) {
	tr := newTracker()
	tr.grant("#test", "alice", '@')
	tr.grant("#test", "alice", '@')
	tr.revoke("#test", "alice", '@')
	if got := tr.prefix("#test", "alice"); got != "" {
		t.Errorf("prefix after double grant and one revoke = %q, want \"\"", got)
	}
}

func TestTrackerCaseFolding(t *testing.T) {
	tr := newTracker()
	tr.set("#Test", "Alice", "@")
	if got := tr.prefix("#test", "alice"); got != "@" {
		t.Errorf("case-folded lookup = %q, want \"@\"", got)
	}
}

func TestTrackerRename(t *testing.T) {
	tr := newTracker()
	tr.set("#a", "alice", "@")
	tr.set("#b", "alice", "+")

	tr.rename("alice", "alicia")
	if got := tr.prefix("#a", "alicia"); got != "@" {
		t.Errorf("renamed prefix on #a = %q, want \"@\"", got)
	}
	if got := tr.prefix("#b", "alicia"); got != "+" {
		t.Errorf("renamed prefix on #b = %q, want \"+\"", got)
	}
	if got := tr.prefix("#a", "alice"); got != "" {
		t.Errorf("old nick still has prefix %q on #a", got)
	}
}

func TestTrackerRemoveScopes(t *testing.T) {
	tr := newTracker()
	tr.set("#a", "alice", "@")
	tr.set("#b", "alice", "@")

	tr.remove("#a", "alice")
	if got := tr.prefix("#a", "alice"); got != "" {
		t.Errorf("prefix on #a after remove = %q", got)
	}
	if got := tr.prefix("#b", "alice"); got != "@" {
		t.Errorf("remove leaked to #b: prefix = %q", got)
	}

	tr.removeAll("alice")
	if got := tr.prefix("#b", "alice"); got != "" {
		t.Errorf("prefix on #b after removeAll = %q", got)
	}
}

func TestTrackerClearChannel(t *testing.T) {
	tr := newTracker()
	tr.set("#a", "alice", "@")
	tr.set("#a", "bob", "+")
	tr.set("#b", "bob", "+")

	tr.clearChannel("#a")
	if got := tr.prefix("#a", "alice"); got != "" {
		t.Errorf("prefix on cleared channel = %q", got)
	}
	if got := tr.prefix("#b", "bob"); got != "+" {
		t.Errorf("clearChannel leaked to #b: prefix = %q", got)
	}
}
