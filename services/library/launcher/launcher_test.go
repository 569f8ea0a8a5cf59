package launcher

import "testing"

func TestNormalizeWinePath(t *testing.T) {
	cases := map[string]string{
		`Z:\home\user\.steam\steamapps\common\Portal\portal.exe`: "/home/user/.steam/steamapps/common/Portal/portal.exe",
		`C:\Program Files\Game\game.exe`:                         "/Program Files/Game/game.exe",
		"/home/user/.steam/steamapps/common/Portal/portal":       "/home/user/.steam/steamapps/common/Portal/portal",
		`relative\path`: "relative/path",
		"":              "",
	}
	for input, want := range cases {
		if got := normalizeWinePath(input); got != want {
			t.Errorf("normalizeWinePath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestIsRunning_EmptyPath(t *testing.T) {
	l := New(nil)
	running, err := l.IsRunning("")
	if err != nil {
		t.Fatalf("IsRunning failed: %v", err)
	}
	if running {
		t.Error("empty install path must never report running")
	}
}
