package app

// Key binding constants used in the per-view key handlers.
const (
	KeyQuit     = "q"
	KeyCtrlC    = "ctrl+c"
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
	KeyEnter    = "enter"
	KeyEsc      = "esc"
	KeyUp       = "up"
	KeyDown     = "down"
	KeyLeft     = "left"
	KeyRight    = "right"
	KeyJ        = "j"
	KeyK        = "k"
	KeyRetry    = "r"
	KeyFilter   = "/"
	KeyChat     = "c"
	KeyLogout   = "ctrl+l"
	KeyEdit     = "e"
	KeyTag      = "t"
	KeySave     = "ctrl+s"
	KeySpace    = " "
)
