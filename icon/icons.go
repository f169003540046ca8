package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota
	Success
	Progress
	Signal
	Lost
	Channel
	Remote
	Clock
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "X",
		kaomoji: "(╥﹏╥)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "~",
		kaomoji: "(￣ω￣;)",
		squares: "🟦",
	},
	Signal: {
		emoji:   "📡",
		nerd:    "",
		plain:   "((·))",
		kaomoji: "(・_・ヾ",
		squares: "🟨",
	},
	Lost: {
		emoji:   "🔌",
		nerd:    "",
		plain:   "x_x",
		kaomoji: "(×_×)",
		squares: "⬛",
	},
	Channel: {
		emoji:   "📺",
		nerd:    "",
		plain:   "#",
		kaomoji: "(o_o)",
		squares: "🟪",
	},
	Remote: {
		emoji:   "🎛",
		nerd:    "",
		plain:   "[=]",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟫",
	},
	Clock: {
		emoji:   "🕒",
		nerd:    "",
		plain:   "@",
		kaomoji: "(⊙_◎)",
		squares: "⬜",
	},
}
