package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Progress
	Search
	Movie
	Series
	Anime
	Star
	History
	Page
	Key
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "✅",
		nerd:    "\uf00c",
		plain:   "✓",
		kaomoji: "(｀▽´)",
		squares: "▣",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "\uf00d",
		plain:   "✗",
		kaomoji: "(╥﹏╥)",
		squares: "▨",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "\uf071",
		plain:   "!",
		kaomoji: "(°ロ°)",
		squares: "◬",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "\uf110",
		plain:   "...",
		kaomoji: "(¬_¬)",
		squares: "▢",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "\uf002",
		plain:   "?",
		kaomoji: "(・・?)",
		squares: "◫",
	},
	Movie: {
		emoji:   "🎬",
		nerd:    "\uf008",
		plain:   "M",
		kaomoji: "(⌐■_■)",
		squares: "■",
	},
	Series: {
		emoji:   "📺",
		nerd:    "\uf26c",
		plain:   "S",
		kaomoji: "(◕‿◕)",
		squares: "▤",
	},
	Anime: {
		emoji:   "🌸",
		nerd:    "\uf299",
		plain:   "A",
		kaomoji: "(＾▽＾)",
		squares: "▥",
	},
	Star: {
		emoji:   "⭐",
		nerd:    "\uf005",
		plain:   "*",
		kaomoji: "☆",
		squares: "◆",
	},
	History: {
		emoji:   "🕘",
		nerd:    "\uf1da",
		plain:   "H",
		kaomoji: "(ᵔᴥᵔ)",
		squares: "◷",
	},
	Page: {
		emoji:   "📄",
		nerd:    "\uf15c",
		plain:   "#",
		kaomoji: "(・_・)",
		squares: "▦",
	},
	Key: {
		emoji:   "🔑",
		nerd:    "\uf084",
		plain:   "K",
		kaomoji: "(•̀ᴗ•́)",
		squares: "▩",
	},
}

// ForKind picks the icon matching a catalog record kind.
func ForKind(kind string) Icon {
	switch kind {
	case "series":
		return Series
	case "animation":
		return Anime
	default:
		return Movie
	}
}
