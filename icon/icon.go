// Package icon renders status and kind symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/petflix/petflix/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants lists the accepted icons.variant values.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

type iconDef struct {
	emoji, nerd, plain, kaomoji, squares string
}

func (d *iconDef) variant(name string) string {
	switch name {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get renders i in the configured variant. Unknown icons and variants render empty.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.variant(viper.GetString(key.IconsVariant))
}
