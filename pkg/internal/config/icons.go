package config

import (
	"regexp"
	"strings"
	"unicode"
)

// Icons are the four engagement glyphs rendered on a post card.
type Icons struct {
	Like    string `json:"like"`
	Comment string `json:"comment"`
	Info    string `json:"info"`
	Delete  string `json:"delete"`
}

func DefaultIcons() Icons {
	return Icons{
		Like:    "❤️",
		Comment: "💬",
		Info:    "ℹ️",
		Delete:  "🗑️",
	}
}

var customIconPattern = regexp.MustCompile(`^<a?:[^:]+:\d+>$`)

// NormalizeIcon accepts either a platform custom-icon reference or a
// displayable pictographic character; anything else falls back.
func NormalizeIcon(input, fallback string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fallback
	}

	if customIconPattern.MatchString(trimmed) {
		return trimmed
	}

	for _, r := range trimmed {
		if unicode.Is(unicode.So, r) || r >= 0x1F300 {
			return trimmed
		}
	}
	return fallback
}

func (i Icons) Normalized() Icons {
	defaults := DefaultIcons()
	return Icons{
		Like:    NormalizeIcon(i.Like, defaults.Like),
		Comment: NormalizeIcon(i.Comment, defaults.Comment),
		Info:    NormalizeIcon(i.Info, defaults.Info),
		Delete:  NormalizeIcon(i.Delete, defaults.Delete),
	}
}
