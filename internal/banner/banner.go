package banner

import (
	"wrkbench/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	ascii := `
                 __   __                    __
 _      _______/ /__/ /_  ___  ____  _____/ /_
| | /| / / ___/ //_/ __ \/ _ \/ __ \/ ___/ __ \
| |/ |/ / /  / ,< / /_/ /  __/ / / / /__/ / / /
|__/|__/_/  /_/|_/_.___/\___/_/ /_/\___/_/ /_/ `

	return "\n" + style.Render(ascii) + "\n"
}
