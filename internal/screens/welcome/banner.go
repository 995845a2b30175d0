package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashmath/internal/ui/theme"
)

const bannerArt = `
███████╗██╗      █████╗ ███████╗██╗  ██╗███╗   ███╗ █████╗ ████████╗██╗  ██╗
██╔════╝██║     ██╔══██╗██╔════╝██║  ██║████╗ ████║██╔══██╗╚══██╔══╝██║  ██║
█████╗  ██║     ███████║███████╗███████║██╔████╔██║███████║   ██║   ███████║
██╔══╝  ██║     ██╔══██║╚════██║██╔══██║██║╚██╔╝██║██╔══██║   ██║   ██╔══██║
██║     ███████╗██║  ██║███████║██║  ██║██║ ╚═╝ ██║██║  ██║   ██║   ██║  ██║
╚═╝     ╚══════╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝`

const bannerCompact = "F L A S H M A T H"

// bannerWidth is the display width of bannerArt.
const bannerWidth = 76

// RenderBanner returns the banner styled in the primary color, or a compact
// fallback when the art does not fit.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth+2 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
