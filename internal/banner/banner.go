package banner

import (
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

// Version is reported in the banner and startup log
const Version = "0.1.0"

func Print() {
	logo, _ := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithRGB("NXDN", pterm.NewRGB(0, 153, 255)),
		putils.LettersFromStringWithRGB("Dash", pterm.NewRGB(255, 255, 255))).
		Srender()

	pterm.DefaultCenter.Print(logo)

	pterm.DefaultCenter.Print(
		pterm.DefaultHeader.
			WithFullWidth().
			WithBackgroundStyle(pterm.NewStyle(pterm.BgBlue)).
			WithMargin(5).
			Sprint(pterm.White("NXDN Reflector Dashboard")),
	)

	pterm.Info.Println(
		"Live transmissions, last heard and linked repeaters from the reflector log." +
			"\nVersion " + Version + ".",
	)
}
