package view

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// RenderTimeMessage formats the time a render took for display, e.g.
// "Rendering time: 1.25 seconds."
func RenderTimeMessage(elapsed time.Duration) string {
	secs := elapsed.Seconds()
	unit := "seconds"
	if secs == 1 {
		unit = "second"
	}
	return printer.Sprintf("Rendering time: %v %s.", number.Decimal(secs, number.MaxFractionDigits(2)), unit)
}
