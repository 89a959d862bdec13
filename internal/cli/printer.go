package cli

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats counts in user-facing summaries.
var printer = message.NewPrinter(language.English)
