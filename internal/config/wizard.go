package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kibrarian-labs/kibrarian/internal/branding"
)

// wizardPrompts are the keys the setup wizard asks about, with their labels.
var wizardPrompts = []struct {
	key   string
	label string
}{
	{KeyLibraries, "Library registry file"},
	{KeyInstalled, "Installed-state file"},
	{KeyFPLibTable, "KiCad fp-lib-table"},
	{KeySymLibTable, "KiCad sym-lib-table"},
}

// Wizard prompts for each path on out, reading answers line by line from in.
// An empty answer keeps the default. It returns the chosen values without
// writing them; the caller persists them with SetAll.
func Wizard(in io.Reader, out io.Writer, defaults map[string]string) (map[string]string, error) {
	fmt.Fprintf(out, "Welcome to the %s setup wizard!\n", branding.DisplayName())

	scanner := bufio.NewScanner(in)
	values := make(map[string]string, len(wizardPrompts))

	for _, p := range wizardPrompts {
		def := defaults[p.key]
		fmt.Fprintf(out, "%s path:\n", p.label)
		fmt.Fprintf(out, "? Press ENTER to use the default %q or enter a custom path: ", def)

		answer := ""
		if scanner.Scan() {
			answer = strings.TrimSpace(scanner.Text())
		} else if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading answer for %s: %w", p.key, err)
		}
		fmt.Fprintln(out)

		if answer == "" {
			answer = def
		}
		values[p.key] = answer
	}

	return values, nil
}

// Describe writes each key and its current value, one per line.
func Describe(w io.Writer) {
	for _, key := range Keys {
		fmt.Fprintf(w, "%s: %s\n", key, Get(key))
	}
}
