package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the flipper ASCII banner with the version tag.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Subtle gradient-like color scheme (Indigo/Violet)
	s1 := termenv.String("   __ _ _                       ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String("  / _| (_)_ __  _ __   ___ _ __ ").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" | |_| | | '_ \\| '_ \\ / _ \\ '__|").Foreground(p.Color("#c084fc"))
	s4 := termenv.String(" |  _| | | |_) | |_) |  __/ |   ").Foreground(p.Color("#e879f9"))
	s5 := termenv.String(" |_| |_|_| .__/| .__/ \\___|_|   ").Foreground(p.Color("#f472b6"))
	s6 := termenv.String("         |_|   |_|              ").Foreground(p.Color("#fb7185"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Printf("  domain flipper v%s\n\n", strings.TrimSpace(version))
}
