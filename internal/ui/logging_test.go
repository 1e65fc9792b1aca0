package ui

import (
	"github.com/pterm/pterm"
	"os"
)

func ExamplePrintfln() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	Printfln("New target set: %v", 8.5)
	// Output:
	// New target set: 8.5
}

func ExampleDebug() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()
	pterm.PrintDebugMessages = true

	Debug("New reading: %v", 5.0)
	// Output:
	// DEBUG: New reading: 5
}

func ExampleInfo() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	Info("Starting controller at %d Hz", 50)
	// Output:
	// INFO: Starting controller at 50 Hz
}

func ExampleWarning() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	Warning("i-limit is configured but has no effect without i")
	// Output:
	// WARNING: i-limit is configured but has no effect without i
}

func ExampleError() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	Error("Cannot join bus session: %v", os.ErrClosed)
	// Output:
	// ERROR: Cannot join bus session: file already closed
}
