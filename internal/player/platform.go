package player

import (
	"log/slog"
	"os"
	"strings"
)

// IsWSL checks if the current environment is Windows Subsystem for Linux
func IsWSL() bool {
	return detectWSLFromData(readProcVersion(), os.Getenv("WSL_DISTRO_NAME"))
}

// detectWSLFromData checks for WSL indicators in the provided data (for testing)
func detectWSLFromData(procVersion, wslEnv string) bool {
	// WSL sets WSL_DISTRO_NAME
	if wslEnv != "" {
		slog.Debug("WSL detected via environment variable", "distro", wslEnv)
		return true
	}

	procLower := strings.ToLower(procVersion)
	if strings.Contains(procLower, "microsoft") || strings.Contains(procLower, "wsl") {
		slog.Debug("WSL detected via /proc/version")
		return true
	}

	return false
}

// readProcVersion reads /proc/version file content
func readProcVersion() string {
	content, err := os.ReadFile("/proc/version")
	if err != nil {
		slog.Debug("failed to read /proc/version", "error", err)
		return ""
	}
	return string(content)
}

// DetectOptimalBackend determines the best sink backend for the current
// system
func DetectOptimalBackend() string {
	return detectOptimalBackendForPlatform(IsWSL())
}

// detectOptimalBackendForPlatform allows dependency injection for testing
func detectOptimalBackendForPlatform(isWSL bool) string {
	if isWSL {
		// miniaudio device output tends to crackle under WSL; the beep
		// speaker path behaves better there
		slog.Debug("WSL detected, preferring beep sink over malgo")
		return "beep"
	}

	slog.Debug("using malgo sink for native platform")
	return "malgo"
}
