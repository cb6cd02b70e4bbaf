// Package detect implements installation discovery for the supported
// coding-assistant tools: config-directory candidates, executable lookup
// and best-effort version detection. Nothing here touches the network.
package detect

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Installation describes what discovery found for one tool.
type Installation struct {
	ConfigDir  string // first existing readable candidate, "" if none
	BinaryPath string // resolved executable path, "" if not on PATH
}

// Found reports whether the tool is present at all.
func (i Installation) Found() bool {
	return i.ConfigDir != "" || i.BinaryPath != ""
}

// Configured reports whether a usable config directory exists. A tool on
// PATH without one is installed but unconfigured.
func (i Installation) Configured() bool {
	return i.ConfigDir != ""
}

// Find resolves an installation from ordered config-dir candidates and
// executable names. The first existing, readable directory wins; if none
// exist but an executable resolves, the tool still counts as installed.
func Find(dirCandidates []string, binaries ...string) Installation {
	var inst Installation
	for _, dir := range dirCandidates {
		if dir == "" {
			continue
		}
		if dirReadable(dir) {
			inst.ConfigDir = dir
			break
		}
	}
	for _, bin := range binaries {
		if path := findBinary(bin); path != "" {
			inst.BinaryPath = path
			break
		}
	}
	if inst.Found() {
		log.Printf("[detect] found installation config_dir=%q binary=%q", inst.ConfigDir, inst.BinaryPath)
	}
	return inst
}

// HomeDirCandidates builds the standard candidate list for a tool that
// keeps a dot-directory in the home dir: ~/.<name>, the XDG variant
// $XDG_CONFIG_HOME/<name> (or ~/.config/<name>), and the platform config
// dir on Windows.
func HomeDirCandidates(name string) []string {
	home := homeDir()
	if home == "" {
		return nil
	}

	candidates := []string{filepath.Join(home, "."+name)}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, name))
	}
	candidates = append(candidates, filepath.Join(home, ".config", name))

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			candidates = append(candidates, filepath.Join(appData, name))
		}
	}
	return candidates
}

// AppSupportDirCandidates builds candidates for GUI tools that store
// state under the OS application-support directory (Cursor-style).
func AppSupportDirCandidates(name string) []string {
	home := homeDir()
	if home == "" {
		return nil
	}
	switch runtime.GOOS {
	case "darwin":
		return []string{filepath.Join(home, "Library", "Application Support", name)}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return []string{filepath.Join(appData, name)}
		}
		return []string{filepath.Join(home, "AppData", "Roaming", name)}
	default:
		var candidates []string
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			candidates = append(candidates, filepath.Join(xdg, name))
		}
		return append(candidates, filepath.Join(home, ".config", name))
	}
}

func homeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return h
}

func dirReadable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func findBinary(name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}
