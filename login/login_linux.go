//go:build linux

package login

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// executable is swapped by tests.
var executable = os.Executable

func desktopPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "autostart", appName+".desktop"), nil
}

func Enabled() bool {
	path, err := desktopPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// quoteExec follows the freedesktop Exec quoting rules: arguments containing reserved
// characters are double-quoted with backslash escapes.
func quoteExec(arg string) string {
	if !strings.ContainsAny(arg, " \t\"'\\><~|&;$*?#()`") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(arg) + `"`
}

func Enable() error {
	exe, err := executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	path, err := desktopPath()
	if err != nil {
		return err
	}

	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Push-to-talk dictation
Exec=%s
Terminal=false
X-GNOME-Autostart-enabled=true
`, appName, quoteExec(exe))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(entry), 0644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	return nil
}

func Disable() error {
	path, err := desktopPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove desktop entry: %w", err)
	}
	return nil
}
