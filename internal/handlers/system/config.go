package system

import "runtime"

type Config struct {
	// Commands maps an action to the argv that performs it.
	Commands map[string][]string
	// ScreenshotCommand is the capture argv; "{path}" is replaced with the
	// output file.
	ScreenshotCommand []string
	DiskPath          string
}

func LoadConfig() *Config {
	return ConfigFor(runtime.GOOS)
}

// ConfigFor returns the command table for goos.
func ConfigFor(goos string) *Config {
	switch goos {
	case "windows":
		return &Config{
			Commands: map[string][]string{
				ActionShutdown:  {"shutdown", "/s", "/t", "0"},
				ActionRestart:   {"shutdown", "/r", "/t", "0"},
				ActionSleep:     {"rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0"},
				ActionLock:      {"rundll32.exe", "user32.dll,LockWorkStation"},
				ActionLogoff:    {"shutdown", "/l"},
				ActionHibernate: {"shutdown", "/h"},
			},
			ScreenshotCommand: []string{"powershell", "-NoProfile", "-Command",
				"Add-Type -AssemblyName System.Windows.Forms,System.Drawing;" +
					"$b=[System.Windows.Forms.Screen]::PrimaryScreen.Bounds;" +
					"$i=New-Object System.Drawing.Bitmap $b.Width,$b.Height;" +
					"[System.Drawing.Graphics]::FromImage($i).CopyFromScreen($b.Location,[System.Drawing.Point]::Empty,$b.Size);" +
					"$i.Save('{path}')"},
			DiskPath: "C:\\",
		}
	case "darwin":
		return &Config{
			Commands: map[string][]string{
				ActionShutdown: {"osascript", "-e", `tell app "System Events" to shut down`},
				ActionRestart:  {"osascript", "-e", `tell app "System Events" to restart`},
				ActionSleep:    {"pmset", "sleepnow"},
				ActionLock:     {"pmset", "displaysleepnow"},
				ActionLogoff:   {"osascript", "-e", `tell app "System Events" to log out`},
			},
			ScreenshotCommand: []string{"screencapture", "-x", "{path}"},
			DiskPath:          "/",
		}
	default:
		return &Config{
			Commands: map[string][]string{
				ActionShutdown:  {"systemctl", "poweroff"},
				ActionRestart:   {"systemctl", "reboot"},
				ActionSleep:     {"systemctl", "suspend"},
				ActionLock:      {"loginctl", "lock-session"},
				ActionLogoff:    {"loginctl", "terminate-user", "self"},
				ActionHibernate: {"systemctl", "hibernate"},
			},
			ScreenshotCommand: []string{"import", "-window", "root", "{path}"},
			DiskPath:          "/",
		}
	}
}
