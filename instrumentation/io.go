package instrumentation

import (
	"os"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// mkdirTemp creates a fresh temporary directory under the system temp root, named with a
// "phink-fork-" prefix so the session's forks are easy to find. The "clean" command does not
// remove these directories.
func mkdirTemp() (string, error) {
	return os.MkdirTemp("", "phink-fork-*")
}
