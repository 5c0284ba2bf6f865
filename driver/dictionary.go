package driver

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/kevin-valerio/phink/abi"
	"github.com/kevin-valerio/phink/utils"
)

// DefaultSelectorDictPath is where WriteSelectorDict writes by convention.
const DefaultSelectorDictPath = "./output/phink/selectors.dict"

// WriteSelectorDict writes selectors to path, one libFuzzer-dictionary-syntax token per line
// (`"\xAA\xBB\xCC\xDD"`), so the external mutation driver can seed its mutations with every
// extracted selector instead of discovering them by chance.
func WriteSelectorDict(path string, selectors []abi.Selector) error {
	if err := utils.MakeDirectory(dirOf(path)); err != nil {
		return errors.WithStack(err)
	}

	var sb strings.Builder
	for _, s := range selectors {
		sb.WriteString(dictLine(s))
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// dictLine renders selector as one libFuzzer dictionary entry.
func dictLine(s abi.Selector) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, b := range s {
		fmt.Fprintf(&sb, "\\x%02X", b)
	}
	sb.WriteByte('"')
	return sb.String()
}

// dirOf returns the parent directory component of path, or "." if path has none.
func dirOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "."
	}
	return path[:idx]
}
