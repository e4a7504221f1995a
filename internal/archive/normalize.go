// Package archive writes matched files into a zip archive under names
// relative to the scan root.
package archive

import (
	"fmt"
	"path/filepath"
	"strings"

	serrors "github.com/kennethwty/filesearch/internal/errors"
)

// Relativize converts filePath into an archive entry name relative to
// baseDir: the base prefix is stripped, backslashes become forward slashes
// and leading slashes are dropped.
//
// filePath must lie strictly below baseDir. Anything else fails with
// ERR_206_PATH_OUTSIDE_ROOT instead of producing a misleading name.
func Relativize(filePath, baseDir string) (string, error) {
	absFile, err := filepath.Abs(filePath)
	if err != nil {
		return "", outsideRoot(filePath, baseDir, err)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", outsideRoot(filePath, baseDir, err)
	}

	if !strings.HasPrefix(absFile, absBase) {
		return "", outsideRoot(filePath, baseDir, nil)
	}

	rest := absFile[len(absBase):]

	// "/a/bc" is not under "/a/b": the prefix must end on a separator.
	if rest != "" && !isSeparator(rest[0]) && !isSeparator(absBase[len(absBase)-1]) {
		return "", outsideRoot(filePath, baseDir, nil)
	}

	name := strings.ReplaceAll(rest, `\`, "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", outsideRoot(filePath, baseDir, nil)
	}

	return name, nil
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}

func outsideRoot(filePath, baseDir string, cause error) error {
	return serrors.SetupError(serrors.ErrCodePathOutsideRoot,
		fmt.Sprintf("%s is not below %s", filePath, baseDir), filePath, cause)
}
