package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when no clipboard tool is present.
var ErrClipboardUnavailable = errors.New("clipboard is not available")

// Clipboard reads and writes text. The system clipboard is used unless
// Unsupported is set.
type Clipboard struct {
	Unsupported bool
	read        func() (string, error)
	write       func(string) error
}

// SystemClipboard uses the platform clipboard.
func SystemClipboard() *Clipboard {
	return &Clipboard{
		Unsupported: clipboard.Unsupported,
		read:        clipboard.ReadAll,
		write:       clipboard.WriteAll,
	}
}

func (c *Clipboard) Read() (string, error) {
	if c.Unsupported || c.read == nil {
		return "", ErrClipboardUnavailable
	}
	return c.read()
}

func (c *Clipboard) Write(text string) error {
	if c.Unsupported || c.write == nil {
		return ErrClipboardUnavailable
	}
	return c.write(text)
}

// CopyOrPrint puts data on the clipboard. When that fails the data is
// written to fallback so the user can copy it by hand. It reports whether
// the clipboard was used.
func CopyOrPrint(c *Clipboard, data []byte, fallback io.Writer) (bool, error) {
	if err := c.Write(string(data)); err == nil {
		return true, nil
	}
	if _, err := fallback.Write(data); err != nil {
		return false, err
	}
	_, err := fmt.Fprintln(fallback)
	return false, err
}

// ReadInput returns the contents of path, of stdin when path is "-", or
// of the clipboard when path is empty.
func ReadInput(c *Clipboard, path string, stdin io.Reader) ([]byte, error) {
	switch path {
	case "":
		text, err := c.Read()
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	case "-":
		return io.ReadAll(stdin)
	default:
		return os.ReadFile(path)
	}
}
