package view

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Modal is a confirmation dialog shown before a mutation.
type Modal struct {
	Title string
	Body  string
}

// View renders the dialog with its key hints.
func (m Modal) View() string {
	return ModalStyle.Render(TitleStyle.Render(m.Title) + "\n\n" + m.Body + "\n\n" + MutedStyle.Render("[y] confirm   [n] cancel"))
}

// IsConfirmKey reports whether key accepts the dialog.
func IsConfirmKey(key string) bool {
	return key == "y" || key == "Y"
}

// Confirm asks question on out and reads a y/N answer from in. Anything but
// y or yes, including EOF, declines.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	_, err := fmt.Fprintf(out, "%s [y/N]: ", question)
	if err != nil {
		return false, fmt.Errorf("writing prompt: %w", err)
	}

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
