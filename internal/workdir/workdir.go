// Package workdir manages the stretch CLI working directory.
package workdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	routineFile = "routine-id"
	logFile     = "stretch.log"
)

// ErrNoRoutine is returned when no routine id was ever saved.
var ErrNoRoutine = errors.New("no saved routine id")

// Root returns the base directory for all stretch working files.
// The path is expanded at runtime to resolve to:
//
//	$HOME/Documents/Alkime/Stretch
func Root() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, "Documents", "Alkime", "Stretch"), nil
}

// FilePath returns the full path for a file in the working directory.
func FilePath(filename string) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, filename), nil
}

// LogPath returns where the terminal UI writes its log.
func LogPath() (string, error) {
	return FilePath(logFile)
}

// Prep ensures that the working directory exists.
func Prep() error {
	root, err := Root()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("failed to create working directory %s: %w", root, err)
	}

	return nil
}

// SaveRoutineID remembers id for later sessions started without one.
func SaveRoutineID(id string) error {
	if err := Prep(); err != nil {
		return err
	}

	path, err := FilePath(routineFile)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(id+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to save routine id: %w", err)
	}

	return nil
}

// LastRoutineID returns the most recently saved routine id.
func LastRoutineID() (string, error) {
	path, err := FilePath(routineFile)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoRoutine
	}
	if err != nil {
		return "", fmt.Errorf("failed to read routine id: %w", err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", ErrNoRoutine
	}

	return id, nil
}

// ResolveRoutineID picks the flag value when given, persisting it, and
// otherwise falls back to the saved one.
func ResolveRoutineID(flag string) (string, error) {
	if flag != "" {
		if err := SaveRoutineID(flag); err != nil {
			return "", err
		}
		return flag, nil
	}

	id, err := LastRoutineID()
	if errors.Is(err, ErrNoRoutine) {
		return "", errors.New("routine id required: pass --routine once to remember it")
	}

	return id, err
}
