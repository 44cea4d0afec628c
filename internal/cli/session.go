package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session is the local player identity. The API trusts whatever ids the
// client sends, so the CLI mints a random user id once and reuses it.
type Session struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BaseDir is ~/.np, created on first use.
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".np")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func sessionPath() (string, error) {
	dir, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func SaveSession(s Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o600)
}

func LoadSession() (Session, error) {
	path, err := sessionPath()
	if err != nil {
		return Session{}, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(s.UserID) == "" || strings.TrimSpace(s.PostID) == "" {
		return Session{}, fmt.Errorf("session file is missing ids")
	}
	return s, nil
}

// EnsureSession loads the saved session or creates one for postID.
func EnsureSession(postID string) (Session, error) {
	s, err := LoadSession()
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Session{}, err
	}
	s = Session{
		PostID:    strings.TrimSpace(postID),
		UserID:    "np_" + uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if s.PostID == "" {
		s.PostID = "cli"
	}
	if err := SaveSession(s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func ClearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return os.Remove(path)
}
