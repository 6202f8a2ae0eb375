package course

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
)

// ParsedFileName returns the name of a course's export inside its directory.
func ParsedFileName(id string) string {
	return id + "_parsed.json"
}

// ParsedPath returns <dir>/<id>/<id>_parsed.json.
func ParsedPath(dir, id string) string {
	return filepath.Join(dir, id, ParsedFileName(id))
}

// Load reads and decodes one course export.
func Load(path string) (*Course, error) {
	// #nosec G304 -- path comes from configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("course export not found").
				WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read course export").
			WithContext("path", path).Build()
	}
	c, err := Decode(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to decode course export").
			WithContext("path", path).Build()
	}
	return c, nil
}

// LoadFromDir loads <dir>/<id>/<id>_parsed.json.
func LoadFromDir(dir, id string) (*Course, error) {
	return Load(ParsedPath(dir, id))
}

// Decode decodes a course export. The course short_url is required since it
// names the output directory.
func Decode(data []byte) (*Course, error) {
	var c Course
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.ShortURL == "" {
		return nil, fmt.Errorf("course %q has no short_url", c.UID)
	}
	return &c, nil
}

type courseList struct {
	Courses []string `json:"courses"`
}

// LoadList reads a {"courses": [...]} file.
func LoadList(path string) ([]string, error) {
	// #nosec G304 -- path comes from configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read course list").
			WithContext("path", path).Build()
	}
	var list courseList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to decode course list").
			WithContext("path", path).Build()
	}
	return list.Courses, nil
}

// Discover lists course ids under dir: subdirectories holding a matching
// <id>_parsed.json.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read courses directory").
			WithContext("path", dir).Build()
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(ParsedPath(dir, e.Name())); err == nil {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}
