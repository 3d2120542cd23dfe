package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Source file names inside the content directory. Availability and
// principles are optional; the rest are required.
const (
	skillsFile       = "skills.json"
	projectsFile     = "projects.json"
	resumeFile       = "resume.json"
	availabilityFile = "availability.json"
	principlesFile   = "principles.json"
)

// LoadSources reads every builder input document from dir.
func LoadSources(dir string) (Sources, error) {
	var src Sources

	if err := readJSON(filepath.Join(dir, skillsFile), &src.Skills); err != nil {
		return src, fmt.Errorf("failed to load skills: %w", err)
	}
	if err := readJSON(filepath.Join(dir, projectsFile), &src.Projects); err != nil {
		return src, fmt.Errorf("failed to load projects: %w", err)
	}

	var resume Resume
	if err := readJSON(filepath.Join(dir, resumeFile), &resume); err != nil {
		return src, fmt.Errorf("failed to load resume: %w", err)
	}
	src.Resume = &resume

	var availability Availability
	switch err := readJSON(filepath.Join(dir, availabilityFile), &availability); {
	case err == nil:
		src.Availability = &availability
	case !errors.Is(err, os.ErrNotExist):
		return src, fmt.Errorf("failed to load availability: %w", err)
	}

	var principles Principles
	switch err := readJSON(filepath.Join(dir, principlesFile), &principles); {
	case err == nil:
		src.Principles = &principles
	case !errors.Is(err, os.ErrNotExist):
		return src, fmt.Errorf("failed to load principles: %w", err)
	}

	return src, nil
}

// WriteArtifacts serializes the anchor directory and embedding index into dir.
func WriteArtifacts(dir, anchorFile, indexFile string, directory *AnchorDirectory, index *EmbeddingIndex) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, anchorFile), directory); err != nil {
		return fmt.Errorf("failed to write anchor directory: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, indexFile), index); err != nil {
		return fmt.Errorf("failed to write embedding index: %w", err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
