package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrIO = errors.New("fixture i/o")

const (
	ActiveTasksFile    = "test-active-tasks.json"
	CompletedTasksFile = "test-completed-tasks.json"
	ProjectDataFile    = "test-project-data.json"
)

// WriteRecurring writes the three files the dashboard's recurring-task tests
// read and returns their paths.
func WriteRecurring(dir string, ds Dataset) ([]string, error) {
	files := []struct {
		name string
		body any
	}{
		{ActiveTasksFile, map[string]any{"activeTasks": nonNil(ds.ActiveTasks)}},
		{CompletedTasksFile, map[string]any{"allCompletedTasks": nonNil(ds.AllCompletedTasks)}},
		{ProjectDataFile, map[string]any{"projectData": nonNil(ds.ProjectData)}},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeJSON(path, f.body); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteDataset writes ds as one file.
func WriteDataset(path string, ds Dataset) error {
	ds.AllCompletedTasks = nonNil(ds.AllCompletedTasks)
	ds.ActiveTasks = nonNil(ds.ActiveTasks)
	ds.ProjectData = nonNil(ds.ProjectData)
	return writeJSON(path, ds)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// writeJSON replaces path atomically via a temp file in the same directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmp, err := os.CreateTemp(dir, ".taskgen-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
