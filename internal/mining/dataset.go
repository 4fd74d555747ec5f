package mining

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Refactoring is one refactoring detected in a commit.
type Refactoring struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Record is one commit of the refactoring dataset.
type Record struct {
	Repository   string        `json:"repository"`
	ID           RecordID      `json:"id"`
	SHA1         string        `json:"sha1"`
	Refactorings []Refactoring `json:"refactorings"`
}

// RecordID accepts both numeric and string ids.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// Matching returns the refactorings of the given type.
func (r Record) Matching(refactoringType string) []Refactoring {
	var out []Refactoring
	for _, ref := range r.Refactorings {
		if ref.Type == refactoringType {
			out = append(out, ref)
		}
	}
	return out
}

// ReadDataset decodes a JSON array of records.
func ReadDataset(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return records, nil
}

// LoadDataset reads the dataset file at path.
func LoadDataset(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return ReadDataset(f)
}

// ClassPath extracts the class named by a description ending in
// "in class a.b.C". path is the dotted name with slashes (a/b/C) and class is
// its last element.
func ClassPath(description string) (path, class string, err error) {
	_, qualified, ok := strings.Cut(description, "in class")
	qualified = strings.TrimSpace(qualified)
	if !ok || qualified == "" {
		return "", "", fmt.Errorf("%q: %w", description, ErrNoClass)
	}
	// Anything after the class name, such as a trailing clause, is not part of it.
	if i := strings.IndexAny(qualified, " \t"); i >= 0 {
		qualified = qualified[:i]
	}
	path = strings.ReplaceAll(qualified, ".", "/")
	class = path[strings.LastIndex(path, "/")+1:]
	return path, class, nil
}
