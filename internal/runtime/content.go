package runtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"termfolio/content"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	manifestFile = "portfolio.json"
	schemaFile   = "portfolio.schema.json"
)

// Manifest is the decoded portfolio.json.
type Manifest struct {
	Name       string            `json:"name"`
	Title      string            `json:"title"`
	Location   string            `json:"location,omitempty"`
	Welcome    string            `json:"welcome"`
	About      string            `json:"about"`
	Skills     []SkillGroup      `json:"skills,omitempty"`
	Experience []Position        `json:"experience,omitempty"`
	Projects   []Project         `json:"projects"`
	Contact    []Link            `json:"contact"`
	Documents  map[string]string `json:"documents,omitempty"`
}

type SkillGroup struct {
	Group string   `json:"group"`
	Items []string `json:"items"`
}

type Position struct {
	Role    string `json:"role"`
	Company string `json:"company"`
	Period  string `json:"period,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type Project struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	URL     string   `json:"url,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Content is a validated manifest together with the filesystem its
// documents are read from.
type Content struct {
	Manifest *Manifest
	FS       fs.FS
}

// ContentFS returns the embedded content, or os.DirFS(dir) when dir is set.
func ContentFS(dir string) fs.FS {
	if dir == "" {
		return content.FS
	}
	return os.DirFS(dir)
}

// LoadContent validates portfolio.json in fsys against the embedded schema
// and decodes it. The schema always comes from the binary so an override
// directory cannot loosen it.
func LoadContent(fsys fs.FS) (*Content, error) {
	raw, err := fs.ReadFile(fsys, manifestFile)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := validateManifest(raw); err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if _, err := fs.Stat(fsys, m.Welcome); err != nil {
		return nil, fmt.Errorf("welcome document: %w", err)
	}
	for name, path := range m.Documents {
		if _, err := fs.Stat(fsys, path); err != nil {
			return nil, fmt.Errorf("document %q: %w", name, err)
		}
	}

	slog.Debug("content: manifest loaded", "name", m.Name, "projects", len(m.Projects), "documents", len(m.Documents))
	return &Content{Manifest: &m, FS: fsys}, nil
}

func validateManifest(raw []byte) error {
	schemaSrc, err := fs.ReadFile(content.FS, schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	compiled, err := jsonschema.CompileString(schemaFile, string(schemaSrc))
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("manifest schema violation: %w", err)
	}
	return nil
}

// Project returns the project with the given name, ignoring case.
func (m *Manifest) Project(name string) (Project, bool) {
	for _, p := range m.Projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Project{}, false
}
