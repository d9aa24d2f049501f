// Package dependencies downloads the symbol packages an AL app declares in
// its app.json, adding the Microsoft base packages every app compiles
// against.
package dependencies

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bctools/bctools/internal/bcapi"
	"github.com/bctools/bctools/internal/messages"
)

// ManifestFile is the AL project manifest name.
const ManifestFile = "app.json"

// ErrManifestNotFound reports an app.json path that does not exist.
var ErrManifestNotFound = errors.New("manifest not found")

// Dependency is one entry of the app.json dependencies array.
type Dependency struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
	Version   string `json:"version"`
}

// Ref returns the package lookup for d.
func (d Dependency) Ref() bcapi.PackageRef {
	return bcapi.PackageRef{ID: d.ID, Name: d.Name, Publisher: d.Publisher, Version: d.Version}
}

// FileName is the package file d is saved as.
func (d Dependency) FileName() string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(d.Name) + ".app"
}

func (d Dependency) matches(other Dependency) bool {
	if d.ID != "" && strings.EqualFold(d.ID, other.ID) {
		return true
	}
	return d.Name == other.Name && d.Publisher == other.Publisher
}

// Manifest is the subset of app.json used here.
type Manifest struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Publisher    string       `json:"publisher"`
	Version      string       `json:"version"`
	Dependencies []Dependency `json:"dependencies"`
}

// BaseDependencies are the Microsoft packages added unless an app declares
// them itself.
var BaseDependencies = []Dependency{
	{ID: "63ca2fa4-4f03-4f2b-a480-172fef340d3f", Name: "System Application", Publisher: "Microsoft"},
	{ID: "f3552374-a1f2-4356-848e-196002525837", Name: "Business Foundation", Publisher: "Microsoft"},
	{ID: "437dbf0e-84ff-417a-965d-ed2bb9650972", Name: "Base Application", Publisher: "Microsoft"},
	{ID: "6f2c034f-5ebe-4eae-b34c-90a0d4e87687", Name: "_Exclude_Business_Events_", Publisher: "Microsoft"},
	{ID: "8874ed3a-0643-4247-9ced-7a7002f7135d", Name: "System", Publisher: "Microsoft"},
	{ID: "00000000-0000-0000-0000-000000000000", Name: "Application", Publisher: "Microsoft"},
}

// ResolveManifestPath returns the app.json path for path, which may name
// the file itself or the directory holding it.
func ResolveManifestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf(messages.DepsManifestNotFoundFmt, ErrManifestNotFound, path, err)
	}
	if !info.IsDir() {
		return path, nil
	}
	manifest := filepath.Join(path, ManifestFile)
	if _, err := os.Stat(manifest); err != nil {
		return "", fmt.Errorf(messages.DepsManifestNotFoundFmt, ErrManifestNotFound, manifest, err)
	}
	return manifest, nil
}

// LoadManifest resolves and parses app.json, returning the resolved path.
func LoadManifest(path string) (Manifest, string, error) {
	resolved, err := ResolveManifestPath(path)
	if err != nil {
		return Manifest{}, "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Manifest{}, resolved, fmt.Errorf(messages.DepsManifestNotFoundFmt, ErrManifestNotFound, resolved, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, resolved, fmt.Errorf(messages.DepsManifestInvalidFmt, resolved, err)
	}
	return manifest, resolved, nil
}

// AddBaseDependencies appends every base dependency not already declared,
// matched by id or by name and publisher. It returns the entries added and
// the ones skipped.
func AddBaseDependencies(m *Manifest) (added, skipped []Dependency) {
	for _, base := range BaseDependencies {
		declared := false
		for _, dep := range m.Dependencies {
			if base.matches(dep) {
				declared = true
				break
			}
		}
		if declared {
			skipped = append(skipped, base)
			continue
		}
		m.Dependencies = append(m.Dependencies, base)
		added = append(added, base)
	}
	return added, skipped
}
