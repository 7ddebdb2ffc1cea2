package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	assetKindContent = "content"
	assetKindStyle   = "style"
)

// Catalog is the list of predefined content and style images, read from
// assets.yml in the assets directory.
type Catalog struct {
	dir    string
	assets map[string]map[string]datastructures.Asset
}

type catalogFile struct {
	Assets []datastructures.Asset `yaml:"assets"`
}

func LoadCatalog(dir string) (*Catalog, error) {
	data, err := ioutil.ReadFile(filepath.Join(dir, "assets.yml"))
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read asset catalog")
	}
	c, err := parseCatalog(dir, data)
	if err != nil {
		return nil, err
	}
	if err := c.checkFiles(); err != nil {
		return nil, err
	}
	return c, nil
}

// checkFiles makes sure every listed asset exists as a regular file.
func (c *Catalog) checkFiles() error {
	for kind, byName := range c.assets {
		for name := range byName {
			path, _ := c.Path(kind, name)
			info, err := os.Stat(path)
			if err != nil {
				return errors.Wrapf(err, "%s asset %s", kind, name)
			}
			if !info.Mode().IsRegular() {
				return errors.Errorf("%s asset %s: %s is not a file", kind, name, path)
			}
		}
	}
	return nil
}

func parseCatalog(dir string, data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "couldn't parse asset catalog")
	}

	c := &Catalog{
		dir: dir,
		assets: map[string]map[string]datastructures.Asset{
			assetKindContent: {},
			assetKindStyle:   {},
		},
	}
	for _, asset := range f.Assets {
		byName, ok := c.assets[asset.Kind]
		if !ok {
			return nil, errors.Errorf("asset %s has unknown kind %q", asset.Name, asset.Kind)
		}
		if asset.Name == "" || asset.File == "" {
			return nil, errors.Errorf("asset entries need a name and a file")
		}
		byName[asset.Name] = asset
	}
	return c, nil
}

// Path returns the file of the named asset.
func (c *Catalog) Path(kind string, name string) (string, bool) {
	asset, ok := c.assets[kind][name]
	if !ok {
		return "", false
	}
	return filepath.Join(c.dir, filepath.Clean("/"+asset.File)), true
}

func (c *Catalog) Names() map[string][]string {
	res := make(map[string][]string)
	for kind, byName := range c.assets {
		names := []string{}
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)
		res[kind] = names
	}
	return res
}
