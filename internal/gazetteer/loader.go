package gazetteer

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type overlayFile struct {
	Places []Place `yaml:"places"`
}

// LoadFile reads extra places from a YAML overlay:
//
//	places:
//	  - id: tiksi_port
//	    name: Тикси (морской порт)
//	    aliases: [Тикси]
//	    lat: 71.6369
//	    lon: 128.8647
func LoadFile(path string) ([]Place, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read gazetteer overlay")
	}
	var f overlayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse gazetteer overlay %s", path)
	}
	for i, p := range f.Places {
		if !p.Coordinate.Valid() {
			return nil, errors.Errorf("%s: place %d (%q) has invalid coordinate %v", path, i, p.Name, p.Coordinate)
		}
	}
	return f.Places, nil
}
