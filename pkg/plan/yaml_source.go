package plan

import (
	"context"
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlSource loads the catalog from a YAML file. The file is a list of plan
// documents:
//
//	- id: free
//	  name: Free
//	  limits:
//	    prompts: 10
//	    images: 20
//	  pages_per_project: 3
//	- id: pro
//	  name: Pro
//	  limits:
//	    prompts: -1
//	  can_access_pro: true
type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source reading plans from the file at path.
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(_ context.Context) (map[ID]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var list []Plan
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, errors.Join(ErrFailedToParsePlans, err)
	}

	plans := make(map[ID]Plan, len(list))
	for _, p := range list {
		if p.ID == "" {
			return nil, errors.Join(ErrInvalidPlanConfiguration, errors.New("plan without id"))
		}
		if _, exists := plans[p.ID]; exists {
			return nil, errors.Join(ErrInvalidPlanConfiguration, errors.New("duplicate plan id: "+string(p.ID)))
		}
		plans[p.ID] = p
	}
	return plans, nil
}
