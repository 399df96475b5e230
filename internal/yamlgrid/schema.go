package yamlgrid

import "gopkg.in/yaml.v3"

// fileDoc is the root of a YAML stage file.
type fileDoc struct {
	Stages []stageDoc `yaml:"stages"`
}

type stageDoc struct {
	Name   string   `yaml:"name"`
	Reads  []string `yaml:"reads"`
	Writes []string `yaml:"writes"`
	After  []string `yaml:"after"`
	Jobs   []jobDoc `yaml:"jobs"`

	line int
}

// UnmarshalYAML keeps the line of the stage for error messages.
func (s *stageDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain stageDoc
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	s.line = n.Line
	return nil
}

type jobDoc struct {
	Kind  string               `yaml:"kind"`
	Count *int                 `yaml:"count"`
	Args  map[string]yaml.Node `yaml:"args"`

	line int
}

func (j *jobDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain jobDoc
	if err := n.Decode((*plain)(j)); err != nil {
		return err
	}
	j.line = n.Line
	return nil
}
