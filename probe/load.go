package probe

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/meshprobe/mesh"
)

// DefaultOutputFrequency is used when the configuration does not set one.
const DefaultOutputFrequency = 10

// Config is the loaded probe configuration of a run.
type Config struct {
	OutputFrequency int
	Groups          []*GroupSpec
}

type yamlDocument struct {
	DataProbes *yamlDataProbes `yaml:"data_probes"`
}

type yamlDataProbes struct {
	OutputFrequency *int       `yaml:"output_frequency"`
	Specifications  []yamlSpec `yaml:"specifications"`
}

type yamlSpec struct {
	Name            *string      `yaml:"name"`
	FromTargetPart  stringOrList `yaml:"from_target_part"`
	LineOfSiteSpecs []yamlLOS    `yaml:"line_of_site_specifications"`
	OutputVariables []yamlOutVar `yaml:"output_variables"`
}

type yamlLOS struct {
	Name            *string   `yaml:"name"`
	NumberOfPoints  *int      `yaml:"number_of_points"`
	TipCoordinates  []float64 `yaml:"tip_coordinates"`
	TailCoordinates []float64 `yaml:"tail_coordinates"`
}

type yamlOutVar struct {
	FieldName *string `yaml:"field_name"`
	FieldSize *int    `yaml:"field_size"`
}

// stringOrList accepts either a single scalar or a sequence of strings.
type stringOrList []string

func (s *stringOrList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*s = []string{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}

	return fmt.Errorf("from_target_part must be a string or a list of strings")
}

// Load parses a configuration document and returns the probe configuration.
// A document without a data_probes section yields a Config with no groups.
// Any missing required key is an error; nothing is registered for a
// malformed specification.
func Load(document []byte, numRanks int) (*Config, error) {
	if numRanks < 1 {
		return nil, fmt.Errorf(
			"data_probes: rank count must be positive, got %d", numRanks)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(document, &doc); err != nil {
		return nil, fmt.Errorf("data_probes: %w", err)
	}

	cfg := &Config{OutputFrequency: DefaultOutputFrequency}

	if doc.DataProbes == nil {
		return cfg, nil
	}

	if doc.DataProbes.OutputFrequency != nil {
		freq := *doc.DataProbes.OutputFrequency
		if freq < 1 {
			return nil, fmt.Errorf(
				"data_probes: output_frequency must be positive, got %d", freq)
		}
		cfg.OutputFrequency = freq
	}

	if len(doc.DataProbes.Specifications) == 0 {
		return nil, fmt.Errorf("data_probes: specifications must be provided")
	}

	seenParts := make(map[string]bool)
	for i, spec := range doc.DataProbes.Specifications {
		group, err := buildGroup(spec, numRanks, seenParts)
		if err != nil {
			return nil, fmt.Errorf("data_probes: specification %d: %w", i, err)
		}

		cfg.Groups = append(cfg.Groups, group)
	}

	return cfg, nil
}

func buildGroup(
	spec yamlSpec,
	numRanks int,
	seenParts map[string]bool,
) (*GroupSpec, error) {
	if spec.Name == nil {
		return nil, fmt.Errorf("no name provided")
	}

	if len(spec.LineOfSiteSpecs) == 0 {
		return nil, fmt.Errorf(
			"%s: only line_of_site_specifications are supported, "+
				"and at least one must be provided", *spec.Name)
	}

	group := &GroupSpec{
		Name:        *spec.Name,
		FromTargets: spec.FromTargetPart,
	}

	set, err := buildProbeSet(spec.LineOfSiteSpecs, numRanks, seenParts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", *spec.Name, err)
	}
	group.Sets = append(group.Sets, set)

	for i, outVar := range spec.OutputVariables {
		if outVar.FieldName == nil {
			return nil, fmt.Errorf(
				"%s: output variable %d: field_name must be provided",
				*spec.Name, i)
		}

		if outVar.FieldSize == nil {
			return nil, fmt.Errorf(
				"%s: output variable %d: field_size must be provided",
				*spec.Name, i)
		}

		if *outVar.FieldSize < 1 {
			return nil, fmt.Errorf(
				"%s: output variable %s: field_size must be positive, got %d",
				*spec.Name, *outVar.FieldName, *outVar.FieldSize)
		}

		group.Fields = append(group.Fields, FieldRequest{
			Name:       *outVar.FieldName + FieldSuffix,
			Components: *outVar.FieldSize,
		})
	}

	return group, nil
}

func buildProbeSet(
	losSpecs []yamlLOS,
	numRanks int,
	seenParts map[string]bool,
) (*ProbeSet, error) {
	numProbes := len(losSpecs)

	set := &ProbeSet{
		PartNames:   make([]string, numProbes),
		OwningRanks: make([]mesh.Rank, numProbes),
		NumPoints:   make([]int, numProbes),
		Tips:        make([][]float64, numProbes),
		Tails:       make([][]float64, numProbes),
	}

	for i, los := range losSpecs {
		if los.Name == nil {
			return nil, fmt.Errorf("line of site %d: lacking the name", i)
		}

		if los.NumberOfPoints == nil {
			return nil, fmt.Errorf(
				"line of site %s: lacking number of points", *los.Name)
		}

		if *los.NumberOfPoints < 2 {
			return nil, fmt.Errorf(
				"line of site %s: number_of_points must be at least 2, got %d",
				*los.Name, *los.NumberOfPoints)
		}

		if los.TipCoordinates == nil {
			return nil, fmt.Errorf(
				"line of site %s: lacking tip coordinates", *los.Name)
		}

		if los.TailCoordinates == nil {
			return nil, fmt.Errorf(
				"line of site %s: lacking tail coordinates", *los.Name)
		}

		if len(los.TipCoordinates) < 2 || len(los.TipCoordinates) > 3 {
			return nil, fmt.Errorf(
				"line of site %s: tip_coordinates must have 2 or 3 entries",
				*los.Name)
		}

		if len(los.TailCoordinates) != len(los.TipCoordinates) {
			return nil, fmt.Errorf(
				"line of site %s: tip and tail coordinates differ in dimension",
				*los.Name)
		}

		if seenParts[*los.Name] {
			return nil, fmt.Errorf(
				"line of site %s: probe name is already in use", *los.Name)
		}
		seenParts[*los.Name] = true

		set.PartNames[i] = *los.Name
		set.OwningRanks[i] = OwningRank(i, numProbes, numRanks)
		set.NumPoints[i] = *los.NumberOfPoints
		set.Tips[i] = los.TipCoordinates
		set.Tails[i] = los.TailCoordinates
	}

	return set, nil
}
