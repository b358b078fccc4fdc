package cfgfile

import (
	"gopkg.in/yaml.v3"

	"simrun/internal/domain"
)

// parseYAML parses the YAML form of a document. Scalars and sequences are
// options, mappings are sections.
func parseYAML(file string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &domain.ParseError{File: file, Msg: err.Error()}
	}

	doc := newDocument(file)
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, &domain.ParseError{File: file, Line: top.Line, Msg: "document must be a mapping"}
	}
	if err := fillFromYAML(doc.Root, top); err != nil {
		return nil, err
	}
	return doc, nil
}

func fillFromYAML(sec *Section, node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return sec.errorf(k.Line, "keys must be scalars")
		}
		switch v.Kind {
		case yaml.MappingNode:
			child, err := sec.addChild(k.Value, k.Line)
			if err != nil {
				return err
			}
			if err := fillFromYAML(child, v); err != nil {
				return err
			}
		case yaml.SequenceNode:
			items := make([]string, 0, len(v.Content))
			for _, item := range v.Content {
				if item.Kind != yaml.ScalarNode {
					return sec.errorf(item.Line, "option %q: list items must be scalars", k.Value)
				}
				items = append(items, item.Value)
			}
			if err := sec.set(k.Value, List(items...), k.Line); err != nil {
				return err
			}
		case yaml.ScalarNode:
			val := v.Value
			if v.Tag == "!!null" {
				val = ""
			}
			if err := sec.set(k.Value, Scalar(val), k.Line); err != nil {
				return err
			}
		default:
			return sec.errorf(v.Line, "option %q: unsupported value", k.Value)
		}
	}
	return nil
}
