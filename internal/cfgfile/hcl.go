package cfgfile

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"simrun/internal/domain"
)

// parseHCL parses the HCL form of a document:
//
//	build {
//	  compileOption = ["-sverilog"]
//	  build "default" {
//	    simOption = "+UVM_VERBOSITY=UVM_LOW"
//	  }
//	}
//
// A labelled block becomes a section named by its label, an unlabelled
// nested block a section named by its type, and an object attribute a
// section holding the object's keys.
func parseHCL(file string, data []byte) (*Document, error) {
	f, diags := hclsyntax.ParseConfig(data, file, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, hclError(file, diags)
	}
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, &domain.ParseError{File: file, Msg: "unexpected HCL body type"}
	}

	doc := newDocument(file)
	if err := fillFromHCL(doc.Root, body, 0); err != nil {
		return nil, err
	}
	return doc, nil
}

func fillFromHCL(sec *Section, body *hclsyntax.Body, depth int) error {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	// body.Attributes is a map; keep source order.
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	for _, attr := range attrs {
		line := attr.SrcRange.Start.Line
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return hclError(sec.File, diags)
		}
		if isObject(val) {
			child, err := sec.addChild(attr.Name, line)
			if err != nil {
				return err
			}
			if err := fillFromObject(child, attr.Expr, val, line); err != nil {
				return err
			}
			continue
		}
		v, err := ctyToValue(val)
		if err != nil {
			return sec.errorf(line, "option %q: %s", attr.Name, err)
		}
		if err := sec.set(attr.Name, v, line); err != nil {
			return err
		}
	}

	for _, block := range body.Blocks {
		line := block.TypeRange.Start.Line
		name := block.Type
		switch {
		case depth == 0 && len(block.Labels) > 0:
			return sec.errorf(line, "top-level block %q takes no labels", block.Type)
		case len(block.Labels) == 1:
			name = block.Labels[0]
		case len(block.Labels) > 1:
			return sec.errorf(line, "block %q has more than one label", block.Type)
		}
		child, err := sec.addChild(name, line)
		if err != nil {
			return err
		}
		if err := fillFromHCL(child, block.Body, depth+1); err != nil {
			return err
		}
	}
	return nil
}

type objectItem struct {
	key  string
	expr hclsyntax.Expression
	val  cty.Value
	line int
}

// objectItems returns the items of an object attribute. An object
// constructor keeps its source order; any other expression falls back to
// the key order of its value.
func objectItems(sec *Section, expr hclsyntax.Expression, obj cty.Value, line int) ([]objectItem, error) {
	cons, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		var items []objectItem
		for it := obj.ElementIterator(); it.Next(); {
			k, v := it.Element()
			items = append(items, objectItem{key: k.AsString(), val: v, line: line})
		}
		return items, nil
	}

	items := make([]objectItem, 0, len(cons.Items))
	for _, item := range cons.Items {
		k, diags := item.KeyExpr.Value(nil)
		if diags.HasErrors() {
			return nil, hclError(sec.File, diags)
		}
		key, err := ctyToString(k)
		if err != nil {
			return nil, sec.errorf(item.KeyExpr.Range().Start.Line, "object key: %s", err)
		}
		v, diags := item.ValueExpr.Value(nil)
		if diags.HasErrors() {
			return nil, hclError(sec.File, diags)
		}
		items = append(items, objectItem{key: key, expr: item.ValueExpr, val: v, line: item.KeyExpr.Range().Start.Line})
	}
	return items, nil
}

func fillFromObject(sec *Section, expr hclsyntax.Expression, obj cty.Value, line int) error {
	items, err := objectItems(sec, expr, obj, line)
	if err != nil {
		return err
	}
	for _, item := range items {
		if isObject(item.val) {
			child, err := sec.addChild(item.key, item.line)
			if err != nil {
				return err
			}
			if err := fillFromObject(child, item.expr, item.val, item.line); err != nil {
				return err
			}
			continue
		}
		val, err := ctyToValue(item.val)
		if err != nil {
			return sec.errorf(item.line, "option %q: %s", item.key, err)
		}
		if err := sec.set(item.key, val, item.line); err != nil {
			return err
		}
	}
	return nil
}

func isObject(v cty.Value) bool {
	t := v.Type()
	return t.IsObjectType() || t.IsMapType()
}

func ctyToValue(v cty.Value) (Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return Value{}, fmt.Errorf("value must be known and not null")
	}
	t := v.Type()
	if t.IsTupleType() || t.IsListType() || t.IsSetType() {
		items := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			s, err := ctyToString(elem)
			if err != nil {
				return Value{}, err
			}
			items = append(items, s)
		}
		return List(items...), nil
	}
	s, err := ctyToString(v)
	if err != nil {
		return Value{}, err
	}
	return Scalar(s), nil
}

func ctyToString(v cty.Value) (string, error) {
	if v.IsNull() || !v.IsKnown() {
		return "", fmt.Errorf("value must be known and not null")
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("expected a string, got %s", v.Type().FriendlyName())
	}
	return s.AsString(), nil
}

func hclError(file string, diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if d.Subject != nil {
			line = d.Subject.Start.Line
		}
		return &domain.ParseError{File: file, Line: line, Msg: d.Summary + ": " + d.Detail}
	}
	return &domain.ParseError{File: file, Msg: diags.Error()}
}
