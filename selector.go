// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package merkleized

import (
	"fmt"
	"strings"

	"github.com/casbin/govaluate"

	"github.com/pk910/merkleized-metadata/scaleutils"
	"github.com/pk910/merkleized-metadata/types"
)

var selectorFunctions = map[string]govaluate.ExpressionFunction{
	"hasPrefix": func(args ...interface{}) (interface{}, error) {
		s, prefix, err := stringArgs("hasPrefix", args)
		if err != nil {
			return nil, err
		}
		return strings.HasPrefix(s, prefix), nil
	},
	"contains": func(args ...interface{}) (interface{}, error) {
		s, substr, err := stringArgs("contains", args)
		if err != nil {
			return nil, err
		}
		return strings.Contains(s, substr), nil
	},
}

func stringArgs(name string, args []interface{}) (string, string, error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("%v expects 2 arguments, got %d", name, len(args))
	}
	a, ok1 := args[0].(string)
	b, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return "", "", fmt.Errorf("%v expects string arguments", name)
	}
	return a, b, nil
}

func (g *Generator) getSelector(expr string) (*govaluate.EvaluableExpression, error) {
	g.selectorMutex.Lock()
	defer g.selectorMutex.Unlock()

	if cached := g.selectorCache[expr]; cached != nil {
		return cached, nil
	}

	expression, err := govaluate.NewEvaluableExpressionWithFunctions(expr, selectorFunctions)
	if err != nil {
		return nil, fmt.Errorf("error parsing type selector expression: %v", err)
	}

	g.selectorCache[expr] = expression
	return expression, nil
}

// selectorParams returns the variables a selector expression is evaluated with.
func selectorParams(id uint32, t *types.Type) map[string]interface{} {
	name := ""
	if len(t.Path) > 0 {
		name = t.Path[len(t.Path)-1]
	}

	fields := 0
	variant := ""
	switch t.TypeDef.Kind {
	case types.DefComposite:
		fields = len(t.TypeDef.Fields)
	case types.DefEnumeration:
		if t.TypeDef.Variant != nil {
			fields = len(t.TypeDef.Variant.Fields)
			variant = t.TypeDef.Variant.Name
		}
	case types.DefTuple:
		fields = len(t.TypeDef.Tuple)
	}

	return map[string]interface{}{
		"id":      float64(id),
		"kind":    t.TypeDef.Kind.String(),
		"path":    strings.Join(t.Path, "::"),
		"name":    name,
		"depth":   float64(len(t.Path)),
		"fields":  float64(fields),
		"variant": variant,
	}
}

// SelectTypes returns the original ids of the reachable types matching expr, ascending.
//
// The expression is evaluated per type with the variables id, kind, path (joined
// with "::"), name (last path segment), depth (path length), fields and variant, and
// the functions hasPrefix(s, prefix) and contains(s, substr). Example:
//
//	kind == "enumeration" && hasPrefix(path, "pallet_balances")
func (m *Metadata) SelectTypes(expr string) ([]uint32, error) {
	if m.Registry == nil {
		return nil, scaleutils.ErrDigestDisabled
	}

	expression, err := m.generator.getSelector(expr)
	if err != nil {
		return nil, err
	}

	selected := []uint32{}
	for _, id := range m.Registry.Reached() {
		t := m.types[id]
		result, err := expression.Evaluate(selectorParams(id, &t))
		if err != nil {
			return nil, fmt.Errorf("error evaluating type selector for type %d: %v", id, err)
		}

		match, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("type selector must evaluate to a boolean, got %T", result)
		}
		if match {
			selected = append(selected, id)
		}
	}

	return selected, nil
}
