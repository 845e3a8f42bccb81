// Package filter compiles CEL filter expressions from the question list API
// into the engine's filter specification.
//
// Supported grammar, validated by the CEL type checker:
//
//	year == 112
//	year in [112, 113]
//	session == "B"
//	session in ["A", "B"]
//	core_only
//	text.contains("齲蝕")
//
// joined with &&. Anything else is rejected with an error; the filter never
// silently drops a predicate.
package filter

import (
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/pkg/errors"

	"github.com/google/cel-go/cel"

	"github.com/dentkao/dentkao/server/queryengine"
)

// QuestionFilterCELAttributes are the variables a filter expression may
// reference.
var QuestionFilterCELAttributes = []cel.EnvOption{
	cel.Variable("year", cel.IntType),
	cel.Variable("session", cel.StringType),
	cel.Variable("text", cel.StringType),
	cel.Variable("core_only", cel.BoolType),
}

// Parse compiles a filter expression and converts it into a FilterSpec.
//
// The returned spec is meant for Engine.FilterGeneral: text.contains
// arguments are plain keywords, so an identifier-shaped argument must not
// be re-routed through the identifier pipeline where it would shadow the
// structured predicates.
func Parse(expression string) (*queryengine.FilterSpec, error) {
	env, err := cel.NewEnv(QuestionFilterCELAttributes...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CEL environment")
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "invalid filter expression %q", expression)
	}

	spec := &queryengine.FilterSpec{}
	if err := convertExpr(ast.NativeRep().Expr(), spec); err != nil {
		return nil, errors.Wrapf(err, "unsupported filter expression %q", expression)
	}
	return spec, nil
}

// convertExpr folds one expression node into the filter. Only the closed
// grammar above is accepted.
func convertExpr(expr celast.Expr, spec *queryengine.FilterSpec) error {
	switch expr.Kind() {
	case celast.CallKind:
		return convertCall(expr.AsCall(), spec)
	case celast.IdentKind:
		if expr.AsIdent() == "core_only" {
			spec.RequireCoreTopicOnly = true
			return nil
		}
		return errors.Errorf("unexpected identifier %q", expr.AsIdent())
	default:
		return errors.Errorf("unexpected expression kind %v", expr.Kind())
	}
}

func convertCall(call celast.CallExpr, spec *queryengine.FilterSpec) error {
	switch call.FunctionName() {
	case operators.LogicalAnd:
		for _, arg := range call.Args() {
			if err := convertExpr(arg, spec); err != nil {
				return err
			}
		}
		return nil
	case operators.Equals:
		return convertEquals(call, spec)
	case operators.In:
		return convertIn(call, spec)
	case "contains":
		return convertContains(call, spec)
	default:
		return errors.Errorf("unsupported operator %q", call.FunctionName())
	}
}

func convertEquals(call celast.CallExpr, spec *queryengine.FilterSpec) error {
	args := call.Args()
	if len(args) != 2 || args[0].Kind() != celast.IdentKind || args[1].Kind() != celast.LiteralKind {
		return errors.New("equality must compare a variable against a literal")
	}
	name := args[0].AsIdent()
	value := args[1].AsLiteral().Value()
	switch name {
	case "year":
		year, ok := value.(int64)
		if !ok {
			return errors.Errorf("year must be an integer, got %T", value)
		}
		spec.SelectedYears = append(spec.SelectedYears, int(year))
		return nil
	case "session":
		session, ok := value.(string)
		if !ok {
			return errors.Errorf("session must be a string, got %T", value)
		}
		spec.Sessions = append(spec.Sessions, session)
		return nil
	default:
		return errors.Errorf("cannot filter on %q with ==", name)
	}
}

func convertIn(call celast.CallExpr, spec *queryengine.FilterSpec) error {
	args := call.Args()
	if len(args) != 2 || args[0].Kind() != celast.IdentKind || args[1].Kind() != celast.ListKind {
		return errors.New("in must test a variable against a list literal")
	}
	name := args[0].AsIdent()
	for _, element := range args[1].AsList().Elements() {
		if element.Kind() != celast.LiteralKind {
			return errors.New("list elements must be literals")
		}
		value := element.AsLiteral().Value()
		switch name {
		case "year":
			year, ok := value.(int64)
			if !ok {
				return errors.Errorf("year list must hold integers, got %T", value)
			}
			spec.SelectedYears = append(spec.SelectedYears, int(year))
		case "session":
			session, ok := value.(string)
			if !ok {
				return errors.Errorf("session list must hold strings, got %T", value)
			}
			spec.Sessions = append(spec.Sessions, session)
		default:
			return errors.Errorf("cannot filter on %q with in", name)
		}
	}
	return nil
}

func convertContains(call celast.CallExpr, spec *queryengine.FilterSpec) error {
	target := call.Target()
	args := call.Args()
	if !call.IsMemberFunction() || target.Kind() != celast.IdentKind || target.AsIdent() != "text" {
		return errors.New("contains is only supported as text.contains(...)")
	}
	if len(args) != 1 || args[0].Kind() != celast.LiteralKind {
		return errors.New("contains takes one literal argument")
	}
	keyword, ok := args[0].AsLiteral().Value().(string)
	if !ok {
		return errors.New("contains argument must be a string")
	}
	// Keywords accumulate into the search text; the engine ANDs the tokens.
	if spec.SearchText == "" {
		spec.SearchText = keyword
	} else {
		spec.SearchText += " " + keyword
	}
	return nil
}
