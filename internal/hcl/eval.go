package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/ximsweep/internal/preset"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions available to catalog expressions.
var functions = map[string]function.Function{
	"concat":     stdlib.ConcatFunc,
	"flatten":    stdlib.FlattenFunc,
	"format":     stdlib.FormatFunc,
	"join":       stdlib.JoinFunc,
	"length":     stdlib.LengthFunc,
	"lower":      stdlib.LowerFunc,
	"range":      stdlib.RangeFunc,
	"replace":    stdlib.ReplaceFunc,
	"setproduct": stdlib.SetProductFunc,
	"split":      stdlib.SplitFunc,
	"upper":      stdlib.UpperFunc,
}

// newEvalContext builds the context catalog expressions are evaluated in.
// The only variable is `splits`, an object of string lists.
func newEvalContext() *hcl.EvalContext {
	splits := preset.Splits()
	attrs := make(map[string]cty.Value, len(splits))
	for name, list := range splits {
		vals := make([]cty.Value, len(list))
		for i, s := range list {
			vals[i] = cty.StringVal(s)
		}
		attrs[name] = cty.ListVal(vals)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"splits": cty.ObjectVal(attrs),
		},
		Functions: functions,
	}
}
